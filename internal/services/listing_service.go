package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/apperr"
	"github.com/renthub-kz/renthub-be/internal/models"
	"github.com/renthub-kz/renthub-be/internal/storage"
)

// ListingServiceProvider defines the interface for listing services.
type ListingServiceProvider interface {
	CreateListing(owner models.User, in CreateListingInput) (models.Listing, error)
	ListApproved(filter ListingFilter) ([]models.Listing, error)
	ListMine(ownerID string) ([]models.Listing, error)
	ListAll() ([]models.Listing, error)
	GetListingByID(id string) (models.Listing, error)
	UpdateListing(id string, caller models.User, in UpdateListingInput) (models.Listing, error)
	DeleteListing(id string, caller models.User) error
	SetApproval(id string, approved bool) (models.Listing, error)
}

// CreateListingInput carries the fields of a new listing.
type CreateListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Type        string   `json:"type"`
	Images      []string `json:"images"`
}

// UpdateListingInput carries a partial update. Nil pointers mean "field
// omitted"; a non-nil pointer to a zero value is still an update, so a
// legitimate falsy override is not silently skipped.
type UpdateListingInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Location    *string   `json:"location"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Type        *string   `json:"type"`
	Images      *[]string `json:"images"`
}

// ListingFilter selects approved listings for public browsing.
type ListingFilter struct {
	Type     string
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

// ListingService provides listing CRUD and the approval workflow.
type ListingService struct {
	db     *sql.DB
	images storage.ImageStore
}

// NewListingService creates a new ListingService.
func NewListingService(db *sql.DB, images storage.ImageStore) *ListingService {
	return &ListingService{db: db, images: images}
}

const (
	titleMinLen = 5
	titleMaxLen = 100
	descMinLen  = 20
	descMaxLen  = 2000
)

func validateTitle(title string, msgs []string) []string {
	if n := len(title); n < titleMinLen || n > titleMaxLen {
		msgs = append(msgs, "title must be between 5 and 100 characters")
	}
	return msgs
}

func validateDescription(desc string, msgs []string) []string {
	if n := len(desc); n < descMinLen || n > descMaxLen {
		msgs = append(msgs, "description must be between 20 and 2000 characters")
	}
	return msgs
}

func validateCoords(lat, lng *float64, msgs []string) []string {
	if lat != nil && (*lat < -90 || *lat > 90) {
		msgs = append(msgs, "latitude must be between -90 and 90")
	}
	if lng != nil && (*lng < -180 || *lng > 180) {
		msgs = append(msgs, "longitude must be between -180 and 180")
	}
	return msgs
}

// CreateListing persists a new listing owned by the caller. New
// listings start unapproved and become publicly browsable only through
// the admin approval endpoint.
func (s *ListingService) CreateListing(owner models.User, in CreateListingInput) (models.Listing, error) {
	var msgs []string
	msgs = validateTitle(strings.TrimSpace(in.Title), msgs)
	msgs = validateDescription(strings.TrimSpace(in.Description), msgs)
	if in.Price <= 0 {
		msgs = append(msgs, "price must be greater than 0")
	}
	if strings.TrimSpace(in.Location) == "" {
		msgs = append(msgs, "location is required")
	}
	if !models.ListingType(in.Type).Valid() {
		msgs = append(msgs, "type must be one of Room, Hostel, Apartment, Flat")
	}
	msgs = validateCoords(in.Latitude, in.Longitude, msgs)
	if len(msgs) > 0 {
		return models.Listing{}, apperr.ValidationMessages(msgs)
	}

	id := uuid.New().String()
	imagesJSON, err := marshalImages(in.Images)
	if err != nil {
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not encode images", err)
	}

	stmt, err := s.db.Prepare(`INSERT INTO listings
		(id, owner_id, title, description, price, location, latitude, longitude, type, images_json, is_approved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not create listing", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(id, owner.ID, strings.TrimSpace(in.Title), strings.TrimSpace(in.Description),
		in.Price, strings.TrimSpace(in.Location), in.Latitude, in.Longitude, in.Type, imagesJSON)
	if err != nil {
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not create listing", err)
	}

	return s.getByID(id)
}

// ListApproved returns publicly browsable listings, newest first,
// narrowed by the optional filters.
func (s *ListingService) ListApproved(filter ListingFilter) ([]models.Listing, error) {
	query := listingColumns + " FROM listings WHERE is_approved = 1"
	var args []any

	if filter.Type != "" && filter.Type != models.TypeFilterAll {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.MinPrice != nil {
		query += " AND price >= ?"
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += " AND price <= ?"
		args = append(args, *filter.MaxPrice)
	}
	if filter.Search != "" {
		query += " AND (LOWER(title) LIKE ? OR LOWER(location) LIKE ?)"
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	return s.queryListings(query, args...)
}

// ListMine returns every listing owned by the caller regardless of
// approval state, newest first.
func (s *ListingService) ListMine(ownerID string) ([]models.Listing, error) {
	return s.queryListings(listingColumns+" FROM listings WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC", ownerID)
}

// ListAll returns every listing with the owner summary joined. Admin
// moderation view.
func (s *ListingService) ListAll() ([]models.Listing, error) {
	rows, err := s.db.Query(listingJoinedColumns + ` FROM listings l
		JOIN users u ON u.id = l.owner_id
		ORDER BY l.created_at DESC, l.rowid DESC`)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not list listings", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanJoinedListing(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "could not read listing", err)
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// GetListingByID returns a single listing with the owner summary
// joined. A malformed id is reported as a bad reference, not a miss.
func (s *ListingService) GetListingByID(id string) (models.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Listing{}, apperr.New(apperr.InvalidReference, "invalid listing id")
	}

	row := s.db.QueryRow(listingJoinedColumns+` FROM listings l
		JOIN users u ON u.id = l.owner_id
		WHERE l.id = ?`, id)
	listing, err := scanJoinedListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Listing{}, apperr.Newf(apperr.NotFound, "listing %s not found", id)
		}
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not read listing", err)
	}
	return listing, nil
}

// UpdateListing applies a partial update. Only the exact owner may
// update; admins get no bypass here. Supplied fields are re-validated,
// omitted fields keep their stored values.
func (s *ListingService) UpdateListing(id string, caller models.User, in UpdateListingInput) (models.Listing, error) {
	listing, err := s.getByID(id)
	if err != nil {
		return models.Listing{}, err
	}
	if listing.OwnerID != caller.ID {
		return models.Listing{}, apperr.New(apperr.Forbidden, "you do not own this listing")
	}

	var msgs []string
	if in.Title != nil {
		msgs = validateTitle(strings.TrimSpace(*in.Title), msgs)
	}
	if in.Description != nil {
		msgs = validateDescription(strings.TrimSpace(*in.Description), msgs)
	}
	if in.Price != nil && *in.Price <= 0 {
		msgs = append(msgs, "price must be greater than 0")
	}
	if in.Location != nil && strings.TrimSpace(*in.Location) == "" {
		msgs = append(msgs, "location is required")
	}
	if in.Type != nil && !models.ListingType(*in.Type).Valid() {
		msgs = append(msgs, "type must be one of Room, Hostel, Apartment, Flat")
	}
	msgs = validateCoords(in.Latitude, in.Longitude, msgs)
	if len(msgs) > 0 {
		return models.Listing{}, apperr.ValidationMessages(msgs)
	}

	if in.Title != nil {
		listing.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		listing.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		listing.Price = *in.Price
	}
	if in.Location != nil {
		listing.Location = strings.TrimSpace(*in.Location)
	}
	if in.Latitude != nil {
		listing.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		listing.Longitude = in.Longitude
	}
	if in.Type != nil {
		listing.Type = models.ListingType(*in.Type)
	}
	if in.Images != nil {
		listing.Images = *in.Images
	}

	imagesJSON, err := marshalImages(listing.Images)
	if err != nil {
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not encode images", err)
	}

	_, err = s.db.Exec(`UPDATE listings SET
		title = ?, description = ?, price = ?, location = ?, latitude = ?, longitude = ?,
		type = ?, images_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		listing.Title, listing.Description, listing.Price, listing.Location,
		listing.Latitude, listing.Longitude, string(listing.Type), imagesJSON, id)
	if err != nil {
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not update listing", err)
	}

	return s.getByID(id)
}

// DeleteListing removes a listing and, best effort, its stored images.
// Image cleanup failures are logged and never block the record delete;
// no transactional guarantee spans the two systems.
func (s *ListingService) DeleteListing(id string, caller models.User) error {
	listing, err := s.getByID(id)
	if err != nil {
		return err
	}
	if listing.OwnerID != caller.ID {
		return apperr.New(apperr.Forbidden, "you do not own this listing")
	}

	for _, url := range listing.Images {
		if err := s.images.Delete(url); err != nil {
			log.Warn().Err(err).Str("listing_id", id).Str("url", url).Msg("Failed to delete listing image")
		}
	}

	if _, err := s.db.Exec("DELETE FROM listings WHERE id = ?", id); err != nil {
		return apperr.Wrap(apperr.Internal, "could not delete listing", err)
	}
	return nil
}

// SetApproval flips the moderation flag. Admin only, enforced at the
// route.
func (s *ListingService) SetApproval(id string, approved bool) (models.Listing, error) {
	res, err := s.db.Exec("UPDATE listings SET is_approved = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", approved, id)
	if err != nil {
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not update listing", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Listing{}, apperr.Newf(apperr.NotFound, "listing %s not found", id)
	}
	return s.getByID(id)
}

const listingColumns = `SELECT id, owner_id, title, description, price, location, latitude, longitude,
	type, images_json, is_approved, created_at, updated_at`

const listingJoinedColumns = `SELECT l.id, l.owner_id, l.title, l.description, l.price, l.location,
	l.latitude, l.longitude, l.type, l.images_json, l.is_approved, l.created_at, l.updated_at,
	u.name, u.email`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (models.Listing, error) {
	var l models.Listing
	var imagesJSON string
	err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location,
		&l.Latitude, &l.Longitude, &l.Type, &imagesJSON, &l.IsApproved, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return models.Listing{}, err
	}
	if err := json.Unmarshal([]byte(imagesJSON), &l.Images); err != nil {
		return models.Listing{}, fmt.Errorf("corrupt images column on listing %s: %w", l.ID, err)
	}
	return l, nil
}

func scanJoinedListing(row rowScanner) (models.Listing, error) {
	var l models.Listing
	var imagesJSON string
	var owner models.UserSummary
	err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Price, &l.Location,
		&l.Latitude, &l.Longitude, &l.Type, &imagesJSON, &l.IsApproved, &l.CreatedAt, &l.UpdatedAt,
		&owner.Name, &owner.Email)
	if err != nil {
		return models.Listing{}, err
	}
	if err := json.Unmarshal([]byte(imagesJSON), &l.Images); err != nil {
		return models.Listing{}, fmt.Errorf("corrupt images column on listing %s: %w", l.ID, err)
	}
	l.Owner = &owner
	return l, nil
}

func (s *ListingService) queryListings(query string, args ...any) ([]models.Listing, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not list listings", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "could not read listing", err)
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// getByID is the unjoined lookup used internally by mutations.
func (s *ListingService) getByID(id string) (models.Listing, error) {
	row := s.db.QueryRow(listingColumns+" FROM listings WHERE id = ?", id)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Listing{}, apperr.Newf(apperr.NotFound, "listing %s not found", id)
		}
		return models.Listing{}, apperr.Wrap(apperr.Internal, "could not read listing", err)
	}
	return listing, nil
}

func marshalImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
