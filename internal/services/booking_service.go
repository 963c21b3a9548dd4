package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/renthub-kz/renthub-be/internal/apperr"
	"github.com/renthub-kz/renthub-be/internal/models"
)

// BookingServiceProvider defines the interface for booking services.
type BookingServiceProvider interface {
	CreateBooking(tenant models.User, listingID, message string) (models.Booking, error)
	ListForOwner(ownerID string) ([]models.Booking, error)
	UpdateBookingStatus(id, ownerID, status string) (models.Booking, error)
}

// BookingService provides the booking request workflow.
type BookingService struct {
	db *sql.DB
}

// NewBookingService creates a new BookingService.
func NewBookingService(db *sql.DB) *BookingService {
	return &BookingService{db: db}
}

const maxMessageLen = 500

// CreateBooking files a pending request from the tenant against a
// listing. The owner id is denormalized from the listing at this point
// and never re-synced. The unique index on (listing_id, tenant_id) is
// the authoritative duplicate check, closing the race an application
// level existence check would leave open.
func (s *BookingService) CreateBooking(tenant models.User, listingID, message string) (models.Booking, error) {
	if strings.TrimSpace(listingID) == "" {
		return models.Booking{}, apperr.New(apperr.Validation, "listingId is required")
	}
	if len(message) > maxMessageLen {
		return models.Booking{}, apperr.New(apperr.Validation, "message must be at most 500 characters")
	}

	var ownerID string
	row := s.db.QueryRow("SELECT owner_id FROM listings WHERE id = ?", listingID)
	if err := row.Scan(&ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, apperr.Newf(apperr.NotFound, "listing %s not found", listingID)
		}
		return models.Booking{}, apperr.Wrap(apperr.Internal, "could not read listing", err)
	}

	if ownerID == tenant.ID {
		return models.Booking{}, apperr.New(apperr.InvalidOperation, "you cannot book your own listing")
	}

	id := uuid.New().String()
	stmt, err := s.db.Prepare("INSERT INTO bookings(id, listing_id, tenant_id, owner_id, message) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.Booking{}, apperr.Wrap(apperr.Internal, "could not create booking", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id, listingID, tenant.ID, ownerID, message); err != nil {
		if isUniqueViolation(err) {
			return models.Booking{}, apperr.New(apperr.Conflict, "you have already requested this listing")
		}
		return models.Booking{}, apperr.Wrap(apperr.Internal, "could not create booking", err)
	}

	return s.getByID(id)
}

// ListForOwner returns every booking made against the caller's
// listings, newest first, with listing and tenant summaries joined.
func (s *BookingService) ListForOwner(ownerID string) ([]models.Booking, error) {
	rows, err := s.db.Query(`SELECT b.id, b.listing_id, b.tenant_id, b.owner_id, b.message, b.status,
			b.created_at, b.updated_at,
			l.title, l.location, l.images_json, l.price,
			u.name, u.email
		FROM bookings b
		JOIN listings l ON l.id = b.listing_id
		JOIN users u ON u.id = b.tenant_id
		WHERE b.owner_id = ?
		ORDER BY b.created_at DESC, b.rowid DESC`, ownerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not list bookings", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		var listing models.ListingSummary
		var tenant models.UserSummary
		var imagesJSON string
		err := rows.Scan(&b.ID, &b.ListingID, &b.TenantID, &b.OwnerID, &b.Message, &b.Status,
			&b.CreatedAt, &b.UpdatedAt,
			&listing.Title, &listing.Location, &imagesJSON, &listing.Price,
			&tenant.Name, &tenant.Email)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "could not read booking", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &listing.Images); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "could not read booking", err)
		}
		b.Listing = &listing
		b.Tenant = &tenant
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateBookingStatus moves a pending booking to accepted or rejected.
// The booking is matched by id AND owner jointly, so a caller who does
// not own the underlying listing sees a plain not-found; the lookup
// doubles as the authorization check and leaks nothing about existence.
func (s *BookingService) UpdateBookingStatus(id, ownerID, status string) (models.Booking, error) {
	target, ok := models.ParseBookingStatus(status)
	if !ok || target == models.BookingPending {
		return models.Booking{}, apperr.New(apperr.InvalidOperation, "status must be accepted or rejected")
	}

	booking, err := s.getByOwner(id, ownerID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.Status != models.BookingPending {
		// Accepted and rejected are terminal.
		return models.Booking{}, apperr.Newf(apperr.InvalidOperation, "booking is already %s", booking.Status)
	}

	_, err = s.db.Exec("UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?",
		string(target), id, ownerID)
	if err != nil {
		return models.Booking{}, apperr.Wrap(apperr.Internal, "could not update booking", err)
	}

	return s.getByID(id)
}

const bookingColumns = `SELECT id, listing_id, tenant_id, owner_id, message, status, created_at, updated_at`

func (s *BookingService) getByID(id string) (models.Booking, error) {
	row := s.db.QueryRow(bookingColumns+" FROM bookings WHERE id = ?", id)
	return scanBooking(row, id)
}

func (s *BookingService) getByOwner(id, ownerID string) (models.Booking, error) {
	row := s.db.QueryRow(bookingColumns+" FROM bookings WHERE id = ? AND owner_id = ?", id, ownerID)
	return scanBooking(row, id)
}

func scanBooking(row *sql.Row, id string) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.ListingID, &b.TenantID, &b.OwnerID, &b.Message, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, apperr.Newf(apperr.NotFound, "booking %s not found", id)
		}
		return models.Booking{}, apperr.Wrap(apperr.Internal, "could not read booking", err)
	}
	return b, nil
}
