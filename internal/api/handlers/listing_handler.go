package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/api/respond"
	"github.com/renthub-kz/renthub-be/internal/auth"
	"github.com/renthub-kz/renthub-be/internal/services"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service services.ListingServiceProvider
	dev     bool
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service services.ListingServiceProvider, dev bool) *ListingHandler {
	return &ListingHandler{service: service, dev: dev}
}

// ListApproved handles the public browse endpoint with optional
// type/price/search filters.
func (h *ListingHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.ListingFilter{
		Type:   q.Get("type"),
		Search: q.Get("search"),
	}

	if v := q.Get("minPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "minPrice must be a number")
			return
		}
		filter.MinPrice = &price
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &price
	}

	listings, err := h.service.ListApproved(filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list approved listings")
		respond.Error(w, err, h.dev)
		return
	}
	respond.List(w, http.StatusOK, listings, len(listings))
}

// Get handles the public single-listing endpoint.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.service.GetListingByID(id)
	if err != nil {
		respond.Error(w, err, h.dev)
		return
	}
	respond.Data(w, http.StatusOK, listing)
}

// Create handles listing creation by an owner.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var in services.CreateListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := h.service.CreateListing(principal, in)
	if err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("owner_id", principal.ID).Msg("Failed to create listing")
		}
		respond.Error(w, err, h.dev)
		return
	}
	respond.Data(w, http.StatusCreated, listing)
}

// ListMine handles the caller's own listings, any approval state.
func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	listings, err := h.service.ListMine(principal.ID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", principal.ID).Msg("Failed to list own listings")
		respond.Error(w, err, h.dev)
		return
	}
	respond.List(w, http.StatusOK, listings, len(listings))
}

// ListAll handles the admin moderation view of every listing.
func (h *ListingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list all listings")
		respond.Error(w, err, h.dev)
		return
	}
	respond.List(w, http.StatusOK, listings, len(listings))
}

// Update handles a partial update by the listing's owner.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var in services.UpdateListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	listing, err := h.service.UpdateListing(id, principal, in)
	if err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("listing_id", id).Msg("Failed to update listing")
		}
		respond.Error(w, err, h.dev)
		return
	}
	respond.Data(w, http.StatusOK, listing)
}

// Delete handles listing deletion by its owner.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteListing(id, principal); err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("listing_id", id).Msg("Failed to delete listing")
		}
		respond.Error(w, err, h.dev)
		return
	}
	respond.Message(w, http.StatusOK, "listing deleted")
}

// SetApproval handles the admin moderation flag flip.
func (h *ListingHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload struct {
		IsApproved *bool `json:"isApproved"`
	}
	// A non-boolean value fails the decode, a missing field leaves the
	// pointer nil; both are validation errors, not 500s.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, "isApproved must be a boolean")
		return
	}
	if payload.IsApproved == nil {
		respond.Fail(w, http.StatusBadRequest, "isApproved is required")
		return
	}

	listing, err := h.service.SetApproval(id, *payload.IsApproved)
	if err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("listing_id", id).Msg("Failed to set listing approval")
		}
		respond.Error(w, err, h.dev)
		return
	}
	respond.Data(w, http.StatusOK, listing)
}
