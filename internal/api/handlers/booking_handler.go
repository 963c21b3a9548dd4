package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/api/respond"
	"github.com/renthub-kz/renthub-be/internal/auth"
	"github.com/renthub-kz/renthub-be/internal/services"
)

// BookingHandler handles HTTP requests for booking requests.
type BookingHandler struct {
	service services.BookingServiceProvider
	dev     bool
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service services.BookingServiceProvider, dev bool) *BookingHandler {
	return &BookingHandler{service: service, dev: dev}
}

// CreateBookingPayload defines the structure for booking requests.
type CreateBookingPayload struct {
	ListingID string `json:"listingId" validate:"required"`
	Message   string `json:"message" validate:"max=500"`
}

// Create handles a tenant filing a booking request.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var payload CreateBookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkPayload(payload); err != nil {
		respond.Error(w, err, h.dev)
		return
	}

	booking, err := h.service.CreateBooking(principal, payload.ListingID, payload.Message)
	if err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("listing_id", payload.ListingID).Msg("Failed to create booking")
		}
		respond.Error(w, err, h.dev)
		return
	}
	respond.Data(w, http.StatusCreated, booking)
}

// ListForOwner handles the owner's view of bookings on their listings.
func (h *BookingHandler) ListForOwner(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	bookings, err := h.service.ListForOwner(principal.ID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", principal.ID).Msg("Failed to list bookings")
		respond.Error(w, err, h.dev)
		return
	}
	respond.List(w, http.StatusOK, bookings, len(bookings))
}

// UpdateStatus handles the owner accepting or rejecting a booking.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.service.UpdateBookingStatus(id, principal.ID, payload.Status)
	if err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("booking_id", id).Msg("Failed to update booking status")
		}
		respond.Error(w, err, h.dev)
		return
	}
	respond.Data(w, http.StatusOK, booking)
}
