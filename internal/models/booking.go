package models

import (
	"strings"
	"time"
)

// BookingStatus is the state of a booking request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
)

// ParseBookingStatus maps a request-supplied status to a BookingStatus,
// case-insensitively.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	st := BookingStatus(strings.ToLower(s))
	switch st {
	case BookingPending, BookingAccepted, BookingRejected:
		return st, true
	}
	return "", false
}

// Booking is a tenant's request to rent a listing. The owner id is
// denormalized from the listing at creation time.
type Booking struct {
	ID        string        `json:"id"`
	ListingID string        `json:"listingId"`
	TenantID  string        `json:"tenantId"`
	OwnerID   string        `json:"ownerId"`
	Message   string        `json:"message,omitempty"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	// Populated on joined reads for the owner's booking list.
	Listing *ListingSummary `json:"listing,omitempty"`
	Tenant  *UserSummary    `json:"tenant,omitempty"`
}
