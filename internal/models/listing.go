package models

import "time"

// ListingType is the closed set of rentable property kinds.
type ListingType string

const (
	TypeRoom      ListingType = "Room"
	TypeHostel    ListingType = "Hostel"
	TypeApartment ListingType = "Apartment"
	TypeFlat      ListingType = "Flat"
)

// TypeFilterAll is the sentinel query value meaning "do not filter by type".
const TypeFilterAll = "All"

// Valid reports whether the type is a member of the closed set.
func (t ListingType) Valid() bool {
	switch t {
	case TypeRoom, TypeHostel, TypeApartment, TypeFlat:
		return true
	}
	return false
}

// Listing represents a rentable property posted by an owner.
type Listing struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"ownerId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Location    string      `json:"location"`
	Latitude    *float64    `json:"latitude,omitempty"`
	Longitude   *float64    `json:"longitude,omitempty"`
	Type        ListingType `json:"type"`
	Images      []string    `json:"images"`
	IsApproved  bool        `json:"isApproved"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Owner is populated on joined reads (single get, admin list).
	Owner *UserSummary `json:"owner,omitempty"`
}

// ListingSummary is the listing projection joined into booking responses.
type ListingSummary struct {
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Images   []string `json:"images"`
	Price    float64  `json:"price"`
}
