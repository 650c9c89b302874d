package models

import "bookingapp/src/types"

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Accommodation is a rentable unit-type: Availability is the total number
// of interchangeable units, not a live counter. Remaining capacity for a
// date range is always computed from the active bookings that overlap it.
type Accommodation struct {
	ID           uint               `gorm:"primarykey" json:"id"`
	PropertyType types.PropertyType `json:"property_type,omitempty"`
	Location     Address            `gorm:"embedded;embeddedPrefix:location_" json:"location,omitempty"`
	Size         string             `json:"size,omitempty"`
	Amenities    types.JSONBArray   `gorm:"type:jsonb" json:"amenities,omitempty"`
	PricePerDay  float64            `json:"price_per_day,omitempty"`
	Availability uint               `json:"availability,omitempty"`

	Bookings []*Booking `json:"bookings,omitempty"`

	types.Timestamps
}
