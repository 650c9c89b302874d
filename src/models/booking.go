package models

import (
	"time"

	"bookingapp/src/types"
)

type Booking struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	CheckInDate     time.Time           `gorm:"type:date" json:"check_in_date"`
	CheckOutDate    time.Time           `gorm:"type:date" json:"check_out_date"`
	AccommodationID uint                `json:"accommodation_id,omitempty"`
	UserID          uint                `json:"user_id,omitempty"`
	Status          types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Accommodation *Accommodation `gorm:"foreignKey:accommodation_id" json:"accommodation,omitempty"`
	User          *User          `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Payments      []*Payment     `json:"payments,omitempty"`

	types.Timestamps
}

// bookingTransitions is the full set of legal status moves. canceled and
// expired are terminal; confirmed can still be canceled by policy.
var bookingTransitions = map[types.BookingStatus][]types.BookingStatus{
	types.BOOKING_PENDING:   {types.BOOKING_CONFIRMED, types.BOOKING_CANCELED, types.BOOKING_EXPIRED},
	types.BOOKING_CONFIRMED: {types.BOOKING_CANCELED, types.BOOKING_EXPIRED},
	types.BOOKING_CANCELED:  {},
	types.BOOKING_EXPIRED:   {},
}

func (b *Booking) CanTransition(to types.BookingStatus) bool {
	for _, s := range bookingTransitions[b.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the booking currently holds a capacity claim.
func (b *Booking) Active() bool {
	return b.Status == types.BOOKING_PENDING || b.Status == types.BOOKING_CONFIRMED
}

func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
