package models

import (
	"bookingapp/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID          uuid.UUID           `gorm:"primarykey;type:uuid" json:"id"`
	BookingID   uint                `json:"booking_id,omitempty"`
	SessionID   string              `gorm:"uniqueIndex" json:"session_id,omitempty"`
	SessionURL  string              `json:"session_url,omitempty"`
	AmountToPay float64             `json:"amount_to_pay,omitempty"`
	Status      types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Booking Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

var paymentTransitions = map[types.PaymentStatus][]types.PaymentStatus{
	types.PAYMENT_PENDING: {types.PAYMENT_PAID, types.PAYMENT_EXPIRED},
	types.PAYMENT_PAID:    {},
	types.PAYMENT_EXPIRED: {},
}

func (p *Payment) CanTransition(to types.PaymentStatus) bool {
	for _, s := range paymentTransitions[p.Status] {
		if s == to {
			return true
		}
	}
	return false
}
