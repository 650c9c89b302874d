package models

import (
	"bookingapp/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is the persisted audit copy of every message handed to the
// notification sink. Delivery is best-effort; this row is the record.
type Notification struct {
	ID            uuid.UUID    `gorm:"primarykey;type:uuid" json:"id"`
	Message       string       `json:"message"`
	Channel       string       `json:"channel,omitempty"`
	ReferenceBody *types.JSONB `gorm:"type:jsonb" json:"ref_body,omitempty"`

	types.Timestamps
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
