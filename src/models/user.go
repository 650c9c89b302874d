package models

import "bookingapp/src/types"

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	Name         string     `json:"name,omitempty"`
	PasswordHash string     `json:"-"`
	Role         types.Role `gorm:"default:'customer'" json:"role,omitempty"`

	Bookings []*Booking `json:"bookings,omitempty"`

	types.Timestamps
}

func (u *User) IsManager() bool {
	return u.Role == types.ROLE_MANAGER
}

func (u *User) Identity() types.Identity {
	return types.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
