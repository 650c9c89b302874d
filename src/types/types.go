package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "canceled"
	BOOKING_EXPIRED   BookingStatus = "expired"
)

type PaymentStatus string

const (
	PAYMENT_PENDING PaymentStatus = "pending"
	PAYMENT_PAID    PaymentStatus = "paid"
	PAYMENT_EXPIRED PaymentStatus = "expired"
)

type PropertyType string

const (
	PROPERTY_HOUSE         PropertyType = "house"
	PROPERTY_APARTMENT     PropertyType = "apartment"
	PROPERTY_CONDO         PropertyType = "condo"
	PROPERTY_VACATION_HOME PropertyType = "vacation_home"
)

type Role string

const (
	ROLE_CUSTOMER Role = "customer"
	ROLE_MANAGER  Role = "manager"
)

type Env string

const (
	Development Env = "development"
	Test        Env = "test"
	Production  Env = "production"
)

// Identity is the resolved caller passed explicitly into every service
// operation. Handlers build it from the auth middleware's context values.
type Identity struct {
	ID    uint
	Email string
	Role  Role
}

func (i Identity) IsManager() bool {
	return i.Role == ROLE_MANAGER
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	AccommodationID uint   `json:"accommodation_id" binding:"required"`
	CheckInDate     string `json:"check_in_date" binding:"required,bookabledate" time_format:"2006-01-02"`
	CheckOutDate    string `json:"check_out_date" binding:"required,bookabledate,gtdate=CheckInDate" time_format:"2006-01-02"`
}

type UpdateBookingRequestBody struct {
	CheckInDate  string `json:"check_in_date" binding:"required,bookabledate" time_format:"2006-01-02"`
	CheckOutDate string `json:"check_out_date" binding:"required,bookabledate,gtdate=CheckInDate" time_format:"2006-01-02"`
}

type BookingsQueryFilters struct {
	UserID *uint  `form:"user_id"`
	Status string `form:"status,omitempty" binding:"omitempty,oneof=pending confirmed canceled expired"`
}

type CreateAccommodationRequestBody struct {
	PropertyType string   `json:"property_type" binding:"required,oneof=house apartment condo vacation_home"`
	Street       string   `json:"street" binding:"required"`
	City         string   `json:"city" binding:"required"`
	Country      string   `json:"country" binding:"required"`
	PostalCode   string   `json:"postal_code" binding:"required"`
	Size         string   `json:"size" binding:"required"`
	Amenities    []string `json:"amenities,omitempty"`
	PricePerDay  float64  `json:"price_per_day" binding:"required,gt=0"`
	Availability uint     `json:"availability" binding:"required,gt=0"`
}

type UpdateAccommodationRequestBody struct {
	PricePerDay  *float64 `json:"price_per_day,omitempty" binding:"omitempty,gt=0"`
	Availability *uint    `json:"availability,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Size         *string  `json:"size,omitempty"`
}

type CreatePaymentRequestBody struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

type PaymentSessionQueryParams struct {
	SessionID string `form:"session_id" binding:"required"`
}

type PaymentsQueryFilters struct {
	UserID *uint `form:"user_id"`
}

type RegisterUserRequestBody struct {
	Email          string `json:"email" binding:"required,email"`
	Name           string `json:"name" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	RepeatPassword string `json:"repeat_password" binding:"required,eqfield=Password"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CheckoutSession is the opaque handle returned by the payment gateway
// when a hosted checkout flow is opened.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutSessionStatus is the gateway's view of a session: whether it has
// settled and when it lapses.
type CheckoutSessionStatus struct {
	Paid      bool
	ExpiresAt time.Time
}
