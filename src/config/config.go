package config

import (
	"fmt"
	"os"
	"strings"
)

var API_ENV = os.Getenv("API_ENV")

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// GetBaseURL returns the externally visible app URL with a scheme prefix.
func GetBaseURL() string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return strings.TrimSuffix(base, "/")
}

const DATE_PARSE_FORMAT = "2006-01-02"

// Bookings whose checkout date has passed by this many days are swept
// into the expired state by the daily reconciliation job.
const EXPIRY_GRACE_DAYS = 1

const (
	PAYMENT_SUCCESS_PATH       = "/api/v1/payments/success"
	PAYMENT_CANCEL_PATH        = "/api/v1/payments/cancel"
	STRIPE_CHECKOUT_SESSION_ID = "{CHECKOUT_SESSION_ID}"
	PAYMENT_CURRENCY           = "usd"
	CENTS_MULTIPLIER           = 100
)

const (
	BOOKING_CREATED_MESSAGE     = "New booking #%d created for %s"
	BOOKING_FINALIZED_MESSAGE   = "Booking #%d has been %s for %s"
	PAYMENT_CREATED_MESSAGE     = "New payment session created for booking #%d, amount: $%.2f"
	PAYMENT_SUCCESS_MESSAGE     = "Payment %s for booking #%d successfully completed, amount: $%.2f"
	PAYMENT_CANCELED_MESSAGE    = "Payment %s for booking #%d canceled. Please complete payment within 24 hours."
	PAYMENT_EXPIRED_MESSAGE     = "Payment %s for booking #%d has expired"
	NO_EXPIRED_BOOKINGS_MESSAGE = "No overdue reservations today!"
	NO_EXPIRED_PAYMENTS_MESSAGE = "No expired payments today!"
)
