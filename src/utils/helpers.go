package utils

import (
	"time"

	"bookingapp/src/config"
)

// ParseDate parses a calendar date and normalizes it to midnight UTC so
// that stored ranges compare consistently regardless of server timezone.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(config.DATE_PARSE_FORMAT, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func NightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}
