package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bookingapp/src/apperr"
	"bookingapp/src/db"
	"bookingapp/src/lib"
	"bookingapp/src/models"
	"bookingapp/src/types"
	"bookingapp/src/utils"

	"gorm.io/gorm"
)

// ActiveOverlapCount counts the bookings holding a capacity claim on the
// accommodation whose stay overlaps [checkIn, checkOut]. The boundary test
// is inclusive on both ends. excludeBookingID removes a booking from its
// own count on the update path; pass zero otherwise.
func ActiveOverlapCount(tx *gorm.DB, accommodationID uint, checkIn, checkOut time.Time, excludeBookingID uint) (int64, error) {
	q := tx.
		Model(&models.Booking{}).
		Where("accommodation_id = ?", accommodationID).
		Where("status IN ?", []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_CONFIRMED}).
		Where("check_in_date <= ? AND check_out_date >= ?", checkOut, checkIn)
	if excludeBookingID > 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasCapacity reports whether one more booking fits into the range. It does
// not serialize concurrent callers; the coordinator holds the
// per-accommodation lock around the check and the following insert.
func HasCapacity(tx *gorm.DB, accommodation *models.Accommodation, checkIn, checkOut time.Time, excludeBookingID uint) (bool, error) {
	count, err := ActiveOverlapCount(tx, accommodation.ID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}
	return count < int64(accommodation.Availability), nil
}

// AccommodationOccupancy returns free and occupied units for a single day,
// computed from the ledger.
func AccommodationOccupancy(accommodationID uint, day time.Time) (free int64, occupied int64, err error) {
	d := db.GetDb()
	var accommodation models.Accommodation
	if err := d.
		Where(&models.Accommodation{ID: accommodationID}).
		First(&accommodation).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, apperr.NotFound("Accommodation with ID %d not found", accommodationID)
		}
		return 0, 0, err
	}
	occupied, err = ActiveOverlapCount(d, accommodationID, day, day, 0)
	if err != nil {
		return 0, 0, err
	}
	free = int64(accommodation.Availability) - occupied
	if free < 0 {
		free = 0
	}
	return free, occupied, nil
}

func availabilityCacheKey(accommodationID uint) string {
	return fmt.Sprintf("accommodations:%d:availability", accommodationID)
}

// RefreshAvailabilityCache recomputes today's free-unit snapshot and stores
// it in Redis. The snapshot is a derived read optimization only; admission
// decisions always go through the ledger.
func RefreshAvailabilityCache(accommodationID uint) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return
	}
	free, _, err := AccommodationOccupancy(accommodationID, utils.Today())
	if err != nil {
		log.Printf("[capacity] could not refresh availability for accommodation %d: %s\n", accommodationID, err.Error())
		return
	}
	if err := rdb.Set(context.Background(), availabilityCacheKey(accommodationID), free, time.Hour).Err(); err != nil {
		log.Printf("[capacity] could not cache availability for accommodation %d: %s\n", accommodationID, err.Error())
	}
}

// CachedAvailability serves the availability read path from Redis, falling
// back to (and repopulating from) the ledger on a miss.
func CachedAvailability(ctx context.Context, accommodationID uint) (int64, error) {
	rdb := lib.GetRedisClient()
	if rdb != nil {
		if val, err := rdb.Get(ctx, availabilityCacheKey(accommodationID)).Int64(); err == nil {
			return val, nil
		}
	}
	free, _, err := AccommodationOccupancy(accommodationID, utils.Today())
	if err != nil {
		return 0, err
	}
	if rdb != nil {
		if err := rdb.Set(ctx, availabilityCacheKey(accommodationID), free, time.Hour).Err(); err != nil {
			log.Printf("[capacity] could not cache availability for accommodation %d: %s\n", accommodationID, err.Error())
		}
	}
	return free, nil
}
