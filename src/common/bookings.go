package common

import (
	"errors"
	"time"

	"bookingapp/src/apperr"
	"bookingapp/src/config"
	"bookingapp/src/db"
	"bookingapp/src/models"
	"bookingapp/src/types"
	"bookingapp/src/utils"

	"gorm.io/gorm"
)

// CreateBooking admits a new stay against the accommodation's capacity.
// The overlap check and the insert run inside one transaction under the
// per-accommodation lock, so two concurrent requests cannot both claim the
// last unit.
func CreateBooking(identity types.Identity, body *types.CreateBookingRequestBody) (*models.Booking, error) {
	checkIn, checkOut, err := parseStayDates(body.CheckInDate, body.CheckOutDate)
	if err != nil {
		return nil, err
	}
	if err := CheckPendingPayments(identity.ID); err != nil {
		return nil, err
	}

	unlock := lockAccommodation(body.AccommodationID)
	defer unlock()

	var booking *models.Booking
	var accommodation models.Accommodation
	d := db.GetDb()
	err = d.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Accommodation{ID: body.AccommodationID}).
			First(&accommodation).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Accommodation with ID %d not found", body.AccommodationID)
			}
			return err
		}
		if accommodation.Availability == 0 {
			return apperr.Conflict("Accommodation with ID %d is not available", accommodation.ID)
		}
		ok, err := HasCapacity(tx, &accommodation, checkIn, checkOut, 0)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("No available units for these dates")
		}
		booking = &models.Booking{
			CheckInDate:     checkIn,
			CheckOutDate:    checkOut,
			AccommodationID: accommodation.ID,
			UserID:          identity.ID,
			Status:          types.BOOKING_PENDING,
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}
	go RefreshAvailabilityCache(accommodation.ID)
	Notify(config.BOOKING_CREATED_MESSAGE, booking.ID, accommodation.Location.City)
	booking.Accommodation = &accommodation
	return booking, nil
}

// UpdateBooking moves a booking to new dates, re-checking capacity with the
// booking excluded from its own overlap count. Status is never writable
// here; all status changes go through the guarded transitions.
func UpdateBooking(identity types.Identity, bookingID uint, body *types.UpdateBookingRequestBody) (*models.Booking, error) {
	checkIn, checkOut, err := parseStayDates(body.CheckInDate, body.CheckOutDate)
	if err != nil {
		return nil, err
	}
	booking, err := getBookingForUpdate(identity, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Active() {
		return nil, apperr.Conflict("Booking with ID %d can no longer be modified", bookingID)
	}

	unlock := lockAccommodation(booking.AccommodationID)
	defer unlock()

	d := db.GetDb()
	err = d.Transaction(func(tx *gorm.DB) error {
		var accommodation models.Accommodation
		if err := tx.
			Where(&models.Accommodation{ID: booking.AccommodationID}).
			First(&accommodation).
			Error; err != nil {
			return err
		}
		ok, err := HasCapacity(tx, &accommodation, checkIn, checkOut, booking.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("No available units for these dates")
		}
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: booking.ID}).
			Updates(map[string]any{
				"check_in_date":  checkIn,
				"check_out_date": checkOut,
			}).
			Error
	})
	if err != nil {
		return nil, err
	}
	booking.CheckInDate = checkIn
	booking.CheckOutDate = checkOut
	return booking, nil
}

// CancelBooking releases the booking's capacity claim exactly once.
func CancelBooking(identity types.Identity, bookingID uint) error {
	booking, err := getBookingForUpdate(identity, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == types.BOOKING_CANCELED {
		return apperr.Conflict("Booking with ID %d is already canceled", bookingID)
	}
	if !booking.CanTransition(types.BOOKING_CANCELED) {
		return apperr.Conflict("Booking with ID %d cannot be canceled from status %s", bookingID, booking.Status)
	}
	return finalizeBooking(booking, types.BOOKING_CANCELED, "canceled")
}

// ExpireBooking is the sweep-only terminal transition for stays whose
// checkout has lapsed without confirmation.
func ExpireBooking(bookingID uint) error {
	booking, err := getBooking(bookingID)
	if err != nil {
		return err
	}
	if booking.Status == types.BOOKING_EXPIRED {
		return apperr.Conflict("Booking with ID %d is already expired", bookingID)
	}
	if !booking.CanTransition(types.BOOKING_EXPIRED) {
		return apperr.Conflict("Booking with ID %d cannot expire from status %s", bookingID, booking.Status)
	}
	if !booking.CheckOutDate.Before(expiryCutoff()) {
		return apperr.Conflict("Booking with ID %d is not past its stay window", bookingID)
	}
	return finalizeBooking(booking, types.BOOKING_EXPIRED, "expired")
}

// FindExpiredBookings lists the bookings the daily sweep should expire:
// still holding capacity, checkout past the grace window.
func FindExpiredBookings() ([]models.Booking, error) {
	d := db.GetDb()
	var bookings []models.Booking
	err := d.
		Model(&models.Booking{}).
		Where("status IN ?", []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_CONFIRMED}).
		Where("check_out_date < ?", expiryCutoff()).
		Preload("Accommodation").
		Find(&bookings).
		Error
	return bookings, err
}

func GetBooking(identity types.Identity, bookingID uint) (*models.Booking, error) {
	booking, err := getBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkBookingAccess(identity, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings is the manager-level read path with optional user/status
// filters.
func ListBookings(identity types.Identity, filters *types.BookingsQueryFilters) ([]models.Booking, error) {
	if !identity.IsManager() {
		return nil, apperr.AccessDenied("Only managers can list all bookings")
	}
	d := db.GetDb()
	q := d.Model(&models.Booking{}).Preload("Accommodation")
	if filters != nil {
		if filters.UserID != nil {
			q = q.Where("user_id = ?", *filters.UserID)
		}
		if filters.Status != "" {
			q = q.Where("status = ?", types.BookingStatus(filters.Status))
		}
	}
	var bookings []models.Booking
	err := q.Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func ListUserBookings(identity types.Identity) ([]models.Booking, error) {
	d := db.GetDb()
	var bookings []models.Booking
	err := d.
		Model(&models.Booking{}).
		Where(&models.Booking{UserID: identity.ID}).
		Preload("Accommodation").
		Order("created_at DESC").
		Find(&bookings).
		Error
	return bookings, err
}

func getBooking(bookingID uint) (*models.Booking, error) {
	d := db.GetDb()
	var booking models.Booking
	if err := d.
		Where(&models.Booking{ID: bookingID}).
		Preload("Accommodation").
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Booking with ID %d not found", bookingID)
		}
		return nil, err
	}
	return &booking, nil
}

func getBookingForUpdate(identity types.Identity, bookingID uint) (*models.Booking, error) {
	booking, err := getBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkBookingAccess(identity, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func checkBookingAccess(identity types.Identity, booking *models.Booking) error {
	if identity.IsManager() || booking.UserID == identity.ID {
		return nil
	}
	return apperr.AccessDenied("Access to this booking is denied")
}

// finalizeBooking moves the booking into a terminal state. The update is
// guarded on the previously observed status so a concurrent duplicate
// invocation cannot release the same capacity claim twice.
func finalizeBooking(booking *models.Booking, status types.BookingStatus, action string) error {
	d := db.GetDb()
	err := d.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, booking.Status).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Booking with ID %d was concurrently modified", booking.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	booking.Status = status
	go RefreshAvailabilityCache(booking.AccommodationID)
	city := ""
	if booking.Accommodation != nil {
		city = booking.Accommodation.Location.City
	}
	Notify(config.BOOKING_FINALIZED_MESSAGE, booking.ID, action, city)
	return nil
}

func expiryCutoff() time.Time {
	return utils.Today().AddDate(0, 0, config.EXPIRY_GRACE_DAYS)
}

func parseStayDates(checkInValue, checkOutValue string) (time.Time, time.Time, error) {
	checkIn, err := utils.ParseDate(checkInValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("Invalid check-in date: %s", checkInValue)
	}
	checkOut, err := utils.ParseDate(checkOutValue)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("Invalid check-out date: %s", checkOutValue)
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, apperr.Validation("Check-out date must be after check-in date")
	}
	if checkIn.Before(utils.Today()) {
		return time.Time{}, time.Time{}, apperr.Validation("Check-in date must be today or in the future")
	}
	return checkIn, checkOut, nil
}
