package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bookingapp/src/apperr"
	"bookingapp/src/config"
	"bookingapp/src/db"
	"bookingapp/src/models"
	"bookingapp/src/types"

	"gorm.io/gorm"
)

// CheckPendingPayments is the hoarding guard: a user with an unresolved
// checkout session may not claim more capacity.
func CheckPendingPayments(userID uint) error {
	d := db.GetDb()
	var count int64
	err := d.
		Model(&models.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("payments.status = ? AND bookings.user_id = ?", types.PAYMENT_PENDING, userID).
		Count(&count).
		Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("Cannot create new booking: pending payments exist")
	}
	return nil
}

// CreatePayment opens a checkout session for a pending booking owned by
// the caller. The local record is only written after the gateway call
// succeeds, so a gateway failure leaves no orphaned payment behind.
func CreatePayment(ctx context.Context, identity types.Identity, bookingID uint) (*models.Payment, error) {
	booking, err := getBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != identity.ID {
		return nil, apperr.AccessDenied("You can only pay for your own bookings")
	}
	if booking.Status != types.BOOKING_PENDING {
		return nil, apperr.Conflict("Booking must be in pending status for payment")
	}

	d := db.GetDb()
	var pending int64
	if err := d.
		Model(&models.Payment{}).
		Where(&models.Payment{BookingID: bookingID, Status: types.PAYMENT_PENDING}).
		Count(&pending).
		Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, apperr.Conflict("Booking with ID %d already has a pending payment", bookingID)
	}

	amount := float64(booking.Nights()) * booking.Accommodation.PricePerDay

	gw, err := getGateway()
	if err != nil {
		return nil, err
	}
	session, err := gw.CreateSession(ctx, amount, fmt.Sprintf("Booking #%d", bookingID))
	if err != nil {
		return nil, apperr.Gateway(err, "Failed to create checkout session")
	}

	payment := &models.Payment{
		BookingID:   bookingID,
		SessionID:   session.ID,
		SessionURL:  session.URL,
		AmountToPay: amount,
		Status:      types.PAYMENT_PENDING,
	}
	if err := d.Transaction(func(tx *gorm.DB) error {
		return tx.Create(payment).Error
	}); err != nil {
		return nil, err
	}
	Notify(config.PAYMENT_CREATED_MESSAGE, bookingID, amount)
	return payment, nil
}

// ConfirmPayment re-queries the gateway for the session and, when it has
// settled, marks the payment paid and the booking confirmed. Repeated calls
// re-apply the same stable states.
func ConfirmPayment(ctx context.Context, sessionID string) (*models.Payment, error) {
	payment, err := FindPaymentBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	gw, err := getGateway()
	if err != nil {
		return nil, err
	}
	status, err := gw.SessionStatus(ctx, sessionID)
	if err != nil {
		return nil, apperr.Gateway(err, "Failed to verify checkout session %s", sessionID)
	}
	if !status.Paid {
		return nil, apperr.Conflict("Payment session %s not paid", sessionID)
	}

	d := db.GetDb()
	err = d.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: payment.ID}).
			Update("status", types.PAYMENT_PAID).
			Error; err != nil {
			return err
		}
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: payment.BookingID}).
			Update("status", types.BOOKING_CONFIRMED).
			Error
	})
	if err != nil {
		return nil, err
	}
	payment.Status = types.PAYMENT_PAID
	payment.Booking.Status = types.BOOKING_CONFIRMED
	Notify(config.PAYMENT_SUCCESS_MESSAGE, payment.ID.String(), payment.BookingID, payment.AmountToPay)
	return payment, nil
}

// AcknowledgeCancel records that the user backed out of the hosted
// checkout. Informational only: the session may still be completed until
// the gateway expires it, so no state changes here.
func AcknowledgeCancel(sessionID string) (*models.Payment, error) {
	payment, err := FindPaymentBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	Notify(config.PAYMENT_CANCELED_MESSAGE, payment.ID.String(), payment.BookingID)
	return payment, nil
}

// FindExpiredPayments returns the pending payments whose gateway session
// has lapsed. A gateway error on one session is logged and skips that item
// only.
func FindExpiredPayments(ctx context.Context) ([]models.Payment, error) {
	d := db.GetDb()
	var pending []models.Payment
	if err := d.
		Model(&models.Payment{}).
		Where(&models.Payment{Status: types.PAYMENT_PENDING}).
		Preload("Booking").
		Find(&pending).
		Error; err != nil {
		return nil, err
	}
	gw, err := getGateway()
	if err != nil {
		return nil, err
	}
	var expired []models.Payment
	now := time.Now()
	for _, payment := range pending {
		status, err := gw.SessionStatus(ctx, payment.SessionID)
		if err != nil {
			log.Printf("[payments] could not check session %s: %s\n", payment.SessionID, err.Error())
			continue
		}
		if status.ExpiresAt.Before(now) {
			expired = append(expired, payment)
		}
	}
	return expired, nil
}

// MarkPaymentExpired is the coupling point between the two state machines:
// the payment goes to its terminal expired state and the correlated booking
// is forced to canceled, releasing its capacity claim. Guarded updates make
// a duplicate sweep invocation a conflict, not a double release.
func MarkPaymentExpired(payment *models.Payment) error {
	d := db.GetDb()
	var accommodationID uint
	err := d.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, types.PAYMENT_PENDING).
			Update("status", types.PAYMENT_EXPIRED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Payment %s is already resolved", payment.ID.String())
		}
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: payment.BookingID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Booking with ID %d not found", payment.BookingID)
			}
			return err
		}
		accommodationID = booking.AccommodationID
		if booking.Active() {
			if err := tx.
				Model(&models.Booking{}).
				Where("id = ? AND status IN ?", booking.ID, []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_CONFIRMED}).
				Update("status", types.BOOKING_CANCELED).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	payment.Status = types.PAYMENT_EXPIRED
	go RefreshAvailabilityCache(accommodationID)
	Notify(config.PAYMENT_EXPIRED_MESSAGE, payment.ID.String(), payment.BookingID)
	return nil
}

func FindPaymentBySessionID(sessionID string) (*models.Payment, error) {
	d := db.GetDb()
	var payment models.Payment
	if err := d.
		Where(&models.Payment{SessionID: sessionID}).
		Preload("Booking").
		First(&payment).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Payment with sessionId %s not found", sessionID)
		}
		return nil, err
	}
	return &payment, nil
}

// ListPayments returns the caller's payments, or any user's for managers.
func ListPayments(identity types.Identity, userID *uint) ([]models.Payment, error) {
	target := identity.ID
	if userID != nil {
		if !identity.IsManager() && *userID != identity.ID {
			return nil, apperr.AccessDenied("Only managers can view payments of other users")
		}
		target = *userID
	}
	d := db.GetDb()
	var payments []models.Payment
	err := d.
		Model(&models.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.user_id = ?", target).
		Preload("Booking").
		Order("payments.created_at DESC").
		Find(&payments).
		Error
	return payments, err
}
