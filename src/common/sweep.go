package common

import (
	"context"
	"log"
	"time"

	"bookingapp/src/config"
	"bookingapp/src/lib"

	"github.com/go-co-op/gocron/v2"
)

// ExpireBookingsJob is the daily reconciliation sweep for overdue stays.
// A failure on one booking is logged and the batch moves on.
func ExpireBookingsJob() {
	bookings, err := FindExpiredBookings()
	if err != nil {
		log.Printf("[sweep] could not list overdue bookings: %s\n", err.Error())
		return
	}
	if len(bookings) == 0 {
		Notify(config.NO_EXPIRED_BOOKINGS_MESSAGE)
		return
	}
	for _, booking := range bookings {
		if err := ExpireBooking(booking.ID); err != nil {
			log.Printf("[sweep] could not expire booking %d: %s\n", booking.ID, err.Error())
		}
	}
}

// ExpirePaymentsJob resolves pending payments whose checkout session has
// lapsed at the gateway, canceling the coupled booking as it goes.
func ExpirePaymentsJob() {
	ctx := context.Background()
	payments, err := FindExpiredPayments(ctx)
	if err != nil {
		log.Printf("[sweep] could not list expired payments: %s\n", err.Error())
		return
	}
	if len(payments) == 0 {
		Notify(config.NO_EXPIRED_PAYMENTS_MESSAGE)
		return
	}
	for i := range payments {
		if err := MarkPaymentExpired(&payments[i]); err != nil {
			log.Printf("[sweep] could not expire payment %s: %s\n", payments[i].ID.String(), err.Error())
		}
	}
}

// RegisterSweepJobs wires both reconciliation sweeps into the scheduler:
// bookings daily at midnight, payments every minute.
func RegisterSweepJobs() error {
	if _, err := lib.CreateCronJob("0 0 * * *", ExpireBookingsJob); err != nil {
		return err
	}
	if _, err := lib.CreateIntervalJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(ExpirePaymentsJob),
	); err != nil {
		return err
	}
	return nil
}
