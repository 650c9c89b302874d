package common

import (
	"sync"
	"testing"

	"bookingapp/src/apperr"
	"bookingapp/src/db"
	"bookingapp/src/models"
	"bookingapp/src/types"
	"bookingapp/src/utils"

	"github.com/stretchr/testify/assert"
)

func TestCreateBookingAllocatesCapacity(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 2, 80)
	identity := user.Identity()

	first, err := CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(10),
		CheckOutDate:    futureDate(14),
	})
	assert.NoError(t, err)
	assert.Equal(t, types.BOOKING_PENDING, first.Status)

	_, err = CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(12),
		CheckOutDate:    futureDate(16),
	})
	assert.NoError(t, err)

	// Both units are claimed across days 12-14, so a third overlapping stay
	// must be rejected.
	_, err = CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(13),
		CheckOutDate:    futureDate(15),
	})
	assert.True(t, apperr.IsConflict(err))

	// A disjoint range still fits.
	_, err = CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(20),
		CheckOutDate:    futureDate(22),
	})
	assert.NoError(t, err)
}

func TestCreateBookingConcurrentLastUnit(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	accommodation := createTestAccommodation(t, 1, 80)
	alice := createTestUser(t, "alice@example.com", types.ROLE_CUSTOMER)
	bob := createTestUser(t, "bob@example.com", types.ROLE_CUSTOMER)

	body := func() *types.CreateBookingRequestBody {
		return &types.CreateBookingRequestBody{
			AccommodationID: accommodation.ID,
			CheckInDate:     futureDate(10),
			CheckOutDate:    futureDate(12),
		}
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	identities := []types.Identity{alice.Identity(), bob.Identity()}
	for i := range identities {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = CreateBooking(identities[i], body())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	conflicted := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if apperr.IsConflict(err) {
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one request wins the last unit")
	assert.Equal(t, 1, conflicted)

	var count int64
	db.GetDb().Model(&models.Booking{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateBookingRejectsBadDates(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)
	identity := user.Identity()

	_, err := CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(-1),
		CheckOutDate:    futureDate(2),
	})
	var validation *apperr.ValidationError
	assert.ErrorAs(t, err, &validation)

	_, err = CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(5),
		CheckOutDate:    futureDate(5),
	})
	assert.ErrorAs(t, err, &validation)

	_, err = CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     "not-a-date",
		CheckOutDate:    futureDate(5),
	})
	assert.ErrorAs(t, err, &validation)
}

func TestCreateBookingUnknownAccommodation(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)

	_, err := CreateBooking(user.Identity(), &types.CreateBookingRequestBody{
		AccommodationID: 424242,
		CheckInDate:     futureDate(3),
		CheckOutDate:    futureDate(5),
	})
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCreateBookingBlockedByPendingPayment(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 2, 80)
	booking := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, 3), utils.Today().AddDate(0, 0, 5), types.BOOKING_PENDING)

	payment := &models.Payment{
		BookingID:   booking.ID,
		SessionID:   "cs_guard_1",
		AmountToPay: 160,
		Status:      types.PAYMENT_PENDING,
	}
	assert.NoError(t, db.GetDb().Create(payment).Error)

	_, err := CreateBooking(user.Identity(), &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(10),
		CheckOutDate:    futureDate(12),
	})
	assert.True(t, apperr.IsConflict(err))

	// Another user is not affected by this user's unresolved payment.
	other := createTestUser(t, "other@example.com", types.ROLE_CUSTOMER)
	_, err = CreateBooking(other.Identity(), &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(10),
		CheckOutDate:    futureDate(12),
	})
	assert.NoError(t, err)
}

func TestUpdateBookingRechecksCapacity(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)
	identity := user.Identity()

	booking, err := CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(10),
		CheckOutDate:    futureDate(14),
	})
	assert.NoError(t, err)

	// Moving within its own range must not collide with itself.
	updated, err := UpdateBooking(identity, booking.ID, &types.UpdateBookingRequestBody{
		CheckInDate:  futureDate(11),
		CheckOutDate: futureDate(15),
	})
	assert.NoError(t, err)
	assert.Equal(t, utils.Today().AddDate(0, 0, 11), updated.CheckInDate)

	other := createTestUser(t, "other@example.com", types.ROLE_CUSTOMER)
	createTestBooking(t, other.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, 20), utils.Today().AddDate(0, 0, 24), types.BOOKING_CONFIRMED)

	_, err = UpdateBooking(identity, booking.ID, &types.UpdateBookingRequestBody{
		CheckInDate:  futureDate(21),
		CheckOutDate: futureDate(23),
	})
	assert.True(t, apperr.IsConflict(err))
}

func TestUpdateBookingAccessControl(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	owner := createTestUser(t, "owner@example.com", types.ROLE_CUSTOMER)
	stranger := createTestUser(t, "stranger@example.com", types.ROLE_CUSTOMER)
	manager := createTestUser(t, "manager@example.com", types.ROLE_MANAGER)
	accommodation := createTestAccommodation(t, 2, 80)
	booking := createTestBooking(t, owner.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, 10), utils.Today().AddDate(0, 0, 12), types.BOOKING_PENDING)

	_, err := UpdateBooking(stranger.Identity(), booking.ID, &types.UpdateBookingRequestBody{
		CheckInDate:  futureDate(11),
		CheckOutDate: futureDate(13),
	})
	var denied *apperr.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	_, err = UpdateBooking(manager.Identity(), booking.ID, &types.UpdateBookingRequestBody{
		CheckInDate:  futureDate(11),
		CheckOutDate: futureDate(13),
	})
	assert.NoError(t, err)
}

func TestCancelBookingReleasesCapacity(t *testing.T) {
	setupTestDB(t)
	_, notes := setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)
	identity := user.Identity()

	booking, err := CreateBooking(identity, &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(10),
		CheckOutDate:    futureDate(12),
	})
	assert.NoError(t, err)

	assert.NoError(t, CancelBooking(identity, booking.ID))

	var reloaded models.Booking
	db.GetDb().First(&reloaded, booking.ID)
	assert.Equal(t, types.BOOKING_CANCELED, reloaded.Status)
	assert.NotEmpty(t, notes.messages)

	// The slot opens up again for someone else.
	other := createTestUser(t, "other@example.com", types.ROLE_CUSTOMER)
	_, err = CreateBooking(other.Identity(), &types.CreateBookingRequestBody{
		AccommodationID: accommodation.ID,
		CheckInDate:     futureDate(10),
		CheckOutDate:    futureDate(12),
	})
	assert.NoError(t, err)

	err = CancelBooking(identity, booking.ID)
	assert.True(t, apperr.IsConflict(err), "second cancel is rejected")
}

func TestCancelBookingTerminalStates(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)
	booking := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -10), utils.Today().AddDate(0, 0, -5), types.BOOKING_EXPIRED)

	err := CancelBooking(user.Identity(), booking.ID)
	assert.True(t, apperr.IsConflict(err))
}

func TestExpireBooking(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)

	overdue := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -10), utils.Today().AddDate(0, 0, -2), types.BOOKING_PENDING)
	current := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today(), utils.Today().AddDate(0, 0, 3), types.BOOKING_CONFIRMED)

	assert.NoError(t, ExpireBooking(overdue.ID))
	var reloaded models.Booking
	db.GetDb().First(&reloaded, overdue.ID)
	assert.Equal(t, types.BOOKING_EXPIRED, reloaded.Status)

	err := ExpireBooking(overdue.ID)
	assert.True(t, apperr.IsConflict(err), "expiring twice is rejected")

	err = ExpireBooking(current.ID)
	assert.True(t, apperr.IsConflict(err), "a stay inside its window cannot expire")
}

func TestExpireBookingGraceWindow(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)

	// A checkout date of today means the stay is over and the booking is
	// sweep eligible; checkout tomorrow is still inside its window.
	endsToday := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -4), utils.Today(), types.BOOKING_CONFIRMED)
	endsTomorrow := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -4), utils.Today().AddDate(0, 0, 1), types.BOOKING_CONFIRMED)

	found, err := FindExpiredBookings()
	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, endsToday.ID, found[0].ID)

	assert.NoError(t, ExpireBooking(endsToday.ID))
	err = ExpireBooking(endsTomorrow.ID)
	assert.True(t, apperr.IsConflict(err))
}

func TestFindExpiredBookings(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	user := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 5, 80)

	overduePending := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -10), utils.Today().AddDate(0, 0, -3), types.BOOKING_PENDING)
	overdueConfirmed := createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -10), utils.Today().AddDate(0, 0, -3), types.BOOKING_CONFIRMED)
	createTestBooking(t, user.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, -10), utils.Today().AddDate(0, 0, -3), types.BOOKING_CANCELED)
	createTestBooking(t, user.ID, accommodation.ID,
		utils.Today(), utils.Today().AddDate(0, 0, 3), types.BOOKING_PENDING)

	found, err := FindExpiredBookings()
	assert.NoError(t, err)
	assert.Len(t, found, 2)
	ids := []uint{found[0].ID, found[1].ID}
	assert.Contains(t, ids, overduePending.ID)
	assert.Contains(t, ids, overdueConfirmed.ID)
}

func TestListBookingsManagerOnly(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	customer := createTestUser(t, "guest@example.com", types.ROLE_CUSTOMER)
	manager := createTestUser(t, "manager@example.com", types.ROLE_MANAGER)
	accommodation := createTestAccommodation(t, 5, 80)
	createTestBooking(t, customer.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, 3), utils.Today().AddDate(0, 0, 5), types.BOOKING_PENDING)
	createTestBooking(t, manager.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, 3), utils.Today().AddDate(0, 0, 5), types.BOOKING_CONFIRMED)

	_, err := ListBookings(customer.Identity(), nil)
	var denied *apperr.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	all, err := ListBookings(manager.Identity(), nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := ListBookings(manager.Identity(), &types.BookingsQueryFilters{
		UserID: &customer.ID,
		Status: "pending",
	})
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)

	mine, err := ListUserBookings(customer.Identity())
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestGetBookingAccess(t *testing.T) {
	setupTestDB(t)
	setupFakes(t)
	owner := createTestUser(t, "owner@example.com", types.ROLE_CUSTOMER)
	stranger := createTestUser(t, "stranger@example.com", types.ROLE_CUSTOMER)
	accommodation := createTestAccommodation(t, 1, 80)
	booking := createTestBooking(t, owner.ID, accommodation.ID,
		utils.Today().AddDate(0, 0, 3), utils.Today().AddDate(0, 0, 5), types.BOOKING_PENDING)

	got, err := GetBooking(owner.Identity(), booking.ID)
	assert.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = GetBooking(stranger.Identity(), booking.ID)
	var denied *apperr.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	_, err = GetBooking(owner.Identity(), 999)
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
