package common

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookingapp/src/db"
	"bookingapp/src/models"
	"bookingapp/src/types"
	"bookingapp/src/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB installs a fresh in-memory database as the process singleton.
// A single connection keeps sqlite serialized under concurrent tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("could not open test database: %s", err.Error())
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("could not access connection pool: %s", err.Error())
	}
	sqlDB.SetMaxOpenConns(1)
	if err := d.AutoMigrate(
		&models.User{},
		&models.Accommodation{},
		&models.Booking{},
		&models.Payment{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("could not migrate test schema: %s", err.Error())
	}
	db.NewDB(d)
	return d
}

type fakeGateway struct {
	sessions      int
	createErr     error
	statusErr     map[string]error
	paid          map[string]bool
	expiresAt     map[string]time.Time
	statusQueries []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		statusErr: map[string]error{},
		paid:      map[string]bool{},
		expiresAt: map[string]time.Time{},
	}
}

func (g *fakeGateway) CreateSession(ctx context.Context, amount float64, productName string) (*types.CheckoutSession, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.sessions++
	id := fmt.Sprintf("cs_test_%d", g.sessions)
	if _, ok := g.expiresAt[id]; !ok {
		g.expiresAt[id] = time.Now().Add(24 * time.Hour)
	}
	return &types.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (g *fakeGateway) SessionStatus(ctx context.Context, sessionID string) (*types.CheckoutSessionStatus, error) {
	g.statusQueries = append(g.statusQueries, sessionID)
	if err, ok := g.statusErr[sessionID]; ok {
		return nil, err
	}
	expires, ok := g.expiresAt[sessionID]
	if !ok {
		expires = time.Now().Add(24 * time.Hour)
	}
	return &types.CheckoutSessionStatus{Paid: g.paid[sessionID], ExpiresAt: expires}, nil
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Send(message string) error {
	n.messages = append(n.messages, message)
	return nil
}

func setupFakes(t *testing.T) (*fakeGateway, *fakeNotifier) {
	t.Helper()
	gw := newFakeGateway()
	notes := &fakeNotifier{}
	UseGateway(gw)
	UseNotifier("test", notes)
	t.Cleanup(func() {
		UseGateway(nil)
		UseNotifier("log", nil)
	})
	return gw, notes
}

func createTestUser(t *testing.T, email string, role types.Role) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: "Test User", PasswordHash: "x", Role: role}
	if err := db.GetDb().Create(user).Error; err != nil {
		t.Fatalf("could not create user: %s", err.Error())
	}
	return user
}

func createTestAccommodation(t *testing.T, availability uint, pricePerDay float64) *models.Accommodation {
	t.Helper()
	accommodation := &models.Accommodation{
		PropertyType: types.PROPERTY_APARTMENT,
		Location: models.Address{
			Street:     "12 Harbor Lane",
			City:       "Rotterdam",
			Country:    "NL",
			PostalCode: "3011",
		},
		Size:         "48m2",
		Amenities:    types.JSONBArray{"wifi", "parking"},
		PricePerDay:  pricePerDay,
		Availability: availability,
	}
	if err := db.GetDb().Create(accommodation).Error; err != nil {
		t.Fatalf("could not create accommodation: %s", err.Error())
	}
	return accommodation
}

func createTestBooking(t *testing.T, userID, accommodationID uint, checkIn, checkOut time.Time, status types.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		AccommodationID: accommodationID,
		UserID:          userID,
		Status:          status,
	}
	if err := db.GetDb().Create(booking).Error; err != nil {
		t.Fatalf("could not create booking: %s", err.Error())
	}
	return booking
}

func futureDate(daysAhead int) string {
	return utils.Today().AddDate(0, 0, daysAhead).Format("2006-01-02")
}
