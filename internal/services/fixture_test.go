package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/testutil"
	"github.com/staynest/booking-backend/pkg/payments"
)

const ownerID = "owner-1"

var (
	guest      = &Caller{UserID: "guest-1", Name: "Ada", Email: "ada@example.com"}
	otherGuest = &Caller{UserID: "guest-2", Name: "Bo", Email: "bo@example.com"}
	owner      = &Caller{UserID: ownerID, Name: "Olu"}
)

type fixture struct {
	hotel     models.Hotel
	room      models.Room
	bookings  *testutil.BookingStore
	rooms     *testutil.RoomStore
	hotels    *testutil.HotelStore
	drafts    *database.MemoryDraftStore
	provider  *payments.DevProvider
	audits    *testutil.AuditRecorder
	publisher *testutil.Publisher
	logger    *logrus.Logger
}

// newFixture seeds one hotel with one room at 150 a night and 30 for breakfast
func newFixture(t *testing.T) *fixture {
	t.Helper()

	hotel := models.Hotel{ID: uuid.New(), OwnerID: ownerID, Title: "Palm Resort", Country: "LK"}
	room := models.Room{
		ID:             uuid.New(),
		HotelID:        hotel.ID,
		Title:          "Deluxe",
		RoomPrice:      150,
		BreakfastPrice: floatPtr(30),
	}
	rooms := testutil.NewRoomStore(room)
	logger, _ := logtest.NewNullLogger()

	return &fixture{
		hotel:     hotel,
		room:      room,
		bookings:  testutil.NewBookingStore(),
		rooms:     rooms,
		hotels:    testutil.NewHotelStore(rooms, hotel),
		drafts:    database.NewMemoryDraftStore(),
		provider:  payments.NewDevProvider(),
		audits:    &testutil.AuditRecorder{},
		publisher: &testutil.Publisher{},
		logger:    logger,
	}
}

func (f *fixture) calc(policy OverlapPolicy) *AvailabilityCalculator {
	return NewAvailabilityCalculator(policy)
}

func (f *fixture) intentService(strict bool) *BookingIntentService {
	return NewBookingIntentService(
		f.bookings, f.rooms, f.hotels, f.drafts, f.provider,
		f.calc(OverlapInclusive), f.publisher, NewAuditService(f.audits, f.logger),
		BookingIntentConfig{DefaultCurrency: "usd", StrictConfirmation: strict, DraftTTL: 30 * time.Minute},
		f.logger,
	)
}

func (f *fixture) confirmationService(mode string, verify bool) *BookingConfirmationService {
	return NewBookingConfirmationService(
		f.bookings, f.provider, f.calc(OverlapInclusive), f.publisher,
		NewAuditService(f.audits, f.logger),
		BookingConfirmationConfig{Mode: mode, VerifyWithProvider: verify},
		f.logger,
	)
}

func (f *fixture) legacyConfirmation() *BookingConfirmationService {
	return f.confirmationService(config.ConfirmationModeLegacy, false)
}

func (f *fixture) strictConfirmation() *BookingConfirmationService {
	return f.confirmationService(config.ConfirmationModeSerialized, false)
}

func (f *fixture) stay(start, end time.Time, breakfast bool) *models.BookingRequest {
	return &models.BookingRequest{
		HotelID:           f.hotel.ID,
		RoomID:            f.room.ID,
		StartDate:         &start,
		EndDate:           &end,
		BreakfastIncluded: breakfast,
	}
}

// seedConfirmed stores a paid booking of the fixture room
func (f *fixture) seedConfirmed(start, end time.Time) models.Booking {
	b := confirmedBooking(f.room.ID, start, end)
	b.HotelID = f.hotel.ID
	b.HotelOwnerID = ownerID
	b.UserID = "someone-else"
	b.PaymentIntentID = "pi_seed_" + b.ID.String()[:8]
	f.bookings.Put(b)
	return b
}
