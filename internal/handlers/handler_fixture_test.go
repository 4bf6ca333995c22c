package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/internal/testutil"
	"github.com/staynest/booking-backend/pkg/jwt"
	"github.com/staynest/booking-backend/pkg/payments"
	"github.com/stretchr/testify/require"
)

const (
	testOwnerID       = "owner-1"
	testWebhookSecret = "whsec_handlers"
)

type testEnv struct {
	router   *gin.Engine
	jwt      *jwt.Service
	hotel    models.Hotel
	room     models.Room
	bookings *testutil.BookingStore
	provider *payments.DevProvider
	audits   *testutil.AuditRecorder
	logger   *logrus.Logger
	hook     *logtest.Hook
}

type envOptions struct {
	mode         string
	enforceOwner bool
}

// setupTestEnv wires the real services over in-memory stores behind the
// real router and auth middleware
func setupTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, hook := logtest.NewNullLogger()
	breakfast := 30.0
	hotel := models.Hotel{ID: uuid.New(), OwnerID: testOwnerID, Title: "Palm Resort", Country: "LK"}
	room := models.Room{ID: uuid.New(), HotelID: hotel.ID, Title: "Deluxe", RoomPrice: 150, BreakfastPrice: &breakfast}

	rooms := testutil.NewRoomStore(room)
	hotels := testutil.NewHotelStore(rooms, hotel)
	bookings := testutil.NewBookingStore()
	drafts := database.NewMemoryDraftStore()
	provider := payments.NewDevProvider()
	audits := &testutil.AuditRecorder{}
	publisher := &testutil.Publisher{}

	audit := services.NewAuditService(audits, logger)
	calc := services.NewAvailabilityCalculator(services.OverlapInclusive)
	mode := opts.mode
	if mode == "" {
		mode = config.ConfirmationModeLegacy
	}

	intents := services.NewBookingIntentService(bookings, rooms, hotels, drafts, provider, calc, publisher, audit,
		services.BookingIntentConfig{DefaultCurrency: "usd"}, logger)
	confirmations := services.NewBookingConfirmationService(bookings, provider, calc, publisher, audit,
		services.BookingConfirmationConfig{Mode: mode}, logger)
	bookingSvc := services.NewBookingService(bookings, rooms, hotels, calc, publisher, audit,
		opts.enforceOwner, "usd", logger)

	jwtService := jwt.NewService("handler-test-secret", "staynest-identity", time.Hour)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(jwtService))
	Routes{
		Bookings: NewBookingHandler(intents, confirmations, bookingSvc, logger),
		Hotels:   NewHotelHandler(services.NewHotelService(hotels, rooms, logger), logger),
		Drafts:   NewDraftHandler(services.NewDraftService(drafts, rooms, 30*time.Minute, "usd", logger), logger),
		Webhooks: NewWebhookHandler(confirmations, audit, testWebhookSecret, logger),
	}.Register(v1, middleware.AuthMiddleware(jwtService, logger))

	return &testEnv{
		router:   router,
		jwt:      jwtService,
		hotel:    hotel,
		room:     room,
		bookings: bookings,
		provider: provider,
		audits:   audits,
		logger:   logger,
		hook:     hook,
	}
}

// do sends a request as userID; an empty userID sends no token
func (e *testEnv) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")
	if userID != "" {
		token, err := e.jwt.GenerateToken(userID, "Test User", userID+"@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bookingBody(start, end string, breakfast bool) gin.H {
	return gin.H{
		"booking": gin.H{
			"hotelId":           e.hotel.ID,
			"roomId":            e.room.ID,
			"startDate":         start,
			"endDate":           end,
			"breakFastIncluded": breakfast,
		},
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
