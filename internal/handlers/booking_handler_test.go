package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jan10 = "2025-01-10T00:00:00Z"
	jan12 = "2025-01-12T00:00:00Z"
	jan13 = "2025-01-13T00:00:00Z"
	jan14 = "2025-01-14T00:00:00Z"
)

func TestCreatePaymentIntent_Success(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody(jan10, jan13, true))
	assertStatus(t, w, http.StatusOK)

	resp := decode[models.PaymentIntentResponse](t, w)
	assert.Equal(t, int64(54000), resp.PaymentIntent.Amount)
	assert.Equal(t, "usd", resp.PaymentIntent.Currency)
	assert.NotEmpty(t, resp.PaymentIntent.ClientSecret)
	assert.Equal(t, 540.0, resp.TotalPrice)

	stored := env.bookings.All()
	require.Len(t, stored, 1)
	assert.Equal(t, "guest-1", stored[0].UserID)
	assert.Equal(t, "guest-1@example.com", stored[0].UserEmail)
	assert.Equal(t, testOwnerID, stored[0].HotelOwnerID)

	// request metadata reaches the audit trail
	require.Len(t, env.audits.Entries, 1)
	require.NotNil(t, env.audits.Entries[0].UserAgent)
	assert.Contains(t, env.audits.Entries[0].Details, "device_info")
}

func TestCreatePaymentIntent_Rejections(t *testing.T) {
	env := setupTestEnv(t, envOptions{})
	mismatch := env.bookingBody(jan10, jan13, true)
	mismatch["booking"].(gin.H)["totalPrice"] = 100

	tests := []struct {
		name      string
		user      string
		body      interface{}
		wantCode  int
		wantError string
	}{
		{"no token", "", env.bookingBody(jan10, jan13, false), http.StatusUnauthorized, ""},
		{"unknown field", "guest-1", gin.H{"booking": gin.H{}, "coupon": "FREE"}, http.StatusBadRequest, "validation_error"},
		{"missing booking", "guest-1", gin.H{}, http.StatusBadRequest, "validation_error"},
		{"malformed json", "guest-1", `{"booking":`, http.StatusBadRequest, "validation_error"},
		{"end before start", "guest-1", env.bookingBody(jan13, jan10, false), http.StatusBadRequest, "invalid_range"},
		{"missing dates", "guest-1", gin.H{"booking": gin.H{"hotelId": env.hotel.ID, "roomId": env.room.ID}}, http.StatusBadRequest, "invalid_range"},
		{"price mismatch", "guest-1", mismatch, http.StatusBadRequest, "price_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", tt.user, tt.body)
			assertStatus(t, w, tt.wantCode)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[ErrorResponse](t, w).Error)
			}
		})
	}

	assert.Empty(t, env.bookings.All())
	assert.Zero(t, env.provider.Count())
}

func TestCreatePaymentIntent_ProviderFailure(t *testing.T) {
	env := setupTestEnv(t, envOptions{})
	env.provider.FailNext = errors.New("stripe: connection reset")

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody(jan10, jan13, false))
	assertStatus(t, w, http.StatusBadGateway)

	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "payment_provider_error", resp.Error)
	assert.NotContains(t, resp.Message, "connection reset")
	assert.Empty(t, env.bookings.All())
}

func TestCreatePaymentIntent_UpdateRoundTrip(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody(jan10, jan13, false))
	assertStatus(t, w, http.StatusOK)
	first := decode[models.PaymentIntentResponse](t, w)

	body := env.bookingBody(jan10, jan12, true)
	body["payment_intent_id"] = first.PaymentIntent.ID
	w = env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", body)
	assertStatus(t, w, http.StatusOK)
	second := decode[models.PaymentIntentResponse](t, w)

	assert.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, first.PaymentIntent.ID, second.PaymentIntent.ID)
	assert.Equal(t, int64(36000), second.PaymentIntent.Amount)
	assert.Equal(t, 1, env.bookings.CountByPaymentIntentID(first.PaymentIntent.ID))
}

func TestConfirmBooking(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody(jan10, jan13, false))
	assertStatus(t, w, http.StatusOK)
	intent := decode[models.PaymentIntentResponse](t, w)

	w = env.do(t, http.MethodPatch, "/api/v1/booking/"+intent.PaymentIntent.ID, "guest-1", nil)
	assertStatus(t, w, http.StatusOK)
	booking := decode[models.Booking](t, w)
	assert.True(t, booking.PaymentStatus)
	assert.Equal(t, intent.BookingID, booking.ID)

	// idempotent, and the booking id works as a reference too
	w = env.do(t, http.MethodPatch, "/api/v1/booking/"+intent.BookingID.String(), "guest-1", nil)
	assertStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPatch, "/api/v1/booking/pi_missing", "guest-1", nil)
	assertStatus(t, w, http.StatusNotFound)

	w = env.do(t, http.MethodPatch, "/api/v1/booking/"+intent.PaymentIntent.ID, "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestConfirmBooking_SerializedOverlapConflict(t *testing.T) {
	env := setupTestEnv(t, envOptions{mode: config.ConfirmationModeSerialized})

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody(jan10, jan13, false))
	first := decode[models.PaymentIntentResponse](t, w)
	w = env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-2", env.bookingBody(jan12, jan14, false))
	second := decode[models.PaymentIntentResponse](t, w)

	w = env.do(t, http.MethodPatch, "/api/v1/booking/"+first.PaymentIntent.ID, "guest-1", nil)
	assertStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPatch, "/api/v1/booking/"+second.PaymentIntent.ID, "guest-2", nil)
	assertStatus(t, w, http.StatusConflict)
	assert.Equal(t, "overlap", decode[ErrorResponse](t, w).Error)
}

func TestRoomBookingsAndAvailability(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody("2099-01-10T00:00:00Z", "2099-01-12T00:00:00Z", false))
	intent := decode[models.PaymentIntentResponse](t, w)
	env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-2", env.bookingBody("2099-02-10T00:00:00Z", "2099-02-12T00:00:00Z", false))
	assertStatus(t, env.do(t, http.MethodPatch, "/api/v1/booking/"+intent.PaymentIntent.ID, "guest-1", nil), http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/v1/booking/"+env.room.ID.String(), "guest-3", nil)
	assertStatus(t, w, http.StatusOK)
	bookings := decode[[]models.Booking](t, w)
	require.Len(t, bookings, 1)
	assert.Equal(t, intent.BookingID, bookings[0].ID)

	// public
	w = env.do(t, http.MethodGet, "/api/v1/rooms/"+env.room.ID.String()+"/unavailable-dates", "", nil)
	assertStatus(t, w, http.StatusOK)
	dates := decode[struct {
		Dates []string `json:"dates"`
	}](t, w)
	assert.Equal(t, []string{"2099-01-10", "2099-01-11", "2099-01-12"}, dates.Dates)

	w = env.do(t, http.MethodGet, "/api/v1/booking/not-a-uuid", "guest-3", nil)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestQuoteHandler(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/rooms/"+env.room.ID.String()+"/quote", "",
		gin.H{"startDate": jan10, "endDate": jan13, "breakFastIncluded": true})
	assertStatus(t, w, http.StatusOK)

	quote := decode[map[string]interface{}](t, w)
	assert.Equal(t, 3.0, quote["nights"])
	assert.Equal(t, 540.0, quote["total"])

	w = env.do(t, http.MethodPost, "/api/v1/rooms/"+env.room.ID.String()+"/quote", "",
		gin.H{"startDate": jan13, "endDate": jan10})
	assertStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/api/v1/rooms/"+env.room.ID.String()+"/quote", "",
		gin.H{"startDate": jan10})
	assertStatus(t, w, http.StatusBadRequest)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "invalid_range", resp.Error)
	assert.Contains(t, resp.Message, "startDate and endDate are required")
}

func TestDeleteBookingHandler_OwnerEnforced(t *testing.T) {
	env := setupTestEnv(t, envOptions{enforceOwner: true})

	w := env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody(jan10, jan13, false))
	intent := decode[models.PaymentIntentResponse](t, w)

	w = env.do(t, http.MethodDelete, "/api/v1/booking/"+intent.BookingID.String(), "guest-1", nil)
	assertStatus(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodDelete, "/api/v1/booking/"+intent.BookingID.String(), testOwnerID, nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, intent.BookingID, decode[models.Booking](t, w).ID)

	w = env.do(t, http.MethodDelete, "/api/v1/booking/"+intent.BookingID.String(), testOwnerID, nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestMyBookings_InternalErrorIsOpaque(t *testing.T) {
	env := setupTestEnv(t, envOptions{})
	env.bookings.Err = errors.New("pq: relation \"bookings\" does not exist")

	w := env.do(t, http.MethodGet, "/api/v1/my-bookings", "guest-1", nil)
	assertStatus(t, w, http.StatusInternalServerError)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())

	require.NotNil(t, env.hook.LastEntry())
	assert.Contains(t, env.hook.LastEntry().Data["error"], "does not exist")
}

func TestHotelBookingsHandler(t *testing.T) {
	env := setupTestEnv(t, envOptions{})
	env.do(t, http.MethodPost, "/api/v1/create-payment-intent", "guest-1", env.bookingBody("2099-01-10T00:00:00Z", "2099-01-12T00:00:00Z", false))

	w := env.do(t, http.MethodGet, "/api/v1/hotels/"+env.hotel.ID.String()+"/bookings", testOwnerID, nil)
	assertStatus(t, w, http.StatusOK)
	assert.Len(t, decode[[]models.Booking](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/v1/hotels/"+env.hotel.ID.String()+"/bookings", "guest-1", nil)
	assertStatus(t, w, http.StatusForbidden)
}
