package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrUpdateIntent_CreatePath(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()

	resp, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(10), dayN(13), true), "")
	require.NoError(t, err)

	assert.Equal(t, 540.0, resp.TotalPrice)
	assert.Equal(t, int64(54000), resp.PaymentIntent.Amount)
	assert.Equal(t, "usd", resp.PaymentIntent.Currency)
	assert.NotEmpty(t, resp.PaymentIntent.ClientSecret)
	assert.False(t, resp.OverlapWarning)

	stored := f.bookings.All()
	require.Len(t, stored, 1)
	b := stored[0]
	assert.Equal(t, resp.BookingID, b.ID)
	assert.Equal(t, resp.PaymentIntent.ID, b.PaymentIntentID)
	assert.Equal(t, ownerID, b.HotelOwnerID)
	assert.Equal(t, guest.UserID, b.UserID)
	assert.Equal(t, guest.Email, b.UserEmail)
	assert.False(t, b.PaymentStatus)
	assert.True(t, b.BreakfastIncluded)

	assert.Equal(t, []string{events.TypeIntentCreated}, f.publisher.Types())
	assert.Equal(t, []models.BookingAuditAction{models.AuditIntentCreated}, f.audits.Actions())
}

func TestCreateOrUpdateIntent_RejectsBeforeRemoteCall(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()
	wrongHotel := f.stay(dayN(10), dayN(13), false)
	wrongHotel.HotelID = wrongHotel.RoomID

	tests := []struct {
		name    string
		caller  *Caller
		req     *models.BookingRequest
		wantErr error
	}{
		{"unauthenticated", nil, f.stay(dayN(10), dayN(13), false), models.ErrUnauthorized},
		{"empty user id", &Caller{}, f.stay(dayN(10), dayN(13), false), models.ErrUnauthorized},
		{"end equals start", guest, f.stay(dayN(10), dayN(10), false), models.ErrInvalidRange},
		{"end before start", guest, f.stay(dayN(13), dayN(10), false), models.ErrInvalidRange},
		{"room of another hotel", guest, wrongHotel, models.ErrNotFound},
		{"missing dates", guest, &models.BookingRequest{HotelID: f.hotel.ID, RoomID: f.room.ID}, models.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrUpdateIntent(ctx, tt.caller, tt.req, "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.bookings.All())
			assert.Zero(t, f.provider.Count())
		})
	}
}

func TestCreateOrUpdateIntent_StoresCalendarDays(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	zone := time.FixedZone("UTC+2", 2*60*60)

	req := f.stay(time.Date(2025, 1, 10, 15, 30, 0, 0, zone), time.Date(2025, 1, 12, 9, 0, 0, 0, zone), false)
	resp, err := svc.CreateOrUpdateIntent(context.Background(), guest, req, "")
	require.NoError(t, err)
	assert.Equal(t, 300.0, resp.TotalPrice)

	stored, err := f.bookings.GetByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, dayN(10), stored.StartDate)
	assert.Equal(t, dayN(12), stored.EndDate)
}

func TestCreateOrUpdateIntent_PriceMismatch(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	req := f.stay(dayN(10), dayN(13), true)

	req.TotalPrice = floatPtr(1)
	_, err := svc.CreateOrUpdateIntent(context.Background(), guest, req, "")
	assert.ErrorIs(t, err, models.ErrPriceMismatch)
	assert.Empty(t, f.bookings.All())
	assert.Zero(t, f.provider.Count())

	req.TotalPrice = floatPtr(540)
	_, err = svc.CreateOrUpdateIntent(context.Background(), guest, req, "")
	assert.NoError(t, err)
}

func TestCreateOrUpdateIntent_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	f.provider.FailNext = errors.New("card network down")

	_, err := svc.CreateOrUpdateIntent(context.Background(), guest, f.stay(dayN(10), dayN(13), false), "")

	var providerErr *models.PaymentProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "create", providerErr.Op)
	assert.Empty(t, f.bookings.All())
	assert.Empty(t, f.publisher.Events)
	assert.Equal(t, []models.BookingAuditAction{models.AuditIntentFailed}, f.audits.Actions())
}

func TestCreateOrUpdateIntent_UpdateKeepsSameBooking(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()

	first, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(10), dayN(13), true), "")
	require.NoError(t, err)

	second, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(10), dayN(12), false), first.PaymentIntent.ID)
	require.NoError(t, err)

	assert.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, first.PaymentIntent.ID, second.PaymentIntent.ID)
	assert.Equal(t, first.PaymentIntent.ClientSecret, second.PaymentIntent.ClientSecret)
	assert.Equal(t, 300.0, second.TotalPrice)
	assert.Equal(t, int64(30000), second.PaymentIntent.Amount)
	assert.Equal(t, 1, f.bookings.CountByPaymentIntentID(first.PaymentIntent.ID))
	assert.Equal(t, 1, f.provider.Count())

	stored, err := f.bookings.GetByID(ctx, first.BookingID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.TotalPrice)
	assert.True(t, stored.EndDate.Equal(dayN(12)))
	assert.False(t, stored.BreakfastIncluded)

	// only the create publishes
	assert.Equal(t, []string{events.TypeIntentCreated}, f.publisher.Types())
	assert.Equal(t, []models.BookingAuditAction{models.AuditIntentCreated, models.AuditIntentUpdated}, f.audits.Actions())
}

func TestCreateOrUpdateIntent_ForeignIntentCreatesNew(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()

	theirs, err := svc.CreateOrUpdateIntent(ctx, otherGuest, f.stay(dayN(10), dayN(13), false), "")
	require.NoError(t, err)

	mine, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(20), dayN(22), false), theirs.PaymentIntent.ID)
	require.NoError(t, err)

	assert.NotEqual(t, theirs.BookingID, mine.BookingID)
	assert.NotEqual(t, theirs.PaymentIntent.ID, mine.PaymentIntent.ID)
	assert.Len(t, f.bookings.All(), 2)
}

func TestCreateOrUpdateIntent_PaidBookingIsNotChanged(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()

	resp, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(10), dayN(13), false), "")
	require.NoError(t, err)
	_, err = f.legacyConfirmation().ConfirmPayment(ctx, resp.PaymentIntent.ID)
	require.NoError(t, err)

	_, err = svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(1), dayN(2), false), resp.PaymentIntent.ID)
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, _ := f.bookings.GetByID(ctx, resp.BookingID)
	assert.Equal(t, 450.0, stored.TotalPrice)
}

func TestCreateOrUpdateIntent_UpdateProviderFailureLeavesRow(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()

	resp, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(10), dayN(13), false), "")
	require.NoError(t, err)

	f.provider.FailNext = errors.New("timeout")
	_, err = svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(10), dayN(11), false), resp.PaymentIntent.ID)

	var providerErr *models.PaymentProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "retrieve", providerErr.Op)

	stored, _ := f.bookings.GetByID(ctx, resp.BookingID)
	assert.Equal(t, 450.0, stored.TotalPrice)
}

func TestCreateOrUpdateIntent_OverlapWarningInLegacyMode(t *testing.T) {
	f := newFixture(t)
	f.seedConfirmed(dayN(11), dayN(12))
	svc := f.intentService(false)

	resp, err := svc.CreateOrUpdateIntent(context.Background(), guest, f.stay(dayN(10), dayN(13), false), "")
	require.NoError(t, err)

	assert.True(t, resp.OverlapWarning)
	assert.Len(t, f.bookings.All(), 2)
}

func TestCreateOrUpdateIntent_OverlapRejectedInStrictMode(t *testing.T) {
	f := newFixture(t)
	f.seedConfirmed(dayN(11), dayN(12))
	svc := f.intentService(true)

	_, err := svc.CreateOrUpdateIntent(context.Background(), guest, f.stay(dayN(10), dayN(13), false), "")
	assert.ErrorIs(t, err, models.ErrOverlap)
	assert.Len(t, f.bookings.All(), 1)
	assert.Zero(t, f.provider.Count())
}

func TestCreateOrUpdateIntent_UnpaidBookingsDoNotWarn(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	ctx := context.Background()

	_, err := svc.CreateOrUpdateIntent(ctx, otherGuest, f.stay(dayN(10), dayN(13), false), "")
	require.NoError(t, err)

	resp, err := svc.CreateOrUpdateIntent(ctx, guest, f.stay(dayN(11), dayN(12), false), "")
	require.NoError(t, err)
	assert.False(t, resp.OverlapWarning)
}

func TestCreateFromRequest_WithDraft(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	drafts := NewDraftService(f.drafts, f.rooms, 30*time.Minute, "usd", f.logger)
	ctx := context.Background()

	start, end := dayN(10), dayN(13)
	draft, err := drafts.Create(ctx, guest, &models.BookingDraftInput{
		HotelID: f.hotel.ID, RoomID: f.room.ID, StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)

	req := &models.CreatePaymentIntentRequest{Booking: f.stay(start, end, false), DraftToken: draft.Token}
	first, err := svc.CreateFromRequest(ctx, guest, req)
	require.NoError(t, err)

	saved, err := drafts.Get(ctx, guest, draft.Token)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentIntent.ID, saved.PaymentIntentID)
	assert.Equal(t, first.PaymentIntent.ClientSecret, saved.ClientSecret)

	// the draft's intent is reused on the next checkout attempt
	req.Booking = f.stay(start, dayN(12), true)
	second, err := svc.CreateFromRequest(ctx, guest, req)
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, 360.0, second.TotalPrice)
	assert.Len(t, f.bookings.All(), 1)

	_, err = svc.CreateFromRequest(ctx, otherGuest, req)
	assert.ErrorIs(t, err, models.ErrForbidden)

	req.DraftToken = "missing"
	_, err = svc.CreateFromRequest(ctx, guest, req)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateFromRequest_DraftDateChangeReusesBooking(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)
	drafts := NewDraftService(f.drafts, f.rooms, 30*time.Minute, "usd", f.logger)
	ctx := context.Background()

	start, end := dayN(10), dayN(13)
	draft, err := drafts.Create(ctx, guest, f.draftInput(&start, &end, false))
	require.NoError(t, err)

	first, err := svc.CreateFromRequest(ctx, guest, &models.CreatePaymentIntentRequest{
		Booking: f.stay(start, end, false), DraftToken: draft.Token,
	})
	require.NoError(t, err)

	shorter := dayN(12)
	_, err = drafts.Replace(ctx, guest, draft.Token, f.draftInput(&start, &shorter, false))
	require.NoError(t, err)

	second, err := svc.CreateFromRequest(ctx, guest, &models.CreatePaymentIntentRequest{
		Booking: f.stay(start, shorter, false), DraftToken: draft.Token,
	})
	require.NoError(t, err)

	require.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, first.PaymentIntent.ID, second.PaymentIntent.ID)
	assert.Equal(t, 300.0, second.TotalPrice)
	assert.Equal(t, 1, f.bookings.CountByPaymentIntentID(first.PaymentIntent.ID))
	assert.Len(t, f.bookings.All(), 1)
	assert.Equal(t, 1, f.provider.Count())
}

func TestCreateFromRequest_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	svc := f.intentService(false)

	_, err := svc.CreateFromRequest(context.Background(), nil, &models.CreatePaymentIntentRequest{
		Booking: f.stay(dayN(10), dayN(13), false),
	})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Empty(t, f.bookings.All())
}
