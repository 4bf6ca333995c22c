package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAuditStore struct{}

func (failingAuditStore) Log(context.Context, *models.BookingAudit) error {
	return errors.New("insert failed")
}

func TestAuditService_RecordsRequestMeta(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	rec := &testutil.AuditRecorder{}
	svc := NewAuditService(rec, logger)

	ctx := WithRequestMeta(context.Background(), RequestMeta{
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	})
	booking := &models.Booking{ID: uuid.New(), UserID: "guest-1", PaymentIntentID: "pi_1", TotalPrice: 300}

	svc.LogIntent(ctx, booking, false, true)

	require.Len(t, rec.Entries, 1)
	entry := rec.Entries[0]
	assert.Equal(t, models.AuditIntentCreated, entry.Action)
	require.NotNil(t, entry.BookingID)
	assert.Equal(t, booking.ID, *entry.BookingID)
	require.NotNil(t, entry.PaymentIntentID)
	assert.Equal(t, "pi_1", *entry.PaymentIntentID)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "203.0.113.7", *entry.IPAddress)
	assert.Equal(t, true, entry.Details["overlap_warning"])
	assert.Contains(t, entry.Details, "device_info")
}

func TestAuditService_Actions(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	rec := &testutil.AuditRecorder{}
	svc := NewAuditService(rec, logger)
	ctx := context.Background()
	booking := &models.Booking{ID: uuid.New(), UserID: "guest-1", PaymentIntentID: "pi_1"}

	svc.LogIntent(ctx, booking, true, false)
	svc.LogIntentFailed(ctx, "guest-1", "", models.ErrOverlap)
	svc.LogConfirmed(ctx, booking, "serialized")
	svc.LogConfirmRejected(ctx, "pi_2", models.ErrNotFound)
	svc.LogDeleted(ctx, booking, "owner-1")
	svc.LogWebhook(ctx, "evt_1", "payment_intent.succeeded", "pi_1")

	assert.Equal(t, []models.BookingAuditAction{
		models.AuditIntentUpdated,
		models.AuditIntentFailed,
		models.AuditBookingConfirmed,
		models.AuditBookingConfirmRejected,
		models.AuditBookingDeleted,
		models.AuditWebhookReceived,
	}, rec.Actions())

	failed := rec.Entries[1]
	assert.Nil(t, failed.PaymentIntentID)
	assert.Nil(t, failed.IPAddress)
	assert.Equal(t, models.ErrOverlap.Error(), failed.Details["reason"])

	deleted := rec.Entries[4]
	require.NotNil(t, deleted.UserID)
	assert.Equal(t, "owner-1", *deleted.UserID)
}

func TestAuditService_StoreFailureIsLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	svc := NewAuditService(failingAuditStore{}, logger)

	svc.LogConfirmRejected(context.Background(), "pi_1", models.ErrNotFound)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "insert failed", hook.LastEntry().Data["error"])
}

func TestAuditService_NilIsNoop(t *testing.T) {
	var svc *AuditService
	assert.NotPanics(t, func() {
		svc.LogWebhook(context.Background(), "evt_1", "payment_intent.succeeded", "pi_1")
	})

	logger, _ := logtest.NewNullLogger()
	assert.NotPanics(t, func() {
		NewAuditService(nil, logger).LogConfirmed(context.Background(), &models.Booking{}, "legacy")
	})
}
