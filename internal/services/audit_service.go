package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/utils"
)

// RequestMeta is the client information attached to audit entries
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta stores client information on the context for audit entries
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// AuditService records booking lifecycle events. Failures are logged and
// never fail the operation being audited.
type AuditService struct {
	store  AuditLogger
	logger *logrus.Logger
}

// NewAuditService creates a new audit service. store may be nil.
func NewAuditService(store AuditLogger, logger *logrus.Logger) *AuditService {
	return &AuditService{
		store:  store,
		logger: logger,
	}
}

// LogIntent records a created or updated payment intent
func (s *AuditService) LogIntent(ctx context.Context, booking *models.Booking, updated, overlapWarning bool) {
	action := models.AuditIntentCreated
	if updated {
		action = models.AuditIntentUpdated
	}

	s.record(ctx, models.NewBookingAudit(action).
		ForBooking(booking).
		ByUser(booking.UserID).
		WithDetail("total_price", booking.TotalPrice).
		WithDetail("currency", booking.Currency).
		WithDetail("start_date", booking.StartDate).
		WithDetail("end_date", booking.EndDate).
		WithDetail("overlap_warning", overlapWarning))
}

// LogIntentFailed records a create-payment-intent call that was refused
func (s *AuditService) LogIntentFailed(ctx context.Context, userID, paymentIntentID string, reason error) {
	audit := models.NewBookingAudit(models.AuditIntentFailed).
		ByUser(userID).
		WithDetail("reason", reason.Error())
	if paymentIntentID != "" {
		audit.PaymentIntentID = &paymentIntentID
	}
	s.record(ctx, audit)
}

// LogConfirmed records a booking flipping to paid
func (s *AuditService) LogConfirmed(ctx context.Context, booking *models.Booking, mode string) {
	s.record(ctx, models.NewBookingAudit(models.AuditBookingConfirmed).
		ForBooking(booking).
		ByUser(booking.UserID).
		WithDetail("confirmation_mode", mode))
}

// LogConfirmRejected records a confirmation that did not mark the booking paid
func (s *AuditService) LogConfirmRejected(ctx context.Context, paymentIntentID string, reason error) {
	audit := models.NewBookingAudit(models.AuditBookingConfirmRejected).
		WithDetail("reason", reason.Error())
	if paymentIntentID != "" {
		audit.PaymentIntentID = &paymentIntentID
	}
	s.record(ctx, audit)
}

// LogDeleted records a deleted booking
func (s *AuditService) LogDeleted(ctx context.Context, booking *models.Booking, deletedBy string) {
	s.record(ctx, models.NewBookingAudit(models.AuditBookingDeleted).
		ForBooking(booking).
		ByUser(deletedBy).
		WithDetail("was_paid", booking.PaymentStatus))
}

// LogWebhook records a received provider webhook
func (s *AuditService) LogWebhook(ctx context.Context, eventID, eventType, paymentIntentID string) {
	audit := models.NewBookingAudit(models.AuditWebhookReceived).
		WithDetail("event_id", eventID).
		WithDetail("event_type", eventType)
	if paymentIntentID != "" {
		audit.PaymentIntentID = &paymentIntentID
	}
	s.record(ctx, audit)
}

func (s *AuditService) record(ctx context.Context, audit *models.BookingAudit) {
	if s == nil || s.store == nil {
		return
	}

	meta := requestMetaFrom(ctx)
	audit.SetMetadata(meta.IPAddress, meta.UserAgent)
	if meta.UserAgent != "" {
		audit.WithDetail("device_info", utils.ParseUserAgent(meta.UserAgent).Map())
	}

	if err := s.store.Log(ctx, audit); err != nil {
		s.logger.WithFields(logrus.Fields{
			"action": audit.Action,
			"error":  err.Error(),
		}).Warn("AUDIT ERROR: failed to record booking audit")
	}
}
