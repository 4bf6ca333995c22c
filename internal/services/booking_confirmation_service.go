package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/metrics"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/events"
	"github.com/staynest/booking-backend/pkg/payments"
)

// BookingConfirmationConfig holds configuration for payment confirmation
type BookingConfirmationConfig struct {
	// Mode is config.ConfirmationModeLegacy or config.ConfirmationModeSerialized
	Mode string
	// VerifyWithProvider requires the remote intent to have succeeded
	VerifyWithProvider bool
}

// BookingConfirmationService flips a provisional booking to paid once its
// payment intent went through.
type BookingConfirmationService struct {
	bookings  BookingStore
	provider  payments.Provider
	calc      *AvailabilityCalculator
	publisher events.Publisher
	audit     *AuditService
	config    BookingConfirmationConfig
	logger    *logrus.Logger
}

// NewBookingConfirmationService creates a new confirmation service
func NewBookingConfirmationService(
	bookings BookingStore,
	provider payments.Provider,
	calc *AvailabilityCalculator,
	publisher events.Publisher,
	audit *AuditService,
	cfg BookingConfirmationConfig,
	logger *logrus.Logger,
) *BookingConfirmationService {
	if cfg.Mode != config.ConfirmationModeSerialized {
		cfg.Mode = config.ConfirmationModeLegacy
	}
	return &BookingConfirmationService{
		bookings:  bookings,
		provider:  provider,
		calc:      calc,
		publisher: publisher,
		audit:     audit,
		config:    cfg,
		logger:    logger,
	}
}

// ConfirmByReference confirms by payment intent id, falling back to the
// booking id when no booking holds an intent with that id.
func (s *BookingConfirmationService) ConfirmByReference(ctx context.Context, ref string) (*models.Booking, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, models.NewValidationError("payment intent id is required")
	}

	booking, err := s.bookings.GetByPaymentIntentID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking != nil {
		return s.ConfirmPayment(ctx, booking.PaymentIntentID)
	}

	id, parseErr := uuid.Parse(ref)
	if parseErr != nil {
		s.rejected(ctx, ref, metrics.ConfirmNotFound, models.ErrNotFound)
		return nil, models.ErrNotFound
	}
	booking, err = s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if booking == nil || booking.PaymentIntentID == "" {
		s.rejected(ctx, ref, metrics.ConfirmNotFound, models.ErrNotFound)
		return nil, models.ErrNotFound
	}
	return s.ConfirmPayment(ctx, booking.PaymentIntentID)
}

// ConfirmPayment marks the booking holding paymentIntentID as paid.
// Confirming an already paid booking succeeds without changes.
func (s *BookingConfirmationService) ConfirmPayment(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	if paymentIntentID == "" {
		return nil, models.NewValidationError("payment intent id is required")
	}

	// 1. Booking must exist
	current, err := s.bookings.GetByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		metrics.IncConfirmation(metrics.ConfirmError)
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if current == nil {
		s.rejected(ctx, paymentIntentID, metrics.ConfirmNotFound, models.ErrNotFound)
		return nil, models.ErrNotFound
	}

	// 2. Re-confirming is a no-op
	if current.PaymentStatus {
		metrics.IncConfirmation(metrics.ConfirmAlreadyPaid)
		return current, nil
	}

	// 3. Optionally ask the provider whether the money arrived
	if s.config.VerifyWithProvider {
		if err := s.verify(ctx, paymentIntentID); err != nil {
			s.rejected(ctx, paymentIntentID, metrics.ConfirmUnverified, err)
			return nil, err
		}
	}

	// 4. Flip the flag
	var booking *models.Booking
	if s.config.Mode == config.ConfirmationModeSerialized {
		booking, err = s.bookings.MarkPaidSerialized(ctx, paymentIntentID, s.calc.Guard())
	} else {
		booking, err = s.bookings.MarkPaid(ctx, paymentIntentID)
	}
	if err != nil {
		if errors.Is(err, models.ErrOverlap) {
			s.rejected(ctx, paymentIntentID, metrics.ConfirmOverlap, models.ErrOverlap)
			return nil, models.ErrOverlap
		}
		metrics.IncConfirmation(metrics.ConfirmError)
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	if booking == nil {
		// deleted between the lookup and the update
		s.rejected(ctx, paymentIntentID, metrics.ConfirmNotFound, models.ErrNotFound)
		return nil, models.ErrNotFound
	}

	metrics.IncConfirmation(metrics.ConfirmPaid)
	s.audit.LogConfirmed(ctx, booking, s.config.Mode)
	publishBookingEvent(ctx, s.publisher, s.logger, events.TypeBookingConfirmed, booking)

	s.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"payment_intent_id": paymentIntentID,
		"room_id":           booking.RoomID,
		"mode":              s.config.Mode,
	}).Info("Booking confirmed")

	return booking, nil
}

func (s *BookingConfirmationService) verify(ctx context.Context, paymentIntentID string) error {
	intent, err := s.provider.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		metrics.IncProviderError("retrieve")
		return &models.PaymentProviderError{Op: "retrieve", Err: err}
	}
	if !intent.Succeeded() {
		return &models.PaymentProviderError{
			Op:  "verify",
			Err: fmt.Errorf("payment intent %s has status %s", intent.ID, intent.Status),
		}
	}
	return nil
}

func (s *BookingConfirmationService) rejected(ctx context.Context, paymentIntentID, result string, reason error) {
	metrics.IncConfirmation(result)
	s.audit.LogConfirmRejected(ctx, paymentIntentID, reason)
	s.logger.WithFields(logrus.Fields{
		"payment_intent_id": paymentIntentID,
		"result":            result,
	}).Warn("Booking confirmation rejected")
}
