package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/metrics"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/events"
	"github.com/staynest/booking-backend/pkg/payments"
)

// Caller is the authenticated user behind a request
type Caller struct {
	UserID string
	Name   string
	Email  string
}

// BookingIntentConfig holds configuration for the intent manager
type BookingIntentConfig struct {
	DefaultCurrency    string        // used when the request names none
	StrictConfirmation bool          // reject overlapping stays up front instead of warning
	DraftTTL           time.Duration // lifetime of a draft written back after checkout
}

// BookingIntentService creates or refreshes the payment intent for a stay
// and keeps the provisional booking row in step with it.
type BookingIntentService struct {
	bookings  BookingStore
	rooms     RoomStore
	hotels    HotelStore
	drafts    DraftStore
	provider  payments.Provider
	calc      *AvailabilityCalculator
	publisher events.Publisher
	audit     *AuditService
	config    BookingIntentConfig
	logger    *logrus.Logger
}

// NewBookingIntentService creates a new intent service. drafts, publisher
// and audit may be nil.
func NewBookingIntentService(
	bookings BookingStore,
	rooms RoomStore,
	hotels HotelStore,
	drafts DraftStore,
	provider payments.Provider,
	calc *AvailabilityCalculator,
	publisher events.Publisher,
	audit *AuditService,
	config BookingIntentConfig,
	logger *logrus.Logger,
) *BookingIntentService {
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "usd"
	}
	if config.DraftTTL <= 0 {
		config.DraftTTL = 30 * time.Minute
	}
	return &BookingIntentService{
		bookings:  bookings,
		rooms:     rooms,
		hotels:    hotels,
		drafts:    drafts,
		provider:  provider,
		calc:      calc,
		publisher: publisher,
		audit:     audit,
		config:    config,
		logger:    logger,
	}
}

// CreateFromRequest handles a create-payment-intent body. A draft token, when
// given, supplies the intent to reuse and receives the resulting intent.
func (s *BookingIntentService) CreateFromRequest(
	ctx context.Context,
	caller *Caller,
	req *models.CreatePaymentIntentRequest,
) (*models.PaymentIntentResponse, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	if req == nil || req.Booking == nil {
		return nil, models.NewValidationError("booking is required")
	}

	existingID := strings.TrimSpace(req.PaymentIntentID)

	var draft *models.BookingDraft
	if req.DraftToken != "" {
		if s.drafts == nil {
			return nil, models.ErrNotFound
		}
		var err error
		draft, err = s.drafts.Get(ctx, req.DraftToken)
		if err != nil {
			return nil, fmt.Errorf("failed to load booking draft: %w", err)
		}
		if draft == nil {
			return nil, models.ErrNotFound
		}
		if draft.UserID != caller.UserID {
			return nil, models.ErrForbidden
		}
		if existingID == "" {
			existingID = draft.PaymentIntentID
		}
	}

	resp, err := s.CreateOrUpdateIntent(ctx, caller, req.Booking, existingID)
	if err != nil {
		return nil, err
	}

	if draft != nil {
		s.writeBackDraft(ctx, draft, req.Booking, resp)
	}
	return resp, nil
}

// CreateOrUpdateIntent prices the stay on the server, then either updates the
// caller's booking that already holds existingPaymentIntentID or creates a new
// intent and provisional booking. No local row is touched when the provider fails.
func (s *BookingIntentService) CreateOrUpdateIntent(
	ctx context.Context,
	caller *Caller,
	req *models.BookingRequest,
	existingPaymentIntentID string,
) (*models.PaymentIntentResponse, error) {
	// 1. Authentication and request shape
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	if req == nil {
		return nil, models.NewValidationError("booking is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Room must exist and belong to the hotel
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil || room.HotelID != req.HotelID {
		return nil, models.ErrNotFound
	}
	hotel, err := s.hotels.GetByID(ctx, room.HotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	if hotel == nil {
		return nil, models.ErrNotFound
	}

	// 3. Server-side price
	total, err := ComputeTotal(room.RoomPrice, room.BreakfastPrice, *req.StartDate, *req.EndDate, req.BreakfastIncluded)
	if err != nil {
		return nil, err
	}
	if req.TotalPrice != nil && !PricesMatch(*req.TotalPrice, total) {
		err := fmt.Errorf("%w: client sent %.2f, expected %.2f", models.ErrPriceMismatch, *req.TotalPrice, total)
		s.audit.LogIntentFailed(ctx, caller.UserID, existingPaymentIntentID, err)
		return nil, err
	}

	// 4. Look up the booking being updated, if any
	var existing *models.Booking
	if existingPaymentIntentID != "" {
		existing, err = s.bookings.GetByPaymentIntentID(ctx, existingPaymentIntentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load booking: %w", err)
		}
		if existing != nil && existing.UserID != caller.UserID {
			existing = nil
		}
		if existing != nil && existing.PaymentStatus {
			return nil, models.NewValidationError("booking %s is already paid", existing.ID)
		}
	}

	candidate := &models.Booking{
		ID:                uuid.New(),
		HotelID:           hotel.ID,
		RoomID:            room.ID,
		HotelOwnerID:      hotel.OwnerID,
		UserID:            caller.UserID,
		UserName:          caller.Name,
		UserEmail:         caller.Email,
		StartDate:         StartOfDay(*req.StartDate),
		EndDate:           StartOfDay(*req.EndDate),
		BreakfastIncluded: req.BreakfastIncluded,
		TotalPrice:        total,
		Currency:          s.currency(req.Currency),
	}
	if existing != nil {
		candidate.ID = existing.ID
		candidate.PaymentIntentID = existing.PaymentIntentID
		candidate.BookedAt = existing.BookedAt
	}

	// 5. Availability against a fresh snapshot
	overlap, err := s.overlapsConfirmed(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if overlap && s.config.StrictConfirmation {
		s.audit.LogIntentFailed(ctx, caller.UserID, existingPaymentIntentID, models.ErrOverlap)
		return nil, models.ErrOverlap
	}
	if overlap {
		metrics.IncOverlapWarning()
		s.logger.WithFields(logrus.Fields{
			"room_id":    candidate.RoomID,
			"start_date": candidate.StartDate,
			"end_date":   candidate.EndDate,
			"user_id":    caller.UserID,
		}).Warn("Payment intent requested for dates overlapping a confirmed booking")
	}

	// 6. Provider first, then the local row
	var intent *payments.Intent
	if existing != nil {
		intent, err = s.updateIntent(ctx, candidate)
	} else {
		intent, err = s.createIntent(ctx, candidate)
	}
	if err != nil {
		s.audit.LogIntentFailed(ctx, caller.UserID, existingPaymentIntentID, err)
		return nil, err
	}

	updated := existing != nil
	path := "created"
	if updated {
		path = "updated"
	}
	metrics.IncIntent(path)
	s.audit.LogIntent(ctx, candidate, updated, overlap)
	if !updated {
		publishBookingEvent(ctx, s.publisher, s.logger, events.TypeIntentCreated, candidate)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":        candidate.ID,
		"payment_intent_id": intent.ID,
		"user_id":           caller.UserID,
		"total_price":       candidate.TotalPrice,
		"path":              path,
	}).Info("Payment intent ready")

	return &models.PaymentIntentResponse{
		PaymentIntent: models.PaymentIntentView{
			ID:           intent.ID,
			ClientSecret: intent.ClientSecret,
			Amount:       intent.Amount,
			Currency:     intent.Currency,
		},
		BookingID:      candidate.ID,
		TotalPrice:     candidate.TotalPrice,
		OverlapWarning: overlap,
	}, nil
}

func (s *BookingIntentService) createIntent(ctx context.Context, candidate *models.Booking) (*payments.Intent, error) {
	intent, err := s.provider.CreateIntent(ctx, payments.CreateIntentParams{
		Amount:         ToMinorUnits(candidate.TotalPrice, candidate.Currency),
		Currency:       candidate.Currency,
		IdempotencyKey: "booking-" + candidate.ID.String(),
		Metadata:       intentMetadata(candidate),
	})
	if err != nil {
		metrics.IncProviderError("create")
		return nil, &models.PaymentProviderError{Op: "create", Err: err}
	}

	candidate.PaymentIntentID = intent.ID
	if err := s.bookings.Create(ctx, candidate); err != nil {
		s.logger.WithFields(logrus.Fields{
			"payment_intent_id": intent.ID,
			"error":             err.Error(),
		}).Error("Payment intent created but booking row was not stored")
		return nil, fmt.Errorf("failed to store booking: %w", err)
	}
	return intent, nil
}

func (s *BookingIntentService) updateIntent(ctx context.Context, candidate *models.Booking) (*payments.Intent, error) {
	current, err := s.provider.RetrieveIntent(ctx, candidate.PaymentIntentID)
	if err != nil {
		metrics.IncProviderError("retrieve")
		return nil, &models.PaymentProviderError{Op: "retrieve", Err: err}
	}
	// the intent's currency is fixed once created
	if current.Currency != "" {
		candidate.Currency = current.Currency
	}

	intent, err := s.provider.UpdateIntentAmount(ctx, current.ID,
		ToMinorUnits(candidate.TotalPrice, candidate.Currency), intentMetadata(candidate))
	if err != nil {
		metrics.IncProviderError("update")
		return nil, &models.PaymentProviderError{Op: "update", Err: err}
	}

	if err := s.bookings.UpdateIntentFields(ctx, candidate); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewValidationError("booking %s can no longer be changed", candidate.ID)
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return intent, nil
}

func (s *BookingIntentService) overlapsConfirmed(ctx context.Context, candidate *models.Booking) (bool, error) {
	confirmed, err := s.bookings.ListConfirmedByRoom(ctx, candidate.RoomID, StartOfDay(candidate.StartDate).Add(-day))
	if err != nil {
		return false, fmt.Errorf("failed to load confirmed bookings: %w", err)
	}
	return s.calc.FindConflict(candidate, confirmed) != nil, nil
}

func (s *BookingIntentService) currency(requested string) string {
	c := strings.ToLower(strings.TrimSpace(requested))
	if c == "" {
		return strings.ToLower(s.config.DefaultCurrency)
	}
	return c
}

func (s *BookingIntentService) writeBackDraft(ctx context.Context, draft *models.BookingDraft, req *models.BookingRequest, resp *models.PaymentIntentResponse) {
	draft.HotelID = req.HotelID
	draft.RoomID = req.RoomID
	draft.StartDate = req.StartDate
	draft.EndDate = req.EndDate
	draft.BreakfastIncluded = req.BreakfastIncluded
	draft.TotalPrice = resp.TotalPrice
	draft.Currency = resp.PaymentIntent.Currency
	draft.PaymentIntentID = resp.PaymentIntent.ID
	draft.ClientSecret = resp.PaymentIntent.ClientSecret

	ttl := time.Until(draft.ExpiresAt)
	if ttl <= 0 {
		ttl = s.config.DraftTTL
		draft.ExpiresAt = time.Now().Add(ttl)
	}

	if err := s.drafts.Save(ctx, draft, ttl); err != nil {
		s.logger.WithFields(logrus.Fields{
			"draft_token": draft.Token,
			"error":       err.Error(),
		}).Warn("Failed to write payment intent back to booking draft")
	}
}

func intentMetadata(b *models.Booking) map[string]string {
	return map[string]string{
		"booking_id": b.ID.String(),
		"hotel_id":   b.HotelID.String(),
		"room_id":    b.RoomID.String(),
		"user_id":    b.UserID,
	}
}
