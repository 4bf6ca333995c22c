package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// DraftService keeps the in-progress room selection of a user between the
// room page and checkout.
type DraftService struct {
	drafts          DraftStore
	rooms           RoomStore
	ttl             time.Duration
	defaultCurrency string
	logger          *logrus.Logger
	now             func() time.Time
}

// NewDraftService creates a new draft service
func NewDraftService(drafts DraftStore, rooms RoomStore, ttl time.Duration, defaultCurrency string, logger *logrus.Logger) *DraftService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &DraftService{
		drafts:          drafts,
		rooms:           rooms,
		ttl:             ttl,
		defaultCurrency: strings.ToLower(defaultCurrency),
		logger:          logger,
		now:             time.Now,
	}
}

// Create starts a new draft for the caller
func (s *DraftService) Create(ctx context.Context, caller *Caller, in *models.BookingDraftInput) (*models.BookingDraft, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	now := s.now()
	draft := &models.BookingDraft{
		Token:     uuid.NewString(),
		UserID:    caller.UserID,
		CreatedAt: now,
	}
	if err := s.apply(ctx, draft, in); err != nil {
		return nil, err
	}
	draft.ExpiresAt = now.Add(s.ttl)

	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save booking draft: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"draft_token": draft.Token,
		"user_id":     caller.UserID,
		"room_id":     draft.RoomID,
	}).Debug("Booking draft created")
	return draft, nil
}

// Get returns one of the caller's drafts
func (s *DraftService) Get(ctx context.Context, caller *Caller, token string) (*models.BookingDraft, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	draft, err := s.drafts.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking draft: %w", err)
	}
	if draft == nil || draft.IsExpired(s.now()) {
		return nil, models.ErrNotFound
	}
	if draft.UserID != caller.UserID {
		return nil, models.ErrForbidden
	}
	return draft, nil
}

// Replace swaps the selection of a draft and renews its lifetime. A changed
// room drops the stored payment intent; new dates reprice the same one.
func (s *DraftService) Replace(ctx context.Context, caller *Caller, token string, in *models.BookingDraftInput) (*models.BookingDraft, error) {
	draft, err := s.Get(ctx, caller, token)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, draft, in); err != nil {
		return nil, err
	}
	draft.ExpiresAt = s.now().Add(s.ttl)

	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save booking draft: %w", err)
	}
	return draft, nil
}

// Delete discards one of the caller's drafts
func (s *DraftService) Delete(ctx context.Context, caller *Caller, token string) error {
	if _, err := s.Get(ctx, caller, token); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete booking draft: %w", err)
	}
	return nil
}

// apply copies the selection into the draft and prices it when dates are set
func (s *DraftService) apply(ctx context.Context, draft *models.BookingDraft, in *models.BookingDraftInput) error {
	if in == nil {
		return models.NewValidationError("draft body is required")
	}
	if err := in.Validate(); err != nil {
		return err
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil || room.HotelID != in.HotelID {
		return models.ErrNotFound
	}

	// a different room starts a fresh booking; new dates update the same one
	if draft.RoomID != in.RoomID {
		draft.PaymentIntentID = ""
		draft.ClientSecret = ""
	}

	draft.HotelID = in.HotelID
	draft.RoomID = in.RoomID
	draft.StartDate = in.StartDate
	draft.EndDate = in.EndDate
	draft.BreakfastIncluded = in.BreakfastIncluded
	draft.Currency = strings.ToLower(in.Currency)
	if draft.Currency == "" {
		draft.Currency = s.defaultCurrency
	}

	draft.TotalPrice = 0
	if in.StartDate != nil {
		total, err := ComputeTotal(room.RoomPrice, room.BreakfastPrice, *in.StartDate, *in.EndDate, in.BreakfastIncluded)
		if err != nil {
			return err
		}
		draft.TotalPrice = total
	}
	return nil
}
