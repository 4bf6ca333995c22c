package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/events"
)

// BookingService serves booking reads, availability, quotes and deletion
type BookingService struct {
	bookings           BookingStore
	rooms              RoomStore
	hotels             HotelStore
	calc               *AvailabilityCalculator
	publisher          events.Publisher
	audit              *AuditService
	enforceOwnerDelete bool
	defaultCurrency    string
	logger             *logrus.Logger
	now                func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings BookingStore,
	rooms RoomStore,
	hotels HotelStore,
	calc *AvailabilityCalculator,
	publisher events.Publisher,
	audit *AuditService,
	enforceOwnerDelete bool,
	defaultCurrency string,
	logger *logrus.Logger,
) *BookingService {
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &BookingService{
		bookings:           bookings,
		rooms:              rooms,
		hotels:             hotels,
		calc:               calc,
		publisher:          publisher,
		audit:              audit,
		enforceOwnerDelete: enforceOwnerDelete,
		defaultCurrency:    strings.ToLower(defaultCurrency),
		logger:             logger,
		now:                time.Now,
	}
}

// DeleteBooking removes a booking in any state and returns it. When owner
// enforcement is on only the hotel owner may delete.
func (s *BookingService) DeleteBooking(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Booking, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	if s.enforceOwnerDelete {
		booking, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load booking: %w", err)
		}
		if booking == nil {
			return nil, models.ErrNotFound
		}
		if booking.HotelOwnerID != caller.UserID {
			return nil, models.ErrForbidden
		}
	}

	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	if deleted == nil {
		return nil, models.ErrNotFound
	}

	s.audit.LogDeleted(ctx, deleted, caller.UserID)
	publishBookingEvent(ctx, s.publisher, s.logger, events.TypeBookingDeleted, deleted)

	s.logger.WithFields(logrus.Fields{
		"booking_id": deleted.ID,
		"deleted_by": caller.UserID,
		"was_paid":   deleted.PaymentStatus,
	}).Info("Booking deleted")

	return deleted, nil
}

// ListRoomBookings returns the confirmed bookings of a room that end after
// this time yesterday, the input of the client-side date picker.
func (s *BookingService) ListRoomBookings(ctx context.Context, caller *Caller, roomID uuid.UUID) ([]models.Booking, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	bookings, err := s.bookings.ListConfirmedByRoom(ctx, roomID, s.yesterday())
	if err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	return bookings, nil
}

// UnavailableDates lists the days of a room blocked by confirmed bookings
func (s *BookingService) UnavailableDates(ctx context.Context, roomID uuid.UUID) ([]time.Time, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, models.ErrNotFound
	}

	bookings, err := s.bookings.ListConfirmedByRoom(ctx, roomID, s.yesterday())
	if err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	return s.calc.UnavailableDates(roomID, bookings), nil
}

// QuoteRequest is the body of a price quote
type QuoteRequest struct {
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	BreakfastIncluded bool       `json:"breakFastIncluded"`
	Currency          string     `json:"currency"`
}

// Quote prices a stay in a room without creating anything
func (s *BookingService) Quote(ctx context.Context, roomID uuid.UUID, req *QuoteRequest) (*PriceBreakdown, error) {
	if req == nil || req.StartDate == nil || req.EndDate == nil {
		return nil, fmt.Errorf("%w: startDate and endDate are required", models.ErrInvalidRange)
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return nil, models.ErrNotFound
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	return QuotePrice(room, *req.StartDate, *req.EndDate, req.BreakfastIncluded, currency)
}

// MyBookings returns the caller's bookings, newest first
func (s *BookingService) MyBookings(ctx context.Context, caller *Caller) ([]models.Booking, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	bookings, err := s.bookings.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// HotelBookings returns the current bookings of a hotel to its owner
func (s *BookingService) HotelBookings(ctx context.Context, caller *Caller, hotelID uuid.UUID) ([]models.Booking, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	hotel, err := s.hotels.GetByID(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	if hotel == nil {
		return nil, models.ErrNotFound
	}
	if hotel.OwnerID != caller.UserID {
		return nil, models.ErrForbidden
	}

	bookings, err := s.bookings.ListByHotel(ctx, hotelID, s.yesterday())
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) yesterday() time.Time {
	return s.now().UTC().Add(-day)
}
