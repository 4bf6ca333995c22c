package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/models"
)

// Stores return (nil, nil) when a lookup finds nothing; services turn that
// into models.ErrNotFound.

// BookingStore persists bookings
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error)
	UpdateIntentFields(ctx context.Context, booking *models.Booking) error
	MarkPaid(ctx context.Context, paymentIntentID string) (*models.Booking, error)
	MarkPaidSerialized(ctx context.Context, paymentIntentID string, guard models.ConfirmGuard) (*models.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListConfirmedByRoom(ctx context.Context, roomID uuid.UUID, endAfter time.Time) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByHotel(ctx context.Context, hotelID uuid.UUID, endAfter time.Time) ([]models.Booking, error)
}

// RoomStore persists rooms
type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Room, error)
}

// HotelStore persists hotels. Reads include the hotel's rooms.
type HotelStore interface {
	Create(ctx context.Context, hotel *models.Hotel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	Update(ctx context.Context, hotel *models.Hotel) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.HotelFilter) ([]models.Hotel, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Hotel, error)
}

// DraftStore keeps short-lived booking drafts
type DraftStore interface {
	Save(ctx context.Context, draft *models.BookingDraft, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.BookingDraft, error)
	Delete(ctx context.Context, token string) error
}

// AuditLogger records booking lifecycle events
type AuditLogger interface {
	Log(ctx context.Context, audit *models.BookingAudit) error
}
