package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Booking is a reservation of one room for a date range.
// It is created unpaid when a payment intent is issued and flips to paid
// once the payment is confirmed. There is no way back from paid.
type Booking struct {
	ID                uuid.UUID `json:"id" db:"id"`
	HotelID           uuid.UUID `json:"hotelId" db:"hotel_id"`
	RoomID            uuid.UUID `json:"roomId" db:"room_id"`
	HotelOwnerID      string    `json:"hotelOwnerId" db:"hotel_owner_id"`
	UserID            string    `json:"userId" db:"user_id"`
	UserName          string    `json:"userName" db:"user_name"`
	UserEmail         string    `json:"userEmail" db:"user_email"`
	StartDate         time.Time `json:"startDate" db:"start_date"`
	EndDate           time.Time `json:"endDate" db:"end_date"`
	BreakfastIncluded bool      `json:"breakFastIncluded" db:"breakfast_included"`
	TotalPrice        float64   `json:"totalPrice" db:"total_price"`
	Currency          string    `json:"currency" db:"currency"`
	PaymentIntentID   string    `json:"paymentIntentId" db:"payment_intent_id"`
	PaymentStatus     bool      `json:"paymentStatus" db:"payment_status"`
	BookedAt          time.Time `json:"bookedAt" db:"booked_at"`
}

// DateRange returns the booked stay
func (b *Booking) DateRange() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// IsConfirmed reports whether the booking has been paid
func (b *Booking) IsConfirmed() bool {
	return b.PaymentStatus
}

// DateRange is a stay from check-in to check-out
type DateRange struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// BookingRequest is the booking part of a create-payment-intent body
type BookingRequest struct {
	HotelID           uuid.UUID  `json:"hotelId"`
	RoomID            uuid.UUID  `json:"roomId"`
	HotelOwnerID      string     `json:"hotelOwnerId,omitempty"` // ignored, derived from the hotel
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	BreakfastIncluded bool       `json:"breakFastIncluded"`
	TotalPrice        *float64   `json:"totalPrice"`
	Currency          string     `json:"currency"`
}

// Validate checks the request shape before any remote call is made
func (r *BookingRequest) Validate() error {
	if r.HotelID == uuid.Nil {
		return NewValidationError("hotelId is required")
	}
	if r.RoomID == uuid.Nil {
		return NewValidationError("roomId is required")
	}
	if r.StartDate == nil || r.EndDate == nil {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidRange)
	}
	if !r.EndDate.After(*r.StartDate) {
		return ErrInvalidRange
	}
	if r.TotalPrice != nil && *r.TotalPrice < 0 {
		return NewValidationError("totalPrice cannot be negative")
	}
	if r.Currency != "" && len(strings.TrimSpace(r.Currency)) != 3 {
		return NewValidationError("currency must be a 3-letter ISO code")
	}
	return nil
}

// CreatePaymentIntentRequest is the body of POST /create-payment-intent
type CreatePaymentIntentRequest struct {
	Booking         *BookingRequest `json:"booking" binding:"required"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	DraftToken      string          `json:"draft_token,omitempty"`
}

// PaymentIntentView is the client-facing part of a provider payment intent
type PaymentIntentView struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"` // minor units
	Currency     string `json:"currency"`
}

// PaymentIntentResponse is returned by POST /create-payment-intent
type PaymentIntentResponse struct {
	PaymentIntent  PaymentIntentView `json:"paymentIntent"`
	BookingID      uuid.UUID         `json:"bookingId"`
	TotalPrice     float64           `json:"totalPrice"`
	OverlapWarning bool              `json:"overlapWarning"`
}

// ConfirmGuard inspects a booking about to be confirmed against the room's
// other confirmed bookings and returns an error to abort the confirmation.
type ConfirmGuard func(candidate *Booking, confirmed []Booking) error
