package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingDraft is a short-lived server-side checkout session.
// It carries the selection between the room page and the payment page so
// a second create-payment-intent call reuses the same payment intent.
type BookingDraft struct {
	Token             string     `json:"token"`
	UserID            string     `json:"userId"`
	HotelID           uuid.UUID  `json:"hotelId"`
	RoomID            uuid.UUID  `json:"roomId"`
	StartDate         *time.Time `json:"startDate,omitempty"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	BreakfastIncluded bool       `json:"breakFastIncluded"`
	TotalPrice        float64    `json:"totalPrice"`
	Currency          string     `json:"currency"`
	PaymentIntentID   string     `json:"paymentIntentId,omitempty"`
	ClientSecret      string     `json:"clientSecret,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	ExpiresAt         time.Time  `json:"expiresAt"`
}

// IsExpired reports whether the draft outlived its TTL
func (d *BookingDraft) IsExpired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

// BookingDraftInput is the body of draft create and replace requests
type BookingDraftInput struct {
	HotelID           uuid.UUID  `json:"hotelId"`
	RoomID            uuid.UUID  `json:"roomId"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	BreakfastIncluded bool       `json:"breakFastIncluded"`
	Currency          string     `json:"currency"`
}

// Validate checks the draft selection. Dates are optional until checkout
// but must form a valid range when both are present.
func (in *BookingDraftInput) Validate() error {
	if in.HotelID == uuid.Nil || in.RoomID == uuid.Nil {
		return NewValidationError("hotelId and roomId are required")
	}
	if (in.StartDate == nil) != (in.EndDate == nil) {
		return fmt.Errorf("%w: startDate and endDate must be set together", ErrInvalidRange)
	}
	if in.StartDate != nil && !in.EndDate.After(*in.StartDate) {
		return ErrInvalidRange
	}
	return nil
}
