// Package events publishes booking lifecycle events to the message broker
// and consumes them in downstream workers.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried in BookingEvent.Type
const (
	TypeIntentCreated    = "booking.intent_created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingDeleted   = "booking.deleted"
)

// BookingEvent is the broker payload for a booking state change. It carries
// enough data for consumers to notify or report without reading the database.
type BookingEvent struct {
	Type              string    `json:"type"`
	BookingID         string    `json:"booking_id"`
	HotelID           string    `json:"hotel_id"`
	RoomID            string    `json:"room_id"`
	HotelOwnerID      string    `json:"hotel_owner_id"`
	UserID            string    `json:"user_id"`
	UserEmail         string    `json:"user_email,omitempty"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	BreakfastIncluded bool      `json:"breakfast_included"`
	TotalPrice        float64   `json:"total_price"`
	Currency          string    `json:"currency"`
	PaymentIntentID   string    `json:"payment_intent_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Decode parses a broker message body
func Decode(body []byte) (*BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal booking event: %w", err)
	}
	if ev.Type == "" || ev.BookingID == "" {
		return nil, fmt.Errorf("booking event missing type or booking id")
	}
	return &ev, nil
}
