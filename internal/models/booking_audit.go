package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONB is a custom type for handling JSONB fields
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface.
// Returns JSON as string for compatibility with simple protocol mode.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
}

// BookingAuditAction is the kind of booking lifecycle event recorded
type BookingAuditAction string

const (
	AuditIntentCreated          BookingAuditAction = "intent_created"
	AuditIntentUpdated          BookingAuditAction = "intent_updated"
	AuditIntentFailed           BookingAuditAction = "intent_failed"
	AuditBookingConfirmed       BookingAuditAction = "booking_confirmed"
	AuditBookingConfirmRejected BookingAuditAction = "booking_confirm_rejected"
	AuditBookingDeleted         BookingAuditAction = "booking_deleted"
	AuditWebhookReceived        BookingAuditAction = "webhook_received"
)

// BookingAudit is an append-only record of a booking lifecycle event
type BookingAudit struct {
	ID              uuid.UUID          `json:"id" db:"id"`
	BookingID       *uuid.UUID         `json:"booking_id,omitempty" db:"booking_id"`
	PaymentIntentID *string            `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	UserID          *string            `json:"user_id,omitempty" db:"user_id"`
	Action          BookingAuditAction `json:"action" db:"action"`
	Details         JSONB              `json:"details,omitempty" db:"details"`
	IPAddress       *string            `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent       *string            `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
}

// NewBookingAudit creates an audit entry with required fields
func NewBookingAudit(action BookingAuditAction) *BookingAudit {
	return &BookingAudit{
		ID:        uuid.New(),
		Action:    action,
		Details:   JSONB{},
		CreatedAt: time.Now(),
	}
}

// ForBooking attaches the booking and its payment intent
func (a *BookingAudit) ForBooking(b *Booking) *BookingAudit {
	if b == nil {
		return a
	}
	id := b.ID
	a.BookingID = &id
	if b.PaymentIntentID != "" {
		pi := b.PaymentIntentID
		a.PaymentIntentID = &pi
	}
	return a
}

// ByUser sets the acting user
func (a *BookingAudit) ByUser(userID string) *BookingAudit {
	if userID != "" {
		a.UserID = &userID
	}
	return a
}

// WithDetail adds a key to the details payload
func (a *BookingAudit) WithDetail(key string, value interface{}) *BookingAudit {
	a.Details[key] = value
	return a
}

// SetMetadata sets request metadata
func (a *BookingAudit) SetMetadata(ip, userAgent string) *BookingAudit {
	if ip != "" {
		a.IPAddress = &ip
	}
	if userAgent != "" {
		a.UserAgent = &userAgent
	}
	return a
}
