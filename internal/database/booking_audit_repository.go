package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// BookingAuditRepository appends booking lifecycle events
type BookingAuditRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewBookingAuditRepository creates a new booking audit repository
func NewBookingAuditRepository(db *sqlx.DB, logger *logrus.Logger) *BookingAuditRepository {
	return &BookingAuditRepository{
		db:     db,
		logger: logger,
	}
}

// Log inserts an audit entry
func (r *BookingAuditRepository) Log(ctx context.Context, audit *models.BookingAudit) error {
	if audit == nil {
		return fmt.Errorf("audit entry cannot be nil")
	}

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO booking_audits (
			id, booking_id, payment_intent_id, user_id, action,
			details, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		audit.ID, audit.BookingID, audit.PaymentIntentID, audit.UserID, audit.Action,
		audit.Details, audit.IPAddress, audit.UserAgent, audit.CreatedAt,
	)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"action":            audit.Action,
			"payment_intent_id": audit.PaymentIntentID,
			"error":             err.Error(),
		}).Error("Failed to write booking audit")
		return fmt.Errorf("failed to log booking audit: %w", err)
	}
	return nil
}

// ListByBooking returns the audit trail of a booking, oldest first
func (r *BookingAuditRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.BookingAudit, error) {
	audits := []models.BookingAudit{}
	query := `
		SELECT id, booking_id, payment_intent_id, user_id, action,
		       details, ip_address, user_agent, created_at
		FROM booking_audits
		WHERE booking_id = $1
		ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &audits, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list booking audits: %w", err)
	}
	return audits, nil
}
