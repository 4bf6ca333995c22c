package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/staynest/booking-backend/internal/models"
)

const bookingColumns = `
	id, hotel_id, room_id, hotel_owner_id, user_id, user_name, user_email,
	start_date, end_date, breakfast_included, total_price, currency,
	payment_intent_id, payment_status, booked_at`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a provisional booking
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.BookedAt.IsZero() {
		booking.BookedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		booking.ID, booking.HotelID, booking.RoomID, booking.HotelOwnerID,
		booking.UserID, booking.UserName, booking.UserEmail,
		booking.StartDate, booking.EndDate, booking.BreakfastIncluded,
		booking.TotalPrice, booking.Currency,
		booking.PaymentIntentID, booking.PaymentStatus, booking.BookedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("payment intent %s already has a booking: %w", booking.PaymentIntentID, models.ErrValidation)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by primary key
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	err := r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetByPaymentIntentID retrieves a booking by its unique payment intent id
func (r *BookingRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1`

	err := r.db.GetContext(ctx, &booking, query, paymentIntentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by payment intent: %w", err)
	}
	return &booking, nil
}

// UpdateIntentFields rewrites the selection of an unpaid booking in place.
// Paid bookings are left untouched and reported as not found.
func (r *BookingRepository) UpdateIntentFields(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings SET
			hotel_id = $2,
			room_id = $3,
			hotel_owner_id = $4,
			start_date = $5,
			end_date = $6,
			breakfast_included = $7,
			total_price = $8,
			currency = $9,
			user_name = $10,
			user_email = $11
		WHERE id = $1 AND payment_status = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		booking.ID, booking.HotelID, booking.RoomID, booking.HotelOwnerID,
		booking.StartDate, booking.EndDate, booking.BreakfastIncluded,
		booking.TotalPrice, booking.Currency, booking.UserName, booking.UserEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkPaid flips payment_status for the booking holding the intent.
// Re-marking a paid booking succeeds and returns it unchanged.
func (r *BookingRepository) MarkPaid(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	var booking models.Booking
	query := `
		UPDATE bookings SET payment_status = TRUE
		WHERE payment_intent_id = $1
		RETURNING ` + bookingColumns

	err := r.db.GetContext(ctx, &booking, query, paymentIntentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}
	return &booking, nil
}

// MarkPaidSerialized confirms a booking while holding a per-room advisory
// lock, so confirmations of the same room run one at a time. guard sees the
// room's other confirmed bookings and may veto the update.
func (r *BookingRepository) MarkPaidSerialized(ctx context.Context, paymentIntentID string, guard models.ConfirmGuard) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var booking models.Booking
	err = tx.GetContext(ctx, &booking,
		`SELECT `+bookingColumns+` FROM bookings WHERE payment_intent_id = $1 FOR UPDATE`, paymentIntentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	if booking.PaymentStatus {
		return &booking, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, booking.RoomID.String()); err != nil {
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}

	var confirmed []models.Booking
	err = tx.SelectContext(ctx, &confirmed,
		`SELECT `+bookingColumns+` FROM bookings WHERE room_id = $1 AND payment_status = TRUE AND id <> $2`,
		booking.RoomID, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed bookings: %w", err)
	}

	if guard != nil {
		if err := guard(&booking, confirmed); err != nil {
			return nil, err
		}
	}

	err = tx.GetContext(ctx, &booking,
		`UPDATE bookings SET payment_status = TRUE WHERE id = $1 RETURNING `+bookingColumns, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}
	return &booking, nil
}

// Delete removes a booking and returns the deleted row
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `DELETE FROM bookings WHERE id = $1 RETURNING ` + bookingColumns

	err := r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	return &booking, nil
}

// ListConfirmedByRoom returns paid bookings of a room ending after endAfter
func (r *BookingRepository) ListConfirmedByRoom(ctx context.Context, roomID uuid.UUID, endAfter time.Time) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_id = $1 AND payment_status = TRUE AND end_date > $2
		ORDER BY start_date`

	if err := r.db.SelectContext(ctx, &bookings, query, roomID, endAfter); err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	return bookings, nil
}

// ListByUser returns a guest's bookings, newest first
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY booked_at DESC`

	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return bookings, nil
}

// ListByHotel returns the bookings of a hotel ending after endAfter, newest first
func (r *BookingRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID, endAfter time.Time) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE hotel_id = $1 AND end_date > $2
		ORDER BY booked_at DESC`

	if err := r.db.SelectContext(ctx, &bookings, query, hotelID, endAfter); err != nil {
		return nil, fmt.Errorf("failed to list hotel bookings: %w", err)
	}
	return bookings, nil
}

// CountByPaymentIntentID counts rows referencing an intent (at most one)
func (r *BookingRepository) CountByPaymentIntentID(ctx context.Context, paymentIntentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE payment_intent_id = $1`
	if err := r.db.GetContext(ctx, &count, query, paymentIntentID); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// PurgeUnpaidBefore deletes unpaid bookings created before cutoff
func (r *BookingRepository) PurgeUnpaidBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM bookings WHERE payment_status = FALSE AND booked_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge unpaid bookings: %w", err)
	}
	return result.RowsAffected()
}
