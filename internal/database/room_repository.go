package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/staynest/booking-backend/internal/models"
)

const roomColumns = `
	id, hotel_id, title, description, bed_count, guest_count, bathroom_count,
	king_bed, queen_bed, image, room_price, breakfast_price,
	room_service, tv, balcony, free_wifi, city_view, ocean_view, forest_view,
	mountain_view, air_condition, sound_proofed`

// RoomRepository handles room database operations
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a room
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}

	query := `
		INSERT INTO rooms (` + roomColumns + `)
		VALUES (
			:id, :hotel_id, :title, :description, :bed_count, :guest_count, :bathroom_count,
			:king_bed, :queen_bed, :image, :room_price, :breakfast_price,
			:room_service, :tv, :balcony, :free_wifi, :city_view, :ocean_view, :forest_view,
			:mountain_view, :air_condition, :sound_proofed
		)`

	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetByID retrieves a room
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	err := r.db.GetContext(ctx, &room, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// Update rewrites every mutable column of a room
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms SET
			title = :title, description = :description,
			bed_count = :bed_count, guest_count = :guest_count, bathroom_count = :bathroom_count,
			king_bed = :king_bed, queen_bed = :queen_bed, image = :image,
			room_price = :room_price, breakfast_price = :breakfast_price,
			room_service = :room_service, tv = :tv, balcony = :balcony, free_wifi = :free_wifi,
			city_view = :city_view, ocean_view = :ocean_view, forest_view = :forest_view,
			mountain_view = :mountain_view, air_condition = :air_condition, sound_proofed = :sound_proofed
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, room)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
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

// Delete removes a room. Its bookings go with it (ON DELETE CASCADE).
func (r *RoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
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

// ListByHotel returns the rooms of a hotel
func (r *RoomRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Room, error) {
	rooms := []models.Room{}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = $1 ORDER BY title`

	if err := r.db.SelectContext(ctx, &rooms, query, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListByHotels returns the rooms of several hotels in one query
func (r *RoomRepository) ListByHotels(ctx context.Context, hotelIDs []uuid.UUID) ([]models.Room, error) {
	rooms := []models.Room{}
	if len(hotelIDs) == 0 {
		return rooms, nil
	}

	ids := make([]string, len(hotelIDs))
	for i, id := range hotelIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ANY($1::uuid[]) ORDER BY title`
	if err := r.db.SelectContext(ctx, &rooms, query, pq.StringArray(ids)); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}
