package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/staynest/booking-backend/internal/models"
)

const hotelColumns = `
	id, owner_id, title, description, image, country, state, city, location_description,
	gym, spa, bar, laundry, restaurant, shopping, free_parking, bike_rental, free_wifi,
	movie_nights, swimming_pool, coffee_shop, added_at, updated_at`

// HotelRepository handles hotel database operations. Reads attach rooms.
type HotelRepository struct {
	db    *sqlx.DB
	rooms *RoomRepository
}

// NewHotelRepository creates a new HotelRepository
func NewHotelRepository(db *sqlx.DB, rooms *RoomRepository) *HotelRepository {
	return &HotelRepository{db: db, rooms: rooms}
}

// Create inserts a hotel
func (r *HotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	if hotel.ID == uuid.Nil {
		hotel.ID = uuid.New()
	}
	now := time.Now().UTC()
	hotel.AddedAt = now
	hotel.UpdatedAt = now

	query := `
		INSERT INTO hotels (` + hotelColumns + `)
		VALUES (
			:id, :owner_id, :title, :description, :image, :country, :state, :city, :location_description,
			:gym, :spa, :bar, :laundry, :restaurant, :shopping, :free_parking, :bike_rental, :free_wifi,
			:movie_nights, :swimming_pool, :coffee_shop, :added_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, hotel); err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

// GetByID retrieves a hotel with its rooms
func (r *HotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	var hotel models.Hotel
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`

	err := r.db.GetContext(ctx, &hotel, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}

	rooms, err := r.rooms.ListByHotel(ctx, hotel.ID)
	if err != nil {
		return nil, err
	}
	hotel.Rooms = rooms
	return &hotel, nil
}

// Update rewrites every mutable column of a hotel
func (r *HotelRepository) Update(ctx context.Context, hotel *models.Hotel) error {
	hotel.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE hotels SET
			title = :title, description = :description, image = :image,
			country = :country, state = :state, city = :city,
			location_description = :location_description,
			gym = :gym, spa = :spa, bar = :bar, laundry = :laundry, restaurant = :restaurant,
			shopping = :shopping, free_parking = :free_parking, bike_rental = :bike_rental,
			free_wifi = :free_wifi, movie_nights = :movie_nights, swimming_pool = :swimming_pool,
			coffee_shop = :coffee_shop, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, hotel)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
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

// Delete removes a hotel with its rooms and bookings (ON DELETE CASCADE)
func (r *HotelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hotel: %w", err)
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

// List returns hotels matching the filter, newest first, rooms attached
func (r *HotelRepository) List(ctx context.Context, filter models.HotelFilter) ([]models.Hotel, error) {
	hotels := []models.Hotel{}
	query := `
		SELECT ` + hotelColumns + `
		FROM hotels
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR country = $2)
		  AND ($3 = '' OR state = $3)
		  AND ($4 = '' OR city = $4)
		ORDER BY added_at DESC`

	if err := r.db.SelectContext(ctx, &hotels, query, filter.Title, filter.Country, filter.State, filter.City); err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return r.attachRooms(ctx, hotels)
}

// ListByOwner returns the hotels of one owner, rooms attached
func (r *HotelRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Hotel, error) {
	hotels := []models.Hotel{}
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE owner_id = $1 ORDER BY added_at DESC`

	if err := r.db.SelectContext(ctx, &hotels, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list owner hotels: %w", err)
	}
	return r.attachRooms(ctx, hotels)
}

func (r *HotelRepository) attachRooms(ctx context.Context, hotels []models.Hotel) ([]models.Hotel, error) {
	if len(hotels) == 0 {
		return hotels, nil
	}

	ids := make([]uuid.UUID, len(hotels))
	for i := range hotels {
		ids[i] = hotels[i].ID
	}
	rooms, err := r.rooms.ListByHotels(ctx, ids)
	if err != nil {
		return nil, err
	}

	byHotel := make(map[uuid.UUID][]models.Room, len(hotels))
	for _, room := range rooms {
		byHotel[room.HotelID] = append(byHotel[room.HotelID], room)
	}
	for i := range hotels {
		hotels[i].Rooms = byHotel[hotels[i].ID]
		if hotels[i].Rooms == nil {
			hotels[i].Rooms = []models.Room{}
		}
	}
	return hotels, nil
}
