package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roomColumnNames = []string{
	"id", "hotel_id", "title", "description", "bed_count", "guest_count", "bathroom_count",
	"king_bed", "queen_bed", "image", "room_price", "breakfast_price",
	"room_service", "tv", "balcony", "free_wifi", "city_view", "ocean_view", "forest_view",
	"mountain_view", "air_condition", "sound_proofed",
}

var hotelColumnNames = []string{
	"id", "owner_id", "title", "description", "image", "country", "state", "city", "location_description",
	"gym", "spa", "bar", "laundry", "restaurant", "shopping", "free_parking", "bike_rental", "free_wifi",
	"movie_nights", "swimming_pool", "coffee_shop", "added_at", "updated_at",
}

func addRoomRow(rows *sqlmock.Rows, id, hotelID uuid.UUID, title string, price float64, breakfast interface{}) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), hotelID.String(), title, "Sea facing", 1, 2, 1,
		1, 0, "https://img/room.png", price, breakfast,
		true, true, false, true, false, true, false,
		false, true, false,
	)
}

func addHotelRow(rows *sqlmock.Rows, id uuid.UUID, owner, title string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id.String(), owner, title, "Nice place", "https://img/hotel.png", "LK", "Western", "Colombo", "Near the beach",
		true, false, false, true, true, false, true, false, true,
		false, true, false, now, now,
	)
}

func TestRoomRepository(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()
	hotelID := uuid.New()
	roomID := uuid.New()

	t.Run("Create", func(t *testing.T) {
		room := &models.Room{HotelID: hotelID, Title: "Deluxe", RoomPrice: 150}
		mock.ExpectExec(`INSERT INTO rooms`).WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(ctx, room))
		assert.NotEqual(t, uuid.Nil, room.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByID With Null Breakfast", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms WHERE id = \$1`).
			WithArgs(roomID).
			WillReturnRows(addRoomRow(sqlmock.NewRows(roomColumnNames), roomID, hotelID, "Deluxe", 150, nil))

		room, err := repo.GetByID(ctx, roomID)
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.Equal(t, 150.0, room.RoomPrice)
		assert.Nil(t, room.BreakfastPrice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByID Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rooms WHERE id = \$1`).
			WithArgs(roomID).
			WillReturnError(sql.ErrNoRows)

		room, err := repo.GetByID(ctx, roomID)
		assert.NoError(t, err)
		assert.Nil(t, room)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update Missing", func(t *testing.T) {
		mock.ExpectExec(`UPDATE rooms SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, &models.Room{ID: roomID, RoomPrice: 10})
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM rooms WHERE id = \$1`).
			WithArgs(roomID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, roomID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHotelRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepository(db, NewRoomRepository(db))
	ctx := context.Background()
	hotelID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM hotels WHERE id = \$1`).
		WithArgs(hotelID).
		WillReturnRows(addHotelRow(sqlmock.NewRows(hotelColumnNames), hotelID, "owner-1", "Palm Resort"))
	mock.ExpectQuery(`SELECT (.+) FROM rooms WHERE hotel_id = \$1`).
		WithArgs(hotelID).
		WillReturnRows(addRoomRow(sqlmock.NewRows(roomColumnNames), uuid.New(), hotelID, "Deluxe", 150, 30.0))

	hotel, err := repo.GetByID(ctx, hotelID)
	require.NoError(t, err)
	require.NotNil(t, hotel)
	assert.Equal(t, "owner-1", hotel.OwnerID)
	require.Len(t, hotel.Rooms, 1)
	require.NotNil(t, hotel.Rooms[0].BreakfastPrice)
	assert.Equal(t, 30.0, *hotel.Rooms[0].BreakfastPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHotelRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepository(db, NewRoomRepository(db))
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	hotels := sqlmock.NewRows(hotelColumnNames)
	addHotelRow(hotels, first, "owner-1", "Palm Resort")
	addHotelRow(hotels, second, "owner-2", "Palm Villa")

	mock.ExpectQuery(`SELECT (.+) FROM hotels WHERE`).
		WithArgs("palm", "LK", "", "").
		WillReturnRows(hotels)
	mock.ExpectQuery(`SELECT (.+) FROM rooms WHERE hotel_id = ANY\(\$1::uuid\[\]\)`).
		WillReturnRows(addRoomRow(sqlmock.NewRows(roomColumnNames), uuid.New(), first, "Deluxe", 150, nil))

	got, err := repo.List(ctx, models.HotelFilter{Title: "palm", Country: "LK"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Rooms, 1)
	assert.NotNil(t, got[1].Rooms)
	assert.Empty(t, got[1].Rooms)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHotelRepository_CreateUpdateDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewHotelRepository(db, NewRoomRepository(db))
	ctx := context.Background()

	hotel := &models.Hotel{OwnerID: "owner-1", Title: "Palm Resort", Country: "LK"}
	mock.ExpectExec(`INSERT INTO hotels`).WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, hotel))
	assert.NotEqual(t, uuid.Nil, hotel.ID)
	assert.False(t, hotel.AddedAt.IsZero())

	mock.ExpectExec(`UPDATE hotels SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(ctx, hotel))

	mock.ExpectExec(`DELETE FROM hotels WHERE id = \$1`).
		WithArgs(hotel.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, hotel.ID), models.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
