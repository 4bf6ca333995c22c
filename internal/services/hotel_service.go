package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
)

// HotelService manages hotels and their rooms. Writes are limited to the
// hotel's owner.
type HotelService struct {
	hotels HotelStore
	rooms  RoomStore
	logger *logrus.Logger
}

// NewHotelService creates a new hotel service
func NewHotelService(hotels HotelStore, rooms RoomStore, logger *logrus.Logger) *HotelService {
	return &HotelService{
		hotels: hotels,
		rooms:  rooms,
		logger: logger,
	}
}

// CreateHotel lists a new hotel owned by the caller
func (s *HotelService) CreateHotel(ctx context.Context, caller *Caller, in *models.HotelInput) (*models.Hotel, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}

	hotel := &models.Hotel{OwnerID: caller.UserID}
	in.ApplyTo(hotel)
	if err := s.hotels.Create(ctx, hotel); err != nil {
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}
	hotel.Rooms = []models.Room{}

	s.logger.WithFields(logrus.Fields{
		"hotel_id": hotel.ID,
		"owner_id": caller.UserID,
	}).Info("Hotel created")
	return hotel, nil
}

// GetHotel returns a hotel with its rooms
func (s *HotelService) GetHotel(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	if hotel == nil {
		return nil, models.ErrNotFound
	}
	return hotel, nil
}

// ListHotels searches hotels by title fragment and location
func (s *HotelService) ListHotels(ctx context.Context, filter models.HotelFilter) ([]models.Hotel, error) {
	hotels, err := s.hotels.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// MyHotels returns the hotels owned by the caller
func (s *HotelService) MyHotels(ctx context.Context, caller *Caller) ([]models.Hotel, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	hotels, err := s.hotels.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

// UpdateHotel applies a partial update
func (s *HotelService) UpdateHotel(ctx context.Context, caller *Caller, id uuid.UUID, in *models.HotelInput) (*models.Hotel, error) {
	hotel, err := s.ownedHotel(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	in.ApplyTo(hotel)
	if err := s.hotels.Update(ctx, hotel); err != nil {
		return nil, fmt.Errorf("failed to update hotel: %w", err)
	}
	return hotel, nil
}

// DeleteHotel removes a hotel together with its rooms and bookings
func (s *HotelService) DeleteHotel(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Hotel, error) {
	hotel, err := s.ownedHotel(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if err := s.hotels.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete hotel: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"hotel_id": id,
		"owner_id": caller.UserID,
	}).Info("Hotel deleted")
	return hotel, nil
}

// CreateRoom adds a room to one of the caller's hotels
func (s *HotelService) CreateRoom(ctx context.Context, caller *Caller, in *models.RoomInput) (*models.Room, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedHotel(ctx, caller, *in.HotelID); err != nil {
		return nil, err
	}

	room := &models.Room{}
	in.ApplyTo(room)
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// UpdateRoom applies a partial update to a room
func (s *HotelService) UpdateRoom(ctx context.Context, caller *Caller, id uuid.UUID, in *models.RoomInput) (*models.Room, error) {
	if err := in.ValidateForUpdate(); err != nil {
		return nil, err
	}
	room, err := s.ownedRoom(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	in.ApplyTo(room)
	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return room, nil
}

// DeleteRoom removes a room and its bookings
func (s *HotelService) DeleteRoom(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Room, error) {
	room, err := s.ownedRoom(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete room: %w", err)
	}
	return room, nil
}

func (s *HotelService) ownedHotel(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Hotel, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	hotel, err := s.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}
	if hotel.OwnerID != caller.UserID {
		return nil, models.ErrForbidden
	}
	return hotel, nil
}

func (s *HotelService) ownedRoom(ctx context.Context, caller *Caller, id uuid.UUID) (*models.Room, error) {
	if caller == nil || caller.UserID == "" {
		return nil, models.ErrUnauthorized
	}
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, models.ErrNotFound
	}
	if _, err := s.ownedHotel(ctx, caller, room.HotelID); err != nil {
		return nil, err
	}
	return room, nil
}
