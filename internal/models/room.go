package models

import (
	"strings"

	"github.com/google/uuid"
)

// Room represents a bookable room of a hotel
type Room struct {
	ID            uuid.UUID `json:"id" db:"id"`
	HotelID       uuid.UUID `json:"hotelId" db:"hotel_id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	BedCount      int       `json:"bedCount" db:"bed_count"`
	GuestCount    int       `json:"guestCount" db:"guest_count"`
	BathroomCount int       `json:"bathroomCount" db:"bathroom_count"`
	KingBed       int       `json:"kingBed" db:"king_bed"`
	QueenBed      int       `json:"queenBed" db:"queen_bed"`
	Image         string    `json:"image" db:"image"`

	// Pricing, in major units of the booking currency
	RoomPrice      float64  `json:"roomPrice" db:"room_price"`
	BreakfastPrice *float64 `json:"breakFastPrice,omitempty" db:"breakfast_price"`

	// Amenities
	RoomService  bool `json:"roomService" db:"room_service"`
	TV           bool `json:"TV" db:"tv"`
	Balcony      bool `json:"balcony" db:"balcony"`
	FreeWifi     bool `json:"freeWifi" db:"free_wifi"`
	CityView     bool `json:"cityView" db:"city_view"`
	OceanView    bool `json:"oceanView" db:"ocean_view"`
	ForestView   bool `json:"forestView" db:"forest_view"`
	MountainView bool `json:"mountainView" db:"mountain_view"`
	AirCondition bool `json:"airCondition" db:"air_condition"`
	SoundProofed bool `json:"soundProofed" db:"sound_proofed"`
}

// RoomInput is the body of room create and partial update requests
type RoomInput struct {
	HotelID        *uuid.UUID `json:"hotelId"`
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	BedCount       *int       `json:"bedCount"`
	GuestCount     *int       `json:"guestCount"`
	BathroomCount  *int       `json:"bathroomCount"`
	KingBed        *int       `json:"kingBed"`
	QueenBed       *int       `json:"queenBed"`
	Image          *string    `json:"image"`
	RoomPrice      *float64   `json:"roomPrice"`
	BreakfastPrice *float64   `json:"breakFastPrice"`
	RoomService    *bool      `json:"roomService"`
	TV             *bool      `json:"TV"`
	Balcony        *bool      `json:"balcony"`
	FreeWifi       *bool      `json:"freeWifi"`
	CityView       *bool      `json:"cityView"`
	OceanView      *bool      `json:"oceanView"`
	ForestView     *bool      `json:"forestView"`
	MountainView   *bool      `json:"mountainView"`
	AirCondition   *bool      `json:"airCondition"`
	SoundProofed   *bool      `json:"soundProofed"`
}

// ValidateForCreate checks the fields a new room needs
func (in *RoomInput) ValidateForCreate() error {
	if in.HotelID == nil || *in.HotelID == uuid.Nil {
		return NewValidationError("hotelId is required")
	}
	if in.Title == nil || len(strings.TrimSpace(*in.Title)) < 3 {
		return NewValidationError("title must be at least 3 characters")
	}
	if in.RoomPrice == nil {
		return NewValidationError("roomPrice is required")
	}
	return in.validatePrices()
}

// ValidateForUpdate checks only the fields present in the body
func (in *RoomInput) ValidateForUpdate() error {
	if in.HotelID != nil {
		return NewValidationError("hotelId cannot be changed")
	}
	return in.validatePrices()
}

func (in *RoomInput) validatePrices() error {
	if in.RoomPrice != nil && *in.RoomPrice <= 0 {
		return NewValidationError("roomPrice must be greater than zero")
	}
	if in.BreakfastPrice != nil && *in.BreakfastPrice < 0 {
		return NewValidationError("breakFastPrice cannot be negative")
	}
	return nil
}

// ApplyTo merges the non-nil fields into r
func (in *RoomInput) ApplyTo(r *Room) {
	if in.HotelID != nil {
		r.HotelID = *in.HotelID
	}
	setString(&r.Title, in.Title)
	setString(&r.Description, in.Description)
	setInt(&r.BedCount, in.BedCount)
	setInt(&r.GuestCount, in.GuestCount)
	setInt(&r.BathroomCount, in.BathroomCount)
	setInt(&r.KingBed, in.KingBed)
	setInt(&r.QueenBed, in.QueenBed)
	setString(&r.Image, in.Image)
	if in.RoomPrice != nil {
		r.RoomPrice = *in.RoomPrice
	}
	if in.BreakfastPrice != nil {
		price := *in.BreakfastPrice
		r.BreakfastPrice = &price
	}
	setBool(&r.RoomService, in.RoomService)
	setBool(&r.TV, in.TV)
	setBool(&r.Balcony, in.Balcony)
	setBool(&r.FreeWifi, in.FreeWifi)
	setBool(&r.CityView, in.CityView)
	setBool(&r.OceanView, in.OceanView)
	setBool(&r.ForestView, in.ForestView)
	setBool(&r.MountainView, in.MountainView)
	setBool(&r.AirCondition, in.AirCondition)
	setBool(&r.SoundProofed, in.SoundProofed)
}
