package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hotel represents a listed property owned by one user
type Hotel struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	OwnerID             string    `json:"userId" db:"owner_id"`
	Title               string    `json:"title" db:"title"`
	Description         string    `json:"description" db:"description"`
	Image               string    `json:"image" db:"image"`
	Country             string    `json:"country" db:"country"`
	State               string    `json:"state" db:"state"`
	City                string    `json:"city" db:"city"`
	LocationDescription string    `json:"locationDescription" db:"location_description"`

	// Amenities
	Gym          bool `json:"gym" db:"gym"`
	Spa          bool `json:"spa" db:"spa"`
	Bar          bool `json:"bar" db:"bar"`
	Laundry      bool `json:"laundry" db:"laundry"`
	Restaurant   bool `json:"restaurant" db:"restaurant"`
	Shopping     bool `json:"shopping" db:"shopping"`
	FreeParking  bool `json:"freeParking" db:"free_parking"`
	BikeRental   bool `json:"bikeRental" db:"bike_rental"`
	FreeWifi     bool `json:"freeWifi" db:"free_wifi"`
	MovieNights  bool `json:"movieNights" db:"movie_nights"`
	SwimmingPool bool `json:"swimmingPool" db:"swimming_pool"`
	CoffeeShop   bool `json:"coffeeShop" db:"coffee_shop"`

	AddedAt   time.Time `json:"addedAt" db:"added_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Rooms []Room `json:"rooms,omitempty" db:"-"`
}

// HotelFilter narrows hotel listings. Empty fields match everything.
type HotelFilter struct {
	Title   string `form:"title"`
	Country string `form:"country"`
	State   string `form:"state"`
	City    string `form:"city"`
}

// HotelInput is the body of create and partial update requests.
// Nil fields are left untouched on update.
type HotelInput struct {
	Title               *string `json:"title"`
	Description         *string `json:"description"`
	Image               *string `json:"image"`
	Country             *string `json:"country"`
	State               *string `json:"state"`
	City                *string `json:"city"`
	LocationDescription *string `json:"locationDescription"`
	Gym                 *bool   `json:"gym"`
	Spa                 *bool   `json:"spa"`
	Bar                 *bool   `json:"bar"`
	Laundry             *bool   `json:"laundry"`
	Restaurant          *bool   `json:"restaurant"`
	Shopping            *bool   `json:"shopping"`
	FreeParking         *bool   `json:"freeParking"`
	BikeRental          *bool   `json:"bikeRental"`
	FreeWifi            *bool   `json:"freeWifi"`
	MovieNights         *bool   `json:"movieNights"`
	SwimmingPool        *bool   `json:"swimmingPool"`
	CoffeeShop          *bool   `json:"coffeeShop"`
}

// ValidateForCreate checks the fields a new hotel cannot be listed without
func (in *HotelInput) ValidateForCreate() error {
	if in.Title == nil || len(strings.TrimSpace(*in.Title)) < 3 {
		return NewValidationError("title must be at least 3 characters")
	}
	if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
		return NewValidationError("description is required")
	}
	if in.Country == nil || strings.TrimSpace(*in.Country) == "" {
		return NewValidationError("country is required")
	}
	return nil
}

// ApplyTo merges the non-nil fields into h
func (in *HotelInput) ApplyTo(h *Hotel) {
	setString(&h.Title, in.Title)
	setString(&h.Description, in.Description)
	setString(&h.Image, in.Image)
	setString(&h.Country, in.Country)
	setString(&h.State, in.State)
	setString(&h.City, in.City)
	setString(&h.LocationDescription, in.LocationDescription)
	setBool(&h.Gym, in.Gym)
	setBool(&h.Spa, in.Spa)
	setBool(&h.Bar, in.Bar)
	setBool(&h.Laundry, in.Laundry)
	setBool(&h.Restaurant, in.Restaurant)
	setBool(&h.Shopping, in.Shopping)
	setBool(&h.FreeParking, in.FreeParking)
	setBool(&h.BikeRental, in.BikeRental)
	setBool(&h.FreeWifi, in.FreeWifi)
	setBool(&h.MovieNights, in.MovieNights)
	setBool(&h.SwimmingPool, in.SwimmingPool)
	setBool(&h.CoffeeShop, in.CoffeeShop)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
