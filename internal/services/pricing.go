package services

import (
	"math"
	"strings"
	"time"

	"github.com/staynest/booking-backend/internal/models"
)

// Currencies the payment provider charges without a fractional unit
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// PriceBreakdown is the itemised price of a stay
type PriceBreakdown struct {
	RoomID         string    `json:"roomId"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Nights         int       `json:"nights"`
	NightlyRate    float64   `json:"nightlyRate"`
	BreakfastRate  float64   `json:"breakfastRate"`
	RoomTotal      float64   `json:"roomTotal"`
	BreakfastTotal float64   `json:"breakfastTotal"`
	Total          float64   `json:"total"`
	Currency       string    `json:"currency"`
}

// NightCount is the number of calendar days between check-in and check-out
func NightCount(start, end time.Time) int {
	return int(StartOfDay(end).Sub(StartOfDay(start)) / day)
}

// ComputeTotal prices a stay: nightly rate times nights plus breakfast times
// nights when included. An absent or zero breakfast rate adds nothing.
func ComputeTotal(nightlyRate float64, breakfastRate *float64, start, end time.Time, includeBreakfast bool) (float64, error) {
	b, err := computeBreakdown(nightlyRate, breakfastRate, start, end, includeBreakfast)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

// QuotePrice prices a stay in the given room
func QuotePrice(room *models.Room, start, end time.Time, includeBreakfast bool, currency string) (*PriceBreakdown, error) {
	b, err := computeBreakdown(room.RoomPrice, room.BreakfastPrice, start, end, includeBreakfast)
	if err != nil {
		return nil, err
	}
	b.RoomID = room.ID.String()
	b.Currency = strings.ToLower(currency)
	return b, nil
}

func computeBreakdown(nightlyRate float64, breakfastRate *float64, start, end time.Time, includeBreakfast bool) (*PriceBreakdown, error) {
	nights := NightCount(start, end)
	if nights < 1 {
		return nil, models.ErrInvalidRange
	}
	if nightlyRate < 0 {
		return nil, models.NewValidationError("nightly rate cannot be negative")
	}

	breakfast := 0.0
	if breakfastRate != nil {
		if *breakfastRate < 0 {
			return nil, models.NewValidationError("breakfast rate cannot be negative")
		}
		breakfast = *breakfastRate
	}

	b := &PriceBreakdown{
		StartDate:     StartOfDay(start),
		EndDate:       StartOfDay(end),
		Nights:        nights,
		NightlyRate:   nightlyRate,
		BreakfastRate: breakfast,
		RoomTotal:     nightlyRate * float64(nights),
	}
	if includeBreakfast {
		b.BreakfastTotal = breakfast * float64(nights)
	}
	b.Total = b.RoomTotal + b.BreakfastTotal
	return b, nil
}

// PricesMatch compares two major-unit amounts to the cent
func PricesMatch(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// ToMinorUnits converts a major-unit amount to what the payment provider charges
func ToMinorUnits(amount float64, currency string) int64 {
	if IsZeroDecimalCurrency(currency) {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts a provider amount back to major units
func FromMinorUnits(amount int64, currency string) float64 {
	if IsZeroDecimalCurrency(currency) {
		return float64(amount)
	}
	return float64(amount) / 100
}

// IsZeroDecimalCurrency reports whether currency has no minor unit
func IsZeroDecimalCurrency(currency string) bool {
	return zeroDecimalCurrencies[strings.ToLower(currency)]
}
