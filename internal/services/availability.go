package services

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/models"
)

// OverlapPolicy decides whether a checkout day may be another stay's check-in day
type OverlapPolicy string

const (
	// OverlapInclusive treats both boundary days as occupied (default)
	OverlapInclusive OverlapPolicy = config.OverlapPolicyInclusive
	// OverlapHalfOpen treats stays as [start, end) so checkout day is free
	OverlapHalfOpen OverlapPolicy = config.OverlapPolicyHalfOpen
)

const day = 24 * time.Hour

// AvailabilityCalculator answers which days of a room are taken and whether
// a candidate stay collides with confirmed ones. It holds no state besides
// its policy and never touches storage; callers pass a fresh snapshot.
type AvailabilityCalculator struct {
	policy OverlapPolicy
}

// NewAvailabilityCalculator creates a calculator. Unknown policies fall back to inclusive.
func NewAvailabilityCalculator(policy OverlapPolicy) *AvailabilityCalculator {
	if policy != OverlapHalfOpen {
		policy = OverlapInclusive
	}
	return &AvailabilityCalculator{policy: policy}
}

// Policy returns the active overlap policy
func (a *AvailabilityCalculator) Policy() OverlapPolicy {
	return a.policy
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of t's UTC day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(day - time.Nanosecond)
}

// UnavailableDates lists every day blocked by a confirmed booking of roomID,
// sorted and without duplicates. Unpaid bookings never block a day.
func (a *AvailabilityCalculator) UnavailableDates(roomID uuid.UUID, bookings []models.Booking) []time.Time {
	seen := make(map[time.Time]struct{})
	for i := range bookings {
		b := &bookings[i]
		if b.RoomID != roomID || !b.PaymentStatus {
			continue
		}

		first := StartOfDay(b.StartDate)
		last := StartOfDay(b.EndDate)
		if a.policy == OverlapHalfOpen {
			last = last.Add(-day)
		}
		for d := first; !d.After(last); d = d.Add(day) {
			seen[d] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Overlaps reports whether [start, end] collides with any of ranges
func (a *AvailabilityCalculator) Overlaps(start, end time.Time, ranges []models.DateRange) bool {
	for _, r := range ranges {
		if a.rangesOverlap(start, end, r.Start, r.End) {
			return true
		}
	}
	return false
}

func (a *AvailabilityCalculator) rangesOverlap(candStart, candEnd, start, end time.Time) bool {
	if a.policy == OverlapHalfOpen {
		return StartOfDay(candStart).Before(StartOfDay(end)) &&
			StartOfDay(start).Before(StartOfDay(candEnd))
	}

	cs := StartOfDay(candStart)
	ce := EndOfDay(candEnd)
	rs := StartOfDay(start)
	re := EndOfDay(end)

	if within(cs, rs, re) || within(ce, rs, re) {
		return true
	}
	// candidate strictly contains the existing stay
	return cs.Before(rs) && ce.After(re)
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// FindConflict returns the first confirmed booking of the candidate's room,
// other than the candidate itself, whose stay overlaps the candidate's.
func (a *AvailabilityCalculator) FindConflict(candidate *models.Booking, bookings []models.Booking) *models.Booking {
	for i := range bookings {
		other := &bookings[i]
		if other.ID == candidate.ID || other.RoomID != candidate.RoomID || !other.PaymentStatus {
			continue
		}
		if a.rangesOverlap(candidate.StartDate, candidate.EndDate, other.StartDate, other.EndDate) {
			return other
		}
	}
	return nil
}

// ConfirmedRanges extracts the stays of the confirmed bookings of roomID
func ConfirmedRanges(roomID uuid.UUID, bookings []models.Booking) []models.DateRange {
	ranges := make([]models.DateRange, 0, len(bookings))
	for i := range bookings {
		if bookings[i].RoomID == roomID && bookings[i].PaymentStatus {
			ranges = append(ranges, bookings[i].DateRange())
		}
	}
	return ranges
}

// Guard returns a confirmation guard rejecting overlaps with ErrOverlap
func (a *AvailabilityCalculator) Guard() models.ConfirmGuard {
	return func(candidate *models.Booking, confirmed []models.Booking) error {
		if conflict := a.FindConflict(candidate, confirmed); conflict != nil {
			return models.ErrOverlap
		}
		return nil
	}
}
