// Package testutil holds in-memory stores and recorders for service and
// handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/events"
)

// BookingStore keeps bookings in memory. MarkPaidSerialized holds a store-wide
// lock for the whole check-and-update, standing in for the room advisory lock.
type BookingStore struct {
	mu       sync.Mutex
	confirm  sync.Mutex
	bookings map[uuid.UUID]models.Booking

	// Err, when set, is returned by every call
	Err error
}

// NewBookingStore creates an empty store
func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[uuid.UUID]models.Booking)}
}

// Put stores a booking as-is
func (s *BookingStore) Put(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

// All returns every stored booking
func (s *BookingStore) All() []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	return out
}

// CountByPaymentIntentID counts bookings holding an intent
func (s *BookingStore) CountByPaymentIntentID(pi string) int {
	n := 0
	for _, b := range s.All() {
		if b.PaymentIntentID == pi {
			n++
		}
	}
	return n
}

func (s *BookingStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	for _, existing := range s.bookings {
		if b.PaymentIntentID != "" && existing.PaymentIntentID == b.PaymentIntentID {
			return fmt.Errorf("duplicate payment intent: %w", models.ErrValidation)
		}
	}
	if b.BookedAt.IsZero() {
		b.BookedAt = time.Now().UTC()
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *BookingStore) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *BookingStore) GetByPaymentIntentID(_ context.Context, pi string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.byIntent(pi), nil
}

func (s *BookingStore) byIntent(pi string) *models.Booking {
	for _, b := range s.bookings {
		if b.PaymentIntentID == pi {
			found := b
			return &found
		}
	}
	return nil
}

func (s *BookingStore) UpdateIntentFields(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	existing, ok := s.bookings[b.ID]
	if !ok || existing.PaymentStatus {
		return models.ErrNotFound
	}
	existing.HotelID = b.HotelID
	existing.RoomID = b.RoomID
	existing.HotelOwnerID = b.HotelOwnerID
	existing.StartDate = b.StartDate
	existing.EndDate = b.EndDate
	existing.BreakfastIncluded = b.BreakfastIncluded
	existing.TotalPrice = b.TotalPrice
	existing.Currency = b.Currency
	existing.UserName = b.UserName
	existing.UserEmail = b.UserEmail
	s.bookings[b.ID] = existing
	return nil
}

func (s *BookingStore) MarkPaid(_ context.Context, pi string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.markPaidLocked(pi), nil
}

func (s *BookingStore) markPaidLocked(pi string) *models.Booking {
	b := s.byIntent(pi)
	if b == nil {
		return nil
	}
	b.PaymentStatus = true
	s.bookings[b.ID] = *b
	return b
}

func (s *BookingStore) MarkPaidSerialized(_ context.Context, pi string, guard models.ConfirmGuard) (*models.Booking, error) {
	s.confirm.Lock()
	defer s.confirm.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	candidate := s.byIntent(pi)
	if candidate == nil {
		return nil, nil
	}
	if candidate.PaymentStatus {
		return candidate, nil
	}

	var confirmed []models.Booking
	for _, b := range s.bookings {
		if b.RoomID == candidate.RoomID && b.PaymentStatus && b.ID != candidate.ID {
			confirmed = append(confirmed, b)
		}
	}
	if err := guard(candidate, confirmed); err != nil {
		return nil, err
	}
	return s.markPaidLocked(pi), nil
}

func (s *BookingStore) Delete(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	delete(s.bookings, id)
	return &b, nil
}

func (s *BookingStore) ListConfirmedByRoom(_ context.Context, roomID uuid.UUID, endAfter time.Time) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool {
		return b.RoomID == roomID && b.PaymentStatus && b.EndDate.After(endAfter)
	}, func(a, b models.Booking) bool { return a.StartDate.Before(b.StartDate) })
}

func (s *BookingStore) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool { return b.UserID == userID }, newestFirst)
}

func (s *BookingStore) ListByHotel(_ context.Context, hotelID uuid.UUID, endAfter time.Time) ([]models.Booking, error) {
	return s.list(func(b models.Booking) bool {
		return b.HotelID == hotelID && b.EndDate.After(endAfter)
	}, newestFirst)
}

func newestFirst(a, b models.Booking) bool { return a.BookedAt.After(b.BookedAt) }

func (s *BookingStore) list(keep func(models.Booking) bool, less func(a, b models.Booking) bool) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Booking{}
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// RoomStore keeps rooms in memory
type RoomStore struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]models.Room
}

// NewRoomStore creates a store holding rooms
func NewRoomStore(rooms ...models.Room) *RoomStore {
	s := &RoomStore{rooms: make(map[uuid.UUID]models.Room)}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *RoomStore) Create(_ context.Context, r *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.rooms[r.ID] = *r
	return nil
}

func (s *RoomStore) GetByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *RoomStore) Update(_ context.Context, r *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[r.ID]; !ok {
		return models.ErrNotFound
	}
	s.rooms[r.ID] = *r
	return nil
}

func (s *RoomStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *RoomStore) ListByHotel(_ context.Context, hotelID uuid.UUID) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Room{}
	for _, r := range s.rooms {
		if r.HotelID == hotelID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// HotelStore keeps hotels in memory and attaches rooms from a RoomStore
type HotelStore struct {
	mu     sync.Mutex
	hotels map[uuid.UUID]models.Hotel
	rooms  *RoomStore
}

// NewHotelStore creates a store holding hotels
func NewHotelStore(rooms *RoomStore, hotels ...models.Hotel) *HotelStore {
	s := &HotelStore{hotels: make(map[uuid.UUID]models.Hotel), rooms: rooms}
	for _, h := range hotels {
		s.hotels[h.ID] = h
	}
	return s
}

func (s *HotelStore) Create(_ context.Context, h *models.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := time.Now().UTC()
	h.AddedAt, h.UpdatedAt = now, now
	s.hotels[h.ID] = *h
	return nil
}

func (s *HotelStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	s.mu.Lock()
	h, ok := s.hotels[id]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	h.Rooms, _ = s.rooms.ListByHotel(ctx, id)
	return &h, nil
}

func (s *HotelStore) Update(_ context.Context, h *models.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		return models.ErrNotFound
	}
	h.UpdatedAt = time.Now().UTC()
	s.hotels[h.ID] = *h
	return nil
}

func (s *HotelStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.hotels, id)
	return nil
}

func (s *HotelStore) List(ctx context.Context, f models.HotelFilter) ([]models.Hotel, error) {
	return s.filter(ctx, func(h models.Hotel) bool {
		return strings.Contains(strings.ToLower(h.Title), strings.ToLower(f.Title)) &&
			(f.Country == "" || h.Country == f.Country) &&
			(f.State == "" || h.State == f.State) &&
			(f.City == "" || h.City == f.City)
	})
}

func (s *HotelStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Hotel, error) {
	return s.filter(ctx, func(h models.Hotel) bool { return h.OwnerID == ownerID })
}

func (s *HotelStore) filter(ctx context.Context, keep func(models.Hotel) bool) ([]models.Hotel, error) {
	s.mu.Lock()
	out := []models.Hotel{}
	for _, h := range s.hotels {
		if keep(h) {
			out = append(out, h)
		}
	}
	s.mu.Unlock()
	for i := range out {
		out[i].Rooms, _ = s.rooms.ListByHotel(ctx, out[i].ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// AuditRecorder collects audit entries
type AuditRecorder struct {
	mu      sync.Mutex
	Entries []models.BookingAudit
}

func (r *AuditRecorder) Log(_ context.Context, a *models.BookingAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, *a)
	return nil
}

// Actions lists the recorded actions in order
func (r *AuditRecorder) Actions() []models.BookingAuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BookingAuditAction, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Action
	}
	return out
}

// Publisher collects published events
type Publisher struct {
	mu     sync.Mutex
	Events []events.BookingEvent
	Err    error
}

func (p *Publisher) Publish(_ context.Context, ev events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}

func (p *Publisher) Close() error { return nil }

// Types lists the published event types in order
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Events))
	for i, ev := range p.Events {
		out[i] = ev.Type
	}
	return out
}
