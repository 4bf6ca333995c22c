package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/staynest/booking-backend/internal/models"
)

const draftKeyPrefix = "booking_draft:"

// RedisDraftStore keeps booking drafts in Redis with a per-key TTL
type RedisDraftStore struct {
	client *redis.Client
}

// NewRedisDraftStore creates a Redis-backed draft store
func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{client: client}
}

// Save writes the draft, replacing any previous version
func (s *RedisDraftStore) Save(ctx context.Context, draft *models.BookingDraft, ttl time.Duration) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyPrefix+draft.Token, body, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get returns the draft or nil when missing or expired
func (s *RedisDraftStore) Get(ctx context.Context, token string) (*models.BookingDraft, error) {
	body, err := s.client.Get(ctx, draftKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft models.BookingDraft
	if err := json.Unmarshal(body, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

// Delete removes the draft. Missing drafts are not an error.
func (s *RedisDraftStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// MemoryDraftStore keeps drafts in process memory. Used without Redis.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]memoryDraft
	now    func() time.Time
}

type memoryDraft struct {
	draft     models.BookingDraft
	expiresAt time.Time
}

// NewMemoryDraftStore creates an empty in-memory draft store
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{
		drafts: make(map[string]memoryDraft),
		now:    time.Now,
	}
}

// Save stores a copy of the draft
func (s *MemoryDraftStore) Save(_ context.Context, draft *models.BookingDraft, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[draft.Token] = memoryDraft{draft: *draft, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get returns a copy of the draft or nil when missing or expired
func (s *MemoryDraftStore) Get(_ context.Context, token string) (*models.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[token]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.drafts, token)
		return nil, nil
	}
	draft := entry.draft
	return &draft, nil
}

// Delete removes the draft
func (s *MemoryDraftStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, token)
	return nil
}
