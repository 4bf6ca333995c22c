package payments

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DevProvider is an in-memory provider used when no Stripe key is configured.
// Intents never charge anything; MarkSucceeded simulates a completed payment.
type DevProvider struct {
	mu          sync.Mutex
	intents     map[string]*Intent
	idempotency map[string]string

	// FailNext makes the next call return this error, then resets
	FailNext error
}

// NewDevProvider creates an empty in-memory provider
func NewDevProvider() *DevProvider {
	return &DevProvider{
		intents:     make(map[string]*Intent),
		idempotency: make(map[string]string),
	}
}

// GetName returns the provider name
func (p *DevProvider) GetName() string {
	return "dev"
}

// CreateIntent stores a new intent and returns a copy
func (p *DevProvider) CreateIntent(_ context.Context, params CreateIntentParams) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.takeFailure(); err != nil {
		return nil, err
	}
	if params.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative")
	}

	if params.IdempotencyKey != "" {
		if id, ok := p.idempotency[params.IdempotencyKey]; ok {
			return copyIntent(p.intents[id]), nil
		}
	}

	id := "pi_dev_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Amount:       params.Amount,
		Currency:     strings.ToLower(params.Currency),
		Status:       StatusRequiresPaymentMethod,
		Metadata:     copyMetadata(params.Metadata),
	}
	p.intents[id] = intent
	if params.IdempotencyKey != "" {
		p.idempotency[params.IdempotencyKey] = id
	}

	return copyIntent(intent), nil
}

// RetrieveIntent returns a stored intent
func (p *DevProvider) RetrieveIntent(_ context.Context, id string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.takeFailure(); err != nil {
		return nil, err
	}
	intent, ok := p.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return copyIntent(intent), nil
}

// UpdateIntentAmount changes the amount of a stored intent
func (p *DevProvider) UpdateIntentAmount(_ context.Context, id string, amount int64, metadata map[string]string) (*Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.takeFailure(); err != nil {
		return nil, err
	}
	intent, ok := p.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	if intent.Status == StatusSucceeded {
		return nil, fmt.Errorf("payment intent %s already succeeded", id)
	}

	intent.Amount = amount
	for k, v := range metadata {
		if intent.Metadata == nil {
			intent.Metadata = make(map[string]string)
		}
		intent.Metadata[k] = v
	}
	return copyIntent(intent), nil
}

// MarkSucceeded simulates the payer completing the charge
func (p *DevProvider) MarkSucceeded(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	intent, ok := p.intents[id]
	if !ok {
		return ErrIntentNotFound
	}
	intent.Status = StatusSucceeded
	return nil
}

// Count returns how many intents were created
func (p *DevProvider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.intents)
}

func (p *DevProvider) takeFailure() error {
	err := p.FailNext
	p.FailNext = nil
	return err
}

func copyIntent(i *Intent) *Intent {
	c := *i
	c.Metadata = copyMetadata(i.Metadata)
	return &c
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
