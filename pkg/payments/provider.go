package payments

import (
	"context"
	"errors"
)

// Intent statuses reported by the provider
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// ErrIntentNotFound is returned when the provider has no intent with the given id
var ErrIntentNotFound = errors.New("payment intent not found")

// Intent is the provider's representation of an in-progress charge
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64 // minor units
	Currency     string
	Status       string
	Metadata     map[string]string
}

// Succeeded reports whether the charge went through
func (i *Intent) Succeeded() bool {
	return i.Status == StatusSucceeded
}

// CreateIntentParams describes a new charge
type CreateIntentParams struct {
	Amount         int64 // minor units
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// Provider is a remote payment-intent API
type Provider interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	UpdateIntentAmount(ctx context.Context, id string, amount int64, metadata map[string]string) (*Intent, error)
	GetName() string
}
