package payments

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Webhook event types the service reacts to
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// WebhookEvent is a verified provider notification about a payment intent
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	Amount          int64
	Currency        string
	Status          string
}

// ParseStripeWebhook verifies the Stripe-Signature header and decodes the event.
// Events not about a payment intent are returned with an empty PaymentIntentID.
func ParseStripeWebhook(payload []byte, signatureHeader, secret string) (*WebhookEvent, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signature: %w", err)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("invalid payment intent payload: %w", err)
	}
	out.PaymentIntentID = pi.ID
	out.Amount = pi.Amount
	out.Currency = string(pi.Currency)
	out.Status = string(pi.Status)

	return out, nil
}
