package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeProvider implements Provider on the Stripe PaymentIntents API
type StripeProvider struct {
	client paymentintent.Client
	logger *logrus.Logger
}

// StripeConfig holds configuration for the Stripe provider
type StripeConfig struct {
	SecretKey  string
	APIURL     string // Optional: override the API base URL
	MaxRetries int64
}

// NewStripeProvider creates a Stripe-backed provider
func NewStripeProvider(cfg StripeConfig, logger *logrus.Logger) *StripeProvider {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     logger,
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	return &StripeProvider{
		client: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		logger: logger,
	}
}

// GetName returns the provider name
func (p *StripeProvider) GetName() string {
	return "stripe"
}

// CreateIntent creates a payment intent with automatic payment methods
func (p *StripeProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	sp := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	sp.Context = ctx
	if params.IdempotencyKey != "" {
		sp.SetIdempotencyKey(params.IdempotencyKey)
	}
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}

	pi, err := p.client.New(sp)
	if err != nil {
		return nil, p.wrap("create", err)
	}

	p.logger.WithFields(logrus.Fields{
		"payment_intent_id": pi.ID,
		"amount":            pi.Amount,
		"currency":          pi.Currency,
	}).Info("Stripe payment intent created")

	return fromStripe(pi), nil
}

// RetrieveIntent fetches a payment intent by id
func (p *StripeProvider) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	sp := &stripe.PaymentIntentParams{}
	sp.Context = ctx

	pi, err := p.client.Get(id, sp)
	if err != nil {
		return nil, p.wrap("retrieve", err)
	}
	return fromStripe(pi), nil
}

// UpdateIntentAmount changes the amount of an unpaid payment intent
func (p *StripeProvider) UpdateIntentAmount(ctx context.Context, id string, amount int64, metadata map[string]string) (*Intent, error) {
	sp := &stripe.PaymentIntentParams{
		Amount: stripe.Int64(amount),
	}
	sp.Context = ctx
	for k, v := range metadata {
		sp.AddMetadata(k, v)
	}

	pi, err := p.client.Update(id, sp)
	if err != nil {
		return nil, p.wrap("update", err)
	}

	p.logger.WithFields(logrus.Fields{
		"payment_intent_id": pi.ID,
		"amount":            pi.Amount,
	}).Info("Stripe payment intent updated")

	return fromStripe(pi), nil
}

func (p *StripeProvider) wrap(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		p.logger.WithFields(logrus.Fields{
			"operation":   op,
			"code":        stripeErr.Code,
			"http_status": stripeErr.HTTPStatusCode,
		}).Warn("Stripe request failed")

		if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return fmt.Errorf("stripe %s: %w", op, ErrIntentNotFound)
		}
	}
	return fmt.Errorf("stripe %s: %w", op, err)
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
