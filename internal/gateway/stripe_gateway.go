package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeGateway implements PaymentGateway with Stripe PaymentIntents
type StripeGateway struct {
	config *StripeGatewayConfig
}

type StripeGatewayConfig struct {
	SecretKey     string
	WebhookSecret string
}

func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	stripe.Key = config.SecretKey

	return &StripeGateway{config: config}, nil
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) VerifiesSignature() bool {
	return true
}

func (g *StripeGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
	if req == nil {
		return nil, fmt.Errorf("payment request is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(MinorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(req.Description),
		Metadata: map[string]string{
			"order_id": req.OrderID,
			"user_id":  req.UserID,
		},
	}
	params.Context = ctx
	if req.IdempotenceKey != "" {
		params.SetIdempotencyKey(req.IdempotenceKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return fromPaymentIntent(pi), nil
}

func (g *StripeGateway) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("payment intent ID is required")
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(paymentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return fromPaymentIntent(pi), nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	eventType := string(event.Type)
	if !strings.HasPrefix(eventType, "payment_intent.") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, eventType)
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	payment := fromPaymentIntent(&pi)
	if eventType == "payment_intent.payment_failed" {
		payment.Status = domain.PaymentStatusFailed
	}
	return &WebhookEvent{
		ID:      event.ID,
		Type:    eventType,
		Payment: payment,
		Raw:     payload,
	}, nil
}

func fromPaymentIntent(pi *stripe.PaymentIntent) *Payment {
	raw, _ := json.Marshal(pi)
	p := &Payment{
		ID:             pi.ID,
		Status:         stripeStatus(pi.Status),
		ProviderStatus: string(pi.Status),
		Amount:         FromMinorUnits(pi.Amount),
		Currency:       strings.ToUpper(string(pi.Currency)),
		ClientSecret:   pi.ClientSecret,
		Metadata:       pi.Metadata,
		Raw:            raw,
	}
	if pi.LastPaymentError != nil {
		p.FailureMessage = pi.LastPaymentError.Msg
	}
	if p.Metadata == nil {
		p.Metadata = map[string]string{}
	}
	return p
}

func stripeStatus(s stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentStatusCanceled
	default:
		return domain.PaymentStatusPending
	}
}
