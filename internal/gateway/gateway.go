package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedEvent is returned for webhook events the service ignores
	ErrUnsupportedEvent = errors.New("unsupported webhook event")
	// ErrMalformedPayload is returned for webhook bodies that cannot be decoded
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// CreatePaymentRequest describes a payment for one order
type CreatePaymentRequest struct {
	OrderID        string
	UserID         string
	Amount         decimal.Decimal
	Currency       string
	Description    string
	IdempotenceKey string
	ReturnURL      string
}

// Payment is the provider's view of a payment
type Payment struct {
	ID              string
	Status          domain.PaymentStatus
	ProviderStatus  string
	Amount          decimal.Decimal
	Currency        string
	ClientSecret    string
	ConfirmationURL string
	Metadata        map[string]string
	FailureMessage  string
	Raw             json.RawMessage
}

// OrderID is the order named in the payment metadata
func (p *Payment) OrderID() string {
	return p.Metadata["order_id"]
}

// WebhookEvent is a verified notification from the provider
type WebhookEvent struct {
	ID      string
	Type    string
	Payment *Payment
	Raw     json.RawMessage
}

// PaymentGateway abstracts the payment provider
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	// ParseWebhook verifies and decodes a notification body
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
	// VerifiesSignature is false when webhooks must be authenticated another way
	VerifiesSignature() bool
}

// MinorUnits converts an amount to the smallest currency unit
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts the smallest currency unit back to an amount
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -2)
}
