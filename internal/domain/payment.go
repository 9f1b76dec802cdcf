package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the normalized provider status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusCanceled || s == PaymentStatusFailed
}

// HoldsOrder reports whether an order with this payment must stay PENDING.
// Only a payment the provider has canceled or failed releases the order.
func (s PaymentStatus) HoldsOrder() bool {
	return s != PaymentStatusCanceled && s != PaymentStatusFailed
}

// PaymentTransaction records every provider interaction for an order
type PaymentTransaction struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	OrderID    string          `json:"order_id"`
	PaymentID  string          `json:"payment_id"`
	Status     PaymentStatus   `json:"status"`
	Event      string          `json:"event"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
