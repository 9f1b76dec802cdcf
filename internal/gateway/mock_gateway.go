package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/shopspring/decimal"
)

// MockGateway keeps payments in memory; used in development and tests
type MockGateway struct {
	config   *MockGatewayConfig
	mu       sync.RWMutex
	payments map[string]*Payment
	byKey    map[string]string
}

type MockGatewayConfig struct {
	// AutoSucceed makes GetPayment report every payment as succeeded
	AutoSucceed bool
}

func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{AutoSucceed: true}
}

func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	return &MockGateway{
		config:   config,
		payments: make(map[string]*Payment),
		byKey:    make(map[string]string),
	}
}

func (g *MockGateway) Name() string {
	return "mock"
}

func (g *MockGateway) VerifiesSignature() bool {
	return false
}

func (g *MockGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
	if req == nil {
		return nil, fmt.Errorf("payment request is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.byKey[req.IdempotenceKey]; ok && req.IdempotenceKey != "" {
		return clonePayment(g.payments[id]), nil
	}

	id := "mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	p := &Payment{
		ID:              id,
		Status:          domain.PaymentStatusPending,
		ProviderStatus:  "pending",
		Amount:          req.Amount,
		Currency:        strings.ToUpper(req.Currency),
		ClientSecret:    id + "_secret",
		ConfirmationURL: confirmationURL(req.ReturnURL, req.OrderID, id),
		Metadata:        map[string]string{"order_id": req.OrderID, "user_id": req.UserID},
	}
	p.Raw, _ = json.Marshal(mockObject(p))

	g.payments[id] = p
	if req.IdempotenceKey != "" {
		g.byKey[req.IdempotenceKey] = id
	}
	return clonePayment(p), nil
}

func (g *MockGateway) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	if g.config.AutoSucceed && p.Status == domain.PaymentStatusPending {
		p.Status = domain.PaymentStatusSucceeded
		p.ProviderStatus = "succeeded"
		p.Raw, _ = json.Marshal(mockObject(p))
	}
	return clonePayment(p), nil
}

// SetStatus changes a stored payment; used by tests and the dev webhook
func (g *MockGateway) SetStatus(paymentID string, status domain.PaymentStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.payments[paymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.Status = status
	p.ProviderStatus = string(status)
	return nil
}

type mockAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type mockPaymentObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   mockAmount        `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

type mockNotification struct {
	Event  string            `json:"event"`
	Object mockPaymentObject `json:"object"`
}

// ParseWebhook decodes {"event": "payment.succeeded", "object": {...}}.
// Authentication is done by the HTTP layer.
func (g *MockGateway) ParseWebhook(payload []byte, _ string) (*WebhookEvent, error) {
	var n mockNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !strings.HasPrefix(n.Event, "payment.") || n.Object.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, n.Event)
	}

	amount, err := decimal.NewFromString(n.Object.Amount.Value)
	if err != nil && n.Object.Amount.Value != "" {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrMalformedPayload, n.Object.Amount.Value)
	}
	metadata := n.Object.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &WebhookEvent{
		ID:   n.Object.ID,
		Type: n.Event,
		Payment: &Payment{
			ID:             n.Object.ID,
			Status:         mockStatus(n.Object.Status),
			ProviderStatus: n.Object.Status,
			Amount:         amount,
			Currency:       n.Object.Amount.Currency,
			Metadata:       metadata,
			Raw:            payload,
		},
		Raw: payload,
	}, nil
}

func mockStatus(s string) domain.PaymentStatus {
	switch s {
	case "succeeded":
		return domain.PaymentStatusSucceeded
	case "canceled":
		return domain.PaymentStatusCanceled
	case "failed":
		return domain.PaymentStatusFailed
	}
	return domain.PaymentStatusPending
}

func mockObject(p *Payment) mockPaymentObject {
	return mockPaymentObject{
		ID:       p.ID,
		Status:   p.ProviderStatus,
		Amount:   mockAmount{Value: p.Amount.StringFixed(2), Currency: p.Currency},
		Metadata: p.Metadata,
	}
}

func confirmationURL(returnURL, orderID, paymentID string) string {
	if returnURL == "" {
		return ""
	}
	u, err := url.Parse(returnURL)
	if err != nil {
		return returnURL
	}
	q := u.Query()
	q.Set("order_id", orderID)
	q.Set("payment_id", paymentID)
	u.RawQuery = q.Encode()
	return u.String()
}

func clonePayment(p *Payment) *Payment {
	cp := *p
	cp.Metadata = make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}
