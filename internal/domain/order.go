package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus moves PENDING -> PAID | CANCELED and never back
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

func (s OrderStatus) String() string { return string(s) }

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = "RUB"

type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CanceledAt  *time.Time      `json:"canceled_at,omitempty"`
	Items       []*OrderItem    `json:"items,omitempty"`
}

// OrderItem snapshots the price at checkout
type OrderItem struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	EventID       string          `json:"event_id"`
	EventTariffID string          `json:"event_tariff_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	EventTitle    string          `json:"event_title,omitempty"`
	TariffName    string          `json:"tariff_name,omitempty"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (o *Order) IsPending() bool { return o.Status == OrderStatusPending }

// RecalculateTotal sets TotalAmount from the items
func (o *Order) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	o.TotalAmount = total.Round(2)
}

// TicketCount is the number of units across all items
func (o *Order) TicketCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Cancel moves a pending order to CANCELED
func (o *Order) Cancel(at time.Time) error {
	if !o.IsPending() {
		return ErrOrderNotPending
	}
	o.Status = OrderStatusCanceled
	o.CanceledAt = &at
	return nil
}

// MarkPaid moves a pending order to PAID
func (o *Order) MarkPaid(at time.Time) error {
	if !o.IsPending() {
		return ErrOrderNotPending
	}
	o.Status = OrderStatusPaid
	o.PaidAt = &at
	return nil
}

// CartItem is one (user, event tariff) line of a cart
type CartItem struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	EventTariffID string    `json:"event_tariff_id"`
	Quantity      int       `json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// CartLine is a cart item joined with its event and tariff
type CartLine struct {
	Item       *CartItem
	Tariff     *EventTariff
	EventID    string
	EventTitle string
	EventSlug  string
	StartsAt   time.Time
}

func (l *CartLine) LineTotal() decimal.Decimal {
	return l.Tariff.Price.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

// Cart is the full cart of a user
type Cart struct {
	Lines []*CartLine
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.LineTotal())
	}
	return total.Round(2)
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }
