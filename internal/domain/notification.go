package domain

import "time"

// OrderPaidTopic is the default Kafka topic for paid orders
const OrderPaidTopic = "ticketing.order.paid"

// OrderPaidEvent is published after an order is finalized
type OrderPaidEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TicketIDs []string  `json:"ticket_ids"`
	PaidAt    time.Time `json:"paid_at"`
}
