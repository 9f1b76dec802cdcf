package service

import (
	"context"
	"sync"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/logger"
	"go.uber.org/zap"
)

// OrderNotifier is told about every order that became PAID
type OrderNotifier interface {
	OrderPaid(ctx context.Context, evt *domain.OrderPaidEvent) error
}

// EventProducer publishes JSON messages; *kafka.Producer satisfies it
type EventProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error
}

// KafkaNotifier publishes paid orders for the ticket mailer
type KafkaNotifier struct {
	producer EventProducer
	topic    string
}

func NewKafkaNotifier(producer EventProducer, topic string) *KafkaNotifier {
	if topic == "" {
		topic = domain.OrderPaidTopic
	}
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) OrderPaid(ctx context.Context, evt *domain.OrderPaidEvent) error {
	return n.producer.ProduceJSON(ctx, n.topic, evt.OrderID, evt, map[string]string{
		"event_type": "order.paid",
	})
}

// DeliveryNotifier mails the tickets in the background of the request
type DeliveryNotifier struct {
	delivery TicketDeliveryService
	inFlight sync.WaitGroup
}

func NewDeliveryNotifier(delivery TicketDeliveryService) *DeliveryNotifier {
	return &DeliveryNotifier{delivery: delivery}
}

// OrderPaid detaches from the request so a slow SMTP server never blocks the buyer
func (n *DeliveryNotifier) OrderPaid(ctx context.Context, evt *domain.OrderPaidEvent) error {
	ctx = context.WithoutCancel(ctx)
	n.inFlight.Add(1)
	go func() {
		defer n.inFlight.Done()
		if err := n.delivery.Deliver(ctx, evt); err != nil {
			logger.Get().WithContext(ctx).Error("ticket delivery failed",
				zap.String("order_id", evt.OrderID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Wait blocks until started deliveries finish or ctx ends
func (n *DeliveryNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoopNotifier ignores paid orders
type NoopNotifier struct{}

func (NoopNotifier) OrderPaid(context.Context, *domain.OrderPaidEvent) error { return nil }
