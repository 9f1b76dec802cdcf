package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/pkg/kafka"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/retry"
	"go.uber.org/zap"
)

// RecordSource is the consumer side of the paid-order topic; *kafka.Consumer satisfies it
type RecordSource interface {
	Poll(ctx context.Context) ([]*kafka.Record, error)
	CommitRecords(ctx context.Context, records []*kafka.Record) error
}

// TicketDeliverer mails the tickets of a paid order; service.TicketDeliveryService satisfies it
type TicketDeliverer interface {
	Deliver(ctx context.Context, evt *domain.OrderPaidEvent) error
}

// TicketMailWorkerConfig holds configuration for the ticket mail worker
type TicketMailWorkerConfig struct {
	// PollBackoff is the pause after a failed poll
	PollBackoff time.Duration
	Retry       *retry.Config
}

// TicketMailWorker consumes paid orders and e-mails their tickets.
// Deliveries that keep failing are parked in the dead letter topic.
type TicketMailWorker struct {
	config   *TicketMailWorkerConfig
	source   RecordSource
	delivery TicketDeliverer
	dlq      *retry.DLQHandler
	log      *logger.Logger

	delivered  atomic.Int64
	deadLetter atomic.Int64
}

// NewTicketMailWorker creates a worker; a nil publisher drops failed messages
func NewTicketMailWorker(cfg *TicketMailWorkerConfig, source RecordSource, delivery TicketDeliverer, publisher retry.DLQPublisher) *TicketMailWorker {
	if cfg == nil {
		cfg = &TicketMailWorkerConfig{}
	}
	if cfg.PollBackoff <= 0 {
		cfg.PollBackoff = time.Second
	}
	if cfg.Retry == nil {
		cfg.Retry = &retry.Config{
			MaxRetries:      3,
			InitialInterval: 2 * time.Second,
			MaxInterval:     30 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		}
	}

	w := &TicketMailWorker{
		config:   cfg,
		source:   source,
		delivery: delivery,
		log:      logger.Get(),
	}
	w.dlq = retry.NewDLQHandler(publisher, cfg.Retry, "ticket-mailer", w.onDeadLetter)
	return w
}

// Start consumes until ctx is canceled or the consumer is closed. It stops
// with an error when a failed message cannot be parked in the dead letter
// topic; that message and the rest of its batch stay uncommitted so the
// group redelivers them after a restart.
func (w *TicketMailWorker) Start(ctx context.Context) error {
	w.log.Info("Ticket mail worker started")
	defer w.log.Info("Ticket mail worker stopped",
		zap.Int64("delivered", w.delivered.Load()),
		zap.Int64("dead_lettered", w.deadLetter.Load()),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		records, err := w.source.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, kafka.ErrClientClosed) {
				return nil
			}
			w.log.Error("Failed to poll Kafka", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.config.PollBackoff):
			}
			continue
		}
		if len(records) == 0 {
			continue
		}

		handled, procErr := w.processRecords(ctx, records)

		if handled > 0 {
			if err := w.source.CommitRecords(ctx, records[:handled]); err != nil {
				w.log.Error("Failed to commit offsets", zap.Error(err))
			}
		}
		if procErr != nil {
			w.log.Error("Dead letter topic unavailable, stopping without commit",
				zap.Int("uncommitted", len(records)-handled),
				zap.Error(procErr),
			)
			return procErr
		}
	}
}

// processRecords returns how many leading records are done with
func (w *TicketMailWorker) processRecords(ctx context.Context, records []*kafka.Record) (int, error) {
	for i, record := range records {
		if err := w.processRecord(ctx, record); err != nil {
			if errors.Is(err, retry.ErrDLQPublish) {
				return i, err
			}
			w.log.Error("Ticket delivery failed",
				zap.String("topic", record.Topic),
				zap.String("key", string(record.Key)),
				zap.Error(err),
			)
			continue
		}
		w.delivered.Add(1)
	}
	return len(records), nil
}

func (w *TicketMailWorker) processRecord(ctx context.Context, record *kafka.Record) error {
	msgCtx := &retry.MessageContext{
		ID:      record.Topic + "/" + strconv.Itoa(int(record.Partition)) + "/" + strconv.FormatInt(record.Offset, 10),
		Topic:   record.Topic,
		Key:     string(record.Key),
		Payload: json.RawMessage(record.Value),
		Headers: record.Headers,
	}

	return w.dlq.ProcessWithDLQ(ctx, msgCtx, func(ctx context.Context) error {
		var evt domain.OrderPaidEvent
		if err := json.Unmarshal(record.Value, &evt); err != nil {
			return retry.Permanent(fmt.Errorf("failed to unmarshal order paid event: %w", err))
		}
		if evt.OrderID == "" {
			return retry.Permanent(fmt.Errorf("order paid event has no order id"))
		}
		return w.delivery.Deliver(ctx, &evt)
	})
}

func (w *TicketMailWorker) onDeadLetter(msg *retry.DLQMessage) {
	w.deadLetter.Add(1)
	metrics.RecordMailFailure(context.Background(), "ticket_dlq")
	w.log.Warn("Moving ticket mail to dead letter topic",
		zap.String("message_id", msg.ID),
		zap.String("order_id", msg.OriginalKey),
		zap.Int("attempts", msg.Attempts),
		zap.String("error", msg.Error),
	)
}

// Stats returns delivered and dead-lettered message counts
func (w *TicketMailWorker) Stats() (delivered, deadLettered int64) {
	return w.delivered.Load(), w.deadLetter.Load()
}
