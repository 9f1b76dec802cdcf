package metrics

import (
	"context"
	"sync"

	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Order counters
	OrdersCreated  *telemetry.Counter
	OrdersPaid     *telemetry.Counter
	OrdersCanceled *telemetry.Counter
	OrdersExpired  *telemetry.Counter

	// Ticket counters
	TicketsIssued *telemetry.Counter
	CheckIns      *telemetry.Counter

	// Failure counters
	QuotaRejections *telemetry.Counter
	PaymentFailures *telemetry.Counter
	MailFailures    *telemetry.Counter

	// Histograms
	FinalizeDuration *telemetry.Histogram

	// Gauges
	PendingOrders *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init creates all ticketing instruments on the global meter provider
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	counters := []struct {
		dst  **telemetry.Counter
		name string
		desc string
	}{
		{&OrdersCreated, "ticketing_orders_created_total", "Orders created at checkout"},
		{&OrdersPaid, "ticketing_orders_paid_total", "Orders finalized as paid"},
		{&OrdersCanceled, "ticketing_orders_canceled_total", "Orders canceled by their owner"},
		{&OrdersExpired, "ticketing_orders_expired_total", "Pending orders canceled by the expiry worker"},
		{&TicketsIssued, "ticketing_tickets_issued_total", "Tickets minted on payment"},
		{&CheckIns, "ticketing_checkins_total", "Tickets marked used at the entrance"},
		{&QuotaRejections, "ticketing_quota_rejections_total", "Cart or finalization attempts rejected for lack of quota"},
		{&PaymentFailures, "ticketing_payment_failures_total", "Gateway or confirmation failures"},
		{&MailFailures, "ticketing_mail_failures_total", "Ticket or contact e-mails that could not be sent"},
	}
	for _, c := range counters {
		counter, err := telemetry.NewCounter(telemetry.MetricOpts{
			Name:        c.name,
			Description: c.desc,
			Unit:        "1",
		})
		if err != nil {
			return err
		}
		*c.dst = counter
	}

	var err error
	FinalizeDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticketing_finalize_duration_seconds",
		Description: "Duration of the order finalization transaction",
		Unit:        "s",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	if err != nil {
		return err
	}

	PendingOrders, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "ticketing_pending_orders",
		Description: "Orders waiting for payment",
		Unit:        "1",
	})
	return err
}

// RecordOrderCreated records a checkout
func RecordOrderCreated(ctx context.Context, tickets int) {
	if OrdersCreated != nil {
		OrdersCreated.Inc(ctx, attribute.Int("tickets", tickets))
	}
	if PendingOrders != nil {
		PendingOrders.Inc(ctx)
	}
}

// RecordOrderPaid records a successful finalization
func RecordOrderPaid(ctx context.Context, tickets int, durationSeconds float64) {
	if OrdersPaid != nil {
		OrdersPaid.Inc(ctx)
	}
	if TicketsIssued != nil {
		TicketsIssued.Add(ctx, int64(tickets))
	}
	if FinalizeDuration != nil {
		FinalizeDuration.Record(ctx, durationSeconds, attribute.String("outcome", "paid"))
	}
	if PendingOrders != nil {
		PendingOrders.Add(ctx, -1)
	}
}

// RecordFinalizeFailure records a rolled back finalization
func RecordFinalizeFailure(ctx context.Context, reason string, durationSeconds float64) {
	if FinalizeDuration != nil {
		FinalizeDuration.Record(ctx, durationSeconds, attribute.String("outcome", reason))
	}
}

// RecordOrderCanceled records a cancellation; expired distinguishes the worker
func RecordOrderCanceled(ctx context.Context, expired bool) {
	if expired {
		if OrdersExpired != nil {
			OrdersExpired.Inc(ctx)
		}
	} else if OrdersCanceled != nil {
		OrdersCanceled.Inc(ctx)
	}
	if PendingOrders != nil {
		PendingOrders.Add(ctx, -1)
	}
}

// RecordQuotaRejection records an attempt to exceed remaining quota
func RecordQuotaRejection(ctx context.Context, stage string) {
	if QuotaRejections != nil {
		QuotaRejections.Inc(ctx, attribute.String("stage", stage))
	}
}

// RecordPaymentFailure records a gateway error
func RecordPaymentFailure(ctx context.Context, provider, stage string) {
	if PaymentFailures != nil {
		PaymentFailures.Inc(ctx,
			attribute.String("provider", provider),
			attribute.String("stage", stage),
		)
	}
}

// RecordCheckIn records a ticket admission
func RecordCheckIn(ctx context.Context, eventID string) {
	if CheckIns != nil {
		CheckIns.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordMailFailure records an undelivered e-mail
func RecordMailFailure(ctx context.Context, kind string) {
	if MailFailures != nil {
		MailFailures.Inc(ctx, attribute.String("kind", kind))
	}
}
