package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresPaymentRepository implements PaymentRepository
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

func (r *PostgresPaymentRepository) Upsert(ctx context.Context, p *domain.PaymentTransaction) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.upsert")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("order_id", p.OrderID),
		attribute.String("payment_id", p.PaymentID),
		attribute.String("status", string(p.Status)),
	)

	var raw []byte
	if len(p.RawPayload) > 0 {
		raw = p.RawPayload
	}

	err = database.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO payment_transactions (id, provider, order_id, payment_id, status, event, amount, currency, raw_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (payment_id) DO UPDATE SET
			status = EXCLUDED.status,
			event = EXCLUDED.event,
			raw_payload = COALESCE(EXCLUDED.raw_payload, payment_transactions.raw_payload),
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		p.ID, p.Provider, p.OrderID, p.PaymentID, string(p.Status), p.Event, p.Amount, p.Currency, raw, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to upsert payment transaction: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepository) GetLatestForOrder(ctx context.Context, orderID string) (p *domain.PaymentTransaction, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.get_latest_for_order")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("order_id", orderID))

	p = &domain.PaymentTransaction{}
	var status string
	var raw []byte
	err = database.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, provider, order_id, payment_id, status, event, amount, currency, raw_payload, created_at, updated_at
		FROM payment_transactions
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, orderID,
	).Scan(&p.ID, &p.Provider, &p.OrderID, &p.PaymentID, &status, &p.Event, &p.Amount, &p.Currency, &raw, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrPaymentNotFound, "payment transaction")
	}
	p.Status = domain.PaymentStatus(status)
	p.RawPayload = raw
	return p, nil
}

func (r *PostgresPaymentRepository) HasOpenPayment(ctx context.Context, orderID string) (open bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.has_open_payment")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("order_id", orderID))

	err = database.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payment_transactions
			WHERE order_id = $1 AND status NOT IN ('canceled', 'failed')
		)`, orderID,
	).Scan(&open)
	if err != nil {
		return false, fmt.Errorf("failed to check open payments: %w", err)
	}
	return open, nil
}
