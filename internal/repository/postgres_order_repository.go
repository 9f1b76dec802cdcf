package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresOrderRepository implements OrderRepository
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

const orderColumns = `id, user_id, status, total_amount, currency, created_at, paid_at, canceled_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	var status string
	if err := row.Scan(&o.ID, &o.UserID, &status, &o.TotalAmount, &o.Currency,
		&o.CreatedAt, &o.PaidAt, &o.CanceledAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

// Create inserts the order and its items in one transaction
func (r *PostgresOrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("order_id", o.ID), attribute.Int("items", len(o.Items)))

	return database.WithTx(ctx, r.pool, func(ctx context.Context) error {
		q := database.Conn(ctx, r.pool)
		if _, err := q.Exec(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.ID, o.UserID, o.Status.String(), o.TotalAmount, o.Currency, o.CreatedAt, o.PaidAt, o.CanceledAt,
		); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		batch := &pgx.Batch{}
		for _, item := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (id, order_id, event_id, event_tariff_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, o.ID, item.EventID, item.EventTariffID, item.Quantity, item.UnitPrice)
		}
		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		return nil
	})
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (o *domain.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_by_id")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("order_id", id))

	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, id string) (o *domain.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_for_update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("order_id", id))

	if database.TxFromContext(ctx) == nil {
		return nil, fmt.Errorf("lock order: no transaction in context")
	}
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresOrderRepository) get(ctx context.Context, query, id string) (*domain.Order, error) {
	o, err := scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrOrderNotFound, "order")
	}
	items, err := r.items(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *PostgresOrderRepository) items(ctx context.Context, orderIDs []string) (map[string][]*domain.OrderItem, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT oi.id, oi.order_id, oi.event_id, oi.event_tariff_id, oi.quantity, oi.unit_price,
		       e.title, t.name
		FROM order_items oi
		JOIN events e ON e.id = oi.event_id
		JOIN event_tariffs et ON et.id = oi.event_tariff_id
		JOIN tariffs t ON t.id = et.tariff_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.event_tariff_id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]*domain.OrderItem)
	for rows.Next() {
		it := &domain.OrderItem{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.EventID, &it.EventTariffID, &it.Quantity,
			&it.UnitPrice, &it.EventTitle, &it.TariffName); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID string) (out []*domain.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.list_by_user")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return out, nil
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range out {
		o.Items = items[o.ID]
	}
	return out, nil
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, o *domain.Order) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.update_status")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("order_id", o.ID), attribute.String("status", o.Status.String()))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE orders SET status = $2, paid_at = $3, canceled_at = $4
		WHERE id = $1 AND status = 'PENDING'`,
		o.ID, o.Status.String(), o.PaidAt, o.CanceledAt)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotPending
	}
	return nil
}

func (r *PostgresOrderRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) (ids []string, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.list_pending_before")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT o.id FROM orders o
		WHERE o.status = 'PENDING' AND o.created_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM payment_transactions p
			WHERE p.order_id = o.id AND p.status NOT IN ('canceled', 'failed')
		  )
		ORDER BY o.created_at
		LIMIT $2`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
