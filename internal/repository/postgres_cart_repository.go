package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresCartRepository implements CartRepository
type PostgresCartRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCartRepository(pool *pgxpool.Pool) *PostgresCartRepository {
	return &PostgresCartRepository{pool: pool}
}

func scanCartItem(row pgx.Row) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := row.Scan(&item.ID, &item.UserID, &item.EventTariffID, &item.Quantity, &item.CreatedAt)
	return item, err
}

func (r *PostgresCartRepository) GetByID(ctx context.Context, id string) (item *domain.CartItem, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.get_by_id")
	defer func() { endSpan(span, err) }()

	item, err = scanCartItem(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, user_id, event_tariff_id, quantity, created_at FROM cart_items WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrCartItemNotFound, "cart item")
	}
	return item, nil
}

func (r *PostgresCartRepository) GetByTariff(ctx context.Context, userID, eventTariffID string) (item *domain.CartItem, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.get_by_tariff")
	defer func() { endSpan(span, err) }()

	item, err = scanCartItem(database.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, event_tariff_id, quantity, created_at
		FROM cart_items WHERE user_id = $1 AND event_tariff_id = $2`, userID, eventTariffID))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrCartItemNotFound, "cart item")
	}
	return item, nil
}

func (r *PostgresCartRepository) Create(ctx context.Context, item *domain.CartItem) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", item.UserID), attribute.Int("quantity", item.Quantity))

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO cart_items (id, user_id, event_tariff_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.UserID, item.EventTariffID, item.Quantity, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (r *PostgresCartRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.update_quantity")
	defer func() { endSpan(span, err) }()

	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *PostgresCartRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.delete")
	defer func() { endSpan(span, err) }()

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *PostgresCartRepository) ClearForUser(ctx context.Context, userID string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.clear")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	if _, err = database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *PostgresCartRepository) ListLines(ctx context.Context, userID string) (lines []*domain.CartLine, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.cart.list_lines")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT ci.id, ci.user_id, ci.event_tariff_id, ci.quantity, ci.created_at,
		       et.id, et.event_id, et.tariff_id, t.name, et.price, et.available_quantity,
		       et.sales_count, et.is_active, et.created_at,
		       e.title, e.slug, e.starts_at
		FROM cart_items ci
		JOIN event_tariffs et ON et.id = ci.event_tariff_id
		JOIN tariffs t ON t.id = et.tariff_id
		JOIN events e ON e.id = et.event_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.CartItem{}
		et := &domain.EventTariff{}
		line := &domain.CartLine{Item: item, Tariff: et}
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.EventTariffID, &item.Quantity, &item.CreatedAt,
			&et.ID, &et.EventID, &et.TariffID, &et.TariffName, &et.Price, &et.AvailableQuantity,
			&et.SalesCount, &et.IsActive, &et.CreatedAt,
			&line.EventTitle, &line.EventSlug, &line.StartsAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		line.EventID = et.EventID
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
