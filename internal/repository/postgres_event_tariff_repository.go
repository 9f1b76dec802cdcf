package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresEventTariffRepository implements EventTariffRepository
type PostgresEventTariffRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEventTariffRepository(pool *pgxpool.Pool) *PostgresEventTariffRepository {
	return &PostgresEventTariffRepository{pool: pool}
}

const eventTariffSelect = `
	SELECT et.id, et.event_id, et.tariff_id, t.name, et.price, et.available_quantity,
	       et.sales_count, et.is_active, et.created_at
	FROM event_tariffs et
	JOIN tariffs t ON t.id = et.tariff_id`

func scanEventTariff(row pgx.Row) (*domain.EventTariff, error) {
	et := &domain.EventTariff{}
	err := row.Scan(&et.ID, &et.EventID, &et.TariffID, &et.TariffName, &et.Price,
		&et.AvailableQuantity, &et.SalesCount, &et.IsActive, &et.CreatedAt)
	return et, err
}

func (r *PostgresEventTariffRepository) collect(rows pgx.Rows) ([]*domain.EventTariff, error) {
	defer rows.Close()
	var out []*domain.EventTariff
	for rows.Next() {
		et, err := scanEventTariff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event tariff: %w", err)
		}
		out = append(out, et)
	}
	return out, rows.Err()
}

func (r *PostgresEventTariffRepository) ListByEvent(ctx context.Context, eventID string) (out []*domain.EventTariff, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.list_by_event")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", eventID))

	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		eventTariffSelect+` WHERE et.event_id = $1 ORDER BY et.price, t.name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event tariffs: %w", err)
	}
	return r.collect(rows)
}

func (r *PostgresEventTariffRepository) ListByEvents(ctx context.Context, eventIDs []string) (out map[string][]*domain.EventTariff, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.list_by_events")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("events", len(eventIDs)))

	out = make(map[string][]*domain.EventTariff, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		eventTariffSelect+` WHERE et.event_id = ANY($1) ORDER BY et.price, t.name`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list event tariffs: %w", err)
	}
	list, err := r.collect(rows)
	if err != nil {
		return nil, err
	}
	for _, et := range list {
		out[et.EventID] = append(out[et.EventID], et)
	}
	return out, nil
}

func (r *PostgresEventTariffRepository) GetByID(ctx context.Context, id string) (et *domain.EventTariff, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.get_by_id")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_tariff_id", id))

	et, err = scanEventTariff(database.Conn(ctx, r.pool).QueryRow(ctx, eventTariffSelect+` WHERE et.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrEventTariffNotFound, "event tariff")
	}
	return et, nil
}

func (r *PostgresEventTariffRepository) Create(ctx context.Context, et *domain.EventTariff) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", et.EventID), attribute.String("tariff_id", et.TariffID))

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO event_tariffs (id, event_id, tariff_id, price, available_quantity, sales_count, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		et.ID, et.EventID, et.TariffID, et.Price, et.AvailableQuantity, et.SalesCount, et.IsActive, et.CreatedAt,
	)
	switch {
	case database.IsUniqueViolation(err):
		return domain.ErrEventTariffExists
	case database.IsForeignKeyViolation(err):
		return domain.ErrTariffNotFound
	case err != nil:
		return fmt.Errorf("failed to create event tariff: %w", err)
	}
	return nil
}

func (r *PostgresEventTariffRepository) Update(ctx context.Context, et *domain.EventTariff) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_tariff_id", et.ID))

	// the sales_count guard keeps a concurrent sale from being undercut
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE event_tariffs SET price = $2, available_quantity = $3, is_active = $4
		WHERE id = $1 AND sales_count <= $3`,
		et.ID, et.Price, et.AvailableQuantity, et.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update event tariff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuantityBelowSales
	}
	return nil
}

func (r *PostgresEventTariffRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.delete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_tariff_id", id))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM event_tariffs WHERE id = $1 AND sales_count = 0`, id)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrEventTariffHasSales
	}
	if err != nil {
		return fmt.Errorf("failed to delete event tariff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventTariffHasSales
	}
	return nil
}

func (r *PostgresEventTariffRepository) LockForUpdate(ctx context.Context, ids []string) (out []*domain.EventTariff, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.lock_for_update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("tariffs", len(ids)))

	tx := database.TxFromContext(ctx)
	if tx == nil {
		return nil, fmt.Errorf("lock event tariffs: no transaction in context")
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	// one row at a time in id order so concurrent finalizations acquire locks in the same sequence
	for _, id := range sorted {
		et, err := scanEventTariff(tx.QueryRow(ctx, eventTariffSelect+` WHERE et.id = $1 FOR UPDATE OF et`, id))
		if err != nil {
			return nil, mapNotFound(err, domain.ErrEventTariffNotFound, "event tariff")
		}
		out = append(out, et)
	}
	return out, nil
}

func (r *PostgresEventTariffRepository) IncrementSales(ctx context.Context, id string, quantity int) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event_tariff.increment_sales")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_tariff_id", id), attribute.Int("quantity", quantity))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE event_tariffs SET sales_count = sales_count + $2
		WHERE id = $1 AND sales_count + $2 <= available_quantity`, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to increment sales: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientQuota
	}
	return nil
}
