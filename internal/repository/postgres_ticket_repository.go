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

// PostgresTicketRepository implements TicketRepository
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketDetailsSelect = `
	SELECT tk.id, tk.order_id, tk.user_id, tk.event_id, tk.event_tariff_id, tk.code,
	       tk.is_used, tk.used_at, tk.created_at,
	       e.title, e.slug, c.name, e.starts_at, e.duration_minutes, e.location, e.organizer_id,
	       t.name, et.price, u.name, u.email
	FROM tickets tk
	JOIN events e ON e.id = tk.event_id
	JOIN categories c ON c.id = e.category_id
	JOIN event_tariffs et ON et.id = tk.event_tariff_id
	JOIN tariffs t ON t.id = et.tariff_id
	JOIN users u ON u.id = tk.user_id`

func scanTicketDetails(row pgx.Row) (*domain.TicketDetails, error) {
	d := &domain.TicketDetails{}
	err := row.Scan(
		&d.ID, &d.OrderID, &d.UserID, &d.EventID, &d.EventTariffID, &d.Code,
		&d.IsUsed, &d.UsedAt, &d.CreatedAt,
		&d.EventTitle, &d.EventSlug, &d.CategoryName, &d.StartsAt, &d.DurationMinutes, &d.Location, &d.OrganizerID,
		&d.TariffName, &d.Price, &d.BuyerName, &d.BuyerEmail,
	)
	return d, err
}

func (r *PostgresTicketRepository) list(ctx context.Context, where string, arg any) ([]*domain.TicketDetails, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		ticketDetailsSelect+" WHERE "+where+" ORDER BY tk.created_at, tk.id", arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var out []*domain.TicketDetails
	for rows.Next() {
		d, err := scanTicketDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresTicketRepository) CreateBatch(ctx context.Context, tickets []*domain.Ticket) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.create_batch")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("tickets", len(tickets)))

	if len(tickets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(`
			INSERT INTO tickets (id, order_id, user_id, event_id, event_tariff_id, code, is_used, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.OrderID, t.UserID, t.EventID, t.EventTariffID, t.Code, t.IsUsed, t.CreatedAt)
	}
	if err = database.Conn(ctx, r.pool).SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create tickets: %w", err)
	}
	return nil
}

func (r *PostgresTicketRepository) GetDetails(ctx context.Context, id string) (d *domain.TicketDetails, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_details")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("ticket_id", id))

	d, err = scanTicketDetails(database.Conn(ctx, r.pool).QueryRow(ctx, ticketDetailsSelect+` WHERE tk.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrTicketNotFound, "ticket")
	}
	return d, nil
}

func (r *PostgresTicketRepository) GetDetailsByCode(ctx context.Context, code string) (d *domain.TicketDetails, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_details_by_code")
	defer func() { endSpan(span, err) }()

	d, err = scanTicketDetails(database.Conn(ctx, r.pool).QueryRow(ctx, ticketDetailsSelect+` WHERE tk.code = $1`, code))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrTicketNotFound, "ticket")
	}
	return d, nil
}

func (r *PostgresTicketRepository) ListDetails(ctx context.Context, ids []string) (out []*domain.TicketDetails, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_details")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("tickets", len(ids)))

	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, "tk.id = ANY($1)", ids)
}

func (r *PostgresTicketRepository) ListByUser(ctx context.Context, userID string) (out []*domain.TicketDetails, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_by_user")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	return r.list(ctx, "tk.user_id = $1", userID)
}

func (r *PostgresTicketRepository) ListByEvent(ctx context.Context, eventID string) (out []*domain.TicketDetails, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_by_event")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", eventID))

	return r.list(ctx, "tk.event_id = $1", eventID)
}

func (r *PostgresTicketRepository) SetUsed(ctx context.Context, id string, used bool, at time.Time) (changed bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.set_used")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("ticket_id", id), attribute.Bool("used", used))

	var usedAt *time.Time
	if used {
		usedAt = &at
	}
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE tickets SET is_used = $2, used_at = $3
		WHERE id = $1 AND is_used <> $2`, id, used, usedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update ticket: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
