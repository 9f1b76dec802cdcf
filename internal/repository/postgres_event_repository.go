package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresEventRepository implements EventRepository
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventSelect = `
	SELECT e.id, e.title, e.slug, e.description, e.category_id, c.name, e.organizer_id,
	       e.starts_at, e.duration_minutes, e.location, e.capacity, e.available_tickets,
	       e.views_count, e.is_active, e.status, e.published_at, e.moderated_by,
	       e.moderation_comment, e.created_at, e.updated_at
	FROM events e
	JOIN categories c ON c.id = e.category_id`

func scanEvent(row pgx.Row, extra ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	dest := []any{
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.CategoryID, &e.CategoryName, &e.OrganizerID,
		&e.StartsAt, &e.DurationMinutes, &e.Location, &e.Capacity, &e.AvailableTickets,
		&e.ViewsCount, &e.IsActive, &status, &e.PublishedAt, &e.ModeratedBy,
		&e.ModerationComment, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}

func (r *PostgresEventRepository) Create(ctx context.Context, e *domain.Event) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", e.ID))

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO events (
			id, title, slug, description, category_id, organizer_id, starts_at,
			duration_minutes, location, capacity, available_tickets, is_active, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.Title, e.Slug, e.Description, e.CategoryID, e.OrganizerID, e.StartsAt,
		e.DurationMinutes, e.Location, e.Capacity, e.AvailableTickets, e.IsActive, string(e.Status),
		e.CreatedAt, e.UpdatedAt,
	)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) Update(ctx context.Context, e *domain.Event) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", e.ID))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE events SET
			title = $2, description = $3, category_id = $4, starts_at = $5,
			duration_minutes = $6, location = $7, capacity = $8, is_active = $9,
			updated_at = NOW()
		WHERE id = $1`,
		e.ID, e.Title, e.Description, e.CategoryID, e.StartsAt,
		e.DurationMinutes, e.Location, e.Capacity, e.IsActive,
	)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresEventRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", id))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (e *domain.Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", id))

	e, err = scanEvent(database.Conn(ctx, r.pool).QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrEventNotFound, "event")
	}
	return e, nil
}

func (r *PostgresEventRepository) GetBySlug(ctx context.Context, slug string) (e *domain.Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_slug")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("slug", slug))

	e, err = scanEvent(database.Conn(ctx, r.pool).QueryRow(ctx, eventSelect+` WHERE e.slug = $1`, slug))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrEventNotFound, "event")
	}
	return e, nil
}

func (r *PostgresEventRepository) SlugExists(ctx context.Context, slug string) (exists bool, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.slug_exists")
	defer func() { endSpan(span, err) }()

	err = database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *PostgresEventRepository) List(ctx context.Context, f domain.EventFilter) (out []*domain.Event, total int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(
		attribute.String("status", string(f.Status)),
		attribute.String("category", f.CategorySlug),
		attribute.Int("limit", f.Limit),
		attribute.Int("offset", f.Offset),
	)

	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("e.status = $%d", string(f.Status))
	}
	if f.OrganizerID != "" {
		add("e.organizer_id = $%d", f.OrganizerID)
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.OnlyActive {
		where = append(where, "e.is_active")
	}

	query := strings.Replace(eventSelect, "e.updated_at", "e.updated_at, COUNT(*) OVER()", 1)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.starts_at DESC, e.id"
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var count int
		e, err := scanEvent(rows, &count)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		total = count
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate events: %w", err)
	}
	if len(out) == 0 && f.Offset > 0 && f.Limit > 0 {
		// COUNT(*) OVER() is unavailable when the page is past the end
		total, err = r.count(ctx, where, args[:len(args)-2])
		if err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *PostgresEventRepository) count(ctx context.Context, where []string, args []any) (int, error) {
	query := `SELECT COUNT(*) FROM events e JOIN categories c ON c.id = e.category_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var n int
	if err := database.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

func (r *PostgresEventRepository) IncrementViews(ctx context.Context, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.increment_views")
	defer func() { endSpan(span, err) }()

	_, err = database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE events SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, e *domain.Event) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update_status")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", e.ID), attribute.String("status", string(e.Status)))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE events SET
			status = $2, published_at = $3, moderated_by = $4, moderation_comment = $5,
			updated_at = NOW()
		WHERE id = $1`,
		e.ID, string(e.Status), e.PublishedAt, e.ModeratedBy, e.ModerationComment,
	)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *PostgresEventRepository) RecomputeAvailable(ctx context.Context, eventID string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.recompute_available")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", eventID))

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE events SET available_tickets = (
			SELECT COALESCE(SUM(GREATEST(available_quantity - sales_count, 0)), 0)
			FROM event_tariffs
			WHERE event_id = $1 AND is_active
		), updated_at = NOW()
		WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to recompute available tickets: %w", err)
	}
	return nil
}
