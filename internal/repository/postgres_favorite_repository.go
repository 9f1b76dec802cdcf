package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
)

// PostgresFavoriteRepository implements FavoriteRepository
type PostgresFavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFavoriteRepository(pool *pgxpool.Pool) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{pool: pool}
}

// Add is idempotent
func (r *PostgresFavoriteRepository) Add(ctx context.Context, f *domain.Favorite) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.favorite.add")
	defer func() { endSpan(span, err) }()

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO favorites (user_id, event_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id) DO NOTHING`, f.UserID, f.EventID, f.CreatedAt)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID, eventID string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.favorite.remove")
	defer func() { endSpan(span, err) }()

	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *PostgresFavoriteRepository) ListByUser(ctx context.Context, userID string) (out []*domain.Favorite, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.favorite.list_by_user")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT f.user_id, f.event_id, f.created_at,
		       e.id, e.title, e.slug, e.description, e.category_id, c.name, e.organizer_id,
		       e.starts_at, e.duration_minutes, e.location, e.capacity, e.available_tickets,
		       e.views_count, e.is_active, e.status, e.published_at, e.moderated_by,
		       e.moderation_comment, e.created_at, e.updated_at
		FROM favorites f
		JOIN events e ON e.id = f.event_id
		JOIN categories c ON c.id = e.category_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f := &domain.Favorite{}
		e := &domain.Event{}
		var status string
		if err := rows.Scan(&f.UserID, &f.EventID, &f.CreatedAt,
			&e.ID, &e.Title, &e.Slug, &e.Description, &e.CategoryID, &e.CategoryName, &e.OrganizerID,
			&e.StartsAt, &e.DurationMinutes, &e.Location, &e.Capacity, &e.AvailableTickets,
			&e.ViewsCount, &e.IsActive, &status, &e.PublishedAt, &e.ModeratedBy,
			&e.ModerationComment, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		e.Status = domain.EventStatus(status)
		f.Event = e
		out = append(out, f)
	}
	return out, rows.Err()
}
