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

// PostgresApplicationRepository implements ApplicationRepository
type PostgresApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresApplicationRepository(pool *pgxpool.Pool) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{pool: pool}
}

const applicationColumns = `id, user_id, organization_name, about, phone, status, review_comment, reviewed_by, created_at, updated_at`

func scanApplication(row pgx.Row) (*domain.OrganizerApplication, error) {
	a := &domain.OrganizerApplication{}
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.OrganizationName, &a.About, &a.Phone, &status,
		&a.ReviewComment, &a.ReviewedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = domain.ApplicationStatus(status)
	return a, nil
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a *domain.OrganizerApplication) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.application.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", a.UserID))

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO organizer_applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.OrganizationName, a.About, a.Phone, string(a.Status),
		a.ReviewComment, a.ReviewedBy, a.CreatedAt, a.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return domain.ErrApplicationActive
	}
	if err != nil {
		return fmt.Errorf("failed to create organizer application: %w", err)
	}
	return nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id string) (a *domain.OrganizerApplication, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.application.get_by_id")
	defer func() { endSpan(span, err) }()

	a, err = scanApplication(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM organizer_applications WHERE id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, domain.ErrApplicationNotFound, "organizer application")
	}
	return a, nil
}

func (r *PostgresApplicationRepository) query(ctx context.Context, where string, arg any) ([]*domain.OrganizerApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM organizer_applications`
	var args []any
	if where != "" {
		query += " WHERE " + where
		args = append(args, arg)
	}
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer applications: %w", err)
	}
	defer rows.Close()

	var out []*domain.OrganizerApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organizer application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresApplicationRepository) ListByUser(ctx context.Context, userID string) (out []*domain.OrganizerApplication, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.application.list_by_user")
	defer func() { endSpan(span, err) }()

	return r.query(ctx, "user_id = $1", userID)
}

func (r *PostgresApplicationRepository) List(ctx context.Context, status domain.ApplicationStatus) (out []*domain.OrganizerApplication, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.application.list")
	defer func() { endSpan(span, err) }()

	if status == "" {
		return r.query(ctx, "", nil)
	}
	return r.query(ctx, "status = $1", string(status))
}

func (r *PostgresApplicationRepository) Update(ctx context.Context, a *domain.OrganizerApplication) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.application.update")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("application_id", a.ID), attribute.String("status", string(a.Status)))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE organizer_applications
		SET status = $2, review_comment = $3, reviewed_by = $4, updated_at = NOW()
		WHERE id = $1`,
		a.ID, string(a.Status), a.ReviewComment, a.ReviewedBy)
	if err != nil {
		return fmt.Errorf("failed to update organizer application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}
