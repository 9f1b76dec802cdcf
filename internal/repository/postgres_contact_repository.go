package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
)

// PostgresContactRepository implements ContactRepository
type PostgresContactRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresContactRepository(pool *pgxpool.Pool) *PostgresContactRepository {
	return &PostgresContactRepository{pool: pool}
}

func (r *PostgresContactRepository) Create(ctx context.Context, m *domain.ContactMessage) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.contact.create")
	defer func() { endSpan(span, err) }()

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message, string(m.Status), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

func (r *PostgresContactRepository) List(ctx context.Context, status domain.ContactStatus, limit, offset int) (out []*domain.ContactMessage, total int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.contact.list")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, email, phone, subject, message, status, created_at, updated_at, COUNT(*) OVER()
		FROM contact_messages
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m := &domain.ContactMessage{}
		var st string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &st,
			&m.CreatedAt, &m.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact message: %w", err)
		}
		m.Status = domain.ContactStatus(st)
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *PostgresContactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.contact.update_status")
	defer func() { endSpan(span, err) }()

	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE contact_messages SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update contact message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
