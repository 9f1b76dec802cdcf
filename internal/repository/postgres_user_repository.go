package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresUserRepository implements UserRepository
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, phone, role, is_active, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.create")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", user.ID))

	_, err = database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, strings.ToLower(user.Email), user.PasswordHash, user.Name, user.Phone,
		string(user.Role), user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (user *domain.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_id")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", id))

	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user *domain.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_email")
	defer func() { endSpan(span, err) }()

	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
}

func (r *PostgresUserRepository) get(ctx context.Context, query string, arg string) (*domain.User, error) {
	user := &domain.User{}
	var role string
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Phone,
		&role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrUserNotFound, "user")
	}
	user.Role = domain.Role(role)
	return user, nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user *domain.User) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.update_profile")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", user.ID))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1`,
		user.ID, user.Name, user.Phone,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.update_role")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user_id", id), attribute.String("role", string(role)))

	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, string(role))
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
