package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
)

// PostgresCategoryRepository implements CategoryRepository
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

func (r *PostgresCategoryRepository) List(ctx context.Context) (out []*domain.Category, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.list")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (c *domain.Category, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.get_by_id")
	defer func() { endSpan(span, err) }()

	c = &domain.Category{}
	err = database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, slug, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrCategoryNotFound, "category")
	}
	return c, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.create")
	defer func() { endSpan(span, err) }()

	_, err = database.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Slug, c.CreatedAt)
	if database.IsUniqueViolation(err) {
		return domain.ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// PostgresTariffRepository implements TariffRepository
type PostgresTariffRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTariffRepository(pool *pgxpool.Pool) *PostgresTariffRepository {
	return &PostgresTariffRepository{pool: pool}
}

func (r *PostgresTariffRepository) List(ctx context.Context) (out []*domain.Tariff, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tariff.list")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		`SELECT id, name, description, created_at FROM tariffs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tariffs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t := &domain.Tariff{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tariff: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresTariffRepository) GetByID(ctx context.Context, id string) (t *domain.Tariff, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tariff.get_by_id")
	defer func() { endSpan(span, err) }()

	t = &domain.Tariff{}
	err = database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, description, created_at FROM tariffs WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err, domain.ErrTariffNotFound, "tariff")
	}
	return t, nil
}

func (r *PostgresTariffRepository) Create(ctx context.Context, t *domain.Tariff) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tariff.create")
	defer func() { endSpan(span, err) }()

	_, err = database.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO tariffs (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.Description, t.CreatedAt)
	if database.IsUniqueViolation(err) {
		return domain.ErrTariffExists
	}
	if err != nil {
		return fmt.Errorf("failed to create tariff: %w", err)
	}
	return nil
}
