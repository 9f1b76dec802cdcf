package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PostgresTransactor implements Transactor on a pgx pool
type PostgresTransactor struct {
	pool *pgxpool.Pool
}

func NewPostgresTransactor(pool *pgxpool.Pool) *PostgresTransactor {
	return &PostgresTransactor{pool: pool}
}

func (t *PostgresTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithTx(ctx, t.pool, fn)
}

// endSpan records err on span; expected not-found errors are not recorded
func endSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	if errors.Is(err, pgx.ErrNoRows) || domain.IsNotFoundError(err) {
		span.SetStatus(codes.Error, "not found")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// mapNotFound turns missing rows and malformed ids into notFound and
// wraps anything else
func mapNotFound(err, notFound error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidText(err) {
		return notFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
