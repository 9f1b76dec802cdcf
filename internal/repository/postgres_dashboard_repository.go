package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// PostgresDashboardRepository aggregates sales for the back office
type PostgresDashboardRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDashboardRepository(pool *pgxpool.Pool) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{pool: pool}
}

// $1 is the organizer id, empty for every event
const scopeFilter = `($1 = '' OR e.organizer_id::text = $1)`

const paidSales = `
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id AND o.status = 'PAID'
	JOIN events e ON e.id = oi.event_id`

func (r *PostgresDashboardRepository) Summary(ctx context.Context, scope domain.DashboardScope) (s *domain.DashboardSummary, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.dashboard.summary")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("organizer_id", scope.OrganizerID))

	s = &domain.DashboardSummary{}
	q := database.Conn(ctx, r.pool)

	err = q.QueryRow(ctx, `
		SELECT COALESCE(SUM(oi.quantity * oi.unit_price), 0),
		       COALESCE(SUM(oi.quantity), 0),
		       COUNT(DISTINCT o.id)
		`+paidSales+`
		WHERE `+scopeFilter, scope.OrganizerID,
	).Scan(&s.Revenue, &s.TicketsSold, &s.PaidOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	err = q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE e.status = 'published' AND e.is_active),
		       COALESCE(SUM(e.available_tickets), 0)
		FROM events e
		WHERE `+scopeFilter, scope.OrganizerID,
	).Scan(&s.EventsTotal, &s.EventsOnSale, &s.Remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events: %w", err)
	}

	err = q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM tickets tk
		JOIN events e ON e.id = tk.event_id
		WHERE tk.is_used AND `+scopeFilter, scope.OrganizerID,
	).Scan(&s.CheckedIn)
	if err != nil {
		return nil, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return s, nil
}

func (r *PostgresDashboardRepository) DailySales(ctx context.Context, scope domain.DashboardScope, from time.Time) (out []domain.DailySales, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.dashboard.daily_sales")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT date_trunc('day', o.paid_at) AS day,
		       SUM(oi.quantity * oi.unit_price),
		       SUM(oi.quantity)
		`+paidSales+`
		WHERE `+scopeFilter+` AND o.paid_at >= $2
		GROUP BY day
		ORDER BY day`, scope.OrganizerID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.DailySales
		if err := rows.Scan(&d.Day, &d.Revenue, &d.TicketsSold); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresDashboardRepository) TopCategories(ctx context.Context, scope domain.DashboardScope, limit int) (out []domain.CategoryRevenue, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.dashboard.top_categories")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT c.id, c.name, SUM(oi.quantity * oi.unit_price) AS revenue, SUM(oi.quantity)
		`+paidSales+`
		JOIN categories c ON c.id = e.category_id
		WHERE `+scopeFilter+`
		GROUP BY c.id, c.name
		ORDER BY revenue DESC, c.name
		LIMIT $2`, scope.OrganizerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.CategoryRevenue
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.Revenue, &c.TicketsSold); err != nil {
			return nil, fmt.Errorf("failed to scan category revenue: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresDashboardRepository) TopEvents(ctx context.Context, scope domain.DashboardScope, limit int) (out []domain.EventRevenue, err error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.dashboard.top_events")
	defer func() { endSpan(span, err) }()

	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT e.id, e.title, SUM(oi.quantity * oi.unit_price) AS revenue, SUM(oi.quantity),
		       (SELECT COUNT(*) FROM tickets tk WHERE tk.event_id = e.id AND tk.is_used)
		`+paidSales+`
		WHERE `+scopeFilter+`
		GROUP BY e.id, e.title
		ORDER BY revenue DESC, e.title
		LIMIT $2`, scope.OrganizerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.EventRevenue
		if err := rows.Scan(&e.EventID, &e.Title, &e.Revenue, &e.TicketsSold, &e.CheckedIn); err != nil {
			return nil, fmt.Errorf("failed to scan event revenue: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
