package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = migrations.Apply(ctx, pool)
	require.NoError(t, err)
	return pool
}

type fixture struct {
	user   *domain.User
	event  *domain.Event
	tariff *domain.EventTariff
}

func seedFixture(t *testing.T, pool *pgxpool.Pool, quantity int) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	suffix := uuid.NewString()[:8]

	user := &domain.User{
		ID: uuid.NewString(), Email: "buyer-" + suffix + "@example.com", PasswordHash: "x",
		Name: "Buyer", Role: domain.RoleOrganizer, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewPostgresUserRepository(pool).Create(ctx, user))

	category := &domain.Category{ID: uuid.NewString(), Name: "Concerts " + suffix, Slug: "concerts-" + suffix, CreatedAt: now}
	require.NoError(t, NewPostgresCategoryRepository(pool).Create(ctx, category))

	tariff := &domain.Tariff{ID: uuid.NewString(), Name: "Standard " + suffix, CreatedAt: now}
	require.NoError(t, NewPostgresTariffRepository(pool).Create(ctx, tariff))

	event := &domain.Event{
		ID: uuid.NewString(), Title: "Jazz night", Slug: "jazz-" + suffix, CategoryID: category.ID,
		OrganizerID: user.ID, StartsAt: now.Add(48 * time.Hour), DurationMinutes: 90,
		Location: "Main hall", Capacity: 100, IsActive: true, Status: domain.EventStatusPublished,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, NewPostgresEventRepository(pool).Create(ctx, event))

	et := &domain.EventTariff{
		ID: uuid.NewString(), EventID: event.ID, TariffID: tariff.ID,
		Price: decimal.RequireFromString("1500.00"), AvailableQuantity: quantity, IsActive: true, CreatedAt: now,
	}
	require.NoError(t, NewPostgresEventTariffRepository(pool).Create(ctx, et))

	return fixture{user: user, event: event, tariff: et}
}

func TestPostgres_IncrementSalesRespectsQuota(t *testing.T) {
	pool := setupPool(t)
	fx := seedFixture(t, pool, 3)
	ctx := context.Background()
	tariffs := NewPostgresEventTariffRepository(pool)
	tx := NewPostgresTransactor(pool)

	err := tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := tariffs.LockForUpdate(ctx, []string{fx.tariff.ID})
		if err != nil {
			return err
		}
		require.Len(t, locked, 1)
		return tariffs.IncrementSales(ctx, fx.tariff.ID, 2)
	})
	require.NoError(t, err)

	err = tariffs.IncrementSales(ctx, fx.tariff.ID, 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuota)

	got, err := tariffs.GetByID(ctx, fx.tariff.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SalesCount)
	assert.Equal(t, 1, got.Remaining())
}

func TestPostgres_RollbackLeavesQuota(t *testing.T) {
	pool := setupPool(t)
	fx := seedFixture(t, pool, 5)
	ctx := context.Background()
	tariffs := NewPostgresEventTariffRepository(pool)

	err := NewPostgresTransactor(pool).WithTx(ctx, func(ctx context.Context) error {
		if err := tariffs.IncrementSales(ctx, fx.tariff.ID, 4); err != nil {
			return err
		}
		return domain.ErrInsufficientQuota
	})
	require.ErrorIs(t, err, domain.ErrInsufficientQuota)

	got, err := tariffs.GetByID(ctx, fx.tariff.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SalesCount)
}

func TestPostgres_OrderAndTicketLifecycle(t *testing.T) {
	pool := setupPool(t)
	fx := seedFixture(t, pool, 10)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	orders := NewPostgresOrderRepository(pool)
	order := &domain.Order{
		ID: uuid.NewString(), UserID: fx.user.ID, Status: domain.OrderStatusPending,
		Currency: domain.DefaultCurrency, CreatedAt: now,
		Items: []*domain.OrderItem{{
			ID: uuid.NewString(), EventID: fx.event.ID, EventTariffID: fx.tariff.ID,
			Quantity: 2, UnitPrice: fx.tariff.Price,
		}},
	}
	order.RecalculateTotal()
	require.NoError(t, orders.Create(ctx, order))

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("3000")))

	require.NoError(t, got.MarkPaid(now))
	require.NoError(t, orders.UpdateStatus(ctx, got))

	tickets := NewPostgresTicketRepository(pool)
	ticket := &domain.Ticket{
		ID: uuid.NewString(), OrderID: order.ID, UserID: fx.user.ID, EventID: fx.event.ID,
		EventTariffID: fx.tariff.ID, Code: domain.NewTicketCode(), CreatedAt: now,
	}
	require.NoError(t, tickets.CreateBatch(ctx, []*domain.Ticket{ticket}))

	changed, err := tickets.SetUsed(ctx, ticket.ID, true, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = tickets.SetUsed(ctx, ticket.ID, true, now)
	require.NoError(t, err)
	assert.False(t, changed)

	d, err := tickets.GetDetailsByCode(ctx, ticket.Code)
	require.NoError(t, err)
	assert.True(t, d.Ticket.IsUsed)

	summary, err := NewPostgresDashboardRepository(pool).Summary(ctx, domain.DashboardScope{OrganizerID: fx.user.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TicketsSold)
	assert.Equal(t, int64(1), summary.CheckedIn)
}

func TestPostgres_OpenPaymentHoldsPendingOrder(t *testing.T) {
	pool := setupPool(t)
	fx := seedFixture(t, pool, 10)
	ctx := context.Background()
	created := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Microsecond)

	orders := NewPostgresOrderRepository(pool)
	order := &domain.Order{
		ID: uuid.NewString(), UserID: fx.user.ID, Status: domain.OrderStatusPending,
		Currency: domain.DefaultCurrency, CreatedAt: created,
		Items: []*domain.OrderItem{{
			ID: uuid.NewString(), EventID: fx.event.ID, EventTariffID: fx.tariff.ID,
			Quantity: 1, UnitPrice: fx.tariff.Price,
		}},
	}
	order.RecalculateTotal()
	require.NoError(t, orders.Create(ctx, order))

	payments := NewPostgresPaymentRepository(pool)
	open, err := payments.HasOpenPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, open)

	tx := &domain.PaymentTransaction{
		ID: uuid.NewString(), Provider: "mock", OrderID: order.ID, PaymentID: "pi_" + uuid.NewString(),
		Status: domain.PaymentStatusPending, Event: "payment.created", Amount: order.TotalAmount,
		Currency: order.Currency, CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, payments.Upsert(ctx, tx))

	open, err = payments.HasOpenPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, open)

	ids, err := orders.ListPendingBefore(ctx, time.Now().UTC(), 1000)
	require.NoError(t, err)
	assert.NotContains(t, ids, order.ID)

	tx.Status = domain.PaymentStatusFailed
	require.NoError(t, payments.Upsert(ctx, tx))

	open, err = payments.HasOpenPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, open)

	ids, err = orders.ListPendingBefore(ctx, time.Now().UTC(), 1000)
	require.NoError(t, err)
	assert.Contains(t, ids, order.ID)
}
