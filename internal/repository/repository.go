package repository

import (
	"context"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
)

// Transactor runs fn in a database transaction carried by ctx.
// Repository calls made with that ctx join the transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	// Create returns domain.ErrCategoryExists on a duplicate slug
	Create(ctx context.Context, category *domain.Category) error
}

type TariffRepository interface {
	List(ctx context.Context) ([]*domain.Tariff, error)
	GetByID(ctx context.Context, id string) (*domain.Tariff, error)
	// Create returns domain.ErrTariffExists on a duplicate name
	Create(ctx context.Context, tariff *domain.Tariff) error
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, int, error)
	IncrementViews(ctx context.Context, id string) error
	// UpdateStatus persists status, published_at, moderated_by and moderation_comment
	UpdateStatus(ctx context.Context, event *domain.Event) error
	// RecomputeAvailable sets available_tickets from the active tariffs
	RecomputeAvailable(ctx context.Context, eventID string) error
}

type EventTariffRepository interface {
	ListByEvent(ctx context.Context, eventID string) ([]*domain.EventTariff, error)
	ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*domain.EventTariff, error)
	GetByID(ctx context.Context, id string) (*domain.EventTariff, error)
	// Create returns domain.ErrEventTariffExists when the pair already exists
	Create(ctx context.Context, et *domain.EventTariff) error
	Update(ctx context.Context, et *domain.EventTariff) error
	Delete(ctx context.Context, id string) error
	// LockForUpdate row-locks the tariffs in ascending id order; must run in a transaction
	LockForUpdate(ctx context.Context, ids []string) ([]*domain.EventTariff, error)
	IncrementSales(ctx context.Context, id string, quantity int) error
}

type CartRepository interface {
	GetByID(ctx context.Context, id string) (*domain.CartItem, error)
	GetByTariff(ctx context.Context, userID, eventTariffID string) (*domain.CartItem, error)
	Create(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Delete(ctx context.Context, id string) error
	ClearForUser(ctx context.Context, userID string) error
	ListLines(ctx context.Context, userID string) ([]*domain.CartLine, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// GetForUpdate row-locks the order; must run in a transaction
	GetForUpdate(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) error
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]string, error)
}

type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []*domain.Ticket) error
	GetDetails(ctx context.Context, id string) (*domain.TicketDetails, error)
	GetDetailsByCode(ctx context.Context, code string) (*domain.TicketDetails, error)
	ListDetails(ctx context.Context, ids []string) ([]*domain.TicketDetails, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.TicketDetails, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.TicketDetails, error)
	// SetUsed sets the flag and returns whether the row changed
	SetUsed(ctx context.Context, id string, used bool, at time.Time) (bool, error)
}

type PaymentRepository interface {
	// Upsert inserts or updates by payment_id
	Upsert(ctx context.Context, tx *domain.PaymentTransaction) error
	GetLatestForOrder(ctx context.Context, orderID string) (*domain.PaymentTransaction, error)
	// HasOpenPayment reports whether any payment of the order may still succeed
	HasOpenPayment(ctx context.Context, orderID string) (bool, error)
}

type ApplicationRepository interface {
	// Create returns domain.ErrApplicationActive when the user already has an active one
	Create(ctx context.Context, app *domain.OrganizerApplication) error
	GetByID(ctx context.Context, id string) (*domain.OrganizerApplication, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.OrganizerApplication, error)
	List(ctx context.Context, status domain.ApplicationStatus) ([]*domain.OrganizerApplication, error)
	Update(ctx context.Context, app *domain.OrganizerApplication) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, fav *domain.Favorite) error
	Remove(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error)
}

type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]*domain.ContactMessage, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) error
}

type DashboardRepository interface {
	Summary(ctx context.Context, scope domain.DashboardScope) (*domain.DashboardSummary, error)
	DailySales(ctx context.Context, scope domain.DashboardScope, from time.Time) ([]domain.DailySales, error)
	TopCategories(ctx context.Context, scope domain.DashboardScope, limit int) ([]domain.CategoryRevenue, error)
	TopEvents(ctx context.Context, scope domain.DashboardScope, limit int) ([]domain.EventRevenue, error)
}

// CacheInvalidator is implemented by caching decorators
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}
