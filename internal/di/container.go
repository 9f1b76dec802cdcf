package di

import (
	"context"
	"time"

	"github.com/railxam2004/CulT/internal/gateway"
	"github.com/railxam2004/CulT/internal/handler"
	"github.com/railxam2004/CulT/internal/mailer"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/redis"
)

// Container holds all dependencies of the ticketing API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	Transactor      repository.Transactor
	UserRepo        repository.UserRepository
	CategoryRepo    repository.CategoryRepository
	TariffRepo      repository.TariffRepository
	EventRepo       repository.EventRepository
	EventTariffRepo repository.EventTariffRepository
	CartRepo        repository.CartRepository
	OrderRepo       repository.OrderRepository
	PaymentRepo     repository.PaymentRepository
	TicketRepo      repository.TicketRepository
	ApplicationRepo repository.ApplicationRepository
	FavoriteRepo    repository.FavoriteRepository
	ContactRepo     repository.ContactRepository
	DashboardRepo   repository.DashboardRepository

	// Services
	AuthService           service.AuthService
	CatalogService        service.CatalogService
	EventService          service.EventService
	CartService           service.CartService
	OrderService          service.OrderService
	PaymentService        service.PaymentService
	TicketService         service.TicketService
	TicketDeliveryService service.TicketDeliveryService
	ApplicationService    service.ApplicationService
	FavoriteService       service.FavoriteService
	ContactService        service.ContactService
	DashboardService      service.DashboardService

	// Handlers
	Handlers *handler.Handlers

	// ticketMail is set when tickets are mailed in-process
	ticketMail *service.DeliveryNotifier
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB    *database.PostgresDB
	Redis *redis.Client

	Gateway  gateway.PaymentGateway
	Sender   mailer.Sender
	Renderer service.TicketRenderer
	// Producer publishes paid orders; when nil tickets are mailed in-process
	Producer       service.EventProducer
	OrderPaidTopic string

	Version       string
	EventCacheTTL time.Duration
	ContactNotify string

	AuthConfig    *service.AuthServiceConfig
	EventConfig   *service.EventServiceConfig
	OrderConfig   *service.OrderServiceConfig
	PaymentConfig *service.PaymentServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	pool := cfg.DB.Pool()
	c.Transactor = repository.NewPostgresTransactor(pool)
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.CategoryRepo = repository.NewPostgresCategoryRepository(pool)
	c.TariffRepo = repository.NewPostgresTariffRepository(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	if cfg.Redis != nil {
		c.EventRepo = repository.NewCachedEventRepository(c.EventRepo, cfg.Redis, cfg.EventCacheTTL)
	}
	c.EventTariffRepo = repository.NewPostgresEventTariffRepository(pool)
	c.CartRepo = repository.NewPostgresCartRepository(pool)
	c.OrderRepo = repository.NewPostgresOrderRepository(pool)
	c.PaymentRepo = repository.NewPostgresPaymentRepository(pool)
	c.TicketRepo = repository.NewPostgresTicketRepository(pool)
	c.ApplicationRepo = repository.NewPostgresApplicationRepository(pool)
	c.FavoriteRepo = repository.NewPostgresFavoriteRepository(pool)
	c.ContactRepo = repository.NewPostgresContactRepository(pool)
	c.DashboardRepo = repository.NewPostgresDashboardRepository(pool)

	// Initialize services
	c.TicketDeliveryService = service.NewTicketDeliveryService(c.TicketRepo, cfg.Renderer, cfg.Sender)

	var notifier service.OrderNotifier
	if cfg.Producer != nil {
		notifier = service.NewKafkaNotifier(cfg.Producer, cfg.OrderPaidTopic)
	} else {
		c.ticketMail = service.NewDeliveryNotifier(c.TicketDeliveryService)
		notifier = c.ticketMail
	}

	c.AuthService = service.NewAuthService(c.UserRepo, cfg.AuthConfig)
	c.CatalogService = service.NewCatalogService(c.CategoryRepo, c.TariffRepo)
	c.EventService = service.NewEventService(
		c.Transactor,
		c.EventRepo,
		c.EventTariffRepo,
		c.CategoryRepo,
		c.TariffRepo,
		cfg.EventConfig,
	)
	c.CartService = service.NewCartService(c.CartRepo, c.EventTariffRepo, c.EventRepo)
	c.OrderService = service.NewOrderService(
		c.Transactor,
		c.OrderRepo,
		c.CartRepo,
		c.EventTariffRepo,
		c.EventRepo,
		c.TicketRepo,
		c.PaymentRepo,
		c.UserRepo,
		notifier,
		cfg.OrderConfig,
	)
	c.PaymentService = service.NewPaymentService(
		c.Transactor,
		cfg.Gateway,
		c.PaymentRepo,
		c.OrderRepo,
		c.OrderService,
		cfg.PaymentConfig,
	)
	c.TicketService = service.NewTicketService(c.TicketRepo, c.EventRepo, cfg.Renderer)
	c.ApplicationService = service.NewApplicationService(c.Transactor, c.ApplicationRepo, c.UserRepo)
	c.FavoriteService = service.NewFavoriteService(c.FavoriteRepo, c.EventRepo)
	c.ContactService = service.NewContactService(c.ContactRepo, cfg.Sender, cfg.ContactNotify)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)

	// Initialize handlers
	checks := map[string]handler.Pinger{"postgres": cfg.DB}
	if cfg.Redis != nil {
		checks["redis"] = cfg.Redis
	}

	c.Handlers = &handler.Handlers{
		Health:      handler.NewHealthHandler(cfg.Version, checks),
		Auth:        handler.NewAuthHandler(c.AuthService),
		Catalog:     handler.NewCatalogHandler(c.CatalogService),
		Event:       handler.NewEventHandler(c.EventService),
		Cart:        handler.NewCartHandler(c.CartService),
		Order:       handler.NewOrderHandler(c.OrderService),
		Payment:     handler.NewPaymentHandler(c.PaymentService),
		Ticket:      handler.NewTicketHandler(c.TicketService),
		Application: handler.NewApplicationHandler(c.ApplicationService),
		Favorite:    handler.NewFavoriteHandler(c.FavoriteService),
		Contact:     handler.NewContactHandler(c.ContactService),
		Dashboard:   handler.NewDashboardHandler(c.DashboardService),
	}

	return c
}

// Drain waits for ticket mails started by finished requests
func (c *Container) Drain(ctx context.Context) error {
	if c.ticketMail == nil {
		return nil
	}
	return c.ticketMail.Wait(ctx)
}
