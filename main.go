package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/di"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/gateway"
	"github.com/railxam2004/CulT/internal/handler"
	"github.com/railxam2004/CulT/internal/mailer"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/internal/ticketpdf"
	"github.com/railxam2004/CulT/internal/worker"
	"github.com/railxam2004/CulT/migrations"
	"github.com/railxam2004/CulT/pkg/config"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/kafka"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/middleware"
	pkgredis "github.com/railxam2004/CulT/pkg/redis"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ticketing API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// Initialize telemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
		MetricsEnabled: cfg.OTel.MetricsEnabled,
	}); err != nil {
		appLog.Warn("Telemetry init failed, continuing without export", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()
	if err := metrics.Init(); err != nil {
		appLog.Warn("Failed to register metrics", zap.Error(err))
	}

	// Initialize database connection
	db, err := database.NewPostgres(ctx, database.FromConfig(&cfg.Database, cfg.OTel.Enabled))
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Apply(ctx, db.Pool())
		if err != nil {
			appLog.Fatal("Database migration failed", zap.Error(err))
		}
		appLog.Info("Database schema up to date", zap.Int("applied", applied))
	}

	// Initialize Redis connection
	redisClient, err := pkgredis.NewClient(ctx, pkgredis.FromConfig(&cfg.Redis, cfg.OTel.Enabled))
	if err != nil {
		appLog.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	if err := dto.RegisterValidators(); err != nil {
		appLog.Fatal("Failed to register validators", zap.Error(err))
	}

	paymentGateway, err := newGateway(cfg)
	if err != nil {
		appLog.Fatal("Payment gateway init failed", zap.Error(err))
	}
	appLog.Info("Payment gateway ready", zap.String("provider", paymentGateway.Name()))

	sender, err := mailer.New(&cfg.SMTP)
	if err != nil {
		appLog.Fatal("Mailer init failed", zap.Error(err))
	}

	currency := strings.ToUpper(cfg.Payment.Currency)
	renderer, err := ticketpdf.New(ticketpdf.Config{
		FontPath: cfg.Ticketing.PDFFontPath,
		Currency: currency,
	})
	if err != nil {
		appLog.Fatal("Ticket renderer init failed", zap.Error(err))
	}

	// Paid orders go to Kafka when enabled, otherwise tickets are mailed in-process
	var producer service.EventProducer
	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.Kafka.ClientID,
			MaxRetries:    3,
			RetryInterval: 2 * time.Second,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, mailing tickets in-process", zap.Error(err))
		} else {
			defer p.Close()
			producer = p
			appLog.Info("Kafka producer connected", zap.String("topic", cfg.Kafka.OrderPaidTopic))
		}
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		Gateway:        paymentGateway,
		Sender:         sender,
		Renderer:       renderer,
		Producer:       producer,
		OrderPaidTopic: cfg.Kafka.OrderPaidTopic,
		Version:        cfg.App.Version,
		EventCacheTTL:  cfg.Ticketing.EventCacheTTL,
		ContactNotify:  cfg.SMTP.NotifyEmail,
		AuthConfig: &service.AuthServiceConfig{
			JWTSecret:         cfg.JWT.Secret,
			Issuer:            cfg.JWT.Issuer,
			AccessTokenExpiry: cfg.JWT.AccessTokenTTL,
		},
		EventConfig:   &service.EventServiceConfig{PageSize: cfg.Ticketing.EventsPageSize},
		OrderConfig:   &service.OrderServiceConfig{Currency: currency},
		PaymentConfig: &service.PaymentServiceConfig{ReturnURL: cfg.Payment.ReturnURL},
	})

	// Setup Gin
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		telemetry.TracingMiddleware(telemetry.WithoutTracing("/health", "/ready")),
		middleware.Logger(appLog),
	)

	handler.RegisterRoutes(router, container.Handlers, &handler.RouterConfig{
		Tokens: handler.TokenValidator(container.AuthService),
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{
			Redis: redisClient.Client(),
			TTL:   cfg.Ticketing.IdempotencyTTL,
		}),
		WebhookAccounts: webhookAccounts(cfg, paymentGateway, appLog),
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, telemetry.TraceIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	})

	// Start the order expiry worker
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	expiryWorker := worker.NewExpiryWorker(container.OrderService, &worker.ExpiryWorkerConfig{
		OrderTTL:     cfg.Ticketing.OrderTTL,
		ScanInterval: cfg.Ticketing.ExpiryScanInterval,
		BatchSize:    100,
	})
	if err := expiryWorker.Start(workerCtx); err != nil {
		appLog.Fatal("Failed to start expiry worker", zap.Error(err))
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           corsHandler.Handler(router),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Ticketing API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := container.Drain(shutdownCtx); err != nil {
		appLog.Warn("Ticket mails still in flight at shutdown", zap.Error(err))
	}

	stopWorkers()
	expiryWorker.Stop()

	appLog.Info("Server exited gracefully")
}

func newGateway(cfg *config.Config) (gateway.PaymentGateway, error) {
	switch cfg.Payment.Gateway {
	case "stripe":
		return gateway.NewStripeGateway(&gateway.StripeGatewayConfig{
			SecretKey:     cfg.Payment.StripeSecretKey,
			WebhookSecret: cfg.Payment.StripeWebhookSecret,
		})
	default:
		return gateway.NewMockGateway(gateway.DefaultMockGatewayConfig()), nil
	}
}

// webhookAccounts protects notifications of gateways that do not sign them
func webhookAccounts(cfg *config.Config, gw gateway.PaymentGateway, log *logger.Logger) gin.Accounts {
	if gw.VerifiesSignature() || cfg.Payment.WebhookAuthDisabled {
		return nil
	}
	if cfg.Payment.WebhookUsername == "" || cfg.Payment.WebhookPassword == "" {
		log.Warn("Payment webhook is unauthenticated; set PAYMENT_WEBHOOK_USERNAME and PAYMENT_WEBHOOK_PASSWORD")
		return nil
	}
	return gin.Accounts{cfg.Payment.WebhookUsername: cfg.Payment.WebhookPassword}
}
