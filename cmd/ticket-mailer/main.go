package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/mailer"
	"github.com/railxam2004/CulT/internal/metrics"
	"github.com/railxam2004/CulT/internal/repository"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/internal/ticketpdf"
	"github.com/railxam2004/CulT/internal/worker"
	"github.com/railxam2004/CulT/pkg/config"
	"github.com/railxam2004/CulT/pkg/database"
	"github.com/railxam2004/CulT/pkg/kafka"
	"github.com/railxam2004/CulT/pkg/logger"
	"github.com/railxam2004/CulT/pkg/retry"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "ticket-mailer",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ticket mailer...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLog.Fatal("KAFKA_BROKERS is required for the ticket mailer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "ticket-mailer",
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
		appLog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	sender, err := mailer.New(&cfg.SMTP)
	if err != nil {
		appLog.Fatal("Mailer init failed", zap.Error(err))
	}
	renderer, err := ticketpdf.New(ticketpdf.Config{
		FontPath: cfg.Ticketing.PDFFontPath,
		Currency: strings.ToUpper(cfg.Payment.Currency),
	})
	if err != nil {
		appLog.Fatal("Ticket renderer init failed", zap.Error(err))
	}
	delivery := service.NewTicketDeliveryService(repository.NewPostgresTicketRepository(db.Pool()), renderer, sender)

	topic := cfg.Kafka.OrderPaidTopic
	if topic == "" {
		topic = domain.OrderPaidTopic
	}

	// Initialize Kafka consumer
	consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topics:         []string{topic},
		ClientID:       "ticket-mailer",
		MaxRetries:     3,
		RetryInterval:  2 * time.Second,
		SessionTimeout: 30 * time.Second,
	})
	if err != nil {
		appLog.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()
	appLog.Info("Kafka consumer connected", zap.String("topic", topic), zap.String("group", cfg.Kafka.ConsumerGroup))

	// Failed deliveries are parked in "<topic>.dlq"
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Kafka.Brokers,
		ClientID:      "ticket-mailer-dlq",
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		appLog.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer producer.Close()
	dlq := retry.NewKafkaDLQPublisher(producer, "ticket-mailer", "")

	mailWorker := worker.NewTicketMailWorker(&worker.TicketMailWorkerConfig{}, consumer, delivery, dlq)

	done := make(chan error, 1)
	go func() {
		done <- mailWorker.Start(ctx)
	}()
	appLog.Info("Ticket mailer started", zap.String("dlq_topic", dlq.Topic(topic)))

	// Wait for shutdown signal or a worker failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var workerErr error
	select {
	case <-quit:
		appLog.Info("Shutting down ticket mailer...")
		cancel()
		select {
		case workerErr = <-done:
		case <-time.After(10 * time.Second):
			appLog.Warn("Ticket mailer did not stop in time")
		}
	case workerErr = <-done:
	}

	delivered, deadLettered := mailWorker.Stats()
	if workerErr != nil {
		appLog.Error("Ticket mailer failed", zap.Error(workerErr),
			zap.Int64("delivered", delivered), zap.Int64("dead_lettered", deadLettered))
		exitCode = 1
		return
	}
	appLog.Info("Ticket mailer stopped", zap.Int64("delivered", delivered), zap.Int64("dead_lettered", deadLettered))
}
