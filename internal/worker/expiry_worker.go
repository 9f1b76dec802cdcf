package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/railxam2004/CulT/pkg/logger"
	"go.uber.org/zap"
)

// OrderExpirer cancels stale pending orders; service.OrderService satisfies it
type OrderExpirer interface {
	ExpirePending(ctx context.Context, before time.Time, limit int) (int, error)
}

// ExpiryWorkerConfig contains configuration for the expiry worker
type ExpiryWorkerConfig struct {
	// OrderTTL is how long an order may stay PENDING
	OrderTTL time.Duration
	// ScanInterval is the interval between scans for stale orders
	ScanInterval time.Duration
	// BatchSize is the number of orders to process in each scan
	BatchSize int
}

// DefaultExpiryWorkerConfig returns default configuration
func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		OrderTTL:     30 * time.Minute,
		ScanInterval: time.Minute,
		BatchSize:    100,
	}
}

// ExpiryWorker cancels pending orders that were never paid
type ExpiryWorker struct {
	orders  OrderExpirer
	config  *ExpiryWorkerConfig
	log     *logger.Logger
	now     func() time.Time
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	// Stats
	totalExpired     int64
	scans            int64
	lastScanTime     time.Time
	lastExpiredCount int
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(orders OrderExpirer, config *ExpiryWorkerConfig) *ExpiryWorker {
	defaults := DefaultExpiryWorkerConfig()
	if config == nil {
		config = defaults
	}
	if config.OrderTTL <= 0 {
		config.OrderTTL = defaults.OrderTTL
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = defaults.ScanInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}

	return &ExpiryWorker{
		orders: orders,
		config: config,
		log:    logger.Get(),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start starts the expiry worker
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("expiry worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting order expiry worker",
		zap.Duration("order_ttl", w.config.OrderTTL),
		zap.Duration("scan_interval", w.config.ScanInterval),
	)

	w.wg.Add(1)
	go w.scanLoop(ctx)

	return nil
}

// Stop stops the expiry worker and waits for the current scan to finish
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping order expiry worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Order expiry worker stopped")
}

func (w *ExpiryWorker) scanLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// scan expires one batch of orders created before now - OrderTTL
func (w *ExpiryWorker) scan(ctx context.Context) {
	now := w.now()
	cutoff := now.Add(-w.config.OrderTTL)

	expired, err := w.orders.ExpirePending(ctx, cutoff, w.config.BatchSize)

	w.mu.Lock()
	w.scans++
	w.lastScanTime = now
	if err == nil {
		w.lastExpiredCount = expired
		w.totalExpired += int64(expired)
	}
	w.mu.Unlock()

	if err != nil {
		w.log.Error("Failed to expire pending orders", zap.Error(err))
		return
	}
	if expired > 0 {
		w.log.Info("Expired pending orders",
			zap.Int("count", expired),
			zap.Time("created_before", cutoff),
		)
	}
}

// GetStats returns worker statistics
func (w *ExpiryWorker) GetStats() *ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		Scans:            w.scans,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

// ExpiryWorkerStats contains worker statistics
type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	Scans            int64     `json:"scans"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}
