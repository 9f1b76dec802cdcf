package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/railxam2004/CulT/pkg/config"
)

// integrationClient connects to TEST_REDIS_HOST or skips
func integrationClient(t *testing.T) *Client {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Password = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.MaxRetries = 0

	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(&config.RedisConfig{Host: "cache", Port: 6380, DB: 2}, true)

	if cfg.Addr() != "cache:6380" {
		t.Errorf("Addr() = %s, want cache:6380", cfg.Addr())
	}
	if cfg.DB != 2 {
		t.Errorf("DB = %d, want 2", cfg.DB)
	}
	if cfg.PoolSize != DefaultConfig().PoolSize {
		t.Errorf("PoolSize should fall back to default, got %d", cfg.PoolSize)
	}
	if !cfg.Tracing {
		t.Error("Tracing should be enabled")
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.MaxRetries = 0
	cfg.DialTimeout = 200 * time.Millisecond

	if _, err := NewClient(context.Background(), cfg); err == nil {
		t.Error("expected connection error")
	}
}

func TestClient_JSONRoundTrip_Integration(t *testing.T) {
	client := integrationClient(t)
	ctx := context.Background()
	key := "test:json:" + uuid.NewString()
	defer client.Del(ctx, key)

	type payload struct {
		Title string `json:"title"`
		Seats int    `json:"seats"`
	}
	if err := client.SetJSON(ctx, key, payload{"Jazz night", 40}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var got payload
	if err := client.GetJSON(ctx, key, &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.Title != "Jazz night" || got.Seats != 40 {
		t.Errorf("unexpected payload %+v", got)
	}

	if err := client.GetJSON(ctx, key+":missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestClient_DeleteByPrefix_Integration(t *testing.T) {
	client := integrationClient(t)
	ctx := context.Background()
	prefix := "test:prefix:" + uuid.NewString() + ":"

	for _, k := range []string{"a", "b", "c"} {
		client.Set(ctx, prefix+k, "1", time.Minute)
	}

	n, err := client.DeleteByPrefix(ctx, prefix)
	if err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d keys, want 3", n)
	}
}

func TestClient_HealthCheck_Integration(t *testing.T) {
	client := integrationClient(t)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
