package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	path := writeEnv(t, "APP_NAME=cult-test\n")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "cult-test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mock", cfg.Payment.Gateway)
	assert.Equal(t, 12, cfg.Ticketing.EventsPageSize)
	assert.Equal(t, 30*time.Minute, cfg.Ticketing.OrderTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWithPath_Overrides(t *testing.T) {
	path := writeEnv(t, `APP_NAME=cult
SERVER_PORT=9090
KAFKA_BROKERS=k1:9092, k2:9092
PAYMENT_GATEWAY=STRIPE
STRIPE_SECRET_KEY=sk_test_123
TICKETING_ORDER_TTL=45m
`)

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "stripe", cfg.Payment.Gateway)
	assert.Equal(t, "sk_test_123", cfg.Payment.StripeSecretKey)
	assert.Equal(t, 45*time.Minute, cfg.Ticketing.OrderTTL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:       AppConfig{Name: "cult", Environment: "development"},
			Server:    ServerConfig{Port: 8080},
			JWT:       JWTConfig{Secret: "secret"},
			Payment:   PaymentConfig{Gateway: "mock"},
			Ticketing: TicketingConfig{EventsPageSize: 12},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing app name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
			c.Payment.Gateway = "stripe"
			c.Payment.StripeSecretKey = "sk_live"
		}, true},
		{"mock gateway in production", func(c *Config) { c.App.Environment = "production" }, true},
		{"stripe without key", func(c *Config) { c.Payment.Gateway = "stripe" }, true},
		{"unknown gateway", func(c *Config) { c.Payment.Gateway = "paypal" }, true},
		{"zero page size", func(c *Config) { c.Ticketing.EventsPageSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDSNAndAddr(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "cult", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cult sslmode=disable", db.DSN())

	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
