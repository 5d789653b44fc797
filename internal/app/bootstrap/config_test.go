package bootstrap

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "profile-api", cfg.ServiceID)
	assert.Equal(t, 3000, cfg.HTTPPort)
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, 30, cfg.ProfilesPerPage)
	assert.Equal(t, 30, cfg.ProductRegistrationsPerPage)
	assert.True(t, cfg.UseSampleData)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  id: catalog
  http_port: 8080
  log_level: debug
catalog:
  profiles_per_page: 10
  use_sample_data: false
  cache_ttl_seconds: 60
dependencies:
  kafka_brokers: [" broker-1:9092 ", ""]
outbox:
  poll_seconds: 5
tracing:
  enabled: true
  exporter: stdout
`), 0o600))

	t.Setenv("APP_PORT", "4000")
	t.Setenv("APP_PRODUCT_REGISTRATIONS_PER_PAGE", "15")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "catalog", cfg.ServiceID)
	assert.Equal(t, 4000, cfg.HTTPPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 10, cfg.ProfilesPerPage)
	assert.Equal(t, 15, cfg.ProductRegistrationsPerPage)
	assert.False(t, cfg.UseSampleData)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"broker-1:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.OutboxPollInterval)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "stdout", cfg.TracingExporter)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PROFILES_PER_PAGE", "5")
	t.Setenv("APP_USE_SAMPLE_DATA", "false")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5, cfg.ProfilesPerPage)
	assert.False(t, cfg.UseSampleData)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("APP_PROFILES_PER_PAGE", "0")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service: [oops"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := LoadStore(Config{UseSampleData: true}, logger)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Profiles.Len())

	store, err = LoadStore(Config{UseSampleData: false}, logger)
	require.NoError(t, err)
	assert.Zero(t, store.Profiles.Len())

	_, err = LoadStore(Config{SeedFile: filepath.Join(t.TempDir(), "none.yaml")}, logger)
	require.Error(t, err)
}
