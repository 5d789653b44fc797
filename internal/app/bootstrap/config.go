package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceID string

	Host     string
	HTTPPort int
	GRPCPort int
	LogLevel slog.Level

	ProfilesPerPage             int
	ProductRegistrationsPerPage int
	UseSampleData               bool
	SeedFile                    string

	RedisURL                      string
	KafkaBrokers                  []string
	KafkaTopicProductCreated      string
	KafkaTopicRegistrationCreated string

	CacheTTL           time.Duration
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	TracingEnabled    bool
	TracingExporter   string
	TracingEndpoint   string
	TracingSampleRate float64
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		Host     string `yaml:"host"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"service"`
	Catalog struct {
		ProfilesPerPage             int    `yaml:"profiles_per_page"`
		ProductRegistrationsPerPage int    `yaml:"product_registrations_per_page"`
		UseSampleData               *bool  `yaml:"use_sample_data"`
		SeedFile                    string `yaml:"seed_file"`
		CacheTTLSeconds             int    `yaml:"cache_ttl_seconds"`
		IdempotencyTTLHours         int    `yaml:"idempotency_ttl_hours"`
	} `yaml:"catalog"`
	Dependencies struct {
		RedisURL                      string   `yaml:"redis_url"`
		KafkaBrokers                  []string `yaml:"kafka_brokers"`
		KafkaTopicProductCreated      string   `yaml:"kafka_topic_product_created"`
		KafkaTopicRegistrationCreated string   `yaml:"kafka_topic_registration_created"`
	} `yaml:"dependencies"`
	Outbox struct {
		PollSeconds int `yaml:"poll_seconds"`
		BatchSize   int `yaml:"batch_size"`
	} `yaml:"outbox"`
	Tracing struct {
		Enabled    bool    `yaml:"enabled"`
		Exporter   string  `yaml:"exporter"`
		Endpoint   string  `yaml:"otlp_endpoint"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`
}

func defaultConfig() Config {
	return Config{
		ServiceID:                     "profile-api",
		Host:                          "0.0.0.0",
		HTTPPort:                      3000,
		GRPCPort:                      9090,
		LogLevel:                      slog.LevelInfo,
		ProfilesPerPage:               30,
		ProductRegistrationsPerPage:   30,
		UseSampleData:                 true,
		KafkaTopicProductCreated:      "product.created",
		KafkaTopicRegistrationCreated: "product_registration.created",
		CacheTTL:                      5 * time.Minute,
		IdempotencyTTL:                24 * time.Hour,
		OutboxPollInterval:            2 * time.Second,
		OutboxBatchSize:               100,
		TracingExporter:               "none",
		TracingSampleRate:             1.0,
	}
}

// LoadConfig layers defaults, the optional YAML file at path and the
// environment, in that order. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if applyErr := cfg.applyFile(f); applyErr != nil {
			return Config{}, applyErr
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.Host = envOrDefault("APP_HOST", cfg.Host)
	cfg.HTTPPort = envInt("APP_PORT", envInt("HTTP_PORT", cfg.HTTPPort))
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.ProfilesPerPage = envInt("APP_PROFILES_PER_PAGE", cfg.ProfilesPerPage)
	cfg.ProductRegistrationsPerPage = envInt("APP_PRODUCT_REGISTRATIONS_PER_PAGE", cfg.ProductRegistrationsPerPage)
	cfg.UseSampleData = envBool("APP_USE_SAMPLE_DATA", cfg.UseSampleData)
	cfg.SeedFile = envOrDefault("APP_SEED_FILE", cfg.SeedFile)
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicProductCreated = envOrDefault("KAFKA_TOPIC_PRODUCT_CREATED", cfg.KafkaTopicProductCreated)
	cfg.KafkaTopicRegistrationCreated = envOrDefault("KAFKA_TOPIC_REGISTRATION_CREATED", cfg.KafkaTopicRegistrationCreated)
	cfg.CacheTTL = time.Duration(envInt("CACHE_TTL_SECONDS", int(cfg.CacheTTL.Seconds()))) * time.Second
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.TracingEnabled = envBool("TRACING_ENABLED", cfg.TracingEnabled)
	cfg.TracingExporter = envOrDefault("TRACING_EXPORTER", cfg.TracingExporter)
	cfg.TracingEndpoint = envOrDefault("TRACING_OTLP_ENDPOINT", cfg.TracingEndpoint)
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", cfg.TracingSampleRate)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
		}
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("invalid http port %d", cfg.HTTPPort)
	}
	if cfg.GRPCPort < 0 || cfg.GRPCPort > 65535 {
		return Config{}, fmt.Errorf("invalid grpc port %d", cfg.GRPCPort)
	}
	if cfg.ProfilesPerPage <= 0 || cfg.ProductRegistrationsPerPage <= 0 {
		return Config{}, fmt.Errorf("page sizes must be positive")
	}
	return cfg, nil
}

func (cfg *Config) applyFile(f configFile) error {
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.Host != "" {
		cfg.Host = f.Service.Host
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Service.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(f.Service.LogLevel)); err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
	}
	if f.Catalog.ProfilesPerPage > 0 {
		cfg.ProfilesPerPage = f.Catalog.ProfilesPerPage
	}
	if f.Catalog.ProductRegistrationsPerPage > 0 {
		cfg.ProductRegistrationsPerPage = f.Catalog.ProductRegistrationsPerPage
	}
	if f.Catalog.UseSampleData != nil {
		cfg.UseSampleData = *f.Catalog.UseSampleData
	}
	if f.Catalog.SeedFile != "" {
		cfg.SeedFile = f.Catalog.SeedFile
	}
	if f.Catalog.CacheTTLSeconds > 0 {
		cfg.CacheTTL = time.Duration(f.Catalog.CacheTTLSeconds) * time.Second
	}
	if f.Catalog.IdempotencyTTLHours > 0 {
		cfg.IdempotencyTTL = time.Duration(f.Catalog.IdempotencyTTLHours) * time.Hour
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaTopicProductCreated != "" {
		cfg.KafkaTopicProductCreated = f.Dependencies.KafkaTopicProductCreated
	}
	if f.Dependencies.KafkaTopicRegistrationCreated != "" {
		cfg.KafkaTopicRegistrationCreated = f.Dependencies.KafkaTopicRegistrationCreated
	}
	if f.Outbox.PollSeconds > 0 {
		cfg.OutboxPollInterval = time.Duration(f.Outbox.PollSeconds) * time.Second
	}
	if f.Outbox.BatchSize > 0 {
		cfg.OutboxBatchSize = f.Outbox.BatchSize
	}
	cfg.TracingEnabled = f.Tracing.Enabled
	if f.Tracing.Exporter != "" {
		cfg.TracingExporter = f.Tracing.Exporter
	}
	if f.Tracing.Endpoint != "" {
		cfg.TracingEndpoint = f.Tracing.Endpoint
	}
	if f.Tracing.SampleRate > 0 {
		cfg.TracingSampleRate = f.Tracing.SampleRate
	}
	return nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(name string, fallback float64) float64 {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(name string, fallback bool) bool {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func envCSV(name string, fallback []string) []string {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(value, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
