package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/n0madsky/profile-api-assignment/internal/adapters/cache"
	eventadapter "github.com/n0madsky/profile-api-assignment/internal/adapters/events"
	grpcadapter "github.com/n0madsky/profile-api-assignment/internal/adapters/grpc"
	httpadapter "github.com/n0madsky/profile-api-assignment/internal/adapters/http"
	"github.com/n0madsky/profile-api-assignment/internal/adapters/memory"
	"github.com/n0madsky/profile-api-assignment/internal/application"
	"github.com/n0madsky/profile-api-assignment/internal/ports"
	"github.com/n0madsky/profile-api-assignment/internal/tracing"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	grpcServer *grpcadapter.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel})).With("service", cfg.ServiceID)
}

// LoadStore builds the in-memory store from the configured seed: the seed
// file when set, the built-in sample data when enabled, otherwise empty.
func LoadStore(cfg Config, logger *slog.Logger) (*memory.Store, error) {
	var seed memory.Seed
	var err error
	switch {
	case cfg.SeedFile != "":
		seed, err = memory.LoadSeedFile(cfg.SeedFile)
	case cfg.UseSampleData:
		seed, err = memory.ExampleSeed()
	}
	if err != nil {
		return nil, err
	}
	return memory.NewStore(logger, seed)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(os.Stdout, cfg)
	slog.SetDefault(logger)

	tracer, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SampleRate:   cfg.TracingSampleRate,
		ServiceName:  cfg.ServiceID,
	})
	if err != nil {
		return nil, err
	}

	store, err := LoadStore(cfg, logger)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	instanceID := uuid.NewString()
	logger = logger.With("instance_id", instanceID)

	var closers []io.Closer
	cacheStore := ports.Cache(cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL))
	if cfg.RedisURL != "" {
		redisClient, redisErr := cache.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			logger.WarnContext(ctx, "redis cache disabled, using in-process cache", "error", redisErr)
		} else {
			cacheStore = cache.NewRedisCache(redisClient, cfg.ServiceID+":")
			closers = append(closers, redisClient)
		}
	}

	service := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:                 cfg.ServiceID,
			InstanceID:                  instanceID,
			ProfilesPerPage:             cfg.ProfilesPerPage,
			ProductRegistrationsPerPage: cfg.ProductRegistrationsPerPage,
			CacheTTL:                    cfg.CacheTTL,
			IdempotencyTTL:              cfg.IdempotencyTTL,
		},
		Profiles:    store.Profiles,
		Products:    store.Products,
		Ledger:      store.Ledger,
		Outbox:      store.Outbox,
		Idempotency: store.Idempotency,
		Cache:       cacheStore,
		Tracer:      tracer.Tracer(),
		Logger:      logger,
	})

	handler := httpadapter.NewHandler(service, logger)
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.HTTPPort)),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var grpcServer *grpcadapter.Server
	if cfg.GRPCPort > 0 {
		grpcServer = grpcadapter.NewServer(logger)
	}

	publisher := ports.EventPublisher(eventadapter.NewLoggingPublisher(logger))
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, pubErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, map[string]string{
			"product.created":              cfg.KafkaTopicProductCreated,
			"product_registration.created": cfg.KafkaTopicRegistrationCreated,
		})
		if pubErr != nil {
			logger.WarnContext(ctx, "kafka publisher disabled, using logging publisher", "error", pubErr)
		} else {
			publisher = kafkaPublisher
			closers = append(closers, kafkaPublisher)
		}
	}
	outbox := eventadapter.NewOutboxWorker(logger, store.Outbox, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		httpServer: httpServer,
		grpcServer: grpcServer,
		outbox:     outbox,
		cleanupFn: func(ctx context.Context) {
			for _, closer := range closers {
				_ = closer.Close()
			}
			_ = tracer.Shutdown(ctx)
		},
	}, nil
}

func (r *Runtime) Service() *application.Service {
	return r.service
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 3)

	var grpcLis net.Listener
	if r.grpcServer != nil {
		lis, err := net.Listen("tcp", net.JoinHostPort(r.cfg.Host, fmt.Sprint(r.cfg.GRPCPort)))
		if err != nil {
			r.cleanupFn(context.Background())
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcLis = lis
	}

	r.logger.InfoContext(ctx, "runtime starting",
		"module", "bootstrap.runtime",
		"layer", "app",
		"operation", "run_api",
		"http_addr", r.httpServer.Addr,
		"grpc_port", r.cfg.GRPCPort,
	)
	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if r.grpcServer != nil {
		go func() {
			if err := r.grpcServer.Serve(grpcLis); err != nil {
				errCh <- err
			}
		}()
	}
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go func() {
		if err := r.outbox.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", runErr)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	if r.grpcServer != nil {
		r.grpcServer.GracefulStop()
	}
	cancelWorker()
	r.cleanupFn(shutdownCtx)
	return runErr
}
