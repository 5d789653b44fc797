package application

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/n0madsky/profile-api-assignment/internal/ports"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Service struct {
	cfg         Config
	profiles    ports.ProfileCatalog
	products    ports.ProductGraph
	ledger      ports.RegistrationLedger
	outbox      ports.OutboxRepository
	idempotency ports.IdempotencyRepository
	cache       ports.Cache
	tracer      trace.Tracer
	logger      *slog.Logger
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Profiles    ports.ProfileCatalog
	Products    ports.ProductGraph
	Ledger      ports.RegistrationLedger
	Outbox      ports.OutboxRepository
	Idempotency ports.IdempotencyRepository
	Cache       ports.Cache
	Tracer      trace.Tracer
	Logger      *slog.Logger
	Now         func() time.Time
}

var _ ports.ProfileRepository = (*Service)(nil)

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "profile-api"
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.ProfilesPerPage <= 0 {
		cfg.ProfilesPerPage = 30
	}
	if cfg.ProductRegistrationsPerPage <= 0 {
		cfg.ProductRegistrationsPerPage = 30
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		cfg:         cfg,
		profiles:    deps.Profiles,
		products:    deps.Products,
		ledger:      deps.Ledger,
		outbox:      deps.Outbox,
		idempotency: deps.Idempotency,
		cache:       deps.Cache,
		tracer:      tracer,
		logger:      logger,
		nowFn:       nowFn,
	}
}

func (s *Service) Config() Config {
	return s.cfg
}
