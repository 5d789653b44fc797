package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"github.com/n0madsky/profile-api-assignment/internal/ports"
	"go.opentelemetry.io/otel/trace"
)

const (
	eventProductCreated             = "product.created"
	eventProductRegistrationCreated = "product_registration.created"
	eventSchemaVersion              = "1.0"
)

func pageStart(page uint64, size int) (uint64, bool) {
	if size <= 0 || page > math.MaxUint64/uint64(size) {
		return 0, false
	}
	return page * uint64(size), true
}

func hashRequest(v any) string {
	raw, _ := json.Marshal(v)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (s *Service) reserveIdempotency(ctx context.Context, key, requestHash string) error {
	now := s.nowFn()
	err := s.idempotency.Reserve(ctx, key, requestHash, now, now.Add(s.cfg.IdempotencyTTL))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdempotencyConflict, err)
	}
	return nil
}

// idempotent runs fn once per key. A repeated key with the same request
// replays the stored result; a different request or one still in flight is
// an idempotency conflict. Failed attempts release the key.
func idempotent[T any](ctx context.Context, s *Service, key string, request any, fn func() (T, error)) (T, error) {
	var zero T
	if key == "" || s.idempotency == nil {
		return fn()
	}

	requestHash := hashRequest(request)
	existing, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil {
		return zero, err
	}
	if existing != nil {
		if existing.RequestHash != requestHash || existing.ResponseBody == nil {
			return zero, fmt.Errorf("%w: key %q", domain.ErrIdempotencyConflict, key)
		}
		var replay T
		if err := json.Unmarshal(existing.ResponseBody, &replay); err != nil {
			return zero, fmt.Errorf("decode idempotent response: %w", err)
		}
		return replay, nil
	}

	if err := s.reserveIdempotency(ctx, key, requestHash); err != nil {
		return zero, err
	}
	out, err := fn()
	if err != nil {
		_ = s.idempotency.Release(ctx, key)
		return zero, err
	}
	if body, err := json.Marshal(out); err == nil {
		_ = s.idempotency.Complete(ctx, key, 0, body, s.nowFn())
	}
	return out, nil
}

func (s *Service) cacheKey(kind string, id uint64) string {
	return fmt.Sprintf("%s:%s:%d", s.cfg.InstanceID, kind, id)
}

func (s *Service) readCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logCacheFailure(ctx, "cache_get", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logCacheFailure(ctx, "cache_decode", key, err)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logCacheFailure(ctx, "cache_delete", key, err)
		}
		return false
	}
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cfg.CacheTTL); err != nil {
		s.logCacheFailure(ctx, "cache_set", key, err)
	}
}

func (s *Service) logCacheFailure(ctx context.Context, operation, key string, err error) {
	s.logger.WarnContext(ctx, "cache unavailable, using store",
		"module", "application.cache",
		"layer", "application",
		"operation", operation,
		"outcome", "degraded",
		"key", key,
		"error", err,
	)
}

type productCreatedEventData struct {
	SKU              string   `json:"sku"`
	BundledProducts  []string `json:"bundled_products"`
	ActiveForSeconds *int64   `json:"active_for_seconds,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

type registrationChildData struct {
	RegistrationID uint64 `json:"registration_id"`
	Product        string `json:"product"`
}

type productRegistrationCreatedEventData struct {
	RegistrationID     uint64                  `json:"registration_id"`
	ProfileID          uint64                  `json:"profile_id"`
	Product            string                  `json:"product"`
	SerialCode         string                  `json:"serial_code"`
	PurchaseDate       string                  `json:"purchase_date"`
	ExpiryAt           string                  `json:"expiry_at,omitempty"`
	AdditionalProducts []registrationChildData `json:"additional_products"`
}

func (s *Service) enqueueProductCreated(ctx context.Context, in CreateProductInput, leaves domain.SKUSet) {
	occurredAt := s.nowFn()
	data := productCreatedEventData{
		SKU:             in.SKU,
		BundledProducts: leaves.Sorted(),
		CreatedAt:       occurredAt.Format(time.RFC3339),
	}
	if in.ActiveFor != nil {
		seconds := int64(in.ActiveFor.Seconds())
		data.ActiveForSeconds = &seconds
	}
	s.enqueueEvent(ctx, eventProductCreated, in.SKU, "data.sku", occurredAt, data)
}

func (s *Service) enqueueRegistrationCreated(ctx context.Context, rec domain.ProductRegistrationRecord) {
	root := rec.Registration
	data := productRegistrationCreatedEventData{
		RegistrationID:     root.ID,
		ProfileID:          root.ProfileID,
		Product:            root.Product,
		SerialCode:         root.SerialCode,
		PurchaseDate:       root.PurchaseDate.Format(time.RFC3339),
		AdditionalProducts: make([]registrationChildData, 0, len(rec.Children)),
	}
	if root.ExpiryAt != nil {
		data.ExpiryAt = root.ExpiryAt.Format(time.RFC3339)
	}
	for _, child := range rec.Children {
		data.AdditionalProducts = append(data.AdditionalProducts, registrationChildData{RegistrationID: child.ID, Product: child.Product})
	}
	partitionKey := strconv.FormatUint(root.ProfileID, 10)
	s.enqueueEvent(ctx, eventProductRegistrationCreated, partitionKey, "data.profile_id", root.PurchaseDate, data)
}

// enqueueEvent writes the event to the outbox. Outbox failures are logged;
// the state change they describe has already been committed.
func (s *Service) enqueueEvent(ctx context.Context, eventType, partitionKey, partitionKeyPath string, occurredAt time.Time, data any) {
	if s.outbox == nil {
		return
	}
	traceID := ""
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		traceID = sc.TraceID().String()
	}
	eventID := uuid.New()
	payloadEnvelope := map[string]any{
		"event_id":           eventID.String(),
		"event_type":         eventType,
		"occurred_at":        occurredAt.Format(time.RFC3339),
		"source_service":     s.cfg.ServiceName,
		"trace_id":           traceID,
		"schema_version":     eventSchemaVersion,
		"partition_key_path": partitionKeyPath,
		"partition_key":      partitionKey,
		"data":               data,
	}
	payload, _ := json.Marshal(payloadEnvelope)
	err := s.outbox.Enqueue(ctx, ports.OutboxEvent{
		EventID:          eventID,
		EventType:        eventType,
		PartitionKey:     partitionKey,
		PartitionKeyPath: partitionKeyPath,
		Payload:          payload,
		OccurredAt:       occurredAt,
		SchemaVersion:    eventSchemaVersion,
		TraceID:          traceID,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "outbox enqueue failed",
			"module", "application.events",
			"layer", "application",
			"operation", "enqueue",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}
