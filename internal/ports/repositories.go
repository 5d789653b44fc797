package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/n0madsky/profile-api-assignment/internal/domain"
)

type ProfileCatalog interface {
	List(ctx context.Context, start uint64, count int) []domain.Profile
	Get(ctx context.Context, id uint64) (domain.Profile, bool)
}

type ProductGraph interface {
	// ResolveLeaves flattens the given SKUs into their leaf products.
	// Unknown SKUs contribute nothing.
	ResolveLeaves(ctx context.Context, skus ...string) domain.SKUSet
	ProductExists(ctx context.Context, sku string) bool
	// InsertProduct stores sku with the flattened leaves of bundled and
	// returns that leaf set.
	InsertProduct(ctx context.Context, sku string, bundled []string, activeFor *time.Duration) domain.SKUSet
	// CreateProduct is InsertProduct for a SKU that must not exist yet, with
	// every bundled SKU already known.
	CreateProduct(ctx context.Context, sku string, bundled []string, activeFor *time.Duration) (domain.SKUSet, error)
	ActiveFor(ctx context.Context, sku string) (time.Duration, bool)
	Product(ctx context.Context, sku string) (domain.Product, bool)
}

// LedgerTx is the view of the ledger inside an exclusive transaction.
type LedgerTx interface {
	ActiveProductsFor(profileID uint64, now time.Time) domain.SKUSet
	Append(profileID uint64, parentID *uint64, purchaseDate time.Time, sku string) (domain.ProductRegistration, error)
}

type RegistrationLedger interface {
	Get(ctx context.Context, id uint64) (domain.ProductRegistrationRecord, bool)
	ListForProfile(ctx context.Context, profileID uint64, start uint64, count int) []domain.ProductRegistrationRecord
	ActiveProductsFor(ctx context.Context, profileID uint64, now time.Time) domain.SKUSet
	// Transaction runs fn under the ledger's write lock. Registrations
	// appended by fn are discarded when it returns an error or panics.
	Transaction(ctx context.Context, fn func(tx LedgerTx) error) error
}

// ProfileRepository is the read/write contract consumed by transports.
type ProfileRepository interface {
	GetProfiles(ctx context.Context, start uint64, count int) []domain.Profile
	GetProfile(ctx context.Context, id uint64) (domain.Profile, bool)
	GetProductRegistrationsForProfile(ctx context.Context, profileID uint64, start uint64, count int) []domain.ProductRegistrationRecord
	GetProductRegistration(ctx context.Context, id uint64) (domain.ProductRegistrationRecord, bool)
	ProductExists(ctx context.Context, sku string) bool
	InsertProduct(ctx context.Context, sku string, bundled []string, activeFor *time.Duration) domain.SKUSet
	InsertProductRegistration(ctx context.Context, profileID uint64, sku string) (domain.ProductRegistrationRecord, error)
}

type OutboxEvent struct {
	EventID          uuid.UUID
	EventType        string
	PartitionKey     string
	PartitionKeyPath string
	Payload          []byte
	OccurredAt       time.Time
	SchemaVersion    string
	TraceID          string
}

type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	RetryCount   int
	PublishedAt  *time.Time
	LastError    *string
	LastErrorAt  *time.Time
	FirstSeenAt  time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, now, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
	Release(ctx context.Context, key string) error
}
