package application

import "time"

type Config struct {
	ServiceName                 string
	// InstanceID prefixes cache keys. The ledger is process-local, so cached
	// registrations must not be visible to another process sharing the cache.
	InstanceID                  string
	ProfilesPerPage             int
	ProductRegistrationsPerPage int
	CacheTTL                    time.Duration
	IdempotencyTTL              time.Duration
}

type CreateProductInput struct {
	SKU             string         `json:"sku"`
	BundledProducts []string       `json:"bundled_products"`
	ActiveFor       *time.Duration `json:"active_for,omitempty"`
}

type RegisterProductInput struct {
	ProfileID uint64 `json:"profile_id"`
	SKU       string `json:"sku"`
}
