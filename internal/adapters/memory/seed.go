package memory

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed/example.yaml
var exampleSeed []byte

type Seed struct {
	Profiles      []domain.Profile
	Products      []SeedProduct
	Registrations []domain.ProductRegistration
}

// SeedProduct is a product with its direct, unflattened children.
type SeedProduct struct {
	SKU       string
	Bundles   []string
	ActiveFor *time.Duration
}

type seedFile struct {
	Profiles []struct {
		ID        uint64 `yaml:"id"`
		Email     string `yaml:"email"`
		Firstname string `yaml:"firstname"`
		Lastname  string `yaml:"lastname"`
	} `yaml:"profiles"`
	Products []struct {
		SKU              string   `yaml:"sku"`
		Bundles          []string `yaml:"bundles"`
		ActiveForSeconds *int64   `yaml:"active_for_seconds"`
	} `yaml:"products"`
	Registrations []struct {
		ID           uint64  `yaml:"id"`
		ProfileID    uint64  `yaml:"profile_id"`
		ParentID     *uint64 `yaml:"parent_id"`
		Product      string  `yaml:"product"`
		PurchaseDate string  `yaml:"purchase_date"`
		ExpiryAt     string  `yaml:"expiry_at"`
		SerialCode   string  `yaml:"serial_code"`
	} `yaml:"registrations"`
}

// ExampleSeed returns the built-in sample catalog.
func ExampleSeed() (Seed, error) {
	return ParseSeed(exampleSeed)
}

func LoadSeedFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}

	var out Seed
	for i, p := range f.Profiles {
		if p.ID != uint64(i)+1 {
			return Seed{}, fmt.Errorf("%w: profile id %d at position %d", domain.ErrInvalidInput, p.ID, i+1)
		}
		out.Profiles = append(out.Profiles, domain.Profile{ID: p.ID, Email: p.Email, Firstname: p.Firstname, Lastname: p.Lastname})
	}
	for _, p := range f.Products {
		if err := domain.ValidateSKU(p.SKU); err != nil {
			return Seed{}, err
		}
		if err := domain.ValidateBundledSKUs(p.Bundles); err != nil {
			return Seed{}, err
		}
		sp := SeedProduct{SKU: p.SKU, Bundles: p.Bundles}
		if p.ActiveForSeconds != nil {
			d := time.Duration(*p.ActiveForSeconds) * time.Second
			if err := domain.ValidateActiveFor(&d); err != nil {
				return Seed{}, fmt.Errorf("product %s: %w", p.SKU, err)
			}
			sp.ActiveFor = &d
		}
		out.Products = append(out.Products, sp)
	}
	for _, r := range f.Registrations {
		purchase, err := time.Parse(time.RFC3339, r.PurchaseDate)
		if err != nil {
			return Seed{}, fmt.Errorf("%w: registration %d purchase_date: %v", domain.ErrInvalidInput, r.ID, err)
		}
		reg := domain.ProductRegistration{
			ID:           r.ID,
			ProfileID:    r.ProfileID,
			ParentID:     r.ParentID,
			PurchaseDate: purchase.UTC(),
			Product:      r.Product,
			SerialCode:   r.SerialCode,
		}
		if r.ExpiryAt != "" {
			expiry, err := time.Parse(time.RFC3339, r.ExpiryAt)
			if err != nil {
				return Seed{}, fmt.Errorf("%w: registration %d expiry_at: %v", domain.ErrInvalidInput, r.ID, err)
			}
			expiry = expiry.UTC()
			reg.ExpiryAt = &expiry
		}
		out.Registrations = append(out.Registrations, reg)
	}
	return out, nil
}

// Store groups the in-memory repositories backing the service.
type Store struct {
	Profiles    *ProfileCatalog
	Products    *ProductGraph
	Ledger      *Ledger
	Idempotency *IdempotencyRepository
	Outbox      *OutboxRepository
}

func NewStore(logger *slog.Logger, seed Seed, opts ...LedgerOption) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	graph := NewProductGraph(logger)
	for _, p := range seed.Products {
		graph.PutEdges(p.SKU, p.Bundles, p.ActiveFor)
	}
	ledger := NewLedger(graph, append([]LedgerOption{WithLedgerLogger(logger)}, opts...)...)
	catalog := NewProfileCatalog(seed.Profiles...)

	ctx := context.Background()
	for _, reg := range seed.Registrations {
		if _, ok := catalog.Get(ctx, reg.ProfileID); !ok {
			return nil, fmt.Errorf("%w: registration %d references profile %d", domain.ErrUnknownReference, reg.ID, reg.ProfileID)
		}
		if !graph.ProductExists(ctx, reg.Product) {
			return nil, fmt.Errorf("%w: registration %d references product %s", domain.ErrUnknownReference, reg.ID, reg.Product)
		}
	}
	if err := ledger.Restore(seed.Registrations...); err != nil {
		return nil, err
	}

	logger.Info("memory store ready",
		"module", "memory.store",
		"layer", "adapter",
		"operation", "new_store",
		"outcome", "success",
		"profiles", catalog.Len(),
		"products", len(seed.Products),
		"registrations", len(seed.Registrations),
	)
	return &Store{
		Profiles:    catalog,
		Products:    graph,
		Ledger:      ledger,
		Idempotency: NewIdempotencyRepository(),
		Outbox:      NewOutboxRepository(),
	}, nil
}
