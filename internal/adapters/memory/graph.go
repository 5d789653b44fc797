package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/n0madsky/profile-api-assignment/internal/domain"
)

// ProductGraph maps each SKU to the SKUs it bundles. Products inserted
// through InsertProduct are stored flattened; seeded edges may be raw.
type ProductGraph struct {
	mu        sync.RWMutex
	bundles   map[string]domain.SKUSet
	activeFor map[string]time.Duration
	logger    *slog.Logger
}

func NewProductGraph(logger *slog.Logger) *ProductGraph {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductGraph{
		bundles:   map[string]domain.SKUSet{},
		activeFor: map[string]time.Duration{},
		logger:    logger,
	}
}

func (g *ProductGraph) ResolveLeaves(ctx context.Context, skus ...string) domain.SKUSet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolveLocked(ctx, skus)
}

func (g *ProductGraph) resolveLocked(ctx context.Context, skus []string) domain.SKUSet {
	leaves := domain.NewSKUSet()
	visited := make(map[string]struct{}, len(skus))
	stack := append([]string(nil), skus...)
	for len(stack) > 0 {
		sku := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[sku]; seen {
			continue
		}
		visited[sku] = struct{}{}

		children, ok := g.bundles[sku]
		if !ok {
			g.logger.ErrorContext(ctx, "unresolvable product in bundle",
				"module", "memory.product_graph",
				"layer", "adapter",
				"operation", "resolve_leaves",
				"outcome", "skipped",
				"sku", sku,
			)
			continue
		}
		if len(children) == 0 {
			leaves.Add(sku)
			continue
		}
		for child := range children {
			stack = append(stack, child)
		}
	}
	return leaves
}

func (g *ProductGraph) ProductExists(_ context.Context, sku string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.bundles[sku]
	return ok
}

func (g *ProductGraph) InsertProduct(ctx context.Context, sku string, bundled []string, activeFor *time.Duration) domain.SKUSet {
	g.mu.Lock()
	defer g.mu.Unlock()
	leaves := g.resolveLocked(ctx, bundled)
	g.putLocked(sku, leaves.Clone(), activeFor)
	return leaves
}

// CreateProduct inserts a new product whose bundled SKUs must all exist.
// The checks and the insert happen under one lock.
func (g *ProductGraph) CreateProduct(ctx context.Context, sku string, bundled []string, activeFor *time.Duration) (domain.SKUSet, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.bundles[sku]; ok {
		return nil, fmt.Errorf("%w: product %s already exists", domain.ErrConflict, sku)
	}
	for _, child := range bundled {
		if _, ok := g.bundles[child]; !ok {
			return nil, fmt.Errorf("%w: bundled product %s does not exist", domain.ErrUnknownReference, child)
		}
	}
	leaves := g.resolveLocked(ctx, bundled)
	g.putLocked(sku, leaves.Clone(), activeFor)
	return leaves, nil
}

// PutEdges stores sku with its direct children as given, without flattening.
func (g *ProductGraph) PutEdges(sku string, children []string, activeFor *time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.putLocked(sku, domain.NewSKUSet(children...), activeFor)
}

func (g *ProductGraph) putLocked(sku string, children domain.SKUSet, activeFor *time.Duration) {
	g.bundles[sku] = children
	if activeFor != nil {
		g.activeFor[sku] = *activeFor
	} else {
		delete(g.activeFor, sku)
	}
}

func (g *ProductGraph) ActiveFor(_ context.Context, sku string) (time.Duration, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.activeFor[sku]
	return d, ok
}

func (g *ProductGraph) Product(_ context.Context, sku string) (domain.Product, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	children, ok := g.bundles[sku]
	if !ok {
		return domain.Product{}, false
	}
	out := domain.Product{SKU: sku, Bundles: children.Clone()}
	if d, ok := g.activeFor[sku]; ok {
		out.ActiveFor = &d
	}
	return out, true
}
