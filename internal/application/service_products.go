package application

import (
	"context"
	"fmt"
	"time"

	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (s *Service) ProductExists(ctx context.Context, sku string) bool {
	return s.products.ProductExists(ctx, sku)
}

// InsertProduct stores sku unconditionally. Unknown bundled SKUs are skipped.
func (s *Service) InsertProduct(ctx context.Context, sku string, bundled []string, activeFor *time.Duration) domain.SKUSet {
	return s.products.InsertProduct(ctx, sku, bundled, activeFor)
}

// CreateProduct validates and adds a new product, returning its leaf set.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput, idempotencyKey string) (domain.SKUSet, error) {
	ctx, span := s.tracer.Start(ctx, "product.create", trace.WithAttributes(attribute.String("sku", in.SKU)))
	defer span.End()

	request := struct {
		Operation string             `json:"operation"`
		Input     CreateProductInput `json:"input"`
	}{Operation: "create_product", Input: in}

	leaves, err := idempotent(ctx, s, idempotencyKey, request, func() (domain.SKUSet, error) {
		return s.createProduct(ctx, in)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return leaves, nil
}

func (s *Service) createProduct(ctx context.Context, in CreateProductInput) (domain.SKUSet, error) {
	if err := domain.ValidateSKU(in.SKU); err != nil {
		return nil, err
	}
	if err := domain.ValidateBundledSKUs(in.BundledProducts); err != nil {
		return nil, err
	}
	if err := domain.ValidateActiveFor(in.ActiveFor); err != nil {
		return nil, err
	}

	leaves, err := s.products.CreateProduct(ctx, in.SKU, in.BundledProducts, in.ActiveFor)
	if err != nil {
		s.logger.WarnContext(ctx, "product creation rejected",
			"module", "application.products",
			"layer", "application",
			"operation", "create_product",
			"outcome", "rejected",
			"sku", in.SKU,
			"error", err,
		)
		return nil, err
	}

	s.enqueueProductCreated(ctx, in, leaves)
	s.logger.InfoContext(ctx, "product created",
		"module", "application.products",
		"layer", "application",
		"operation", "create_product",
		"outcome", "success",
		"sku", in.SKU,
		"leaves", leaves.Len(),
	)
	return leaves, nil
}

func (s *Service) GetProduct(ctx context.Context, sku string) (domain.Product, error) {
	if err := domain.ValidateSKU(sku); err != nil {
		return domain.Product{}, err
	}
	product, ok := s.products.Product(ctx, sku)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, sku)
	}
	return product, nil
}

// ResolveProduct returns the leaf set sku grants when registered.
func (s *Service) ResolveProduct(ctx context.Context, sku string) (domain.SKUSet, error) {
	if err := domain.ValidateSKU(sku); err != nil {
		return nil, err
	}
	if !s.products.ProductExists(ctx, sku) {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, sku)
	}
	return s.products.ResolveLeaves(ctx, sku), nil
}
