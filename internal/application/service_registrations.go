package application

import (
	"context"
	"fmt"

	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"github.com/n0madsky/profile-api-assignment/internal/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (s *Service) GetProductRegistrationsForProfile(ctx context.Context, profileID uint64, start uint64, count int) []domain.ProductRegistrationRecord {
	return s.ledger.ListForProfile(ctx, profileID, start, count)
}

func (s *Service) GetProductRegistration(ctx context.Context, id uint64) (domain.ProductRegistrationRecord, bool) {
	key := s.cacheKey("registration", id)
	var cached domain.ProductRegistrationRecord
	if s.readCache(ctx, key, &cached) {
		return cached, true
	}
	rec, ok := s.ledger.Get(ctx, id)
	if ok {
		s.writeCache(ctx, key, rec)
	}
	return rec, ok
}

func (s *Service) GetRegistration(ctx context.Context, id uint64) (domain.ProductRegistrationRecord, error) {
	rec, ok := s.GetProductRegistration(ctx, id)
	if !ok {
		return domain.ProductRegistrationRecord{}, fmt.Errorf("%w: product registration %d", domain.ErrNotFound, id)
	}
	return rec, nil
}

// InsertProductRegistration registers sku for the profile together with one
// child registration per resolved leaf. It fails with a *domain.ConflictError
// when any leaf is already actively held by the profile; nothing is written
// in that case.
func (s *Service) InsertProductRegistration(ctx context.Context, profileID uint64, sku string) (domain.ProductRegistrationRecord, error) {
	if _, ok := s.profiles.Get(ctx, profileID); !ok {
		return domain.ProductRegistrationRecord{}, fmt.Errorf("%w: profile %d", domain.ErrNotFound, profileID)
	}
	if !s.products.ProductExists(ctx, sku) {
		return domain.ProductRegistrationRecord{}, fmt.Errorf("%w: product %q", domain.ErrUnknownReference, sku)
	}
	// InsertProduct does not validate, so the graph may hold malformed SKUs.
	if err := domain.ValidateSKU(sku); err != nil {
		return domain.ProductRegistrationRecord{}, err
	}

	purchaseDate := s.nowFn()
	var rec domain.ProductRegistrationRecord
	err := s.ledger.Transaction(ctx, func(tx ports.LedgerTx) error {
		candidates := s.products.ResolveLeaves(ctx, sku)
		active := tx.ActiveProductsFor(profileID, purchaseDate)
		if overlap := candidates.Intersect(active); overlap.Len() > 0 {
			return &domain.ConflictError{SKUs: overlap}
		}

		root, err := tx.Append(profileID, nil, purchaseDate, sku)
		if err != nil {
			return err
		}
		rec = domain.ProductRegistrationRecord{
			Registration: root,
			Children:     make([]domain.ProductRegistration, 0, candidates.Len()),
		}
		for _, leaf := range candidates.Sorted() {
			child, err := tx.Append(profileID, &root.ID, purchaseDate, leaf)
			if err != nil {
				return err
			}
			rec.Children = append(rec.Children, child)
		}
		return nil
	})
	if err != nil {
		return domain.ProductRegistrationRecord{}, err
	}
	return rec, nil
}

// RegisterProduct is InsertProductRegistration with idempotent replay,
// tracing and outbox notification.
func (s *Service) RegisterProduct(ctx context.Context, in RegisterProductInput, idempotencyKey string) (domain.ProductRegistrationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "registration.insert", trace.WithAttributes(
		attribute.Int64("profile_id", int64(in.ProfileID)),
		attribute.String("sku", in.SKU),
	))
	defer span.End()

	request := struct {
		Operation string               `json:"operation"`
		Input     RegisterProductInput `json:"input"`
	}{Operation: "register_product", Input: in}

	rec, err := idempotent(ctx, s, idempotencyKey, request, func() (domain.ProductRegistrationRecord, error) {
		rec, err := s.InsertProductRegistration(ctx, in.ProfileID, in.SKU)
		if err != nil {
			return rec, err
		}
		s.enqueueRegistrationCreated(ctx, rec)
		return rec, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "product registration rejected",
			"module", "application.registrations",
			"layer", "application",
			"operation", "register_product",
			"outcome", "rejected",
			"profile_id", in.ProfileID,
			"sku", in.SKU,
			"error", err,
		)
		return domain.ProductRegistrationRecord{}, err
	}

	span.SetAttributes(attribute.Int64("registration_id", int64(rec.Registration.ID)))
	s.logger.InfoContext(ctx, "product registered",
		"module", "application.registrations",
		"layer", "application",
		"operation", "register_product",
		"outcome", "success",
		"profile_id", in.ProfileID,
		"sku", in.SKU,
		"registration_id", rec.Registration.ID,
		"children", len(rec.Children),
	)
	return rec, nil
}
