package application

import (
	"context"
	"fmt"

	"github.com/n0madsky/profile-api-assignment/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (s *Service) GetProfiles(ctx context.Context, start uint64, count int) []domain.Profile {
	return s.profiles.List(ctx, start, count)
}

func (s *Service) GetProfile(ctx context.Context, id uint64) (domain.Profile, bool) {
	key := s.cacheKey("profile", id)
	var cached domain.Profile
	if s.readCache(ctx, key, &cached) {
		return cached, true
	}
	profile, ok := s.profiles.Get(ctx, id)
	if ok {
		s.writeCache(ctx, key, profile)
	}
	return profile, ok
}

// ListProfiles returns the given zero-based page of profiles.
func (s *Service) ListProfiles(ctx context.Context, page uint64) []domain.Profile {
	start, ok := pageStart(page, s.cfg.ProfilesPerPage)
	if !ok {
		return []domain.Profile{}
	}
	return s.GetProfiles(ctx, start, s.cfg.ProfilesPerPage)
}

func (s *Service) ListProfileRegistrations(ctx context.Context, profileID uint64, page uint64) ([]domain.ProductRegistrationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "registration.list", trace.WithAttributes(
		attribute.Int64("profile_id", int64(profileID)),
		attribute.Int64("page", int64(page)),
	))
	defer span.End()

	if _, ok := s.GetProfile(ctx, profileID); !ok {
		return nil, fmt.Errorf("%w: profile %d", domain.ErrNotFound, profileID)
	}
	start, ok := pageStart(page, s.cfg.ProductRegistrationsPerPage)
	if !ok {
		return []domain.ProductRegistrationRecord{}, nil
	}
	return s.GetProductRegistrationsForProfile(ctx, profileID, start, s.cfg.ProductRegistrationsPerPage), nil
}
