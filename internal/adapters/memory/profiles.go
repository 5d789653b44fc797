package memory

import (
	"context"

	"github.com/n0madsky/profile-api-assignment/internal/domain"
)

// ProfileCatalog is an immutable, id-ordered list of profiles. Profile ids
// are dense and start at 1.
type ProfileCatalog struct {
	profiles []domain.Profile
}

func NewProfileCatalog(profiles ...domain.Profile) *ProfileCatalog {
	return &ProfileCatalog{profiles: append([]domain.Profile(nil), profiles...)}
}

func (c *ProfileCatalog) List(_ context.Context, start uint64, count int) []domain.Profile {
	total := uint64(len(c.profiles))
	if count <= 0 || start >= total {
		return []domain.Profile{}
	}
	end := start + uint64(count)
	if end > total || end < start {
		end = total
	}
	return append([]domain.Profile(nil), c.profiles[start:end]...)
}

func (c *ProfileCatalog) Get(_ context.Context, id uint64) (domain.Profile, bool) {
	if id == 0 || id > uint64(len(c.profiles)) {
		return domain.Profile{}, false
	}
	return c.profiles[id-1], true
}

func (c *ProfileCatalog) Len() int {
	return len(c.profiles)
}
