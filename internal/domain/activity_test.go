package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsActiveWithoutExpiry(t *testing.T) {
	t.Parallel()

	reg := ProductRegistration{PurchaseDate: time.Date(2023, 3, 10, 12, 0, 0, 0, time.UTC)}
	assert.True(t, IsActive(reg, reg.PurchaseDate))
	assert.True(t, IsActive(reg, reg.PurchaseDate.AddDate(50, 0, 0)))
}

func TestIsActiveExpiryBoundary(t *testing.T) {
	t.Parallel()

	purchase := time.Date(2023, 1, 15, 15, 4, 5, 0, time.UTC)
	expiry := purchase.Add(365 * 24 * time.Hour)
	reg := ProductRegistration{PurchaseDate: purchase, ExpiryAt: &expiry}

	assert.True(t, IsActive(reg, expiry.Add(-time.Second)))
	assert.False(t, IsActive(reg, expiry))
	assert.False(t, IsActive(reg, expiry.Add(time.Second)))
}

func TestIsActiveProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		purchase := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "purchase"), 0).UTC()
		duration := time.Duration(rapid.Int64Range(1, 10*365*24*3600).Draw(t, "seconds")) * time.Second
		offset := time.Duration(rapid.Int64Range(0, 20*365*24*3600).Draw(t, "offset")) * time.Second

		expiry := purchase.Add(duration)
		reg := ProductRegistration{PurchaseDate: purchase, ExpiryAt: &expiry}
		now := purchase.Add(offset)
		if IsActive(reg, now) != (offset < duration) {
			t.Fatalf("active mismatch at offset %s for duration %s", offset, duration)
		}
	})
}
