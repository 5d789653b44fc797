package domain

import "time"

// IsActive reports whether the registration grants its product at now.
// A registration without an expiry never lapses; otherwise it is active
// strictly before ExpiryAt.
func IsActive(reg ProductRegistration, now time.Time) bool {
	if reg.ExpiryAt == nil {
		return true
	}
	return now.Before(*reg.ExpiryAt)
}
