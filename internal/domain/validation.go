package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

func ValidateSKU(sku string) error {
	if strings.TrimSpace(sku) == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if !skuPattern.MatchString(sku) {
		return fmt.Errorf("%w: sku %q must contain only uppercase letters and digits", ErrInvalidInput, sku)
	}
	return nil
}

func ValidateBundledSKUs(skus []string) error {
	for _, sku := range skus {
		if err := ValidateSKU(sku); err != nil {
			return err
		}
	}
	return nil
}

func ValidateActiveFor(d *time.Duration) error {
	if d != nil && *d <= 0 {
		return fmt.Errorf("%w: active_for must be positive", ErrInvalidInput)
	}
	return nil
}
