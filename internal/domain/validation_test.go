package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSKU(t *testing.T) {
	t.Parallel()

	for _, sku := range []string{"ARIE4", "AKB48", "X", "123"} {
		if err := ValidateSKU(sku); err != nil {
			t.Fatalf("expected %q to be valid, got %v", sku, err)
		}
	}
	for _, sku := range []string{"", "  ", "arie4", "ARIE-4", "AR IE4", "ÄRIE4"} {
		err := ValidateSKU(sku)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", sku, err)
		}
	}
}

func TestValidateBundledSKUs(t *testing.T) {
	t.Parallel()

	if err := ValidateBundledSKUs(nil); err != nil {
		t.Fatalf("expected empty bundle to be valid, got %v", err)
	}
	if err := ValidateBundledSKUs([]string{"ARCC4", "bad"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestValidateActiveFor(t *testing.T) {
	t.Parallel()

	d := time.Hour
	if err := ValidateActiveFor(&d); err != nil {
		t.Fatalf("expected positive duration to be valid, got %v", err)
	}
	if err := ValidateActiveFor(nil); err != nil {
		t.Fatalf("expected nil duration to be valid, got %v", err)
	}
	zero := time.Duration(0)
	if err := ValidateActiveFor(&zero); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
