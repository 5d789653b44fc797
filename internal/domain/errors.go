package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("conflict")
	ErrUnknownReference    = errors.New("unknown reference")
	ErrIdempotencyConflict = errors.New("idempotency conflict")
)

// ConflictError reports the leaf SKUs a profile already holds actively.
// It matches ErrConflict under errors.Is.
type ConflictError struct {
	SKUs SKUSet
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: duplicate registration of %s", ErrConflict, strings.Join(e.SKUs.Sorted(), ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
