package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound         = errors.New("resource not found")
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)

	// Input validation
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidRowCount  = fmt.Errorf("%w: row count must be positive", ErrInvalidInput)
	ErrInvalidAgeRange  = fmt.Errorf("%w: age_min must not exceed age_max", ErrInvalidInput)
	ErrUnknownCity      = fmt.Errorf("%w: unknown city", ErrInvalidInput)
	ErrUnknownCategory  = fmt.Errorf("%w: unknown product category", ErrInvalidInput)
	ErrUnknownField     = fmt.Errorf("%w: unknown field", ErrInvalidInput)
	ErrNotNumeric       = fmt.Errorf("%w: field is not numeric", ErrInvalidInput)
	ErrNotCategorical   = fmt.Errorf("%w: field is not categorical", ErrInvalidInput)
	ErrInvalidBuckets   = fmt.Errorf("%w: invalid bucket definition", ErrInvalidInput)
	ErrInvalidRecord    = fmt.Errorf("%w: record outside declared domain", ErrInvalidInput)
	ErrNotConfigured    = errors.New("component not configured")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// NewValidationError wraps ErrInvalidInput with the offending field.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// IsNotFoundError reports whether err is a not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError reports whether err was caused by rejected input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
