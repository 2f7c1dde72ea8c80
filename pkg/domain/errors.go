package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidComparisonData is returned when comparison data is not a map or record.
var ErrInvalidComparisonData = errors.New("comparison data is not a map or record")

// ErrMissingComparisonData is matched by MissingComparisonDataError.
var ErrMissingComparisonData = errors.New("no comparison value provided")

// ErrInvalidAction is returned when an action envelope cannot be decoded.
var ErrInvalidAction = errors.New("invalid selection action")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrVersionNotFound is returned when a record version does not exist.
var ErrVersionNotFound = errors.New("version not found")

// MissingComparisonDataError reports the data field that had no comparison value.
type MissingComparisonDataError struct {
	Field string
}

func (e *MissingComparisonDataError) Error() string {
	return fmt.Sprintf("no comparison value provided for field %q", e.Field)
}

func (e *MissingComparisonDataError) Unwrap() error {
	return ErrMissingComparisonData
}
