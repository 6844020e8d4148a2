// Package apperr defines the error taxonomy surfaced by the service
// layer. Handlers map these sentinels to HTTP status codes with
// errors.Is; services never recover from them locally.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced order, item, adjustment or
	// reference record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks malformed or out-of-range input, such
	// as an unknown quality grade or a quantity that would go negative.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState marks an operation applied to an entity that is
	// no longer in the state the operation requires.
	ErrInvalidState = errors.New("invalid state")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// InvalidArgumentf wraps ErrInvalidArgument with a formatted message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// InvalidStatef wraps ErrInvalidState with a formatted message.
func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}
