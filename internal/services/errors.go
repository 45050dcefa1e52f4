package services

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidState           = errors.New("invalid state")
	ErrForbidden              = errors.New("forbidden")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
}

// storeError maps a missing row to ErrNotFound and anything else to
// ErrPersistenceUnavailable.
func storeError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(what)
	}
	return persistenceError(err)
}
