// Package apperrors defines the error taxonomy shared by the ledger
// services. Controllers map these sentinels onto HTTP responses, so
// services must wrap them with %w rather than returning bare fmt errors.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups for entities that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks requests rejected before any write happened.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks transient contention; callers may retry.
	ErrConflict = errors.New("conflict")
	// ErrIntegrityViolation marks stored state that breaks an invariant.
	// It is logged and, where possible, served as a degraded result.
	ErrIntegrityViolation = errors.New("integrity violation")
)

func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func IntegrityViolation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrIntegrityViolation)...)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsIntegrityViolation(err error) bool {
	return errors.Is(err, ErrIntegrityViolation)
}
