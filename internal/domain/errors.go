package domain

import (
	"errors"
	"fmt"
)

var (
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrInvalidRecipient     = errors.New("invalid recipient")
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrNotFound             = errors.New("not found")
	ErrSelfRevocation       = errors.New("self revocation rejected")
	ErrUnknownProvider      = errors.New("unknown provider")
	ErrUnknownArchetype     = errors.New("unknown archetype")
)

// QuotaError carries the counter key and limit of the quota scope
// that rejected a dispatch. It matches ErrQuotaExceeded under errors.Is.
type QuotaError struct {
	Key   string
	Limit int
}

func (e *QuotaError) Error() string { return fmt.Sprintf("%v: %s", ErrQuotaExceeded, e.Key) }
func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks a provider error as retryable. Errors without the mark
// are treated as permanent and are never retried.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
