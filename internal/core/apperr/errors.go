package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("sign in required")
	ErrForbidden       = errors.New("not allowed")
	ErrNotFound        = errors.New("not found")
	ErrSaveInFlight    = errors.New("save already in progress")
)

// ValidationError is a local rejection raised before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation reports a user-facing message for field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type BackendKind int

const (
	KindGeneric BackendKind = iota
	KindTimeout
)

func (k BackendKind) String() string {
	if k == KindTimeout {
		return "timeout"
	}
	return "generic"
}

// BackendError wraps any failure of a create/list/delete call.
type BackendError struct {
	Op   string
	Kind BackendKind
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Backend classifies err for op. Domain sentinels pass through untouched so
// callers can still tell "not found" from a transport failure.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	kind := KindGeneric
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &BackendError{Op: op, Kind: kind, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsTimeout(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Kind == KindTimeout
}

func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
