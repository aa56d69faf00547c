package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a StoreError.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindPermission
	KindConstraint
	KindNotFound
	KindAmbiguous
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindPermission:
		return "permission denied"
	case KindConstraint:
		return "constraint violation"
	case KindNotFound:
		return "not found"
	case KindAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A *StoreError matches the sentinel of its Kind.
var (
	ErrTransport  = errors.New("store unavailable")
	ErrPermission = errors.New("permission denied")
	ErrConstraint = errors.New("constraint violation")
	ErrNotFound   = errors.New("not found")
	ErrAmbiguous  = errors.New("more than one row matched")

	// ErrSubscriptionDropped is reported when a live subscription stops
	// delivering without being closed. Nothing re-subscribes automatically.
	ErrSubscriptionDropped = errors.New("subscription dropped")

	// ErrUnauthenticated means the operation needs an active session.
	ErrUnauthenticated = errors.New("no active session")
)

// StoreError is any failure reported by the external store.
type StoreError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrPermission:
		return e.Kind == KindPermission
	case ErrConstraint:
		return e.Kind == KindConstraint
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrAmbiguous:
		return e.Kind == KindAmbiguous
	}
	return false
}

// Store builds a StoreError.
func Store(kind Kind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// ValidationError is detected locally, before any store call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
