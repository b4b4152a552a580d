package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailure aborts processing before any storage access.
	ErrAuthenticationFailure = errors.New("webhook: authentication failure")
	// ErrMalformedPayload aborts processing before any storage access.
	ErrMalformedPayload = errors.New("webhook: malformed payload")
	// ErrEntityNotFound means the referenced entity is unknown to the store.
	ErrEntityNotFound = errors.New("webhook: entity not found")
	// ErrUnrecognizedEvent marks an event kind the store does not act on.
	ErrUnrecognizedEvent = errors.New("webhook: unrecognized event")
	// ErrNoReconciler means no reconciler is registered for an entity type.
	ErrNoReconciler = errors.New("webhook: no reconciler registered")
)

// MalformedPayloadError describes why a body could not be normalized.
type MalformedPayloadError struct {
	Field  string
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed payload: %s", e.Reason)
	}
	return fmt.Sprintf("malformed payload: %s: %s", e.Field, e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error {
	return ErrMalformedPayload
}

// Malformed builds a MalformedPayloadError.
func Malformed(field, reason string) error {
	return &MalformedPayloadError{Field: field, Reason: reason}
}

// SideEffectError wraps a failed best-effort write that ran after the primary
// transition committed.
type SideEffectError struct {
	Name string
	Err  error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect %s failed: %v", e.Name, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}
