package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every sentinel in the repo wraps exactly one of these so callers
// can classify with errors.Is.
var (
	ErrInvalid         = errors.New("invalid")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPolicyViolation = errors.New("policy violation")
	ErrInternal        = errors.New("internal error")
)

type KindError struct {
	Kind error
	Msg  string
}

func (e *KindError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *KindError) Unwrap() error { return e.Kind }

func Invalid(msg string) error         { return &KindError{Kind: ErrInvalid, Msg: msg} }
func NotFound(msg string) error        { return &KindError{Kind: ErrNotFound, Msg: msg} }
func Conflict(msg string) error        { return &KindError{Kind: ErrConflict, Msg: msg} }
func PolicyViolation(msg string) error { return &KindError{Kind: ErrPolicyViolation, Msg: msg} }

// Internal marks a storage or infrastructure failure. The whole call is safe to retry.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// Classify returns the kind err belongs to, treating anything unclassified as internal.
func Classify(err error) error {
	for _, kind := range []error{ErrInvalid, ErrNotFound, ErrConflict, ErrPolicyViolation, ErrInternal} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}
