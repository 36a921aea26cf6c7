// Package apperr defines the error kinds the service layer reports and their
// translation to HTTP responses. Handlers return plain errors; the kinds here
// decide the status and body so storage failures never leak raw to callers.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated covers a missing, malformed, expired or otherwise
	// unverifiable token. The causes are deliberately collapsed into one kind.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the token verified but its roles do not intersect
	// the operation's allow-list.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the id was well-formed but no active record exists.
	ErrNotFound = errors.New("not found")

	// ErrConflict is a uniqueness violation, raised pre-emptively by
	// validation or translated from a storage constraint error.
	ErrConflict = errors.New("conflict")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Conflict returns an ErrConflict with a caller-facing message.
func Conflict(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

// ValidationError carries the full field -> message map for a rejected
// payload. All violations are collected before it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// Validation wraps a non-empty field error map.
func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidation unwraps err as a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
