package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the caller-visible failure modes of store operations.
type ErrorKind string

// Failure kinds raised synchronously by mutation operations. Every kind is
// recoverable by the caller; internal invariant violations use KindInternal.
const (
	// KindInvalidPayload reports malformed or missing required input.
	KindInvalidPayload ErrorKind = "invalid_payload"
	// KindCapacityExceeded reports that the global tab limit was reached.
	KindCapacityExceeded ErrorKind = "capacity_exceeded"
	// KindNotFound reports that a referenced id does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindNotClosable reports a remove blocked by the tab's closable flag.
	KindNotClosable ErrorKind = "not_closable"
	// KindNotAccessible reports an operation blocked by the tab's
	// reorderable flag.
	KindNotAccessible ErrorKind = "not_accessible"
	// KindInternal reports an invariant violation inside the store itself,
	// such as a generated identifier collision. Not a user error.
	KindInternal ErrorKind = "internal"
)

// Error is the typed failure returned by store mutations. It is raised before
// any state is committed; a returned Error implies the store is unchanged.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// NewError constructs a typed store error.
func NewError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from err, unwrapping as needed. Errors that
// are not store errors report KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
