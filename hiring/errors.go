/*
errors.go - Error taxonomy for ingestion and reports

PURPOSE:
  Every failure leaving this package is an *Error tagged with a Kind.
  The HTTP layer maps kinds to status codes; nothing else inspects messages.

KINDS:
  InvalidTableName  upload target is not one of the three tables
  MalformedInput    CSV structure is broken (column count, quoting, empty file)
  InvalidArgument   request parameter out of range or missing
  InsertFailure     the store rejected the batch; nothing was written
  StoreUnavailable  the store could not be reached

USAGE:
  if hiring.KindOf(err) == hiring.KindInsertFailure {
      // batch rolled back
  }
*/
package hiring

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStoreUnavailable is wrapped by stores when they cannot open a session.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDuplicateID is returned by stores when a primary key already exists.
	ErrDuplicateID = errors.New("duplicate id")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// Kind classifies an Error.
type Kind string

const (
	KindInvalidTableName Kind = "invalid_table_name"
	KindMalformedInput   Kind = "malformed_input"
	KindInvalidArgument  Kind = "invalid_argument"
	KindInsertFailure    Kind = "insert_failure"
	KindStoreUnavailable Kind = "store_unavailable"
)

// Error is a tagged failure with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformedInput, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// storeFailure tags err from a write path. Unreachable stores keep their own kind.
func storeFailure(err error) *Error {
	if errors.Is(err, ErrStoreUnavailable) {
		return &Error{Kind: KindStoreUnavailable, Message: err.Error(), Err: err}
	}
	return &Error{Kind: KindInsertFailure, Message: err.Error(), Err: err}
}
