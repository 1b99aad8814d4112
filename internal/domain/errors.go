package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the graphwal domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("graphwal: invalid configuration")

	// ErrEmptyTransactionID is returned when a transaction has no id.
	ErrEmptyTransactionID = errors.New("graphwal: empty transaction id")

	// ErrInvalidContent is returned when an operation's content is not
	// valid UTF-8. Log lines are JSON, which cannot carry arbitrary bytes.
	ErrInvalidContent = errors.New("graphwal: content is not valid UTF-8")

	// ErrMalformedEntry is returned when a log line is valid JSON but not
	// a complete entry.
	ErrMalformedEntry = errors.New("graphwal: malformed log entry")

	// ErrPathEscapesRoot is returned when an operation path is absolute,
	// leaves the root directory, or points into the control directory.
	ErrPathEscapesRoot = errors.New("graphwal: path escapes root")

	// ErrPendingWAL is returned when the WAL still holds an uncommitted
	// transaction and the requested operation would lose or interleave it.
	ErrPendingWAL = errors.New("graphwal: pending transaction in WAL")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("graphwal: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("graphwal: not running")
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindSerialization
	KindNotFound
	KindInvalidPath
	KindPendingWAL
	KindAudit
	KindInvalidTransaction
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindNotFound:
		return "not found"
	case KindInvalidPath:
		return "invalid path"
	case KindPendingWAL:
		return "pending wal"
	case KindAudit:
		return "audit"
	case KindInvalidTransaction:
		return "invalid transaction"
	default:
		return "unknown"
	}
}

// Error is the structured error returned by the storage and application layers.
type Error struct {
	Kind Kind
	// Op names the failing step, e.g. "wal append".
	Op   string
	Path string
	// Line is the 1-based log line for serialization errors, 0 otherwise.
	Line int
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error of the given kind.
func NewError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
