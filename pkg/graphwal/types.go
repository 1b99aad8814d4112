package graphwal

import (
	"github.com/bft-labs/graphwal/internal/app"
	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
	"github.com/bft-labs/graphwal/pkg/log"
)

// Re-export domain types so callers do not import internal packages.
type (
	// WriteOperation replaces one file's content. Path is relative to the root.
	WriteOperation = domain.WriteOperation

	// Transaction is an ordered batch of write operations.
	Transaction = domain.Transaction

	// WalEntry is a transaction recorded but not yet committed.
	WalEntry = domain.WalEntry

	// OpsLogEntry is the audit record of a committed transaction.
	OpsLogEntry = domain.OpsLogEntry

	// Error is the structured error returned by Graph operations.
	Error = domain.Error

	// Kind classifies an Error.
	Kind = domain.Kind

	// Phase is the progress of a transaction through Apply.
	Phase = app.Phase

	// PhaseObserver receives phase transitions of every applied transaction.
	PhaseObserver = app.PhaseObserver

	// Status summarizes the transactional state of a root.
	Status = app.Status

	// FileWriter replaces a file without exposing partial content.
	FileWriter = ports.FileWriter

	// Logger is the structured logging interface.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field
)

// Error kinds.
const (
	KindUnknown            = domain.KindUnknown
	KindIO                 = domain.KindIO
	KindSerialization      = domain.KindSerialization
	KindNotFound           = domain.KindNotFound
	KindInvalidPath        = domain.KindInvalidPath
	KindPendingWAL         = domain.KindPendingWAL
	KindAudit              = domain.KindAudit
	KindInvalidTransaction = domain.KindInvalidTransaction
)

// Transaction phases.
const (
	PhaseIdle        = app.PhaseIdle
	PhaseLogAppended = app.PhaseLogAppended
	PhaseApplying    = app.PhaseApplying
	PhaseApplied     = app.PhaseApplied
	PhaseCommitted   = app.PhaseCommitted
)

// Sentinel errors, usable with errors.Is.
var (
	ErrInvalidConfig      = domain.ErrInvalidConfig
	ErrEmptyTransactionID = domain.ErrEmptyTransactionID
	ErrInvalidContent     = domain.ErrInvalidContent
	ErrMalformedEntry     = domain.ErrMalformedEntry
	ErrPathEscapesRoot    = domain.ErrPathEscapesRoot
	ErrPendingWAL         = domain.ErrPendingWAL
	ErrAlreadyRunning     = domain.ErrAlreadyRunning
	ErrNotRunning         = domain.ErrNotRunning
)

// NewTransaction creates a transaction from operations.
func NewTransaction(id string, ops ...WriteOperation) Transaction {
	return domain.NewTransaction(id, ops...)
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	return domain.KindOf(err)
}
