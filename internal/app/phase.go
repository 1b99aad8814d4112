package app

import (
	"fmt"

	"github.com/bft-labs/graphwal/internal/ports"
)

// Phase is the progress of one transaction through the apply protocol.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLogAppended
	PhaseApplying
	PhaseApplied
	PhaseCommitted
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseLogAppended:
		return "LogAppended"
	case PhaseApplying:
		return "Applying"
	case PhaseApplied:
		return "Applied"
	case PhaseCommitted:
		return "Committed"
	default:
		return "Unknown"
	}
}

// PhaseObserver is called after each phase transition of a transaction.
type PhaseObserver interface {
	OnPhaseChange(txID string, previous, current Phase)
}

// txRun tracks a single transaction through the phases. Phases only move
// forward one step at a time; there is no rollback.
type txRun struct {
	txID     string
	phase    Phase
	logger   ports.Logger
	observer PhaseObserver
}

func newTxRun(txID string, logger ports.Logger, observer PhaseObserver) *txRun {
	return &txRun{txID: txID, phase: PhaseIdle, logger: logger, observer: observer}
}

// transitionTo moves to next, which must directly follow the current phase.
func (r *txRun) transitionTo(next Phase) error {
	if next != r.phase+1 {
		return fmt.Errorf("invalid phase transition %s -> %s", r.phase, next)
	}
	prev := r.phase
	r.phase = next

	if r.observer != nil {
		r.observer.OnPhaseChange(r.txID, prev, next)
	}
	r.logger.Debug("phase transition",
		ports.TxID(r.txID),
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
	)
	return nil
}
