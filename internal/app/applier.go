package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// ApplierConfig contains configuration for the transaction applier.
type ApplierConfig struct {
	// GuardPendingWAL refuses a new transaction while the WAL still holds
	// an earlier one, which would otherwise be cleared without being applied.
	GuardPendingWAL bool
}

// Applier drives a transaction through WAL append, file writes, WAL clear
// and audit append. It is the only writer of target files besides recovery.
type Applier struct {
	config   ApplierConfig
	writer   ports.FileWriter
	logger   ports.Logger
	observer PhaseObserver
}

// NewApplier creates a new applier with the given dependencies.
func NewApplier(config ApplierConfig, writer ports.FileWriter, logger ports.Logger, observer PhaseObserver) *Applier {
	return &Applier{
		config:   config,
		writer:   writer,
		logger:   logger,
		observer: observer,
	}
}

// Apply runs tx against root and returns its audit entry.
//
// Failure modes:
//   - validation or WAL append fails: nothing was touched.
//   - a file write fails: the WAL entry stays on disk and Recover will
//     finish the transaction; no audit entry is written.
//   - WAL clear fails: every file is written; Recover replays it harmlessly.
//   - audit append fails (KindAudit): data is committed, the record is missing.
func (a *Applier) Apply(ctx context.Context, root ports.Root, tx domain.Transaction) (domain.OpsLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.OpsLogEntry{}, err
	}
	if err := tx.Validate(); err != nil {
		return domain.OpsLogEntry{}, domain.NewError(domain.KindInvalidTransaction, "apply "+tx.ID, root.Path(), err)
	}

	targets := make([]string, len(tx.Operations))
	for i, op := range tx.Operations {
		target, err := root.Resolve(op.Path)
		if err != nil {
			return domain.OpsLogEntry{}, fmt.Errorf("apply %s: %w", tx.ID, err)
		}
		targets[i] = target
	}

	if a.config.GuardPendingWAL {
		pending, err := root.Journal().Verify(ctx)
		if err != nil {
			return domain.OpsLogEntry{}, fmt.Errorf("apply %s: check pending wal: %w", tx.ID, err)
		}
		if pending > 0 {
			return domain.OpsLogEntry{}, domain.NewError(domain.KindPendingWAL, "apply "+tx.ID, root.Path(), domain.ErrPendingWAL)
		}
	}

	run := newTxRun(tx.ID, a.logger, a.observer)

	// Idle -> LogAppended
	if err := root.EnsureControlDir(); err != nil {
		return domain.OpsLogEntry{}, fmt.Errorf("apply %s: %w", tx.ID, err)
	}
	if err := root.Journal().Append(ctx, tx.WalEntry()); err != nil {
		return domain.OpsLogEntry{}, fmt.Errorf("apply %s: %w", tx.ID, err)
	}
	if err := run.transitionTo(PhaseLogAppended); err != nil {
		return domain.OpsLogEntry{}, err
	}

	// LogAppended -> Applying -> Applied
	if err := run.transitionTo(PhaseApplying); err != nil {
		return domain.OpsLogEntry{}, err
	}
	for i, op := range tx.Operations {
		if err := a.writer.Write(ctx, targets[i], op.Bytes()); err != nil {
			a.logger.Error("write failed, transaction left in wal",
				ports.TxID(tx.ID),
				ports.Path(op.Path),
				ports.Int("written", i),
				ports.Err(err))
			return domain.OpsLogEntry{}, fmt.Errorf("apply %s: %w", tx.ID, err)
		}
	}
	if err := run.transitionTo(PhaseApplied); err != nil {
		return domain.OpsLogEntry{}, err
	}

	// Applied -> Committed
	if err := root.Journal().Clear(ctx); err != nil {
		return domain.OpsLogEntry{}, fmt.Errorf("apply %s: %w", tx.ID, err)
	}
	entry, err := root.AuditLog().Append(ctx, tx)
	if err != nil {
		a.logger.Error("transaction applied but audit append failed",
			ports.TxID(tx.ID),
			ports.Err(err))
		return domain.OpsLogEntry{}, domain.NewError(domain.KindAudit, "apply "+tx.ID, root.Path(), err)
	}
	if err := run.transitionTo(PhaseCommitted); err != nil {
		return domain.OpsLogEntry{}, err
	}

	a.logger.Info("transaction committed",
		ports.TxID(tx.ID),
		ports.RootPath(root.Path()),
		ports.Int("operations", len(tx.Operations)),
		ports.String("audit_id", entry.ID))
	return entry, nil
}
