package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// GraphConfig contains configuration for the Graph service.
type GraphConfig struct {
	GuardPendingWAL bool
	// ForceCompact lets CompactRoot discard pending WAL entries.
	ForceCompact bool
}

// Status summarizes the transactional state of one root.
type Status struct {
	Root                string   `json:"root"`
	PendingTransactions []string `json:"pending_transactions"`
	AuditEntries        int      `json:"audit_entries"`
}

// Graph exposes every root-level operation. Transactional operations on
// the same root are serialized within the process; separate processes
// writing the same root are not arbitrated.
type Graph struct {
	config  GraphConfig
	open    ports.RootOpener
	writer  ports.FileWriter
	reader  ports.FileReader
	applier *Applier
	logger  ports.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGraph creates a new Graph service with the given dependencies.
func NewGraph(
	config GraphConfig,
	open ports.RootOpener,
	writer ports.FileWriter,
	reader ports.FileReader,
	logger ports.Logger,
	observer PhaseObserver,
) *Graph {
	return &Graph{
		config:  config,
		open:    open,
		writer:  writer,
		reader:  reader,
		applier: NewApplier(ApplierConfig{GuardPendingWAL: config.GuardPendingWAL}, writer, logger, observer),
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockRoot acquires the per-root mutex and returns the opened root with
// its release function.
func (g *Graph) lockRoot(root string) (ports.Root, func(), error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, domain.NewError(domain.KindIO, "resolve root", root, err)
	}

	g.mu.Lock()
	l, ok := g.locks[abs]
	if !ok {
		l = &sync.Mutex{}
		g.locks[abs] = l
	}
	g.mu.Unlock()

	l.Lock()
	return g.open(abs), l.Unlock, nil
}

// ListEntries returns the full paths of root's immediate children.
func (g *Graph) ListEntries(ctx context.Context, root string) ([]string, error) {
	return g.reader.List(ctx, root)
}

// ReadContent returns the text content of path.
func (g *Graph) ReadContent(ctx context.Context, path string) (string, error) {
	return g.reader.ReadText(ctx, path)
}

// StatMTime returns path's modification time in milliseconds since the epoch.
func (g *Graph) StatMTime(ctx context.Context, path string) (float64, error) {
	return g.reader.ModTimeMillis(ctx, path)
}

// InitRoot creates the control directory under root.
func (g *Graph) InitRoot(ctx context.Context, root string) error {
	r, unlock, err := g.lockRoot(root)
	if err != nil {
		return err
	}
	defer unlock()
	return r.EnsureControlDir()
}

// ApplyTransaction applies tx to root. Any error means the root may hold a
// partially applied transaction: call VerifyRoot then RecoverRoot before
// assuming it is consistent.
func (g *Graph) ApplyTransaction(ctx context.Context, root string, tx domain.Transaction) (domain.OpsLogEntry, error) {
	r, unlock, err := g.lockRoot(root)
	if err != nil {
		return domain.OpsLogEntry{}, err
	}
	defer unlock()
	return g.applier.Apply(ctx, r, tx)
}

// RecoverRoot replays and clears the root's WAL. Returns the number of
// replayed transactions.
func (g *Graph) RecoverRoot(ctx context.Context, root string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r, unlock, err := g.lockRoot(root)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := r.Journal().Recover(ctx, g.writer)
	if err != nil {
		return 0, fmt.Errorf("recover %s: %w", r.Path(), err)
	}
	if n > 0 {
		g.logger.Info("recovered pending transactions",
			ports.RootPath(r.Path()),
			ports.Int("transactions", n))
	}
	return n, nil
}

// VerifyRoot parses the root's WAL without side effects and returns the
// number of pending transactions.
func (g *Graph) VerifyRoot(ctx context.Context, root string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r, unlock, err := g.lockRoot(root)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := r.Journal().Verify(ctx)
	if err != nil {
		return 0, fmt.Errorf("verify %s: %w", r.Path(), err)
	}
	return n, nil
}

// CompactRoot clears the root's WAL. Unless forced, it refuses while the
// WAL holds transactions, since clearing would drop them unapplied; call
// RecoverRoot first. A WAL that cannot be parsed can only be force-cleared.
func (g *Graph) CompactRoot(ctx context.Context, root string, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, unlock, err := g.lockRoot(root)
	if err != nil {
		return err
	}
	defer unlock()

	force = force || g.config.ForceCompact
	if !force {
		n, err := r.Journal().Verify(ctx)
		if err != nil {
			return fmt.Errorf("compact %s: %w", r.Path(), err)
		}
		if n > 0 {
			return domain.NewError(domain.KindPendingWAL, "compact", r.Path(), domain.ErrPendingWAL)
		}
	} else {
		g.logger.Warn("force compact discards pending wal entries", ports.RootPath(r.Path()))
	}
	return r.Journal().Clear(ctx)
}

// ReadAuditLog returns committed transactions most recent first, at most
// limit of them when limit > 0.
func (g *Graph) ReadAuditLog(ctx context.Context, root string, limit int) ([]domain.OpsLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.open(root).AuditLog().Read(ctx, limit)
}

// Status reports pending WAL transactions and the audit log size.
func (g *Graph) Status(ctx context.Context, root string) (Status, error) {
	r, unlock, err := g.lockRoot(root)
	if err != nil {
		return Status{}, err
	}
	defer unlock()

	entries, err := r.Journal().Entries(ctx)
	if err != nil {
		return Status{}, err
	}
	audit, err := r.AuditLog().Read(ctx, 0)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Root:                r.Path(),
		PendingTransactions: make([]string, 0, len(entries)),
		AuditEntries:        len(audit),
	}
	for _, e := range entries {
		st.PendingTransactions = append(st.PendingTransactions, e.TransactionID)
	}
	if len(st.PendingTransactions) > 0 {
		g.logger.Debug("pending transactions",
			ports.RootPath(st.Root),
			ports.Strings("pending", st.PendingTransactions))
	}
	return st, nil
}
