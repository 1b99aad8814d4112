package fs

import (
	"context"
	"errors"
	"os"

	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// WALFile implements ports.Journal as <root>/.graph/wal.log, one JSON
// WalEntry per line.
type WALFile struct {
	layout Layout
	logger ports.Logger
}

// NewWALFile creates a WAL for the given layout.
func NewWALFile(layout Layout, logger ports.Logger) *WALFile {
	return &WALFile{layout: layout, logger: logger}
}

// Path returns the full path to the WAL file.
func (w *WALFile) Path() string {
	return w.layout.WALPath()
}

// Append writes entry as one line and syncs it before returning.
func (w *WALFile) Append(ctx context.Context, entry domain.WalEntry) error {
	if entry.Operations == nil {
		entry.Operations = []domain.WriteOperation{}
	}
	if err := w.layout.EnsureControlDir(); err != nil {
		return err
	}
	if err := appendLine("wal append", w.Path(), entry); err != nil {
		return err
	}
	syncDir(w.layout.ControlDir())
	return nil
}

// Clear removes the WAL file. A missing file is not an error.
func (w *WALFile) Clear(ctx context.Context) error {
	if err := os.Remove(w.Path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return domain.NewError(domain.KindIO, "wal clear", w.Path(), err)
	}
	syncDir(w.layout.ControlDir())
	return nil
}

// Entries parses all pending entries in file order.
func (w *WALFile) Entries(ctx context.Context) ([]domain.WalEntry, error) {
	return decodeLines[domain.WalEntry]("wal read", w.Path())
}

// Verify parses the WAL without touching any target file.
func (w *WALFile) Verify(ctx context.Context) (int, error) {
	entries, err := decodeLines[domain.WalEntry]("wal verify", w.Path())
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Recover replays every pending operation in file order then entry order
// and clears the WAL. Every entry is parsed and every path resolved before
// the first write, so a malformed WAL fails without side effects. Each
// operation is a full overwrite, so replaying twice is harmless.
func (w *WALFile) Recover(ctx context.Context, fw ports.FileWriter) (int, error) {
	entries, err := decodeLines[domain.WalEntry]("wal recover", w.Path())
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, w.Clear(ctx)
	}

	targets := make([][]string, len(entries))
	for i, entry := range entries {
		resolved, err := w.layout.ResolveAll(entry.Operations)
		if err != nil {
			return 0, err
		}
		targets[i] = resolved
	}

	for i, entry := range entries {
		for j, op := range entry.Operations {
			if err := fw.Write(ctx, targets[i][j], op.Bytes()); err != nil {
				return 0, err
			}
		}
		w.logger.Info("replayed wal entry",
			ports.TxID(entry.TransactionID),
			ports.Int("operations", len(entry.Operations)))
	}

	if err := w.Clear(ctx); err != nil {
		return 0, err
	}
	return len(entries), nil
}

var _ ports.Journal = (*WALFile)(nil)
