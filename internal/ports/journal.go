package ports

import (
	"context"

	"github.com/bft-labs/graphwal/internal/domain"
)

// Journal is the write-ahead log for one root directory.
type Journal interface {
	// Append durably records an entry. It must not return before the
	// entry would survive a crash.
	Append(ctx context.Context, entry domain.WalEntry) error

	// Clear discards all entries. Clearing an empty journal is a no-op.
	Clear(ctx context.Context) error

	// Entries parses and returns all pending entries in log order.
	// Returns an empty slice when nothing is pending.
	Entries(ctx context.Context) ([]domain.WalEntry, error)

	// Verify parses every entry without side effects and returns
	// the number of pending entries.
	Verify(ctx context.Context) (int, error)

	// Recover replays every pending entry through w, then clears the
	// journal. Returns the number of replayed entries. A parse error
	// aborts before any write and leaves the journal untouched.
	Recover(ctx context.Context, w FileWriter) (int, error)
}
