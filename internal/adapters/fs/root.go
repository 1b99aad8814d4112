package fs

import "github.com/bft-labs/graphwal/internal/ports"

// RootStore implements ports.Root on the local file system.
type RootStore struct {
	Layout
	journal *WALFile
	audit   *OpsLogFile
}

// OpenRoot creates a RootStore for root without touching the disk.
func OpenRoot(root string, logger ports.Logger) *RootStore {
	layout := NewLayout(root)
	return &RootStore{
		Layout:  layout,
		journal: NewWALFile(layout, logger),
		audit:   NewOpsLogFile(layout, logger),
	}
}

// NewRootOpener returns a ports.RootOpener backed by OpenRoot.
func NewRootOpener(logger ports.Logger) ports.RootOpener {
	return func(root string) ports.Root {
		return OpenRoot(root, logger)
	}
}

// Path returns the cleaned root directory.
func (r *RootStore) Path() string { return r.Root() }

// Journal returns the root's WAL.
func (r *RootStore) Journal() ports.Journal { return r.journal }

// AuditLog returns the root's ops log.
func (r *RootStore) AuditLog() ports.AuditLog { return r.audit }

var _ ports.Root = (*RootStore)(nil)
