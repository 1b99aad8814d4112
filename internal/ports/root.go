package ports

import "context"

// Root is the transactional view of one root directory: where its
// control files live and how operation paths map onto it.
type Root interface {
	// Path returns the cleaned root directory.
	Path() string

	// Resolve maps a root-relative operation path to a full path,
	// rejecting paths that leave the root or target the control directory.
	Resolve(rel string) (string, error)

	// EnsureControlDir creates the hidden control directory if absent.
	EnsureControlDir() error

	// Journal returns the root's write-ahead log.
	Journal() Journal

	// AuditLog returns the root's ops log.
	AuditLog() AuditLog
}

// RootOpener returns the Root for a directory path. Opening does not
// touch the file system.
type RootOpener func(root string) Root

// FileReader provides the plain read-only file queries exposed next to
// the transactional operations.
type FileReader interface {
	// List returns the full paths of the immediate children of dir.
	List(ctx context.Context, dir string) ([]string, error)

	// ReadText returns the full content of path, which must be valid UTF-8.
	ReadText(ctx context.Context, path string) (string, error)

	// ModTimeMillis returns the modification time of path in
	// milliseconds since the epoch, with sub-millisecond precision.
	ModTimeMillis(ctx context.Context, path string) (float64, error)
}
