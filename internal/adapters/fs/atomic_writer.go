package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pborman/uuid"

	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// maxDirectName is the longest target name written in one rename.
// renameio names its temp file "." + name + a random suffix, which must
// still fit in a 255 byte file name.
const maxDirectName = 200

// AtomicWriter implements ports.FileWriter with write-to-temp then rename.
type AtomicWriter struct {
	logger ports.Logger

	// beforeRename runs after the content is in the temp file and before
	// it replaces the target. Tests use it to simulate a crash.
	beforeRename func(tmp string) error
}

// NewAtomicWriter creates a new AtomicWriter.
func NewAtomicWriter(logger ports.Logger) *AtomicWriter {
	return &AtomicWriter{logger: logger}
}

// Write replaces path with content.
// Parent directories are created as needed. The content is written to a
// hidden sibling temp file, synced, then renamed over path, so readers
// never see a partial file. On failure the temp file is removed and path
// is left as it was. No retry is attempted.
//
// Targets with very long names are staged under a short hidden name first
// and then renamed into place; path still only ever sees complete content.
func (w *AtomicWriter) Write(ctx context.Context, path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewError(domain.KindIO, "create parent dir", dir, err)
	}

	dest := path
	if len(filepath.Base(path)) > maxDirectName {
		dest = filepath.Join(dir, ".graphwal-"+uuid.New()+".stage")
	}

	pf, err := renameio.NewPendingFile(dest,
		renameio.WithTempDir(dir),
		renameio.WithPermissions(0o644))
	if err != nil {
		return domain.NewError(domain.KindIO, "create temp file", path, err)
	}
	defer pf.Cleanup()

	if _, err := pf.Write(content); err != nil {
		return domain.NewError(domain.KindIO, "write temp file", path, err)
	}

	if w.beforeRename != nil {
		if err := w.beforeRename(pf.Name()); err != nil {
			return domain.NewError(domain.KindIO, "rename", path, err)
		}
	}

	// Sync, close and atomic rename
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return domain.NewError(domain.KindIO, "rename", path, err)
	}
	if dest != path {
		if err := os.Rename(dest, path); err != nil {
			_ = os.Remove(dest)
			return domain.NewError(domain.KindIO, "rename", path, err)
		}
	}
	syncDir(dir)

	w.logger.Debug("file written",
		ports.Path(path),
		ports.Int("bytes", len(content)))
	return nil
}

var _ ports.FileWriter = (*AtomicWriter)(nil)
