package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/bft-labs/graphwal/internal/domain"
)

// On-disk names under a root directory.
const (
	ControlDirName = ".graph"
	WALFileName    = "wal.log"
	OpsLogFileName = "ops_log.jsonl"
)

// Layout locates the control directory and its logs under a root.
type Layout struct {
	root string
}

// NewLayout creates a Layout for root. The root is cleaned but not required to exist.
func NewLayout(root string) Layout {
	return Layout{root: filepath.Clean(root)}
}

// Root returns the cleaned root directory.
func (l Layout) Root() string { return l.root }

// ControlDir returns <root>/.graph.
func (l Layout) ControlDir() string { return filepath.Join(l.root, ControlDirName) }

// WALPath returns the path of the write-ahead log.
func (l Layout) WALPath() string { return filepath.Join(l.ControlDir(), WALFileName) }

// OpsLogPath returns the path of the audit log.
func (l Layout) OpsLogPath() string { return filepath.Join(l.ControlDir(), OpsLogFileName) }

// EnsureControlDir creates the control directory if it does not exist.
func (l Layout) EnsureControlDir() error {
	if err := os.MkdirAll(l.ControlDir(), 0o755); err != nil {
		return domain.NewError(domain.KindIO, "create control dir", l.ControlDir(), err)
	}
	return nil
}

// Resolve joins a root-relative operation path onto the root.
// Absolute paths, paths that leave the root, the root itself and paths
// inside the control directory are rejected. So is any path that passes
// through an existing symlink below the root, wherever the link points:
// writes never follow links.
func (l Layout) Resolve(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", domain.NewError(domain.KindInvalidPath, "resolve", rel, domain.ErrPathEscapesRoot)
	}
	clean := filepath.Clean(local)
	first, _, _ := strings.Cut(clean, string(filepath.Separator))
	if clean == "." || first == ControlDirName {
		return "", domain.NewError(domain.KindInvalidPath, "resolve", rel, domain.ErrPathEscapesRoot)
	}

	target := filepath.Join(l.root, clean)
	resolved, err := securejoin.SecureJoin(l.root, clean)
	if err != nil {
		return "", domain.NewError(domain.KindInvalidPath, "resolve", rel, fmt.Errorf("%w: %v", domain.ErrPathEscapesRoot, err))
	}
	if resolved != target {
		return "", domain.NewError(domain.KindInvalidPath, "resolve", rel,
			fmt.Errorf("%w: symlink resolves to %s", domain.ErrPathEscapesRoot, resolved))
	}
	return target, nil
}

// ResolveAll resolves every operation path, failing on the first invalid one.
func (l Layout) ResolveAll(ops []domain.WriteOperation) ([]string, error) {
	targets := make([]string, len(ops))
	for i, op := range ops {
		target, err := l.Resolve(op.Path)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}
	return targets, nil
}
