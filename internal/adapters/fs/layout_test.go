package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bft-labs/graphwal/internal/domain"
)

func TestLayout_Paths(t *testing.T) {
	l := NewLayout("/p/")
	if l.Root() != filepath.Clean("/p") {
		t.Errorf("Root() = %s", l.Root())
	}
	if want := filepath.Join("/p", ".graph", "wal.log"); l.WALPath() != want {
		t.Errorf("WALPath() = %s, want %s", l.WALPath(), want)
	}
	if want := filepath.Join("/p", ".graph", "ops_log.jsonl"); l.OpsLogPath() != want {
		t.Errorf("OpsLogPath() = %s, want %s", l.OpsLogPath(), want)
	}
}

func TestLayout_Resolve(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{"simple", "a.txt", filepath.Join(root, "a.txt"), false},
		{"nested", "pages/journal/a.md", filepath.Join(root, "pages", "journal", "a.md"), false},
		{"inner dotdot", "pages/../a.md", filepath.Join(root, "a.md"), false},
		{"empty", "", "", true},
		{"dot", ".", "", true},
		{"parent", "../a.txt", "", true},
		{"deep escape", "pages/../../a.txt", "", true},
		{"absolute", "/etc/passwd", "", true},
		{"control dir", ".graph/wal.log", "", true},
		{"control dir itself", ".graph", "", true},
		{"control dir via dotdot", "x/../.graph/ops_log.jsonl", "", true},
		{"similar name", ".graphs/a.txt", filepath.Join(root, ".graphs", "a.txt"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Resolve(tt.rel)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) = %s, want error", tt.rel, got)
				}
				if domain.KindOf(err) != domain.KindInvalidPath {
					t.Errorf("kind = %v, want KindInvalidPath", domain.KindOf(err))
				}
				if !errors.Is(err, domain.ErrPathEscapesRoot) {
					t.Errorf("expected ErrPathEscapesRoot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.rel, got, tt.want)
			}
		})
	}
}

func TestLayout_ResolveAll_FailsOnFirstInvalid(t *testing.T) {
	l := NewLayout(t.TempDir())
	_, err := l.ResolveAll([]domain.WriteOperation{
		{Path: "ok.txt"},
		{Path: "../bad.txt"},
	})
	if domain.KindOf(err) != domain.KindInvalidPath {
		t.Fatalf("expected invalid path error, got %v", err)
	}
}

func TestLayout_ResolveRejectsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "real.md"), "x")

	links := map[string]string{
		"out":      outside,
		"inside":   filepath.Join(root, "pages"),
		"ctl":      filepath.Join(root, ".graph"),
		"file.md":  filepath.Join(root, "pages", "real.md"),
		"relative": "../" + filepath.Base(outside),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(root, name)); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
	}

	l := NewLayout(root)
	for _, rel := range []string{"out/pwned.txt", "inside/a.md", "ctl/wal.log", "file.md", "relative/pwned.txt", "pages/../out/x"} {
		t.Run(rel, func(t *testing.T) {
			got, err := l.Resolve(rel)
			if !errors.Is(err, domain.ErrPathEscapesRoot) {
				t.Fatalf("Resolve(%q) = %s, %v; want ErrPathEscapesRoot", rel, got, err)
			}
			if domain.KindOf(err) != domain.KindInvalidPath {
				t.Errorf("kind = %v, want KindInvalidPath", domain.KindOf(err))
			}
		})
	}

	// Real directories and not-yet-existing paths still resolve.
	for _, rel := range []string{"pages/real.md", "pages/new/deep.md", "fresh.md"} {
		if _, err := l.Resolve(rel); err != nil {
			t.Errorf("Resolve(%q) error: %v", rel, err)
		}
	}
}
