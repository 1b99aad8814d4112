package walwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/graphwal/pkg/graphwal"
)

const pendingLine = `{"transaction_id":"tx-crashed","operations":[{"path":"notes/a.md","content":"recovered"}]}` + "\n"

func startGraph(t *testing.T, root string, cfg Config) *graphwal.Graph {
	t.Helper()
	g, err := graphwal.New(graphwal.Config{Root: root, GuardPendingWAL: true}, WithWALWatcher(cfg))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = g.Stop() })
	return g
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func writeWAL(t *testing.T, root, content string) {
	t.Helper()
	path := filepath.Join(root, controlDirName, walFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write WAL: %v", err)
	}
}

func TestPlugin_Name(t *testing.T) {
	if got := New(DefaultConfig()).Name(); got != "walwatcher" {
		t.Errorf("Name() = %q, want %q", got, "walwatcher")
	}
}

func TestNew_DefaultsDebounce(t *testing.T) {
	p := New(Config{})
	if p.debounceDelay != 100*time.Millisecond {
		t.Errorf("debounceDelay = %v, want 100ms", p.debounceDelay)
	}
}

func TestPlugin_DisabledWithoutRoot(t *testing.T) {
	g, err := graphwal.New(graphwal.DefaultConfig(), WithDefaultWALWatcher())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := g.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestPlugin_CreatesControlDir(t *testing.T) {
	root := t.TempDir()
	startGraph(t, root, DefaultConfig())

	if info, err := os.Stat(filepath.Join(root, controlDirName)); err != nil || !info.IsDir() {
		t.Fatalf("control dir not created: %v", err)
	}
}

func TestPlugin_ReportsPendingAtStartup(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, controlDirName), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeWAL(t, root, pendingLine)

	var mu sync.Mutex
	var pending int
	startGraph(t, root, Config{
		DebounceDelay: 10 * time.Millisecond,
		OnPending: func(_ string, n int) {
			mu.Lock()
			pending = n
			mu.Unlock()
		},
	})

	ok := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return pending == 1
	})
	if !ok {
		t.Fatal("OnPending was not called with 1 pending transaction")
	}

	// Without AutoRecover the WAL stays in place.
	if _, err := os.Stat(filepath.Join(root, controlDirName, walFileName)); err != nil {
		t.Errorf("WAL should remain without AutoRecover: %v", err)
	}
}

func TestPlugin_AutoRecoverOnWALWrite(t *testing.T) {
	root := t.TempDir()
	g := startGraph(t, root, Config{
		DebounceDelay: 20 * time.Millisecond,
		AutoRecover:   true,
	})

	// Simulate another process crashing after its WAL append.
	writeWAL(t, root, pendingLine)

	target := filepath.Join(root, "notes", "a.md")
	ok := waitFor(t, 3*time.Second, func() bool {
		data, err := os.ReadFile(target)
		return err == nil && string(data) == "recovered"
	})
	if !ok {
		t.Fatal("pending transaction was not recovered")
	}

	ok = waitFor(t, 2*time.Second, func() bool {
		n, err := g.Verify(context.Background(), root)
		return err == nil && n == 0
	})
	if !ok {
		t.Error("WAL still holds entries after recovery")
	}
}

func TestPlugin_ForwardsContentChanges(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	var events []ChangeEvent
	g := startGraph(t, root, Config{
		DebounceDelay: 10 * time.Millisecond,
		OnChange: func(ev ChangeEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})

	tx := graphwal.NewTransaction("tx-1", graphwal.WriteOperation{Path: "page.md", Content: "hello"})
	if _, err := g.Apply(context.Background(), root, tx); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	target := filepath.Join(root, "page.md")
	ok := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range events {
			if ev.Path == target {
				return true
			}
		}
		return false
	})
	if !ok {
		t.Fatalf("no change event for %s", target)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range events {
		if isHidden(ev.Path) {
			t.Errorf("hidden file forwarded: %s", ev.Path)
		}
		if filepath.Dir(ev.Path) == filepath.Join(root, controlDirName) {
			t.Errorf("control dir file forwarded: %s", ev.Path)
		}
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/r/.page.md123456", true},
		{"/r/.graphwal-1b4e28ba.stage", true},
		{"/r/page.md", false},
		{"/r/page.tmp", false},
		{"/r/.hidden", true},
	}
	for _, tt := range tests {
		if got := isHidden(tt.path); got != tt.want {
			t.Errorf("isHidden(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPlugin_NoCallbacksAfterShutdown(t *testing.T) {
	root := t.TempDir()

	var mu sync.Mutex
	stopped := false
	lateCalls := 0
	g, err := graphwal.New(graphwal.Config{Root: root}, WithWALWatcher(Config{
		DebounceDelay: 30 * time.Millisecond,
		OnPending: func(string, int) {
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				lateCalls++
			}
		},
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Arm the debounce timer, then stop before it fires.
	writeWAL(t, root, pendingLine)
	time.Sleep(10 * time.Millisecond)
	if err := g.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	mu.Lock()
	stopped = true
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if lateCalls != 0 {
		t.Errorf("OnPending ran %d times after Stop returned", lateCalls)
	}
}

func TestPlugin_InControlDir(t *testing.T) {
	p := &Plugin{root: "/r"}
	tests := []struct {
		path string
		want bool
	}{
		{"/r/.graph", true},
		{"/r/.graph/wal.log", true},
		{"/r/.graphs/x", false},
		{"/r/notes/a.md", false},
	}
	for _, tt := range tests {
		if got := p.inControlDir(tt.path); got != tt.want {
			t.Errorf("inControlDir(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if !p.isWAL("/r/.graph/wal.log") {
		t.Error("isWAL should match the WAL path")
	}
}
