// Package walwatcher provides file system monitoring for graphwal roots.
// It notices transactions left pending in the WAL (for example by another
// process that crashed) and reports content changes under the root.
package walwatcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/graphwal/pkg/graphwal"
	"github.com/bft-labs/graphwal/pkg/log"
)

const (
	controlDirName = ".graph"
	walFileName    = "wal.log"
)

// ChangeEvent describes a change to a file under the root.
type ChangeEvent struct {
	Path string
	Op   string
}

// Plugin implements WAL watching.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration
	autoRecover   bool
	onPending     func(root string, pending int)
	onChange      func(ChangeEvent)

	// Runtime state
	root     string
	graph    *graphwal.Graph
	logger   graphwal.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	checkCh  chan struct{}
}

// Config holds configuration options for the WAL watcher plugin.
type Config struct {
	// DebounceDelay is how long the WAL must be quiet before it is checked.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// AutoRecover replays pending transactions as soon as they are found.
	AutoRecover bool

	// OnPending is called with the number of pending transactions found.
	OnPending func(root string, pending int)

	// OnChange is called for every create, write, remove or rename of a
	// file under the root, excluding the control directory and hidden files.
	OnChange func(ChangeEvent)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new WAL watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		autoRecover:   cfg.AutoRecover,
		onPending:     cfg.OnPending,
		onChange:      cfg.OnChange,
		checkCh:       make(chan struct{}, 1),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "walwatcher"
}

// Initialize creates the control directory, registers the watches and
// starts the watch loop. The WAL is checked once immediately.
func (p *Plugin) Initialize(ctx context.Context, cfg graphwal.PluginConfig) error {
	p.mu.Lock()
	p.root = cfg.Root
	p.graph = cfg.Graph
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.root == "" || p.graph == nil {
		p.logger.Warn("WAL watcher disabled: root not configured")
		return nil
	}

	if err := p.graph.Init(ctx, p.root); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := p.addTree(watcher); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("WAL watcher plugin initialized",
		log.Root(p.root),
		log.Duration("debounce", p.debounceDelay),
		log.Bool("auto_recover", p.autoRecover))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// addTree watches the root, every directory below it and the control dir.
func (p *Plugin) addTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	p.checkPending(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			p.handleEvent(watcher, event)

		case <-p.checkCh:
			p.checkPending(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("WAL watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if p.isWAL(event.Name) {
		if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
			p.debounceCheck()
		}
		return
	}
	if p.inControlDir(event.Name) || isHidden(event.Name) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				p.logger.Warn("WAL watcher: failed to watch directory",
					log.Path(event.Name), log.Err(err))
			}
		}
	}

	if p.onChange != nil {
		if op := opName(event.Op); op != "" {
			p.onChange(ChangeEvent{Path: event.Name, Op: op})
		}
	}
}

// debounceCheck schedules a WAL check on the watch loop once writes to the
// WAL have been quiet for the debounce delay.
func (p *Plugin) debounceCheck() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		select {
		case p.checkCh <- struct{}{}:
		default:
		}
	})
}

// checkPending verifies the WAL and reports or recovers pending entries.
// Apply holds the root lock until the WAL is cleared, so a committed
// transaction is never reported.
func (p *Plugin) checkPending(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := p.graph.Verify(ctx, p.root)
	if err != nil {
		p.logger.Error("WAL watcher: verify failed", log.Root(p.root), log.Err(err))
		return
	}
	if n == 0 {
		return
	}

	p.logger.Warn("WAL watcher: pending transactions found",
		log.Root(p.root), log.Int("pending", n))
	if p.onPending != nil {
		p.onPending(p.root, n)
	}
	if !p.autoRecover {
		return
	}
	replayed, err := p.graph.Recover(ctx, p.root)
	if err != nil {
		p.logger.Error("WAL watcher: recover failed", log.Root(p.root), log.Err(err))
		return
	}
	p.logger.Info("WAL watcher: recovered pending transactions",
		log.Root(p.root), log.Int("replayed", replayed))
}

func (p *Plugin) controlDir() string { return filepath.Join(p.root, controlDirName) }

func (p *Plugin) isWAL(path string) bool {
	return filepath.Clean(path) == filepath.Join(p.controlDir(), walFileName)
}

func (p *Plugin) inControlDir(path string) bool {
	clean := filepath.Clean(path)
	return clean == p.controlDir() || strings.HasPrefix(clean, p.controlDir()+string(filepath.Separator))
}

// isHidden matches dot files, which include the atomic writer's temp and
// staging files.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func opName(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	default:
		return ""
	}
}

// Ensure Plugin implements graphwal.Plugin.
var _ graphwal.Plugin = (*Plugin)(nil)
