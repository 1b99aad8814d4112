package graphwal

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bft-labs/graphwal/internal/adapters/fs"
	"github.com/bft-labs/graphwal/internal/app"
	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// Config holds the configuration for a Graph.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Root is the directory plugins operate on. Operations take their
	// root explicitly and do not depend on it.
	Root string

	// GuardPendingWAL makes Apply refuse to start while the WAL holds an
	// uncommitted transaction.
	GuardPendingWAL bool

	// ForceCompact makes Compact discard pending WAL entries.
	ForceCompact bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{GuardPendingWAL: true}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Root == "" {
		return nil
	}
	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("%w: root: %v", domain.ErrInvalidConfig, err)
	}
	c.Root = abs
	return nil
}

// Graph applies transactions to root directories and manages plugins.
type Graph struct {
	config  Config
	svc     *app.Graph
	logger  ports.Logger
	plugins []Plugin

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a Graph with the given configuration.
func New(cfg Config, opts ...Option) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	writer := o.writer
	if writer == nil {
		writer = fs.NewAtomicWriter(o.logger)
	}

	svc := app.NewGraph(
		app.GraphConfig{
			GuardPendingWAL: cfg.GuardPendingWAL,
			ForceCompact:    cfg.ForceCompact,
		},
		fs.NewRootOpener(o.logger),
		writer,
		fs.NewReader(),
		o.logger,
		o.observer,
	)

	return &Graph{
		config:  cfg,
		svc:     svc,
		logger:  o.logger,
		plugins: o.plugins,
	}, nil
}

// Config returns the validated configuration.
func (g *Graph) Config() Config { return g.config }

// Init creates the control directory under root.
func (g *Graph) Init(ctx context.Context, root string) error {
	return g.svc.InitRoot(ctx, root)
}

// Apply applies tx to root and returns its audit entry. On error the root
// may be partially applied; call Verify and Recover before relying on it.
func (g *Graph) Apply(ctx context.Context, root string, tx Transaction) (OpsLogEntry, error) {
	return g.svc.ApplyTransaction(ctx, root, tx)
}

// Recover replays any pending WAL entries under root and clears the WAL.
// It returns the number of replayed transactions.
func (g *Graph) Recover(ctx context.Context, root string) (int, error) {
	return g.svc.RecoverRoot(ctx, root)
}

// Verify parses root's WAL without side effects and returns the number
// of pending transactions.
func (g *Graph) Verify(ctx context.Context, root string) (int, error) {
	return g.svc.VerifyRoot(ctx, root)
}

// Compact clears root's WAL. It refuses while transactions are pending
// unless force is set or the Graph was configured with ForceCompact.
func (g *Graph) Compact(ctx context.Context, root string, force bool) error {
	return g.svc.CompactRoot(ctx, root, force)
}

// AuditLog returns committed transactions most recent first; limit <= 0
// returns all of them.
func (g *Graph) AuditLog(ctx context.Context, root string, limit int) ([]OpsLogEntry, error) {
	return g.svc.ReadAuditLog(ctx, root, limit)
}

// Status reports pending transactions and the audit log size for root.
func (g *Graph) Status(ctx context.Context, root string) (Status, error) {
	return g.svc.Status(ctx, root)
}

// ListEntries returns the full paths of dir's immediate children.
func (g *Graph) ListEntries(ctx context.Context, dir string) ([]string, error) {
	return g.svc.ListEntries(ctx, dir)
}

// ReadContent returns the UTF-8 content of path.
func (g *Graph) ReadContent(ctx context.Context, path string) (string, error) {
	return g.svc.ReadContent(ctx, path)
}

// StatMTime returns path's modification time in milliseconds since the epoch.
func (g *Graph) StatMTime(ctx context.Context, path string) (float64, error) {
	return g.svc.StatMTime(ctx, path)
}

// Start initializes plugins in registration order. If one fails, those
// already initialized are shut down and the error is returned.
func (g *Graph) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return domain.ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	pluginCfg := PluginConfig{
		Root:   g.config.Root,
		Graph:  g,
		Logger: g.logger,
	}
	for i, p := range g.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			g.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			g.shutdownPlugins(g.plugins[:i])
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		g.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	g.cancel = cancel
	g.running = true
	return nil
}

// Stop shuts plugins down in reverse order.
func (g *Graph) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return domain.ErrNotRunning
	}
	g.cancel()
	g.shutdownPlugins(g.plugins)
	g.running = false
	return nil
}

// Running reports whether Start has been called without a matching Stop.
func (g *Graph) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

func (g *Graph) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			g.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			g.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}
