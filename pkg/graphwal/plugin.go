package graphwal

import "context"

// Plugin extends a Graph with background behavior between Start and Stop.
type Plugin interface {
	// Name returns a unique identifier for logging.
	Name() string

	// Initialize starts the plugin. A returned error aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// PluginConfig is passed to Plugin.Initialize.
type PluginConfig struct {
	// Root is the configured root directory, possibly empty.
	Root string

	// Graph gives plugins access to the transactional operations.
	Graph *Graph

	Logger Logger
}
