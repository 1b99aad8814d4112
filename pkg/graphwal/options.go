package graphwal

import "github.com/bft-labs/graphwal/pkg/log"

// Option configures optional behavior of Graph.
type Option func(*options)

// options holds the optional configuration for a Graph instance.
type options struct {
	logger   Logger
	writer   FileWriter
	observer PhaseObserver
	plugins  []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFileWriter replaces the atomic file writer used by Apply and Recover.
// Intended for fault injection in tests.
func WithFileWriter(w FileWriter) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithPhaseObserver sets an observer for transaction phase transitions.
// It is called synchronously from Apply.
func WithPhaseObserver(observer PhaseObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithPlugin registers a plugin to be initialized when Graph starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
