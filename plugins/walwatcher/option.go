package walwatcher

import "github.com/bft-labs/graphwal/pkg/graphwal"

// WithWALWatcher returns a graphwal Option that enables WAL watching on the
// configured root.
//
// Usage:
//
//	g, err := graphwal.New(cfg,
//	    walwatcher.WithWALWatcher(walwatcher.Config{
//	        DebounceDelay: 200 * time.Millisecond,
//	        AutoRecover:   true,
//	    }),
//	)
func WithWALWatcher(cfg Config) graphwal.Option {
	return graphwal.WithPlugin(New(cfg))
}

// WithDefaultWALWatcher returns a graphwal Option that enables WAL watching
// with default settings (debounce 100ms, no auto recovery).
func WithDefaultWALWatcher() graphwal.Option {
	return WithWALWatcher(DefaultConfig())
}
