// Package graphwal provides crash-safe batched file writes for a local
// project directory.
//
// A [Transaction] is an ordered batch of whole-file writes. Applying it
// first records the batch in a write-ahead log under <root>/.graph, then
// replaces each file with a write-to-temp-and-rename, then clears the log
// and appends an audit record to <root>/.graph/ops_log.jsonl. If the process
// dies in between, [Graph.Recover] replays the logged batch.
//
// # Basic Usage
//
//	g, err := graphwal.New(graphwal.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if n, err := g.Verify(ctx, root); err == nil && n > 0 {
//	    _, _ = g.Recover(ctx, root)
//	}
//
//	tx := graphwal.NewTransaction("tx1",
//	    graphwal.WriteOperation{Path: "pages/a.md", Content: "hello"},
//	)
//	if _, err := g.Apply(ctx, root, tx); err != nil {
//	    // The root may be half applied: Verify, then Recover.
//	}
//
// # Concurrency
//
// Operations on the same root are serialized inside one [Graph]. Separate
// processes writing the same root are not coordinated.
//
// # Errors
//
// Errors carry a [Kind] (I/O, serialization, not found, invalid path,
// pending WAL, audit). Use [KindOf] or errors.Is with the sentinel errors.
//
// # Plugins
//
// Optional plugins run between [Graph.Start] and [Graph.Stop]:
//
//	import "github.com/bft-labs/graphwal/plugins/walwatcher"
//
//	g, err := graphwal.New(cfg, walwatcher.WithWALWatcher(walwatcher.DefaultConfig()))
package graphwal
