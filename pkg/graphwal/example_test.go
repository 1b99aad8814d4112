package graphwal_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/graphwal/pkg/graphwal"
)

// ExampleGraph_Apply applies a two-file transaction and reads the audit log.
func ExampleGraph_Apply() {
	root, err := os.MkdirTemp("", "graphwal-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(root)

	g, err := graphwal.New(graphwal.DefaultConfig())
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	tx := graphwal.NewTransaction("tx1",
		graphwal.WriteOperation{Path: "pages/a.md", Content: "alpha"},
		graphwal.WriteOperation{Path: "pages/b.md", Content: "bravo"},
	)
	if _, err := g.Apply(ctx, root, tx); err != nil {
		fmt.Println(err)
		return
	}

	b, _ := os.ReadFile(filepath.Join(root, "pages", "a.md"))
	fmt.Println(string(b))

	entries, _ := g.AuditLog(ctx, root, 1)
	fmt.Println(entries[0].TransactionID, len(entries[0].Operations))

	// Output:
	// alpha
	// tx1 2
}

// ExampleGraph_Recover finishes a transaction left in the WAL by a crash.
func ExampleGraph_Recover() {
	root, err := os.MkdirTemp("", "graphwal-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(root)

	// Simulate a crash right after the WAL append.
	_ = os.MkdirAll(filepath.Join(root, ".graph"), 0o755)
	_ = os.WriteFile(filepath.Join(root, ".graph", "wal.log"),
		[]byte(`{"transaction_id":"tx1","operations":[{"path":"a.txt","content":"hello"}]}`+"\n"), 0o644)

	g, _ := graphwal.New(graphwal.DefaultConfig())
	ctx := context.Background()

	pending, _ := g.Verify(ctx, root)
	replayed, _ := g.Recover(ctx, root)
	b, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	fmt.Println(pending, replayed, string(b))

	// Output: 1 1 hello
}
