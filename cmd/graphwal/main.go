package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/pborman/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/graphwal/internal/cliconfig"
	"github.com/bft-labs/graphwal/pkg/graphwal"
	"github.com/bft-labs/graphwal/pkg/log"
	"github.com/bft-labs/graphwal/plugins/walwatcher"
)

const helpDescription = `
Apply batches of file writes to a directory crash-safely.

Every transaction is recorded in <root>/.graph/wal.log before any file is
touched, each file is replaced atomically, and committed transactions are
audited in <root>/.graph/ops_log.jsonl. After a crash, run "graphwal recover"
to replay whatever the WAL still holds.

Configuration comes from flags, GRAPHWAL_* environment variables and
$HOME/.graphwal/config.toml, in that order of precedence.
`

var exampleUsage = strings.TrimSpace(`
  graphwal --root ~/notes init
  echo '{"id":"tx-1","operations":[{"path":"a.md","content":"hello"}]}' | graphwal --root ~/notes apply
  graphwal --root ~/notes verify
  graphwal --root ~/notes recover
  graphwal --root ~/notes log --limit 5
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the resolved configuration and logger between commands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
	graph   *graphwal.Graph
}

func main() {
	c := &cli{
		cfg: cliconfig.DefaultConfig(),
		log: cliconfig.Logger("info"),
	}

	root := &cobra.Command{
		Use:           "graphwal",
		Short:         "Crash-safe transactional writes to a directory of files",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.graphwal/config.toml)")
	root.PersistentFlags().StringVar(&c.cfg.Root, "root", c.cfg.Root, "root directory of the graph")
	root.PersistentFlags().StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&c.cfg.GuardPendingWAL, "guard", c.cfg.GuardPendingWAL, "refuse to apply while the WAL holds a pending transaction")

	root.AddCommand(
		c.initCmd(),
		c.applyCmd(),
		c.recoverCmd(),
		c.verifyCmd(),
		c.compactCmd(),
		c.logCmd(),
		c.statusCmd(),
		c.lsCmd(),
		c.catCmd(),
		c.statCmd(),
		c.watchCmd(),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().
			Str("kind", graphwal.KindOf(err).String()).
			Err(err).
			Msg("graphwal")
		os.Exit(1)
	}
}

// load resolves configuration (flags > env > file > defaults) and builds
// the logger and the Graph.
func (c *cli) load(cmd *cobra.Command) error {
	if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
		return nil
	}

	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.Logger(c.cfg.LogLevel)
	c.log.Debug().Interface("config", c.cfg).Msg("configuration")

	return nil
}

func (c *cli) newGraph(opts ...graphwal.Option) (*graphwal.Graph, error) {
	libCfg := graphwal.Config{
		Root:            c.cfg.Root,
		GuardPendingWAL: c.cfg.GuardPendingWAL,
		ForceCompact:    c.cfg.ForceCompact,
	}
	opts = append([]graphwal.Option{
		graphwal.WithLogger(log.NewZerologAdapterWithLogger(c.log)),
	}, opts...)

	g, err := graphwal.New(libCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create graph: %w", err)
	}
	return g, nil
}

// withGraph builds the default Graph before running fn.
func (c *cli) withGraph(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		g, err := c.newGraph()
		if err != nil {
			return err
		}
		c.graph = g
		return fn(cmd, args)
	}
}

// resolve interprets a relative CLI path against the configured root.
func (c *cli) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.cfg.Root, p)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the control directory under the root",
		Args:  cobra.NoArgs,
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			if err := c.graph.Init(cmd.Context(), c.cfg.Root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", filepath.Join(c.cfg.Root, ".graph"))
			return nil
		}),
	}
}

func (c *cli) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply [file|-]",
		Short: "Apply a transaction read from a JSON file or stdin",
		Long: `Apply a transaction of the form {"id":"...","operations":[{"path":"...","content":"..."}]}.
A transaction without an id is given a random one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open transaction: %w", err)
				}
				defer f.Close()
				in = f
			}

			var tx graphwal.Transaction
			if err := json.NewDecoder(in).Decode(&tx); err != nil {
				return fmt.Errorf("decode transaction: %w", err)
			}
			if tx.ID == "" {
				tx.ID = uuid.New()
			}

			entry, err := c.graph.Apply(cmd.Context(), c.cfg.Root, tx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entry)
		}),
	}
}

func (c *cli) recoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "recover",
		Aliases: []string{"reindex"},
		Short:   "Replay transactions left pending in the WAL",
		Args:    cobra.NoArgs,
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			n, err := c.graph.Recover(cmd.Context(), c.cfg.Root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replayed %d transaction(s)\n", n)
			return nil
		}),
	}
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the WAL parses and count pending transactions",
		Args:  cobra.NoArgs,
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			n, err := c.graph.Verify(cmd.Context(), c.cfg.Root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "WAL ok, %d pending transaction(s)\n", n)
			return nil
		}),
	}
}

func (c *cli) compactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Clear the WAL",
		Long:  "Clear the WAL. Pending or unreadable WAL content is only discarded with --force.",
		Args:  cobra.NoArgs,
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			if err := c.graph.Compact(cmd.Context(), c.cfg.Root, c.cfg.ForceCompact); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "WAL cleared")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&c.cfg.ForceCompact, "force", c.cfg.ForceCompact, "discard pending transactions")
	return cmd
}

func (c *cli) logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print committed transactions, most recent first",
		Args:  cobra.NoArgs,
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			entries, err := c.graph.AuditLog(cmd.Context(), c.cfg.Root, c.cfg.AuditLimit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&c.cfg.AuditLimit, "limit", c.cfg.AuditLimit, "maximum number of entries (0 for all)")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending transactions and audit log size",
		Args:  cobra.NoArgs,
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			st, err := c.graph.Status(cmd.Context(), c.cfg.Root)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		}),
	}
}

func (c *cli) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the entries of a directory (default: the root)",
		Args:  cobra.MaximumNArgs(1),
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Root
			if len(args) == 1 {
				dir = c.resolve(args[0])
			}
			entries, err := c.graph.ListEntries(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		}),
	}
}

func (c *cli) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print the content of a file",
		Args:  cobra.ExactArgs(1),
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			content, err := c.graph.ReadContent(cmd.Context(), c.resolve(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		}),
	}
}

func (c *cli) statCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Print a file's modification time in milliseconds since the epoch",
		Args:  cobra.ExactArgs(1),
		RunE: c.withGraph(func(cmd *cobra.Command, args []string) error {
			ms, err := c.graph.StatMTime(cmd.Context(), c.resolve(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", ms)
			return nil
		}),
	}
}

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the root, reporting changes and pending transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.newGraph(walwatcher.WithWALWatcher(walwatcher.Config{
				DebounceDelay: c.cfg.WatchDebounce,
				AutoRecover:   c.cfg.AutoRecover,
				OnChange: func(ev walwatcher.ChangeEvent) {
					c.log.Info().Str("path", ev.Path).Str("op", ev.Op).Msg("change")
				},
			}))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := g.Start(ctx); err != nil {
				return fmt.Errorf("start graph: %w", err)
			}

			<-sigCh
			c.log.Info().Msg("received signal, stopping...")

			if err := g.Stop(); err != nil {
				return fmt.Errorf("stop graph: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&c.cfg.WatchDebounce, "debounce", c.cfg.WatchDebounce, "quiet period before the WAL is checked")
	cmd.Flags().BoolVar(&c.cfg.AutoRecover, "auto-recover", c.cfg.AutoRecover, "replay pending transactions as soon as they are found")
	return cmd
}
