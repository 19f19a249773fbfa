package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/output"
	"github.com/raphi011/settle/internal/storage"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	storePath string
	backend   string
	ephemeral bool
)

// Command group IDs for organizing help output
const (
	GroupSettings = "settings"
	GroupRelease  = "release"
	GroupConfig   = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Typed persistent settings with release hooks",
		Long: `settle reads and writes typed application settings.

Every setting has a schema default that fixes its type. Values are
persisted in a TOML, JSON or SQLite store and edited from the command
line or the interactive editor. Release hooks run shell commands and
remember recent install paths.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2, // Enable typo suggestions
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate mutually exclusive flags
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}

			ctx := log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet))
			ctx, err := applyStoreFlags(ctx)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
		// Run is not set - shows help when no subcommand provided
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output and executed commands")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "Settings store file (overrides config)")
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "Store backend: toml, json, sqlite or memory")
	cmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Use an in-memory store that is discarded on exit")
	cmd.MarkFlagsMutuallyExclusive("backend", "ephemeral")
	cmd.RegisterFlagCompletionFunc("backend", cobra.FixedCompletions(config.ValidBackends, cobra.ShellCompDirectiveNoFileComp))

	// Version flag
	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	cmd.AddGroup(
		&cobra.Group{ID: GroupSettings, Title: "Settings Commands:"},
		&cobra.Group{ID: GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Settings commands
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newKeysCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newEditCmd())

	// Release commands
	cmd.AddCommand(newHookCmd())

	// Config commands
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

// applyStoreFlags overrides the store location of the config in ctx with
// the --store, --backend and --ephemeral flags.
func applyStoreFlags(ctx context.Context) (context.Context, error) {
	if storePath == "" && backend == "" && !ephemeral {
		return ctx, nil
	}

	cfg := *config.FromContext(ctx)
	if storePath != "" {
		abs, err := filepath.Abs(storePath)
		if err != nil {
			return ctx, fmt.Errorf("resolve --store: %w", err)
		}
		cfg.Store.Path = abs
		cfg.Store.Backend = ""
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if ephemeral {
		cfg.Store.Backend = storage.KindMemory
	}
	return config.WithConfig(ctx, &cfg), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Load config
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg := &loadedCfg

	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = config.WithConfig(ctx, cfg)
	ctx = config.WithResolver(ctx, config.NewResolver(cfg))

	// Add output printer (stdout for primary data)
	ctx = output.WithPrinter(ctx, os.Stdout)

	// Store context for commands to use
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'settle -h' for help")
		os.Exit(1)
	}
}
