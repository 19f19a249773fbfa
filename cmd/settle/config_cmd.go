package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage settle configuration.

Global config: ~/.config/settle/config.toml (or $SETTLE_CONFIG)
Local config:  .settle.toml (in the released source directory)`,
		Example: `  settle config init          # Create default global config
  settle config init --local  # Create local source config
  settle config show          # Show effective config
  settle config schema        # Print the setting defaults`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSchemaCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
		source string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config file.
With --local, creates a per-source .settle.toml in the source directory.`,
		Example: `  settle config init           # Create global config
  settle config init --local   # Create local source config
  settle config init -f        # Overwrite existing config
  settle config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if !local {
				if stdout {
					out.Print(config.DefaultConfig())
					return nil
				}
				path, err := config.Init(force)
				if err != nil {
					return err
				}
				out.Printf("Created config file: %s\n", path)
				return nil
			}

			if stdout {
				out.Print(config.DefaultLocalConfig())
				return nil
			}

			src, err := resolveSource(source)
			if err != nil {
				return err
			}
			configPath := filepath.Join(src, config.LocalConfigFileName)

			// Check if exists
			if !force {
				if _, err := os.Stat(configPath); err == nil {
					return fmt.Errorf("local config already exists: %s (use -f to overwrite)", configPath)
				}
			}

			if err := os.WriteFile(configPath, []byte(config.DefaultLocalConfig()), 0644); err != nil {
				return err
			}
			out.Printf("Created local config: %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create per-source .settle.toml instead of global config")
	cmd.Flags().StringVar(&source, "source", "", "Source directory for --local (default: current directory)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		Long: `Show the effective configuration.

With --source, local overrides from that directory's .settle.toml are
merged in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			cfg := config.FromContext(ctx)
			if source != "" {
				src, err := resolveSource(source)
				if err != nil {
					return err
				}
				cfg = effectiveConfig(cmd, src)
			}

			if jsonOutput {
				return out.JSON(cfg)
			}

			backend := cfg.Store.Backend
			if backend == "" {
				backend = "(from extension)"
			}
			out.Printf("store.path     %s\n", cfg.Store.Path)
			out.Printf("store.backend  %s\n", backend)
			out.Printf("theme          %s\n", cfg.Theme)
			out.Printf("release_hooks  %s\n", strings.Join(cfg.ReleaseHooks, ", "))

			names := make([]string, 0, len(cfg.Hooks.Hooks))
			for name := range cfg.Hooks.Hooks {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				h := cfg.Hooks.Hooks[name]
				state := ""
				if !h.IsEnabled() {
					state = " (disabled)"
				}
				out.Printf("hooks.%s%s\n  command  %s\n", name, state, h.Command)
				if len(h.Events) > 0 {
					out.Printf("  events   %s\n", strings.Join(h.Events, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "", "Merge the local config of this source directory")

	return cmd
}

func newConfigSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the setting defaults",
		Long:  `Print the embedded TOML document defining every setting and its default.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output.FromContext(cmd.Context()).Print(string(config.DefaultSchemaTOML()))
			return nil
		},
	}

	return cmd
}
