package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/settings"
	"github.com/raphi011/settle/internal/ui/prompt"
)

func newSetCmd() *cobra.Command {
	var hint string

	cmd := &cobra.Command{
		Use:               "set <key> <value|->",
		Short:             "Persist a setting",
		GroupID:           GroupSettings,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSchemaKeys,
		Long: `Persist the value of a setting.

The value is parsed into the type of the key's default: booleans accept
"true" in any case (everything else is false), numbers must parse fully.
With --type, a non-schema key is stored as the given type; schema keys
reject --type. Use - to read the value from piped stdin.`,
		Example: `  settle set main/editor nvim
  settle set resolve/max_fails 3
  settle set window/width 640 --type int
  echo nord | settle set ui/theme -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			key, text := args[0], args[1]
			if text == "-" {
				text, err = readPipedValue(os.Stdin)
				if err != nil {
					return err
				}
			}

			if hint != "" {
				kind, err := settings.ParseKind(hint)
				if err != nil {
					return err
				}
				if err := store.SetHinted(key, text, kind); err != nil {
					return err
				}
			} else if err := store.SetText(key, text); err != nil {
				return withSuggestions(err, store.Schema())
			}
			log.FromContext(ctx).Debug("saved setting", "key", key, "value", text)
			return closeStore()
		},
	}

	cmd.Flags().StringVarP(&hint, "type", "t", "", "Store a non-schema key as bool, int, float or string")
	cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions([]string{"bool", "int", "float", "string"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// readPipedValue reads a value from stdin, which must not be a terminal.
func readPipedValue(stdin *os.File) (string, error) {
	if isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd()) {
		return "", fmt.Errorf("stdin not piped: value - requires piped input")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func newUnsetCmd() *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:               "unset <key>...",
		Short:             "Remove persisted settings",
		GroupID:           GroupSettings,
		ValidArgsFunction: completeSchemaKeys,
		Long: `Remove persisted values so that schema keys read their default again.

Removing a list key removes all of its entries. With --all every persisted
key is removed after a confirmation prompt.`,
		Example: `  settle unset main/editor
  settle unset release/recent_paths
  settle unset --all --yes`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			keys := args
			if all {
				if keys, err = store.Keys(); err != nil {
					return err
				}
				if len(keys) == 0 {
					return nil
				}
				if !yes {
					if !isatty.IsTerminal(os.Stdin.Fd()) {
						return fmt.Errorf("refusing to remove %d settings without a terminal (use --yes)", len(keys))
					}
					res, err := prompt.Confirm(ctx, fmt.Sprintf("Remove %d persisted settings?", len(keys)), false)
					if err != nil {
						return err
					}
					if !res.Confirmed {
						return nil
					}
				}
			}

			for _, key := range keys {
				if err := store.Remove(key); err != nil {
					return fmt.Errorf("unset %q: %w", key, err)
				}
			}
			log.FromContext(ctx).Debug("removed settings", "count", len(keys))
			return closeStore()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every persisted setting")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
