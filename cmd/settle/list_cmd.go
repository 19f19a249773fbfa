package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/output"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "Manage string lists",
		GroupID: GroupSettings,
		Long: `Read and write string lists.

Lists are stored as arrays: <key>/size holds the length and
<key>/<n>/entry the n-th string, counting from 1.`,
		Example: `  settle list get release/recent_paths
  settle list set my/list a b c
  settle list prepend release/recent_paths /opt/foo --max-key release/max_recent`,
	}

	cmd.AddCommand(newListGetCmd())
	cmd.AddCommand(newListSetCmd())
	cmd.AddCommand(newListPrependCmd())

	return cmd
}

func newListGetCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a list, one entry per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := store.StringList(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return out.JSON(list)
			}
			out.Lines(list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newListSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> [entry]...",
		Short: "Replace a list",
		Long:  `Replace a list with the given entries. Without entries the list is emptied.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.SetStringList(args[0], args[1:]); err != nil {
				return err
			}
			return closeStore()
		},
	}

	return cmd
}

func newListPrependCmd() *cobra.Command {
	var maxKey string

	cmd := &cobra.Command{
		Use:   "prepend <key> <entry>",
		Short: "Move an entry to the front of a list",
		Long: `Move an entry to the front of a list, removing other occurrences of it.

The list is truncated to the length stored in the integer setting named
by --max-key.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.PrependStringList(args[0], args[1], maxKey); err != nil {
				return withSuggestions(err, store.Schema())
			}
			return closeStore()
		},
	}

	cmd.Flags().StringVarP(&maxKey, "max-key", "m", config.KeyHistoryLength, "Integer setting bounding the list length")
	cmd.RegisterFlagCompletionFunc("max-key", completeSchemaKeys)

	return cmd
}
