package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/output"
	"github.com/raphi011/settle/internal/settings"
)

func newGetCmd() *cobra.Command {
	var (
		hint       string
		copyValue  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:               "get <key>",
		Short:             "Print a setting",
		GroupID:           GroupSettings,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSchemaKeys,
		Long: `Print the value of a setting.

Schema keys print the persisted value converted to the type of their
default, or the default itself. With --type, any persisted key can be read
and converted to the given type; schema keys reject --type.`,
		Example: `  settle get main/editor              # Print a schema setting
  settle get release/recent_paths/1/entry -t string
  settle get main/editor --copy       # Also copy the value to the clipboard
  settle get resolve/timeout --json   # Print as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			key := args[0]
			var v any
			if hint != "" {
				kind, err := settings.ParseKind(hint)
				if err != nil {
					return err
				}
				var ok bool
				v, ok, err = store.Hinted(key, kind)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("setting %q is not set", key)
				}
			} else {
				v, err = store.Value(key)
				if err != nil {
					return withSuggestions(err, store.Schema())
				}
			}

			text := settings.Text(v)
			if copyValue {
				if err := clipboard.WriteAll(text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				l.Debug("copied setting to clipboard", "key", key)
			}

			if jsonOutput {
				return out.JSON(map[string]any{"key": settings.CleanKey(key), "value": v})
			}
			out.Println(text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&hint, "type", "t", "", "Read a non-schema key as bool, int, float or string")
	cmd.Flags().BoolVarP(&copyValue, "copy", "c", false, "Copy the value to the clipboard")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions([]string{"bool", "int", "float", "string"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}
