package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/ui/editor"
	"github.com/raphi011/settle/internal/ui/styles"
)

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "edit [key]...",
		Short:             "Edit settings interactively",
		GroupID:           GroupSettings,
		ValidArgsFunction: completeSchemaKeys,
		Long: `Edit settings in a terminal form.

Boolean settings are check boxes, all others are combo boxes offering the
values you entered before. Every change is saved immediately.`,
		Example: `  settle edit              # Edit all settings
  settle edit ui/theme     # Edit selected settings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stderr.Fd()) {
				return fmt.Errorf("edit requires an interactive terminal")
			}

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			editor.ApplyTheme(ctx, store)

			e, err := editor.New(ctx, store, editor.Options{
				Title:   "settle",
				Keys:    args,
				Choices: map[string][]string{config.KeyTheme: styles.ThemeNames()},
			})
			if err != nil {
				return withSuggestions(err, store.Schema())
			}
			if err := e.Run(ctx); err != nil {
				return err
			}
			return closeStore()
		},
	}

	return cmd
}
