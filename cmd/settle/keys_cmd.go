package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/output"
	"github.com/raphi011/settle/internal/settings"
	"github.com/raphi011/settle/internal/ui/styles"
)

// keyInfo is one row of the keys listing.
type keyInfo struct {
	Key       string `json:"key"`
	Type      string `json:"type,omitempty"`
	Value     any    `json:"value"`
	Default   any    `json:"default,omitempty"`
	Persisted bool   `json:"persisted"`
}

func newKeysCmd() *cobra.Command {
	var (
		persisted  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "keys [prefix]",
		Short:   "List settings",
		GroupID: GroupSettings,
		Args:    cobra.MaximumNArgs(1),
		Long: `List schema settings with their current values.

Settings that differ from their default are highlighted. With --persisted,
every key in the store is listed instead, including list entries.`,
		Example: `  settle keys             # All schema settings
  settle keys ui          # Settings under ui/
  settle keys --persisted # Raw keys in the store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			prefix := ""
			if len(args) == 1 {
				prefix = settings.CleanKey(args[0]) + "/"
			}

			rows, err := collectKeys(store, prefix, persisted)
			if err != nil {
				return err
			}

			if jsonOutput {
				return out.JSON(rows)
			}

			// Downsample colors to what stdout supports
			w := colorprofile.NewWriter(out.Writer(), os.Environ())
			for _, r := range rows {
				fmt.Fprintln(w, formatKeyRow(r))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&persisted, "persisted", "p", false, "List raw persisted keys")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func collectKeys(store *settings.Store, prefix string, persisted bool) ([]keyInfo, error) {
	stored, err := store.Keys()
	if err != nil {
		return nil, err
	}

	var rows []keyInfo
	if persisted {
		for _, key := range stored {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			v, _, err := store.Hinted(key, settings.KindString)
			if errors.Is(err, settings.ErrAmbiguousKey) {
				// Schema keys reject hints; read them typed instead
				v, err = store.Value(key)
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, keyInfo{Key: key, Value: v, Persisted: true})
		}
		return rows, nil
	}

	for _, key := range store.Schema().Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		v, err := store.Value(key)
		if err != nil {
			return nil, err
		}
		def, _ := store.Schema().Default(key)
		rows = append(rows, keyInfo{
			Key:       key,
			Type:      settings.KindOf(def).String(),
			Value:     v,
			Default:   def,
			Persisted: slices.Contains(stored, key),
		})
	}
	return rows, nil
}

func formatKeyRow(r keyInfo) string {
	value := settings.Text(r.Value)
	if r.Type == "" {
		return r.Key + " = " + value
	}

	line := fmt.Sprintf("%s = %s", r.Key, value)
	if r.Persisted && r.Value != r.Default {
		return styles.AccentStyle.Render(line) + " " + styles.MutedStyle.Render("(default "+settings.Text(r.Default)+")")
	}
	return line
}
