package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/hooks"
	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/output"
	"github.com/raphi011/settle/internal/ui/static"
)

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hook",
		Short:   "List and run release hooks",
		Aliases: []string{"h"},
		GroupID: GroupRelease,
		Long: `List and run release hooks.

Command hooks are defined as [hooks.NAME] sections in config.toml or in a
.settle.toml next to the released source. The built-in "recent" hook
remembers install paths after each release.`,
		Example: `  settle hook list
  settle hook run pre-release -m "fix resolve order"
  settle hook run post-release --install-path /opt/foo/1.2.0
  settle hook run post-release notify -a channel=#releases -d`,
	}

	cmd.AddCommand(newHookListCmd())
	cmd.AddCommand(newHookRunCmd())

	return cmd
}

// resolveSource returns the absolute source directory, defaulting to the
// working directory.
func resolveSource(source string) (string, error) {
	if source == "" {
		return os.Getwd()
	}
	return filepath.Abs(source)
}

// effectiveConfig returns the config for releases of src, falling back to
// the global config when the local config cannot be read.
func effectiveConfig(cmd *cobra.Command, src string) *config.Config {
	ctx := cmd.Context()
	resolver := config.ResolverFromContext(ctx)
	eff, err := resolver.ConfigForSource(src)
	if err != nil {
		log.FromContext(ctx).Warn(fmt.Sprintf("failed to load local config for %s: %v", src, err))
		return resolver.Global()
	}
	return eff
}

func newHookListCmd() *cobra.Command {
	var (
		source     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available hooks",
		Long: `List the hook types available for a source.

Hooks marked with * run by default when "hook run" is given no names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			src, err := resolveSource(source)
			if err != nil {
				return err
			}
			eff := effectiveConfig(cmd, src)

			// The store is only used when a recent hook runs
			reg := hooks.Builtin(nil, eff.Hooks, hooks.CommandOptions{})

			type hookInfo struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Default     bool   `json:"default"`
			}
			var infos []hookInfo
			for _, name := range reg.Types() {
				info := hookInfo{Name: name, Default: slices.Contains(eff.ReleaseHooks, name)}
				if h, ok := eff.Hooks.Hooks[name]; ok {
					info.Description = h.Description
					if info.Description == "" {
						info.Description = h.Command
					}
				} else if name == hooks.RecentType {
					info.Description = "remember install paths in " + config.ListRecentPaths
				}
				infos = append(infos, info)
			}

			if jsonOutput {
				return out.JSON(infos)
			}
			tbl := static.Table{
				Headers:   []string{"", "NAME", "DESCRIPTION"},
				Highlight: func(row int) bool { return infos[row].Default },
			}
			for _, info := range infos {
				marker := ""
				if info.Default {
					marker = "*"
				}
				tbl.Rows = append(tbl.Rows, []string{marker, info.Name, info.Description})
			}
			_, err = io.WriteString(colorprofile.NewWriter(out.Writer(), os.Environ()), tbl.Render())
			return err
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source directory (default: current directory)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newHookRunCmd() *cobra.Command {
	var (
		source  string
		env     []string
		dryRun  bool
		release hooks.Release
	)

	cmd := &cobra.Command{
		Use:               "run <event> [hook]...",
		Short:             "Deliver a release event to hooks",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeEvents,
		Long: `Deliver a release event to the named hooks, or to the configured
release_hooks when no names are given.

Events: pre-build, pre-release, post-release. A failing hook stops a
pre-event and cancels the release; post-release failures are only
reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			ev, err := hooks.ParseEvent(args[0])
			if err != nil {
				return err
			}

			hookEnv, err := hooks.ParseEnvWithStdin(env, os.Stdin)
			if err != nil {
				return err
			}

			src, err := resolveSource(source)
			if err != nil {
				return err
			}
			eff := effectiveConfig(cmd, src)

			names := args[1:]
			if len(names) == 0 {
				names = eff.ReleaseHooks
			}
			if release.User == "" {
				release.User = os.Getenv("USER")
			}

			store, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			reg := hooks.Builtin(store, eff.Hooks, hooks.CommandOptions{
				Env:    hookEnv,
				DryRun: dryRun,
				Stdout: output.FromContext(ctx).Writer(),
				Stderr: os.Stderr,
			})
			created := reg.CreateHooks(ctx, names, src)
			l.Debug("running hooks", "event", ev, "hooks", len(created), "source", src, "dryRun", dryRun)

			if err := hooks.Dispatch(ctx, created, ev, release); err != nil {
				return err
			}
			return closeStore()
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source directory (default: current directory)")
	cmd.Flags().StringSliceVarP(&env, "arg", "a", nil, "Set hook variable KEY=VALUE (VALUE - reads stdin)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Print commands without executing")
	cmd.Flags().StringVarP(&release.User, "user", "u", "", "Releasing user (default: $USER)")
	cmd.Flags().StringVarP(&release.InstallPath, "install-path", "i", "", "Directory the release is installed into")
	cmd.Flags().StringVarP(&release.Message, "message", "m", "", "Release message")
	cmd.Flags().StringSliceVar(&release.Changelog, "changelog", nil, "Changelog entries")
	cmd.Flags().IntSliceVar(&release.Variants, "variant", nil, "Released variant indices (default: all)")
	cmd.Flags().StringVar(&release.PreviousVersion, "previous-version", "", "Previously released version")
	cmd.Flags().StringVar(&release.PreviousRevision, "previous-revision", "", "Previously released revision")
	cmd.RegisterFlagCompletionFunc("arg", cobra.NoFileCompletions)

	return cmd
}
