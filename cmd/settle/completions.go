package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/hooks"
)

// completeSchemaKeys completes keys of the default schema.
func completeSchemaKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	schema, err := config.DefaultSchema()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var matches []string
	for _, key := range schema.Keys() {
		if strings.HasPrefix(key, toComplete) {
			matches = append(matches, key)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// completeEvents completes release event labels.
func completeEvents(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return completeHookNames(cmd, args, toComplete)
	}

	var labels []string
	for _, ev := range hooks.Events() {
		if strings.HasPrefix(ev.Label(), toComplete) {
			labels = append(labels, ev.Label())
		}
	}
	return labels, cobra.ShellCompDirectiveNoFileComp
}

// completeHookNames completes hook names from the global config.
func completeHookNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, name := range append([]string{hooks.RecentType}, mapKeys(cfg.Hooks.Hooks)...) {
		if strings.HasPrefix(name, toComplete) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func mapKeys(hooks map[string]config.Hook) []string {
	keys := make([]string, 0, len(hooks))
	for name := range hooks {
		keys = append(keys, name)
	}
	return keys
}
