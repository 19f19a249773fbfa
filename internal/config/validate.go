package config

import (
	"fmt"
	"slices"
	"strings"
)

// Valid enum values for configuration fields.
var (
	ValidBackends   = []string{"memory", "toml", "json", "sqlite"}
	ValidHookEvents = []string{"pre-build", "pre-release", "post-release"}
)

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// validateHooks checks every enabled hook has a command and known events.
func validateHooks(hc HooksConfig, contextInfo string) error {
	suffix := ""
	if contextInfo != "" {
		suffix = " in " + contextInfo
	}
	for name, hook := range hc.Hooks {
		if !hook.IsEnabled() {
			continue
		}
		if strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("hook %q%s has no command", name, suffix)
		}
		for _, ev := range hook.Events {
			if err := validateEnum(ev, "hooks."+name+".events", ValidHookEvents); err != nil {
				return fmt.Errorf("%w%s", err, suffix)
			}
		}
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
