package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/log"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Context holds the values for placeholder substitution
type Context struct {
	User             string            // name of the person releasing
	InstallPath      string            // directory the release is installed into
	Event            string            // event label
	Message          string            // release message
	PreviousVersion  string            // empty without previous release
	PreviousRevision string            // empty without previous release
	Source           string            // directory containing the released source
	Env              map[string]string // custom variables from --arg key=value flags
}

// envPlaceholderRegex matches {key}, {key:raw}, or {key:-default} patterns for env variables.
// This is used after static replacements to expand custom env placeholders.
var envPlaceholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
// Values are properly escaped to prevent command injection.
//
// Static placeholders: {user}, {install-path}, {event}, {message},
// {previous-version}, {previous-revision}, {source}
// Env placeholders (from Context.Env):
//   - {key}          - shell-quoted value
//   - {key:raw}      - unquoted value (for embedding in existing quotes)
//   - {key:-default} - shell-quoted value with default if key missing
func SubstitutePlaceholders(command string, ctx Context) string {
	replacer := strings.NewReplacer(
		"{user}", shellQuote(ctx.User),
		"{install-path}", shellQuote(ctx.InstallPath),
		"{event}", shellQuote(ctx.Event),
		"{message}", shellQuote(ctx.Message),
		"{previous-version}", shellQuote(ctx.PreviousVersion),
		"{previous-revision}", shellQuote(ctx.PreviousRevision),
		"{source}", shellQuote(ctx.Source),
	)
	result := replacer.Replace(command)

	return envPlaceholderRegex.ReplaceAllStringFunc(result, func(match string) string {
		submatch := envPlaceholderRegex.FindStringSubmatch(match)
		if submatch == nil {
			return match
		}
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		defaultVal := submatch[3] // empty string if no default specified

		if val, ok := ctx.Env[key]; ok {
			if isRaw {
				return val
			}
			return shellQuote(val)
		}

		if isRaw {
			return defaultVal
		}
		return shellQuote(defaultVal)
	})
}

// CommandOptions configures how command hooks execute.
type CommandOptions struct {
	Env    map[string]string // values for custom placeholders
	DryRun bool              // print the command instead of running it
	Stdout io.Writer         // defaults to os.Stdout
	Stderr io.Writer         // defaults to os.Stderr
}

// CommandHook runs a configured shell command on release events.
type CommandHook struct {
	Base
	hook   config.Hook
	events []Event // empty = all events
	opts   CommandOptions
}

// NewCommandHook creates a command hook named name for the source at
// sourcePath.
func NewCommandHook(name, sourcePath string, hook config.Hook, opts CommandOptions) (*CommandHook, error) {
	if !hook.IsEnabled() {
		return nil, fmt.Errorf("hook %q is disabled", name)
	}
	if strings.TrimSpace(hook.Command) == "" {
		return nil, fmt.Errorf("hook %q has no command", name)
	}

	h := &CommandHook{
		Base: Base{HookName: name, SourcePath: sourcePath},
		hook: hook,
		opts: opts,
	}
	for _, label := range hook.Events {
		ev, err := ParseEvent(label)
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", name, err)
		}
		h.events = append(h.events, ev)
	}
	return h, nil
}

// RegisterCommands registers a command hook type for each hook in hc.
func RegisterCommands(r *Registry, hc config.HooksConfig, opts CommandOptions) {
	for name, hook := range hc.Hooks {
		r.Register(name, func(sourcePath string) (Hook, error) {
			return NewCommandHook(name, sourcePath, hook, opts)
		})
	}
}

// Handles reports whether the hook runs on ev.
func (h *CommandHook) Handles(ev Event) bool {
	if len(h.events) == 0 {
		return true
	}
	for _, e := range h.events {
		if e == ev {
			return true
		}
	}
	return false
}

func (h *CommandHook) PreBuild(ctx context.Context, r Release) error {
	return h.run(ctx, PreBuild, r)
}

func (h *CommandHook) PreRelease(ctx context.Context, r Release) error {
	return h.run(ctx, PreRelease, r)
}

func (h *CommandHook) PostRelease(ctx context.Context, r Release) error {
	return h.run(ctx, PostRelease, r)
}

// run executes the hook command with variable substitution.
func (h *CommandHook) run(ctx context.Context, ev Event, r Release) error {
	if !h.Handles(ev) {
		return nil
	}

	l := log.FromContext(ctx)
	stdout, stderr := h.opts.Stdout, h.opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cmd := SubstitutePlaceholders(h.hook.Command, Context{
		User:             r.User,
		InstallPath:      r.InstallPath,
		Event:            ev.Label(),
		Message:          r.Message,
		PreviousVersion:  r.PreviousVersion,
		PreviousRevision: r.PreviousRevision,
		Source:           h.SourcePath,
		Env:              h.opts.Env,
	})

	if h.opts.DryRun {
		fmt.Fprintf(stdout, "[dry-run] %s: %s\n", h.Name(), cmd)
		return nil
	}

	l.Printf("Running hook '%s'...\n", h.Name())

	shellCmd := exec.CommandContext(ctx, "sh", "-c", cmd)
	shellCmd.Dir = h.SourcePath
	shellCmd.Stdout = stdout
	shellCmd.Stderr = stderr

	done := l.Command(h.SourcePath, "sh", "-c", cmd)
	start := time.Now()
	err := shellCmd.Run()
	done(time.Since(start))

	if err != nil {
		if ev.Cancellable() {
			return &CancelError{Hook: h.Name(), Event: ev, Reason: "command failed", Err: err}
		}
		return err
	}

	if h.hook.Description != "" {
		l.Printf("  ✓ %s\n", h.hook.Description)
	}
	return nil
}
