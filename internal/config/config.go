package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Hook defines a shell command run on release events
type Hook struct {
	Command     string   `toml:"command" json:"command"`
	Description string   `toml:"description" json:"description,omitempty"`
	Events      []string `toml:"events" json:"events,omitempty"` // release events this hook runs on (empty = all)
	Enabled     *bool    `toml:"enabled" json:"enabled,omitempty"`
}

// IsEnabled reports whether the hook is enabled. Hooks are enabled unless
// explicitly set to false.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// StoreConfig locates the settings store
type StoreConfig struct {
	Path    string `toml:"path" json:"path"`
	Backend string `toml:"backend" json:"backend,omitempty"` // empty = inferred from path
}

// Config holds the settle configuration
type Config struct {
	Store        StoreConfig `toml:"store" json:"store"`
	Theme        string      `toml:"theme" json:"theme"`
	ReleaseHooks []string    `toml:"release_hooks" json:"release_hooks"`
	Hooks        HooksConfig `toml:"-" json:"hooks"` // custom parsing needed
}

// DefaultTheme is used when neither config nor settings pick one
const DefaultTheme = "default"

// DefaultStoreFile is the settings file name inside ~/.settle
const DefaultStoreFile = "settings.toml"

// Default returns the default configuration
func Default() Config {
	storePath := "~/.settle/" + DefaultStoreFile
	if expanded, err := expandPath(storePath); err == nil {
		storePath = expanded
	}
	return Config{
		Store:        StoreConfig{Path: storePath},
		Theme:        DefaultTheme,
		ReleaseHooks: []string{"recent"},
		Hooks:        HooksConfig{Hooks: make(map[string]Hook)},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	// Allow ~ paths
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file.
// SETTLE_CONFIG overrides the default location.
func Path() (string, error) {
	if p := os.Getenv("SETTLE_CONFIG"); p != "" {
		return expandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "settle", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before processing hooks
type rawConfig struct {
	Store        StoreConfig    `toml:"store"`
	Theme        string         `toml:"theme"`
	ReleaseHooks []string       `toml:"release_hooks"`
	Hooks        map[string]any `toml:"hooks"`
}

// Load reads config from ~/.config/settle/config.toml
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return applyEnv(Default())
	}
	return LoadFile(path)
}

// LoadFile reads config from path, see Load.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(Default())
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	def := Default()
	cfg := Config{
		Store:        raw.Store,
		Theme:        raw.Theme,
		ReleaseHooks: raw.ReleaseHooks,
		Hooks:        parseHooksConfig(raw.Hooks),
	}

	// Use defaults for empty values
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Theme == "" {
		cfg.Theme = def.Theme
	}
	// An explicit empty list disables the default hooks
	if !meta.IsDefined("release_hooks") {
		cfg.ReleaseHooks = def.ReleaseHooks
	}

	if err := validateHooks(cfg.Hooks, ""); err != nil {
		return Default(), err
	}

	return applyEnv(cfg)
}

// applyEnv applies environment overrides, then validates and expands the
// store location.
func applyEnv(cfg Config) (Config, error) {
	if p := os.Getenv("SETTLE_STORE"); p != "" {
		cfg.Store.Path = p
	}
	if b := os.Getenv("SETTLE_BACKEND"); b != "" {
		cfg.Store.Backend = b
	}

	if err := validateEnum(cfg.Store.Backend, "store.backend", ValidBackends); err != nil {
		return Default(), err
	}
	if cfg.Store.Backend != "memory" {
		if err := ValidatePath(cfg.Store.Path, "store.path"); err != nil {
			return Default(), err
		}
	}

	// Expand ~ in store.path (shell doesn't expand in config files)
	expanded, err := expandPath(cfg.Store.Path)
	if err != nil {
		return Default(), fmt.Errorf("expand store.path: %w", err)
	}
	cfg.Store.Path = expanded

	return cfg, nil
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		// Hook definitions are tables
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if events, ok := hookMap["events"].([]any); ok {
			for _, v := range events {
				if s, ok := v.(string); ok {
					hook.Events = append(hook.Events, s)
				}
			}
		}
		if enabled, ok := hookMap["enabled"].(bool); ok {
			hook.Enabled = &enabled
		}
		hc.Hooks[key] = hook
	}

	return hc
}

const defaultConfig = `# settle configuration
# Config location: ~/.config/settle/config.toml

# Settings store
[store]
# Must be an absolute path or start with ~
# The extension picks the backend: .toml, .json, or .db/.sqlite for SQLite
path = "~/.settle/settings.toml"
# backend = "sqlite"   # memory, toml, json, or sqlite (default: from path)

# Editor theme, used when the ui/theme setting is empty
# Available: default, dracula, nord, gruvbox, catppuccin, none
# theme = "default"

# Hooks created for every release ("recent" records install paths)
# release_hooks = ["recent", "notify"]

# Command hooks - run shell commands on release events
#
# [hooks.notify]
# command = "notify-send 'Released to {install-path}' {message}"
# description = "Desktop notification"
# events = ["post-release"]
#
# [hooks.check-clean]
# command = "git -C {source} diff --quiet"
# description = "Refuse to release a dirty tree"
# events = ["pre-release"]
#
# Available events: "pre-build", "pre-release", "post-release"
# A failing command cancels the release on pre-build and pre-release.
#
# Available placeholders (values are shell-quoted):
#   {user}              - name of the person releasing
#   {install-path}      - directory the release is installed into
#   {event}             - event label, e.g. post-release
#   {message}           - release message
#   {previous-version}  - previously released version
#   {previous-revision} - previously released revision
#   {source}            - directory containing the released source
`

// DefaultConfig returns the default configuration file content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file already exists: %s (use -f to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}
