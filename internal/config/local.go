package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-source config file name
const LocalConfigFileName = ".settle.toml"

// LocalConfig holds per-source overrides from .settle.toml.
// Nil or empty fields mean "not set" (inherit from global).
type LocalConfig struct {
	Hooks        HooksConfig `toml:"-"`             // merge by name into global
	ReleaseHooks []string    `toml:"release_hooks"` // appended to global
}

// rawLocalConfig is used for initial TOML parsing before processing hooks
type rawLocalConfig struct {
	Hooks        map[string]any `toml:"hooks"`
	ReleaseHooks []string       `toml:"release_hooks"`
}

// LoadLocal reads a per-source .settle.toml from the given directory.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(sourcePath string) (*LocalConfig, error) {
	configFile := filepath.Join(sourcePath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	local := &LocalConfig{
		Hooks:        parseHooksConfig(raw.Hooks),
		ReleaseHooks: raw.ReleaseHooks,
	}

	if err := validateHooks(local.Hooks, configFile); err != nil {
		return nil, err
	}

	return local, nil
}

// defaultLocalConfig is the template for settle config init --local
const defaultLocalConfig = `# settle local config (per-source overrides)
# Place this file in the directory you release from.
# Settings here extend the global ~/.config/settle/config.toml for
# releases of this source only.

# Extra hooks created for releases of this source
# release_hooks = ["changelog"]

# Hooks - add source-specific hooks or override global hooks
# Set enabled = false to disable a global hook for this source
#
# [hooks.changelog]
# command = "echo {message} >> {source}/CHANGELOG"
# events = ["post-release"]
#
# [hooks.global-hook-name]
# enabled = false  # Disable this global hook for this source
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
