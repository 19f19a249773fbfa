package config

import (
	_ "embed"

	"github.com/raphi011/settle/internal/settings"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Keys of the default schema read by settle itself.
const (
	KeyTheme          = "ui/theme"
	KeyShowHelp       = "ui/show_help"
	KeyNerdfont       = "ui/nerdfont"
	KeyConfirmExit    = "main/confirm_exit"
	KeyHistoryLength  = "history/max_length"
	KeyMaxRecent      = "release/max_recent"
	ListRecentPaths   = "release/recent_paths"
	HistoryListPrefix = "history/"
)

// DefaultSchema returns the schema of application setting defaults.
func DefaultSchema() (*settings.Schema, error) {
	return settings.ParseSchema(defaultsTOML)
}

// DefaultSchemaTOML returns the embedded defaults document.
func DefaultSchemaTOML() []byte {
	return defaultsTOML
}
