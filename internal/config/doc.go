// Package config handles loading and validation of settle configuration.
//
// Configuration is read from ~/.config/settle/config.toml with environment
// variable overrides for the settings store location.
//
// # Configuration Sources (highest priority first)
//
//   - SETTLE_STORE env var: path of the settings store
//   - SETTLE_BACKEND env var: storage backend (memory, toml, json, sqlite)
//   - Config file settings
//   - Default values
//
// A release source directory may carry a .settle.toml that adds or
// disables hooks for releases from that directory; see [LoadLocal].
//
// # Key Settings
//
//   - store.path: settings file or database (must be absolute or ~/...)
//   - store.backend: backend kind, inferred from the file extension if empty
//   - theme: editor theme used when the ui/theme setting is empty
//   - release_hooks: hooks created for every release
//
// # Hooks Configuration
//
// Command hooks are defined in [hooks.NAME] sections:
//
//	[hooks.notify]
//	command = "notify-send {message}"
//	description = "Desktop notification"
//	events = ["post-release"]
//
// Hooks without events run on every release event.
//
// # Default Schema
//
// The application setting defaults live in defaults.toml, embedded in the
// binary and returned by [DefaultSchema].
package config
