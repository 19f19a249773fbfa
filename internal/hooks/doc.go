// Package hooks runs custom behaviour around releases.
//
// A release hook is created by name from a [Registry] for the directory
// holding the released source, then receives the release events:
//
//   - pre-build: before building; an error cancels the release
//   - pre-release: before any variant is released; an error cancels
//   - post-release: after all variants are released; errors are only logged
//
// Use [Dispatch] to deliver an event to a list of hooks.
//
// # Built-in Hook Types
//
//   - recent: records the install path in the release/recent_paths list
//   - command hooks: one type per [hooks.NAME] config section, running the
//     configured shell command
//
// Example config:
//
//	release_hooks = ["recent", "notify"]
//
//	[hooks.notify]
//	command = "notify-send 'Released {install-path}' {message}"
//	events = ["post-release"]
//
// # Placeholder Substitution
//
// Command hooks substitute these placeholders with shell-quoted values:
//
//   - {user}: Name of the person releasing
//   - {install-path}: Directory the release is installed into
//   - {event}: Event label (pre-build, pre-release, post-release)
//   - {message}: Release message
//   - {previous-version}: Previously released version
//   - {previous-revision}: Previously released revision
//   - {source}: Directory containing the released source
//
// Custom variables via --arg key=value:
//
//   - {key}: Value from --arg key=value
//   - {key:raw}: Unquoted value
//   - {key:-default}: Value with fallback if not provided
//
// Use --arg key=- to read stdin content into a variable:
//
//	echo "fixes #12" | settle hook run post-release notify --arg notes=-
package hooks
