// Package prompt provides single-question terminal prompts.
//
// Prompts render on stderr so that stdout stays free for command output.
package prompt
