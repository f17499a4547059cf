// Package config loads rewind settings.
//
// Settings are resolved in three layers, each overriding the one before:
//
//  1. Built-in defaults (see Default)
//  2. A config file, TOML or YAML by extension
//  3. REWIND_* environment variables
//
// A missing config file is not an error; the defaults stand in for it.
//
// Example TOML:
//
//	[log]
//	level = "debug"
//
//	[history]
//	max_entries = 500
//
//	[script]
//	timeout = "500ms"
//
//	[metrics]
//	addr = ":9090"
//
// A Watcher reloads the file when it changes on disk.
package config
