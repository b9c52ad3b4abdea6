// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.karen/karen.toml or OS-specific config directory)
// 3. Project config file (karen.toml or .karen.toml in the project root)
// 4. Environment variables (KAREN_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.karen/karen.toml (preferred)
// - Windows: %APPDATA%\karen\karen.toml
// - macOS: ~/Library/Application Support/karen/karen.toml
// - Linux/BSD: $XDG_CONFIG_HOME/karen/karen.toml or ~/.config/karen/karen.toml
//
// Project-level config locations (overrides user config):
// - ./karen.toml (preferred)
// - ./.karen.toml
package config
