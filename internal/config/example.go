package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# karen configuration file
# Values can be overridden by KAREN_* environment variables or CLI flags

# Task file used by the json storage driver (relative to project root)
data_file = "data/karen.json"

# Optional JSON Schema replacing the built-in task file schema
# schema_file = "karen.schema.json"

# Session log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.karen/logs"

# Record every command in a JSONL session log
session_log = true

# Write prometheus metrics in text format when the session ends
# metrics_file = "karen.prom"

# Console logging
log_level = "warn"       # debug, info, warn, error
log_format = "text"      # text, json, logfmt
log_timestamps = false
log_caller = false

[storage]
# json, sqlite or postgres
driver = "json"
# sqlite: database file (default data/karen.db)
# postgres: connection string, e.g. "postgres://karen@localhost:5432/karen"
# dsn = ""
`
}
