package config

import (
	"flag"
)

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"data":           "data_file",
	"schema":         "schema_file",
	"log-dir":        "log_dir",
	"storage":        "storage.driver",
	"dsn":            "storage.dsn",
	"session-log":    "session_log",
	"metrics-file":   "metrics_file",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines the global flags on fs, parses args and records which
// fields were set from the command line.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("karen", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the task file (json storage)")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema overriding the built-in task file schema")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Session log directory")

	// Storage
	fs.StringVar(&cfg.Storage.Driver, "storage", cfg.Storage.Driver, "Storage driver (json|sqlite|postgres)")
	fs.StringVar(&cfg.Storage.DSN, "dsn", cfg.Storage.DSN, "SQLite path or Postgres connection string")

	// Output
	fs.BoolVar(&cfg.SessionLog, "session-log", cfg.SessionLog, "Record commands in a JSONL session log")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write prometheus metrics to this file at exit")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToSource[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
