package config

import (
	"os"
	"strings"
)

// envBindings maps environment variables to config fields.
var envBindings = []struct {
	name  string
	field string
	set   func(cfg *Config, v string)
}{
	{"KAREN_DATA", "data_file", func(c *Config, v string) { c.DataFile = v }},
	{"KAREN_SCHEMA", "schema_file", func(c *Config, v string) { c.SchemaFile = v }},
	{"KAREN_LOG_DIR", "log_dir", func(c *Config, v string) { c.LogDir = v }},
	{"KAREN_STORAGE", "storage.driver", func(c *Config, v string) { c.Storage.Driver = strings.ToLower(v) }},
	{"KAREN_DSN", "storage.dsn", func(c *Config, v string) { c.Storage.DSN = v }},
	{"KAREN_SESSION_LOG", "session_log", func(c *Config, v string) { c.SessionLog = boolFromString(v) }},
	{"KAREN_METRICS_FILE", "metrics_file", func(c *Config, v string) { c.MetricsFile = v }},
	{"KAREN_LOG_LEVEL", "log_level", func(c *Config, v string) { c.LogLevel = strings.ToLower(v) }},
	{"KAREN_LOG_FORMAT", "log_format", func(c *Config, v string) { c.LogFormat = strings.ToLower(v) }},
	{"KAREN_LOG_TIMESTAMPS", "log_timestamps", func(c *Config, v string) { c.LogTimestamps = boolFromString(v) }},
	{"KAREN_LOG_CALLER", "log_caller", func(c *Config, v string) { c.LogCaller = boolFromString(v) }},
}

// loadFromEnv overrides config from non-empty KAREN_* variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, b := range envBindings {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		b.set(cfg, v)
		sources[b.field] = SourceEnv
	}
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
