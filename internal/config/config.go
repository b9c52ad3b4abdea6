package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultDataFile      = "data/karen.json"
	DefaultSQLiteFile    = "data/karen.db"
	DefaultStorageDriver = "json"
	DefaultLogDir        = "~/.karen/logs"
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultSessionLog    = true
)

// Config holds the full configuration for karen.
type Config struct {
	// Paths
	DataFile   string `toml:"data_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	Storage StorageConfig `toml:"storage"`

	// SessionLog records every command in a JSONL file under LogDir.
	SessionLog bool `toml:"session_log"`

	// MetricsFile receives prometheus text-format metrics at exit.
	MetricsFile string `toml:"metrics_file"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is one of json, sqlite or postgres.
	Driver string `toml:"driver"`
	// DSN is the sqlite file path or the postgres connection string.
	// Unused by the json driver, which writes DataFile.
	DSN string `toml:"dsn"`
}

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config      *Config
	Sources     map[string]ConfigSource
	UserFile    string
	ProjectFile string
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_file",
		"schema_file",
		"log_dir",
		"storage.driver",
		"storage.dsn",
		"session_log",
		"metrics_file",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.LogDir = DefaultLogDir
	cfg.Storage.Driver = DefaultStorageDriver
	cfg.SessionLog = DefaultSessionLog
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage driver postgres requires storage.dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (expected json|sqlite|postgres)", c.Storage.Driver)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q (expected text|json|logfmt)", c.LogFormat)
	}
	return nil
}

// WriteTOML writes the effective configuration as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
