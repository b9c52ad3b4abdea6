package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.karen/karen.toml or OS-specific config dir)
// 3. Project config file (karen.toml or .karen.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	userConfigFile := findUserConfigFile()
	if userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	projectConfigFile := findProjectConfigFile(wd)
	if projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = wd
	}
	finalizeConfig(cfg)

	return &ConfigWithSources{
		Config:      cfg,
		Sources:     sources,
		UserFile:    userConfigFile,
		ProjectFile: projectConfigFile,
	}, nil
}

// loadConfigFile decodes TOML from path on top of cfg and marks every key
// present in the file with source.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	for _, key := range md.Keys() {
		name := key.String()
		if _, ok := sources[name]; ok {
			sources[name] = source
		}
	}
	return nil
}

// finalizeConfig normalizes enum values, expands paths and resolves relative
// ones against the project root.
func finalizeConfig(cfg *Config) {
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.DataFile = resolvePath(cfg.ProjectRoot, expandPath(cfg.DataFile))
	if cfg.SchemaFile != "" {
		cfg.SchemaFile = resolvePath(cfg.ProjectRoot, expandPath(cfg.SchemaFile))
	}
	if cfg.MetricsFile != "" {
		cfg.MetricsFile = resolvePath(cfg.ProjectRoot, expandPath(cfg.MetricsFile))
	}

	if cfg.Storage.Driver == "sqlite" {
		if cfg.Storage.DSN == "" {
			cfg.Storage.DSN = DefaultSQLiteFile
		}
		if !isSQLiteURI(cfg.Storage.DSN) {
			cfg.Storage.DSN = resolvePath(cfg.ProjectRoot, expandPath(cfg.Storage.DSN))
		}
	}
}

// isSQLiteURI reports whether dsn names an in-memory database or a file: URI,
// neither of which is a plain path.
func isSQLiteURI(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
