// Package config provides configuration loading and structs for the schoolfinder server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reload policies for the school dataset.
const (
	// ReloadStatic loads the dataset once at startup.
	ReloadStatic = "static"
	// ReloadPerRequest rebuilds the dataset from source for every request.
	ReloadPerRequest = "per_request"
	// ReloadWatch loads once and reloads whenever the source file changes.
	ReloadWatch = "watch"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig describes the tabular school source and how it is refreshed.
type DataConfig struct {
	// Path is a .csv, .xlsx or SQLite (.db/.sqlite/.sqlite3) file.
	Path string `yaml:"path"`
	// Schema is "auto", "niche" or "census".
	Schema string `yaml:"schema"`
	// Sheet selects the worksheet of an .xlsx source; empty means the first sheet.
	Sheet string `yaml:"sheet"`
	// Table selects the table of a SQLite source.
	Table  string `yaml:"table"`
	Reload string `yaml:"reload"`
}

// SearchConfig holds search and presentation settings.
type SearchConfig struct {
	DisplayLimit    int   `yaml:"display_limit"`
	MaxLimit        int   `yaml:"max_limit"`
	Suggestions     *bool `yaml:"suggestions"`
	SuggestionCount int   `yaml:"suggestion_count"`
	// CacheSize is the number of search results kept per dataset; negative disables the cache.
	CacheSize int `yaml:"cache_size"`
}

// SuggestionsOrDefault returns whether zero-result suggestions are enabled; defaults to true when unset.
func (s *SearchConfig) SuggestionsOrDefault() bool {
	if s.Suggestions != nil {
		return *s.Suggestions
	}
	return true
}

// StorageConfig holds the path of the SQLite snapshot written by "export".
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed, or a value is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Data.Path = expandPath(cfg.Data.Path, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

// Validate checks enumerated settings.
func Validate(cfg *Config) error {
	switch cfg.Data.Reload {
	case ReloadStatic, ReloadPerRequest, ReloadWatch:
	default:
		return fmt.Errorf("invalid data.reload %q: want %s, %s or %s",
			cfg.Data.Reload, ReloadStatic, ReloadPerRequest, ReloadWatch)
	}
	switch cfg.Data.Schema {
	case "auto", "niche", "census":
	default:
		return fmt.Errorf("invalid data.schema %q: want auto, niche or census", cfg.Data.Schema)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
