package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (RAILSCOPE_*)
// 2. Config file (.railscope/config.yml or .railscope/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".railscope")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("RAILSCOPE")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., RAILSCOPE_INDEXING_BATCH_SIZE)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("rails.schema_path")
	v.BindEnv("rails.routes_path")
	v.BindEnv("indexing.batch_size")
	v.BindEnv("indexing.timeout")
	v.BindEnv("indexing.watch_debounce")
	v.BindEnv("indexing.parse_cache_size")
	v.BindEnv("storage.cache_dir")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.source", defaults.Paths.Source)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("rails.schema_path", defaults.Rails.SchemaPath)
	v.SetDefault("rails.routes_path", defaults.Rails.RoutesPath)

	v.SetDefault("indexing.batch_size", defaults.Indexing.BatchSize)
	v.SetDefault("indexing.timeout", defaults.Indexing.Timeout)
	v.SetDefault("indexing.watch_debounce", defaults.Indexing.WatchDebounce)
	v.SetDefault("indexing.parse_cache_size", defaults.Indexing.ParseCacheSize)

	v.SetDefault("storage.cache_dir", defaults.Storage.CacheDir)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
