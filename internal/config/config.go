package config

import "time"

// Config represents the complete railscope configuration.
// It can be loaded from .railscope/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Rails    RailsConfig    `yaml:"rails" mapstructure:"rails"`
	Indexing IndexingConfig `yaml:"indexing" mapstructure:"indexing"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Source []string `yaml:"source" mapstructure:"source"` // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// RailsConfig locates the convention artifacts outside app code.
type RailsConfig struct {
	SchemaPath string `yaml:"schema_path" mapstructure:"schema_path"` // db/schema.rb
	RoutesPath string `yaml:"routes_path" mapstructure:"routes_path"` // config/routes.rb
}

// IndexingConfig tunes the orchestrator.
type IndexingConfig struct {
	BatchSize      int           `yaml:"batch_size" mapstructure:"batch_size"`             // files per batch
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`                   // wall-clock limit per run
	WatchDebounce  time.Duration `yaml:"watch_debounce" mapstructure:"watch_debounce"`     // coalescing window for change events
	ParseCacheSize int           `yaml:"parse_cache_size" mapstructure:"parse_cache_size"` // entries in the hash-keyed parse cache
}

// StorageConfig defines where the hash cache and graph snapshot live.
type StorageConfig struct {
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"` // Override default .railscope/cache
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Source: []string{
				"app/**/*.rb",
				"lib/**/*.rb",
				"spec/**/*.rb",
				"test/**/*.rb",
			},
			Ignore: []string{
				"vendor/**",
				"node_modules/**",
				".git/**",
				"tmp/**",
				"log/**",
				"db/migrate/**",
			},
		},
		Rails: RailsConfig{
			SchemaPath: "db/schema.rb",
			RoutesPath: "config/routes.rb",
		},
		Indexing: IndexingConfig{
			BatchSize:      20,
			Timeout:        5 * time.Minute,
			WatchDebounce:  500 * time.Millisecond,
			ParseCacheSize: 10_000,
		},
		Storage: StorageConfig{
			CacheDir: "", // Empty means .railscope/cache under the root
		},
	}
}
