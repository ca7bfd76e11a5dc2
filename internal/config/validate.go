package config

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySourcePatterns indicates no source glob patterns are configured
	ErrEmptySourcePatterns = errors.New("empty source patterns")

	// ErrEmptySchemaPath indicates a missing schema file path
	ErrEmptySchemaPath = errors.New("empty schema path")

	// ErrEmptyRoutesPath indicates a missing routes file path
	ErrEmptyRoutesPath = errors.New("empty routes path")

	// ErrInvalidBatchSize indicates a non-positive batch size
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidTimeout indicates a non-positive indexing timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidCacheSize indicates a non-positive parse cache size
	ErrInvalidCacheSize = errors.New("invalid parse cache size")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Paths.Source) == 0 {
		errs = append(errs, ErrEmptySourcePatterns)
	}
	if cfg.Rails.SchemaPath == "" {
		errs = append(errs, ErrEmptySchemaPath)
	}
	if cfg.Rails.RoutesPath == "" {
		errs = append(errs, ErrEmptyRoutesPath)
	}
	if cfg.Indexing.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidBatchSize, cfg.Indexing.BatchSize))
	}
	if cfg.Indexing.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, cfg.Indexing.Timeout))
	}
	if cfg.Indexing.ParseCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidCacheSize, cfg.Indexing.ParseCacheSize))
	}

	return errors.Join(errs...)
}
