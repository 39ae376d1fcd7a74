package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/qrscan/internal/barcode"
	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validFormats   = []string{"text", "json", "yaml", "csv"}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Scan: ScanConfig{
			Formats:         []string{"qr"},
			TryHarder:       false,
			CropXFraction:   pipeline.DefaultCropXFraction,
			CropHFraction:   pipeline.DefaultCropHFraction,
			ContrastPercent: pipeline.ContrastPercent,
		},
		Batch: BatchConfig{
			Workers: batch.DefaultWorkers,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				MaxBytesPerDay:    500 * 1024 * 1024,
			},
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if _, err := barcode.ParseFormats(c.Scan.Formats); err != nil {
		return fmt.Errorf("invalid scan formats: %w", err)
	}
	if err := c.ToPipelineConfig().Validate(); err != nil {
		return fmt.Errorf("invalid scan settings: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimit.RequestsPerMinute < 0 || c.Server.RateLimit.MaxBytesPerDay < 0 {
		return fmt.Errorf("invalid rate limit: %d requests/min, %d bytes/day (must not be negative)",
			c.Server.RateLimit.RequestsPerMinute, c.Server.RateLimit.MaxBytesPerDay)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}
	return nil
}

// ToPipelineConfig converts the config to the pipeline stage configuration.
// Unknown format names are dropped; Validate reports them.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.CropXFraction = c.Scan.CropXFraction
	cfg.CropHFraction = c.Scan.CropHFraction
	cfg.ContrastPercent = c.Scan.ContrastPercent
	cfg.Barcode.TryHarder = c.Scan.TryHarder

	var formats []barcode.Format
	for _, name := range c.Scan.Formats {
		if f, ok := barcode.ParseFormat(name); ok {
			formats = append(formats, f)
		}
	}
	if len(formats) > 0 {
		cfg.Barcode.Formats = formats
	}
	return cfg
}

// ToBatchConfig converts the config to batch processing settings.
func (c *Config) ToBatchConfig() batch.Config {
	return batch.Config{
		Workers:         c.Batch.Workers,
		Recursive:       c.Batch.Recursive,
		IncludePatterns: c.Batch.Include,
		ExcludePatterns: c.Batch.Exclude,
		CleanText:       c.Batch.CleanText,
	}
}
