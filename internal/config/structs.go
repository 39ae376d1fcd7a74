//nolint:lll
package config

// Config represents the complete configuration for the qrscan application.
// It includes settings for all commands (image, raw, batch, pdf, serve) and
// supports loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Scan stage configuration
	Scan ScanConfig `mapstructure:"scan" yaml:"scan" json:"scan"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// ScanConfig contains detector and stage geometry settings.
type ScanConfig struct {
	Formats         []string `mapstructure:"formats" yaml:"formats" json:"formats"`
	TryHarder       bool     `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	CropXFraction   float64  `mapstructure:"crop_x_fraction" yaml:"crop_x_fraction" json:"crop_x_fraction"`
	CropHFraction   float64  `mapstructure:"crop_h_fraction" yaml:"crop_h_fraction" json:"crop_h_fraction"`
	ContrastPercent float64  `mapstructure:"contrast_percent" yaml:"contrast_percent" json:"contrast_percent"`
}

// BatchConfig contains folder scanning settings.
type BatchConfig struct {
	Workers   int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include   []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude   []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	CleanText bool     `mapstructure:"clean_text" yaml:"clean_text" json:"clean_text"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client limits for the scan endpoints.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxBytesPerDay    int64 `mapstructure:"max_bytes_per_day" yaml:"max_bytes_per_day" json:"max_bytes_per_day"`
}

// OutputConfig contains result output settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}
