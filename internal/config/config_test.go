package config

import (
	"strings"
	"testing"

	"github.com/MeKo-Tech/qrscan/internal/barcode"
	"github.com/MeKo-Tech/qrscan/internal/batch"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
)

const infoLevel = "info"

// TestDefaultConfig verifies that DefaultConfig returns expected values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected log_level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Verbose {
		t.Error("Expected verbose to be false")
	}

	// Scan defaults
	if len(cfg.Scan.Formats) != 1 || cfg.Scan.Formats[0] != "qr" {
		t.Errorf("Expected scan formats [qr], got %v", cfg.Scan.Formats)
	}
	if cfg.Scan.CropXFraction != pipeline.DefaultCropXFraction {
		t.Errorf("Expected crop_x_fraction %v, got %v", pipeline.DefaultCropXFraction, cfg.Scan.CropXFraction)
	}
	if cfg.Scan.CropHFraction != pipeline.DefaultCropHFraction {
		t.Errorf("Expected crop_h_fraction %v, got %v", pipeline.DefaultCropHFraction, cfg.Scan.CropHFraction)
	}
	if cfg.Scan.ContrastPercent != 20 {
		t.Errorf("Expected contrast_percent 20, got %v", cfg.Scan.ContrastPercent)
	}

	// Server defaults
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected server host 'localhost', got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadMB != 50 {
		t.Errorf("Expected max_upload_mb 50, got %d", cfg.Server.MaxUploadMB)
	}

	if cfg.Batch.Workers != batch.DefaultWorkers {
		t.Errorf("Expected batch workers %d, got %d", batch.DefaultWorkers, cfg.Batch.Workers)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Expected output format 'text', got %s", cfg.Output.Format)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() unexpected error: %v", err)
	}
}

// TestValidate checks each rejected field.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }, "invalid output format"},
		{"empty output format", func(c *Config) { c.Output.Format = "" }, ""},
		{"unknown barcode", func(c *Config) { c.Scan.Formats = []string{"qr", "maxicode"} }, "invalid scan formats"},
		{"several barcodes", func(c *Config) { c.Scan.Formats = []string{"qr", "aztec", "code128"} }, ""},
		{"crop x too large", func(c *Config) { c.Scan.CropXFraction = 1 }, "invalid scan settings"},
		{"crop height zero", func(c *Config) { c.Scan.CropHFraction = 0 }, "invalid scan settings"},
		{"contrast out of range", func(c *Config) { c.Scan.ContrastPercent = 150 }, "invalid scan settings"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"upload size", func(c *Config) { c.Server.MaxUploadMB = 0 }, "invalid max upload size"},
		{"timeout", func(c *Config) { c.Server.TimeoutSec = -1 }, "invalid timeout"},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = -1 }, "invalid shutdown timeout"},
		{"workers", func(c *Config) { c.Batch.Workers = 0 }, "invalid batch workers"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit.RequestsPerMinute = -1 }, "invalid rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.Formats = []string{"QR", "datamatrix"}
	cfg.Scan.TryHarder = true
	cfg.Scan.CropXFraction = 0.5
	cfg.Scan.CropHFraction = 0.3
	cfg.Scan.ContrastPercent = 35

	pc := cfg.ToPipelineConfig()
	if pc.CropXFraction != 0.5 || pc.CropHFraction != 0.3 {
		t.Errorf("Expected crop fractions 0.5/0.3, got %v/%v", pc.CropXFraction, pc.CropHFraction)
	}
	if pc.ContrastPercent != 35 {
		t.Errorf("Expected contrast 35, got %v", pc.ContrastPercent)
	}
	if !pc.Barcode.TryHarder {
		t.Error("Expected TryHarder to be carried over")
	}
	want := []barcode.Format{barcode.FormatQR, barcode.FormatDataMatrix}
	if len(pc.Barcode.Formats) != len(want) {
		t.Fatalf("Expected formats %v, got %v", want, pc.Barcode.Formats)
	}
	for i := range want {
		if pc.Barcode.Formats[i] != want[i] {
			t.Errorf("format[%d] = %v, want %v", i, pc.Barcode.Formats[i], want[i])
		}
	}
}

func TestToPipelineConfig_EmptyFormatsKeepDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.Formats = nil

	pc := cfg.ToPipelineConfig()
	if len(pc.Barcode.Formats) != 1 || pc.Barcode.Formats[0] != barcode.FormatQR {
		t.Errorf("Expected default QR format, got %v", pc.Barcode.Formats)
	}
}

func TestToBatchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batch.Workers = 3
	cfg.Batch.Recursive = true
	cfg.Batch.Include = []string{"*.png"}
	cfg.Batch.Exclude = []string{"tmp_*"}
	cfg.Batch.CleanText = true

	bc := cfg.ToBatchConfig()
	if bc.Workers != 3 || !bc.Recursive || !bc.CleanText {
		t.Errorf("unexpected batch config: %+v", bc)
	}
	if len(bc.IncludePatterns) != 1 || bc.IncludePatterns[0] != "*.png" {
		t.Errorf("Expected include patterns [*.png], got %v", bc.IncludePatterns)
	}
	if len(bc.ExcludePatterns) != 1 || bc.ExcludePatterns[0] != "tmp_*" {
		t.Errorf("Expected exclude patterns [tmp_*], got %v", bc.ExcludePatterns)
	}
}
