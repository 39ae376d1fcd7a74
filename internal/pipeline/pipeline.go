package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/qrscan/internal/barcode"
	"github.com/MeKo-Tech/qrscan/internal/raster"
)

// ContrastPercent is the contrast boost applied by the enhanced scan stages.
const ContrastPercent = 20.0

const (
	// DefaultCropXFraction is where the top-right region starts, as a share of the width.
	DefaultCropXFraction = 0.60
	// DefaultCropHFraction is the height of the top-right region, as a share of the height.
	DefaultCropHFraction = 0.40
)

// Config holds the geometry and enhancement settings of the scan stages.
type Config struct {
	CropXFraction   float64
	CropHFraction   float64
	ContrastPercent float64

	// Barcode configures the default detector when none is injected.
	Barcode barcode.Options
}

// DefaultConfig returns the stage settings used by invoice scanning.
func DefaultConfig() Config {
	return Config{
		CropXFraction:   DefaultCropXFraction,
		CropHFraction:   DefaultCropHFraction,
		ContrastPercent: ContrastPercent,
		Barcode:         barcode.Options{Formats: []barcode.Format{barcode.FormatQR}},
	}
}

// Validate checks that the configuration looks sane.
func (c Config) Validate() error {
	if c.CropXFraction < 0 || c.CropXFraction >= 1 {
		return fmt.Errorf("crop x fraction must be in [0,1), got %v", c.CropXFraction)
	}
	if c.CropHFraction <= 0 || c.CropHFraction > 1 {
		return fmt.Errorf("crop height fraction must be in (0,1], got %v", c.CropHFraction)
	}
	if c.ContrastPercent < -100 || c.ContrastPercent > 100 {
		return fmt.Errorf("contrast percent must be in [-100,100], got %v", c.ContrastPercent)
	}
	return nil
}

// Observer is notified once per finished scan.
type Observer func(path Path, res Result)

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg      Config
	detector barcode.Detector
	loader   raster.Loader
	logger   *slog.Logger
	observer Observer
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole stage configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithDetector injects the symbol detector. Without it Build creates the
// gozxing detector from Config.Barcode.
func (b *Builder) WithDetector(d barcode.Detector) *Builder {
	b.detector = d
	return b
}

// WithLoader injects the image decoder used by ScanImageBytes.
func (b *Builder) WithLoader(l raster.Loader) *Builder {
	b.loader = l
	return b
}

// WithLogger sets the logger for stage diagnostics.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithObserver registers a callback invoked after every scan.
func (b *Builder) WithObserver(o Observer) *Builder {
	b.observer = o
	return b
}

// WithCropFractions sets the top-right region geometry.
func (b *Builder) WithCropFractions(xFrac, hFrac float64) *Builder {
	if xFrac > 0 {
		b.cfg.CropXFraction = xFrac
	}
	if hFrac > 0 {
		b.cfg.CropHFraction = hFrac
	}
	return b
}

// WithContrastPercent overrides the contrast boost.
func (b *Builder) WithContrastPercent(p float64) *Builder {
	b.cfg.ContrastPercent = p
	return b
}

// WithFormats restricts the default detector to the given symbologies.
func (b *Builder) WithFormats(formats ...barcode.Format) *Builder {
	if len(formats) > 0 {
		b.cfg.Barcode.Formats = formats
	}
	return b
}

// WithTryHarder toggles the exhaustive search mode of the default detector.
func (b *Builder) WithTryHarder(enabled bool) *Builder {
	b.cfg.Barcode.TryHarder = enabled
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	det := b.detector
	if det == nil {
		zx, err := barcode.NewDetector(b.cfg.Barcode)
		if err != nil {
			return nil, fmt.Errorf("init detector: %w", err)
		}
		det = zx
	}

	loader := b.loader
	if loader == nil {
		loader = raster.NewImageLoader()
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg:      b.cfg,
		detector: det,
		loader:   loader,
		logger:   logger,
		observer: b.observer,
	}, nil
}

// ErrNoDetector is returned by New when called without a detector.
var ErrNoDetector = errors.New("pipeline: detector is required")

// New builds a pipeline with default stage settings around det.
func New(det barcode.Detector) (*Pipeline, error) {
	if det == nil {
		return nil, ErrNoDetector
	}
	return NewBuilder().WithDetector(det).Build()
}

// Pipeline runs the staged scan strategies. It holds no mutable state and
// may be shared between goroutines.
type Pipeline struct {
	cfg      Config
	detector barcode.Detector
	loader   raster.Loader
	logger   *slog.Logger
	observer Observer
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Info returns a map with key pipeline properties.
func (p *Pipeline) Info() map[string]interface{} {
	info := map[string]interface{}{
		"crop_x_fraction":  p.cfg.CropXFraction,
		"crop_h_fraction":  p.cfg.CropHFraction,
		"contrast_percent": p.cfg.ContrastPercent,
		"try_harder":       p.cfg.Barcode.TryHarder,
	}
	if zx, ok := p.detector.(*barcode.GozxingDetector); ok {
		names := make([]string, 0, len(zx.Formats()))
		for _, f := range zx.Formats() {
			names = append(names, f.String())
		}
		info["formats"] = names
		info["backend"] = "gozxing"
	} else {
		info["backend"] = fmt.Sprintf("%T", p.detector)
	}
	return info
}
