package barcode

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/MeKo-Tech/qrscan/internal/raster"
)

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatQR
	FormatDataMatrix
	FormatAztec
	FormatCode128
	FormatEAN13
)

// ErrUnsupportedFormat is returned by NewDetector for formats it cannot decode.
var ErrUnsupportedFormat = errors.New("barcode: unsupported format")

// ParseFormat maps a user-facing name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr", "qrcode", "qr-code":
		return FormatQR, true
	case "datamatrix", "data-matrix":
		return FormatDataMatrix, true
	case "aztec":
		return FormatAztec, true
	case "code128", "code-128":
		return FormatCode128, true
	case "ean13", "ean-13":
		return FormatEAN13, true
	default:
		return FormatUnknown, false
	}
}

func (f Format) String() string {
	switch f {
	case FormatQR:
		return "qr"
	case FormatDataMatrix:
		return "datamatrix"
	case FormatAztec:
		return "aztec"
	case FormatCode128:
		return "code128"
	case FormatEAN13:
		return "ean13"
	default:
		return "unknown"
	}
}

// Options controls decoding behavior.
type Options struct {
	// Formats constrains the set of symbologies to search. Empty means QR only.
	Formats []Format

	// TryHarder enables a more exhaustive search (slower but more robust).
	TryHarder bool

	// PureBarcode hints that the raster contains only the symbol, unrotated,
	// with minimal border.
	PureBarcode bool
}

// Point is an integer point in raster coordinates.
type Point struct {
	X int
	Y int
}

// Result is a decoded symbol.
type Result struct {
	Format Format
	Text   string
	Points []Point
	BBox   image.Rectangle
}

// Detector locates and decodes exactly one symbol in a single-channel raster.
// A false return means nothing was found; absence is not an error.
// Implementations must be safe for concurrent use with distinct rasters.
type Detector interface {
	Detect(img raster.Luma) (string, bool)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(img raster.Luma) (string, bool)

// Detect implements Detector.
func (f DetectorFunc) Detect(img raster.Luma) (string, bool) { return f(img) }

// FormatNames returns the names of all supported formats.
func FormatNames() []string {
	return []string{"qr", "datamatrix", "aztec", "code128", "ean13"}
}

// ParseFormats maps a list of names to formats, rejecting unknown names.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	for _, n := range names {
		f, ok := ParseFormat(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, n)
		}
		out = append(out, f)
	}
	return out, nil
}
