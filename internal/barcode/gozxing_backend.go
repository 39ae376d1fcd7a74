package barcode

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	gozxing "github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/MeKo-Tech/qrscan/internal/raster"
)

// errNotFound is the internal miss signal; callers see (_, false).
var errNotFound = errors.New("barcode: no symbol found")

// NewDetector returns the gozxing-backed detector for the requested formats.
func NewDetector(opts Options) (*GozxingDetector, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []Format{FormatQR}
	}
	for _, f := range formats {
		if _, ok := newReader(f); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
		}
	}

	hints := make(map[gozxing.DecodeHintType]interface{})
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if opts.PureBarcode {
		hints[gozxing.DecodeHintType_PURE_BARCODE] = true
	}

	return &GozxingDetector{formats: formats, hints: hints}, nil
}

// GozxingDetector decodes symbols with github.com/makiuchi-d/gozxing.
// Readers are created per call, so one detector can serve many goroutines.
type GozxingDetector struct {
	formats []Format
	hints   map[gozxing.DecodeHintType]interface{}
}

// Detect implements Detector.
func (d *GozxingDetector) Detect(img raster.Luma) (string, bool) {
	res, err := d.Decode(img)
	if err != nil {
		return "", false
	}
	return res.Text, true
}

// Decode returns the first symbol found in img, trying formats in order.
func (d *GozxingDetector) Decode(img raster.Luma) (res Result, err error) {
	if img.Empty() || !img.Valid() {
		return Result{}, errNotFound
	}

	// gozxing can panic on pathological bitmaps; a panic is just a miss here.
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("gozxing decoder panicked", "panic", r, "width", img.Width, "height", img.Height)
			res, err = Result{}, errNotFound
		}
	}()

	source := gozxing.NewLuminanceSourceFromImage(img.Gray())
	bitmap, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(source))
	if err != nil {
		return Result{}, err
	}

	for _, f := range d.formats {
		reader, _ := newReader(f)
		r, decErr := reader.Decode(bitmap, d.hints)
		if decErr != nil || r == nil {
			continue
		}
		return toResult(r), nil
	}
	return Result{}, errNotFound
}

// Formats returns the symbologies the detector searches for.
func (d *GozxingDetector) Formats() []Format {
	return append([]Format(nil), d.formats...)
}

func newReader(f Format) (gozxing.Reader, bool) {
	switch f {
	case FormatQR:
		return qrcode.NewQRCodeReader(), true
	case FormatDataMatrix:
		return datamatrix.NewDataMatrixReader(), true
	case FormatAztec:
		return aztec.NewAztecReader(), true
	case FormatCode128:
		return oned.NewCode128Reader(), true
	case FormatEAN13:
		return oned.NewEAN13Reader(), true
	default:
		return nil, false
	}
}

func mapFormatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQR
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	case gozxing.BarcodeFormat_CODE_128:
		return FormatCode128
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	default:
		return FormatUnknown
	}
}

func toResult(r *gozxing.Result) Result {
	var points []Point
	if pts := r.GetResultPoints(); len(pts) > 0 {
		points = make([]Point, 0, len(pts))
		for _, p := range pts {
			points = append(points, Point{X: int(p.GetX()), Y: int(p.GetY())})
		}
	}
	return Result{
		Format: mapFormatFromZXing(r.GetBarcodeFormat()),
		Text:   r.GetText(),
		Points: points,
		BBox:   rectFromPoints(points),
	}
}

func rectFromPoints(pts []Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
