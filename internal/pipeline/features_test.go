package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/qrscan/internal/barcode"
	"github.com/MeKo-Tech/qrscan/internal/raster"
	"github.com/MeKo-Tech/qrscan/internal/testutil"
)

// scanWorld is the per-scenario state of the feature suite.
type scanWorld struct {
	t        *testing.T
	detector *scriptedDetector
	loader   raster.Loader
	input    []byte
	frame    raster.Luma
	result   Result
}

func (w *scanWorld) pipeline() (*Pipeline, error) {
	b := NewBuilder().
		WithDetector(w.detector).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if w.loader != nil {
		b = b.WithLoader(w.loader)
	}
	return b.Build()
}

func (w *scanWorld) aPageWithPayload(payload string) error {
	zx, err := barcode.NewDetector(barcode.Options{})
	if err != nil {
		return err
	}
	w.detector = &scriptedDetector{rule: func(_ int, img raster.Luma) (string, bool) {
		return zx.Detect(img)
	}}
	w.input = testutil.EncodePNG(w.t, testutil.TopRightQRPage(w.t, payload))
	return nil
}

func (w *scanWorld) theImageBytes(data string) error {
	w.detector = &scriptedDetector{}
	w.input = []byte(data)
	return nil
}

// enhancedCornerOnly answers only for a top-right crop whose pixels were darkened.
func enhancedCornerOnly(width int) func(int, raster.Luma) (string, bool) {
	cropW := width - int(float64(width)*DefaultCropXFraction)
	return func(_ int, img raster.Luma) (string, bool) {
		if img.Width != cropW {
			return "", false
		}
		for _, v := range img.Pix {
			if v >= 100 {
				return "", false
			}
		}
		return "corner", true
	}
}

func (w *scanWorld) anEnhancedCornerFrame(width, height int) error {
	w.frame = constLuma(width, height, 90)
	w.detector = &scriptedDetector{rule: enhancedCornerOnly(width)}
	return nil
}

func (w *scanWorld) aDecodedCornerFrame(width, height int) error {
	frame := constLuma(width, height, 90)
	cropW := width - int(float64(width)*DefaultCropXFraction)
	w.loader = staticLoader{frame: frame}
	w.detector = &scriptedDetector{rule: func(_ int, img raster.Luma) (string, bool) {
		return "corner", img.Width == cropW
	}}
	return nil
}

func (w *scanWorld) aGrayFrame(width, height int) error {
	w.frame = constLuma(width, height, 200)
	w.detector = &scriptedDetector{}
	return nil
}

func (w *scanWorld) aFrameBackedBy(width, height, n int) error {
	w.frame = raster.NewLuma(make([]byte, n), width, height)
	w.detector = &scriptedDetector{}
	return nil
}

func (w *scanWorld) iScanImageBytes() error {
	p, err := w.pipeline()
	if err != nil {
		return err
	}
	w.result = p.ScanImageBytesResult(w.input)
	return nil
}

func (w *scanWorld) iScanRawLuma() error {
	p, err := w.pipeline()
	if err != nil {
		return err
	}
	w.result = p.ScanRawLumaResult(w.frame.Pix, w.frame.Width, w.frame.Height)
	return nil
}

func (w *scanWorld) theScanFinds(text string) error {
	if !w.result.Found {
		return fmt.Errorf("expected %q, nothing found after %d attempts", text, w.result.Attempts)
	}
	if w.result.Text != text {
		return fmt.Errorf("expected %q, got %q", text, w.result.Text)
	}
	return nil
}

func (w *scanWorld) nothingIsFound() error {
	if w.result.Found {
		return fmt.Errorf("expected no code, got %q at stage %s", w.result.Text, w.result.Stage)
	}
	if w.result.Stage != StageNone {
		return fmt.Errorf("expected stage none, got %s", w.result.Stage)
	}
	return nil
}

func (w *scanWorld) theStageIs(stage string) error {
	if string(w.result.Stage) != stage {
		return fmt.Errorf("expected stage %s, got %s", stage, w.result.Stage)
	}
	return nil
}

func (w *scanWorld) theDetectorRan(n int) error {
	if got := w.detector.count(); got != n {
		return fmt.Errorf("expected %d detector calls, got %d", n, got)
	}
	if w.result.Attempts != n {
		return fmt.Errorf("expected %d attempts in result, got %d", n, w.result.Attempts)
	}
	return nil
}

func (w *scanWorld) reportsUnreadable() error {
	if !errors.Is(w.result.Err, raster.ErrUnreadable) {
		return fmt.Errorf("expected unreadable error, got %v", w.result.Err)
	}
	return nil
}

func initializeScanScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		w := &scanWorld{t: t}

		sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			*w = scanWorld{t: t}
			return ctx, nil
		})

		sc.Step(`^a page with the QR payload "([^"]*)" in the top-right corner$`, w.aPageWithPayload)
		sc.Step(`^the image bytes "([^"]*)"$`, w.theImageBytes)
		sc.Step(`^a (\d+)x(\d+) gray frame where only an enhanced corner is readable$`, w.anEnhancedCornerFrame)
		sc.Step(`^a (\d+)x(\d+) decoded frame where only the corner is readable$`, w.aDecodedCornerFrame)
		sc.Step(`^a (\d+)x(\d+) gray frame with no code$`, w.aGrayFrame)
		sc.Step(`^a (\d+)x(\d+) gray frame backed by (\d+) bytes$`, w.aFrameBackedBy)
		sc.Step(`^I scan the page as image bytes$`, w.iScanImageBytes)
		sc.Step(`^I scan the frame as raw luma$`, w.iScanRawLuma)
		sc.Step(`^the scan finds "([^"]*)"$`, w.theScanFinds)
		sc.Step(`^nothing is found$`, w.nothingIsFound)
		sc.Step(`^the stage is "([^"]*)"$`, w.theStageIs)
		sc.Step(`^the detector ran (\d+) times?$`, w.theDetectorRan)
		sc.Step(`^the result reports an unreadable image$`, w.reportsUnreadable)
	}
}

func TestFeatures(t *testing.T) {
	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "progress"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: initializeScanScenario(t),
		Options: &godog.Options{
			Format:   format,
			Tags:     os.Getenv("GODOG_TAGS"),
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
