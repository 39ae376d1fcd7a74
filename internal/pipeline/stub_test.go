package pipeline

import (
	"sync"

	"github.com/MeKo-Tech/qrscan/internal/raster"
)

// scriptedDetector records every call and answers from a rule.
type scriptedDetector struct {
	mu    sync.Mutex
	calls []raster.Luma
	rule  func(call int, img raster.Luma) (string, bool)
}

func (d *scriptedDetector) Detect(img raster.Luma) (string, bool) {
	d.mu.Lock()
	d.calls = append(d.calls, raster.Luma{Width: img.Width, Height: img.Height, Pix: append([]byte(nil), img.Pix...)})
	call := len(d.calls)
	d.mu.Unlock()

	if d.rule == nil {
		return "", false
	}
	return d.rule(call, img)
}

func (d *scriptedDetector) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// foundOnCall finds text on the n-th invocation only.
func foundOnCall(n int, text string) *scriptedDetector {
	return &scriptedDetector{rule: func(call int, _ raster.Luma) (string, bool) {
		return text, call == n
	}}
}

// staticLoader returns a fixed frame or error regardless of input.
type staticLoader struct {
	frame raster.Luma
	err   error
}

func (l staticLoader) Load([]byte) (raster.Luma, error) { return l.frame, l.err }

func constLuma(width, height int, v byte) raster.Luma {
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = v
	}
	return raster.NewLuma(pix, width, height)
}
