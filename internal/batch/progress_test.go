package batch

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpProgressCallback(t *testing.T) {
	callback := NoOpProgressCallback{}
	callback.OnStart(10)
	callback.OnProgress(5, 10)
	callback.OnComplete()
	callback.OnError(3, assert.AnError)
}

func TestConsoleProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	callback := NewConsoleProgressCallback(&buf, "Test: ")

	callback.OnStart(10)
	assert.Contains(t, buf.String(), "Test: 0/10 (0.0%)")

	buf.Reset()
	callback.OnProgress(5, 10)
	assert.Contains(t, buf.String(), "5/10")
	assert.Contains(t, buf.String(), "50.0%")

	buf.Reset()
	callback.OnComplete()
	assert.Contains(t, buf.String(), "Test: Completed")

	buf.Reset()
	callback.OnError(3, assert.AnError)
	assert.Contains(t, buf.String(), "Test: Error at file 3")
}

func TestConsoleProgressCallback_UpdateThrottling(t *testing.T) {
	var buf bytes.Buffer
	callback := NewConsoleProgressCallback(&buf, "").
		WithWidth(10).
		WithRate(false).
		WithUpdateInterval(time.Hour)

	callback.OnStart(10)
	callback.OnProgress(1, 10)
	buf.Reset()

	callback.OnProgress(2, 10)
	assert.Empty(t, buf.String(), "throttled")

	callback.OnProgress(10, 10)
	assert.Contains(t, buf.String(), "10/10 (100.0%)", "final update is never throttled")
	assert.NotContains(t, buf.String(), "/s")
}

func TestLogProgressCallback(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	callback := NewLogProgressCallback(logger, slog.LevelInfo, 2)

	callback.OnStart(3)
	callback.OnProgress(1, 3)
	callback.OnProgress(2, 3)
	callback.OnProgress(3, 3)
	callback.OnError(2, assert.AnError)
	callback.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "batch started")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("batch progress")))
	assert.Contains(t, out, "batch file failed")
	assert.Contains(t, out, "batch completed")
}

func TestMultiProgressCallback(t *testing.T) {
	a, b := &recordingProgress{}, &recordingProgress{}
	multi := NewMultiProgressCallback(a, b)

	multi.OnStart(2)
	multi.OnProgress(1, 2)
	multi.OnError(1, assert.AnError)
	multi.OnComplete()

	for _, r := range []*recordingProgress{a, b} {
		assert.Equal(t, 2, r.total)
		assert.Equal(t, []int{1}, r.progress)
		assert.Equal(t, 1, r.errors)
		assert.True(t, r.complete)
	}
}
