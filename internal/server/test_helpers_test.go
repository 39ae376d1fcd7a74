package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrscan/internal/pipeline"
	"github.com/MeKo-Tech/qrscan/internal/raster"
)

// stubScanner returns canned results and records what it was given.
type stubScanner struct {
	mu        sync.Mutex
	imageRes  pipeline.Result
	rawRes    pipeline.Result
	images    [][]byte
	rawFrames []rawFrame
}

type rawFrame struct {
	width, height int
	size          int
}

func (s *stubScanner) ScanImageBytesResult(data []byte) pipeline.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, append([]byte(nil), data...))
	return s.imageRes
}

func (s *stubScanner) ScanRawLumaResult(pix []byte, width, height int) pipeline.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawFrames = append(s.rawFrames, rawFrame{width: width, height: height, size: len(pix)})
	return s.rawRes
}

func (s *stubScanner) imageCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

func foundResult(text string) pipeline.Result {
	return pipeline.Result{Text: text, Found: true, Stage: pipeline.StageRaw, Attempts: 1}
}

func unreadableResult() pipeline.Result {
	return pipeline.Result{Stage: pipeline.StageNone, Err: &raster.ImageError{Operation: "decode", Err: raster.ErrUnreadable}}
}

func newTestServer(sc scanner) *Server {
	return newServer(sc, Config{CORSOrigin: "*", MaxUploadMB: 5, TimeoutSec: 5})
}

// createMultipartRequest creates a multipart form request carrying data in field.
func createMultipartRequest(
	t *testing.T,
	target, field, filename string,
	data []byte,
	extraFields map[string]string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}

	for key, value := range extraFields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	return data
}
