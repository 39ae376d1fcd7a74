package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrscan/internal/config"
	"github.com/MeKo-Tech/qrscan/internal/testutil"
)

func defaultTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func qrPNG(t *testing.T, dir, name, content string) string {
	t.Helper()
	page := testutil.QRPage(t, testutil.MediumSize, testutil.QRPlacement{Content: content, X: 100, Y: 100, Size: 200})
	return testutil.WriteFile(t, dir, name, testutil.EncodePNG(t, page))
}

func TestImageCommand(t *testing.T) {
	dir := t.TempDir()
	file := qrPNG(t, dir, "invoice.png", "CLI-QR-1")

	out, _, err := run(t, nil, "image", file)
	require.NoError(t, err)
	assert.Contains(t, out, "# "+file)
	assert.Contains(t, out, "[raw] CLI-QR-1")
}

func TestImageCommandJSON(t *testing.T) {
	dir := t.TempDir()
	file := qrPNG(t, dir, "invoice.png", "CLI-QR-JSON")
	blank := testutil.WriteFile(t, dir, "blank.png",
		testutil.EncodePNG(t, testutil.CreateTestImage(testutil.SmallSize.Width, testutil.SmallSize.Height, color.White)))

	out, _, err := run(t, nil, "image", file, blank, "--format", "json")
	require.NoError(t, err)

	var doc struct {
		Files []struct {
			Path  string `json:"file"`
			Found bool   `json:"found"`
			Text  string `json:"text"`
			Stage string `json:"stage"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Files, 2)

	byPath := map[string]bool{}
	for _, f := range doc.Files {
		byPath[f.Path] = f.Found
		if f.Found {
			assert.Equal(t, "CLI-QR-JSON", f.Text)
			assert.Equal(t, "raw", f.Stage)
		}
	}
	assert.True(t, byPath[file])
	assert.False(t, byPath[blank])
}

func TestImageCommandUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	bad := testutil.WriteFile(t, dir, "broken.png", []byte("not an image"))

	out, _, err := run(t, nil, "image", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could be scanned")
	assert.Contains(t, out, "error:")
}

func TestImageCommandBadFormat(t *testing.T) {
	dir := t.TempDir()
	file := qrPNG(t, dir, "invoice.png", "X")

	_, _, err := run(t, nil, "image", file, "--formats", "hologram")
	require.Error(t, err)
}

func TestImageCommandRequiresArgs(t *testing.T) {
	_, _, err := run(t, nil, "image")
	require.Error(t, err)
}

func TestRawCommand(t *testing.T) {
	page := testutil.QRPage(t, testutil.MediumSize, testutil.QRPlacement{Content: "RAW-FRAME", X: 100, Y: 100, Size: 200})
	gray := testutil.ToGray(page)

	out, _, err := run(t, bytes.NewReader(gray.Pix), "raw", "--width", "640", "--height", "480", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "[raw] RAW-FRAME")
}

func TestRawCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   []byte
		want string
	}{
		{"wrong size", []string{"raw", "--width", "4", "--height", "4", "-"}, make([]byte, 15), "does not match 4x4"},,
		{"dimensions overflow", []string{"raw", "--width", "4611686018427387905", "--height", "4", "-"}, make([]byte, 4), "does not match"},
		{"zero width", []string{"raw", "--width", "0", "--height", "4", "-"}, nil, "must be positive"},
		{"missing height", []string{"raw", "--width", "4", "-"}, nil, "height"},
		{"missing file", []string{"raw", "--width", "4", "--height", "4", "nope.y"}, nil, "nope.y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, bytes.NewReader(tt.in), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBatchCommandCSVOutput(t *testing.T) {
	dir := t.TempDir()
	qrPNG(t, dir, "a.png", "BATCH-A")
	qrPNG(t, filepath.Join(dir, "sub"), "b.png", "BATCH-B")
	testutil.WriteFile(t, dir, "notes.txt", []byte("ignored"))
	outFile := filepath.Join(t.TempDir(), "codes.csv")

	_, stderr, err := run(t, nil, "batch", dir, "--recursive", "--workers", "2",
		"--format", "csv", "--output", outFile, "--stats")
	require.NoError(t, err)
	assert.NotEmpty(t, stderr)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "file", rows[0][0])

	texts := []string{rows[1][3], rows[2][3]}
	assert.ElementsMatch(t, []string{"BATCH-A", "BATCH-B"}, texts)
}

func TestBatchCommandExclude(t *testing.T) {
	dir := t.TempDir()
	qrPNG(t, dir, "keep.png", "KEEP")
	qrPNG(t, dir, "draft_skip.png", "SKIP")

	out, _, err := run(t, nil, "batch", dir, "--exclude", "draft_*")
	require.NoError(t, err)
	assert.Contains(t, out, "KEEP")
	assert.NotContains(t, out, "SKIP")
}

func TestPDFCommand(t *testing.T) {
	dir := t.TempDir()
	blank := testutil.CreateTestImage(testutil.MediumSize.Width, testutil.MediumSize.Height, color.White)
	page := testutil.QRPage(t, testutil.MediumSize, testutil.QRPlacement{Content: "CLI-PDF", X: 100, Y: 100, Size: 200})
	doc := testutil.WriteImagePDF(t, dir, "invoice.pdf", blank, page)

	out, _, err := run(t, nil, "pdf", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "[page 2, raw] CLI-PDF")
}

func TestPDFCommandErrors(t *testing.T) {
	dir := t.TempDir()
	png := qrPNG(t, dir, "invoice.png", "X")
	doc := testutil.WriteFile(t, dir, "doc.pdf", []byte(testutil.MinimalPDF))

	_, _, err := run(t, nil, "pdf", png)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF file")

	_, _, err = run(t, nil, "pdf", doc, "--pages", "0-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --pages")
}
