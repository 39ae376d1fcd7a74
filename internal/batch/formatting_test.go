package batch

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/qrscan/internal/pipeline"
)

func sampleFiles() []FileResult {
	return []FileResult{
		{Path: "a.png", Kind: KindImage, Found: true, Text: `{"iban":"DE89"}`, Stage: pipeline.StageRaw, Attempts: 1},
		{Path: "b.pdf", Kind: KindPDF, Found: true, Text: "x,y", Stage: pipeline.StageCropped, Attempts: 5, Page: 3, Images: 3},
		{Path: "c.jpg", Kind: KindImage, Stage: pipeline.StageNone, Attempts: 3},
		{Path: "d.png", Kind: KindImage, Stage: pipeline.StageNone, Error: "unreadable image data", err: errors.New("unreadable image data")},
	}
}

func TestFormatText(t *testing.T) {
	out, err := formatBatchResults(sampleFiles(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "# a.png\n[raw] {\"iban\":\"DE89\"}\n")
	assert.Contains(t, out, "# b.pdf\n[page 3, cropped] x,y\n")
	assert.Contains(t, out, "# c.jpg\nno code found\n")
	assert.Contains(t, out, "# d.png\nerror: unreadable image data\n")

	empty, err := formatBatchResults(nil, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFormatJSON(t *testing.T) {
	out, err := formatBatchResults(sampleFiles(), "json")
	require.NoError(t, err)

	var doc struct {
		Files []map[string]any `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Files, 4)
	assert.Equal(t, "a.png", doc.Files[0]["file"])
	assert.Equal(t, true, doc.Files[0]["found"])
	assert.Equal(t, "raw", doc.Files[0]["stage"])
	assert.InDelta(t, 3, doc.Files[1]["page"], 0)
	assert.NotContains(t, doc.Files[2], "text")
	assert.Equal(t, "unreadable image data", doc.Files[3]["error"])

	out, err = formatBatchResults(nil, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"files":[]}`, out)
}

func TestFormatYAML(t *testing.T) {
	out, err := formatBatchResults(sampleFiles(), "yaml")
	require.NoError(t, err)

	var doc struct {
		Files []struct {
			File  string `yaml:"file"`
			Found bool   `yaml:"found"`
			Stage string `yaml:"stage"`
			Page  int    `yaml:"page"`
		} `yaml:"files"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Files, 4)
	assert.Equal(t, "b.pdf", doc.Files[1].File)
	assert.True(t, doc.Files[1].Found)
	assert.Equal(t, "cropped", doc.Files[1].Stage)
	assert.Equal(t, 3, doc.Files[1].Page)
}

func TestFormatCSV(t *testing.T) {
	out, err := formatBatchResults(sampleFiles(), "csv")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"file", "kind", "found", "text", "stage", "attempts", "page", "error"}, rows[0])
	assert.Equal(t, []string{"b.pdf", "pdf", "true", "x,y", "cropped", "5", "3", ""}, rows[2])
	assert.Equal(t, "unreadable image data", rows[4][7])
}

func TestFormatUnsupported(t *testing.T) {
	_, err := formatBatchResults(sampleFiles(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestSaveResults(t *testing.T) {
	res := &Result{Files: sampleFiles(), Duration: time.Second, WorkerCount: 4}

	var buf bytes.Buffer
	require.NoError(t, res.SaveResults(&buf, "text", ""))
	assert.Contains(t, buf.String(), "# a.png")

	path := filepath.Join(t.TempDir(), "out.json")
	buf.Reset()
	require.NoError(t, res.SaveResults(&buf, "json", path))
	assert.Empty(t, buf.String())
	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file": "a.png"`)
}

func TestPrintStats(t *testing.T) {
	res := &Result{Files: sampleFiles(), Duration: 2 * time.Second, WorkerCount: 4}

	stats := res.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 2.0, stats.Throughput, 1e-9)

	var buf bytes.Buffer
	res.PrintStats(&buf)
	assert.Contains(t, buf.String(), "Total files: 4")
	assert.Contains(t, buf.String(), "Failed: 1")
	assert.Contains(t, buf.String(), "Throughput: 2.0 files/sec")
}
