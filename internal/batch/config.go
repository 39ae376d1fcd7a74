package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/qrscan/internal/pdf"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
)

// DefaultWorkers is the worker pool size used when Config.Workers is unset.
const DefaultWorkers = 8

// Config holds all configuration for batch processing.
type Config struct {
	// Workers bounds the number of files scanned at once.
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// CleanText runs found text through the JSON text sanitizer.
	CleanText bool

	// PDF settings
	Pages       string
	Credentials *pdf.Credentials

	// Progress is notified as files finish. Nil means no reporting.
	Progress ProgressCallback
}

// DefaultConfig returns the batch defaults.
func DefaultConfig() Config {
	return Config{Workers: DefaultWorkers}
}

// Kind tells whether a file was scanned as an image or a PDF.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	// KindRaw is a headerless luminance buffer scanned from the CLI.
	KindRaw Kind = "raw"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	Path     string         `json:"file" yaml:"file"`
	Kind     Kind           `json:"kind" yaml:"kind"`
	Found    bool           `json:"found" yaml:"found"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Stage    pipeline.Stage `json:"stage" yaml:"stage"`
	Attempts int            `json:"attempts" yaml:"attempts"`
	// Page is the 1-based PDF page the code was found on.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
	// Images is the number of embedded images looked at in a PDF.
	Images   int           `json:"images,omitempty" yaml:"images,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`

	err error
}

// Err returns the failure that prevented the file from being scanned.
func (f FileResult) Err() error { return f.err }

// Result holds the result of batch processing, one entry per discovered
// file in discovery order.
type Result struct {
	Files       []FileResult
	Duration    time.Duration
	WorkerCount int
}

// Stats summarizes a batch run.
type Stats struct {
	Total      int
	Found      int
	NotFound   int
	Failed     int
	Duration   time.Duration
	Workers    int
	Throughput float64
}

// Stats computes summary counters.
func (r *Result) Stats() Stats {
	s := Stats{Total: len(r.Files), Duration: r.Duration, Workers: r.WorkerCount}
	for _, f := range r.Files {
		switch {
		case f.err != nil:
			s.Failed++
		case f.Found:
			s.Found++
		default:
			s.NotFound++
		}
	}
	if r.Duration > 0 {
		s.Throughput = float64(s.Total) / r.Duration.Seconds()
	}
	return s
}

// FormatResults formats the batch results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Files, format)
}

// SaveResults writes the formatted results to outputFile, or to w when
// outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprint(w, output)
	return err
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	stats := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total files: %d\n", stats.Total)
	_, _ = fmt.Fprintf(w, "  Found: %d\n", stats.Found)
	_, _ = fmt.Fprintf(w, "  Not found: %d\n", stats.NotFound)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", stats.Failed)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", stats.Workers)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", stats.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f files/sec\n", stats.Throughput)
}
