package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/qrscan/internal/pdf"
	"github.com/MeKo-Tech/qrscan/internal/pipeline"
	"github.com/MeKo-Tech/qrscan/internal/sanitize"
)

// ErrNoFiles is returned when discovery finds nothing to scan.
var ErrNoFiles = errors.New("no image or PDF files found")

// Scanner is the part of *pipeline.Pipeline the batch layer needs.
type Scanner interface {
	ScanImageBytesResult(data []byte) pipeline.Result
}

// Process discovers the files named by paths and scans each of them with
// pl. Results keep discovery order. A file that cannot be read is recorded
// on its own result and does not stop the batch; only discovery failures
// and cancellation are returned as errors. On cancellation the partial
// result is returned together with the context error.
func Process(ctx context.Context, paths []string, cfg Config, pl Scanner) (*Result, error) {
	files, err := discoverFiles(paths, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	progress := cfg.Progress
	if progress == nil {
		progress = NoOpProgressCallback{}
	}

	start := time.Now()
	results := make([]FileResult, len(files))
	for i, f := range files {
		results[i] = FileResult{Path: f, Kind: kindOf(f), Stage: pipeline.StageNone}
	}

	progress.OnStart(len(files))

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := scanFile(path, cfg, pl)
			results[i] = res

			mu.Lock()
			done++
			current := done
			mu.Unlock()

			if res.err != nil {
				slog.Debug("batch file failed", "file", path, "error", res.err)
				progress.OnError(current, res.err)
			}
			progress.OnProgress(current, len(files))
			return nil
		})
	}

	waitErr := g.Wait()
	progress.OnComplete()

	result := &Result{Files: results, Duration: time.Since(start), WorkerCount: workers}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, waitErr
}

func kindOf(path string) Kind {
	if pdf.IsPDF(path) {
		return KindPDF
	}
	return KindImage
}

// scanFile never fails; problems are recorded on the returned result.
func scanFile(path string, cfg Config, pl Scanner) FileResult {
	start := time.Now()
	var res FileResult
	if pdf.IsPDF(path) {
		res = scanPDF(path, cfg, pl)
	} else {
		res = scanImage(path, pl)
	}

	res.Path = path
	res.Duration = time.Since(start)
	if res.err != nil {
		res.Error = res.err.Error()
	}
	if res.Found && cfg.CleanText {
		res.Text = sanitize.CleanJSONString(res.Text)
	}
	return res
}

func scanImage(path string, pl Scanner) FileResult {
	res := FileResult{Kind: KindImage, Stage: pipeline.StageNone}

	data, err := os.ReadFile(path) //nolint:gosec // G304: scanning user-provided files is expected
	if err != nil {
		res.err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	scan := pl.ScanImageBytesResult(data)
	res.Found = scan.Found
	res.Text = scan.Text
	res.Stage = scan.Stage
	res.Attempts = scan.Attempts
	res.err = scan.Err
	return res
}

func scanPDF(path string, cfg Config, pl Scanner) FileResult {
	images, err := pdf.ExtractImageData(path, pdf.Options{Pages: cfg.Pages, Credentials: cfg.Credentials})
	if err != nil {
		return FileResult{Kind: KindPDF, Stage: pipeline.StageNone, err: err}
	}
	return scanPageImages(path, images, pl)
}

// ScanPDFReader scans the embedded images of the PDF in rs page by page and
// stops at the first code. Extraction failures are recorded on the result.
func ScanPDFReader(name string, rs io.ReadSeeker, opts pdf.Options, pl Scanner) FileResult {
	start := time.Now()
	images, err := pdf.ExtractImageDataFromReader(rs, opts)
	var res FileResult
	if err != nil {
		res = FileResult{Kind: KindPDF, Stage: pipeline.StageNone, err: err, Error: err.Error()}
	} else {
		res = scanPageImages(name, images, pl)
	}
	res.Path = name
	res.Duration = time.Since(start)
	return res
}

func scanPageImages(path string, images []pdf.PageImage, pl Scanner) FileResult {
	res := FileResult{Kind: KindPDF, Stage: pipeline.StageNone}
	for _, img := range images {
		res.Images++
		scan := pl.ScanImageBytesResult(img.Data)
		res.Attempts += scan.Attempts
		if scan.Err != nil {
			slog.Debug("skipping undecodable PDF image",
				"file", path, "page", img.Page, "image", img.Name, "type", img.FileType, "error", scan.Err)
			continue
		}
		if scan.Found {
			res.Found = true
			res.Text = scan.Text
			res.Stage = scan.Stage
			res.Page = img.Page
			return res
		}
	}
	return res
}
