package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageImage is one embedded image of a PDF page, still in its encoded form.
type PageImage struct {
	Page     int
	Index    int
	Name     string
	FileType string
	Width    int
	Height   int
	Data     []byte
}

// Options controls extraction.
type Options struct {
	// Pages is a page selection like "1-3,5". Empty means all pages.
	Pages string
	// Credentials unlock encrypted documents.
	Credentials *Credentials
}

// ExtractImageData returns the embedded images of a PDF file ordered by page,
// then by position within the page.
func ExtractImageData(filename string, opts Options) ([]PageImage, error) {
	pageStrings, err := pageSelection(opts.Pages)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filename) //nolint:gosec // G304: Reading user-provided PDF file path is expected
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	return extract(f, pageStrings, opts.Credentials)
}

// ExtractImageDataFromReader is ExtractImageData for an in-memory document.
func ExtractImageDataFromReader(rs io.ReadSeeker, opts Options) ([]PageImage, error) {
	pageStrings, err := pageSelection(opts.Pages)
	if err != nil {
		return nil, err
	}
	return extract(rs, pageStrings, opts.Credentials)
}

func extract(rs io.ReadSeeker, pageStrings []string, creds *Credentials) (images []PageImage, err error) {
	// pdfcpu panics on some image encodings (DeviceGray among them).
	defer func() {
		if r := recover(); r != nil {
			images = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	perPage := make(map[int]int)

	digest := func(img model.Image, _ bool, _ int) error {
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s on page %d: %w", img.Name, img.PageNr, err)
		}
		images = append(images, PageImage{
			Page:     img.PageNr,
			Index:    perPage[img.PageNr],
			Name:     img.Name,
			FileType: img.FileType,
			Width:    img.Width,
			Height:   img.Height,
			Data:     data,
		})
		perPage[img.PageNr]++
		return nil
	}

	if err := api.ExtractImages(rs, pageStrings, digest, configuration(creds)); err != nil {
		if IsPasswordError(err) {
			return nil, fmt.Errorf("%w: %v", ErrEncrypted, err)
		}
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	sort.SliceStable(images, func(i, j int) bool {
		if images[i].Page != images[j].Page {
			return images[i].Page < images[j].Page
		}
		return images[i].Index < images[j].Index
	})
	return images, nil
}

// PageCount returns the number of pages in a PDF file.
func PageCount(filename string, creds *Credentials) (int, error) {
	f, err := os.Open(filename) //nolint:gosec // G304: Reading user-provided PDF file path is expected
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	n, err := api.PageCount(f, configuration(creds))
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func pageSelection(pageRange string) ([]string, error) {
	pageNumbers, err := ParsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}
	if len(pageNumbers) == 0 {
		return nil, nil
	}
	pageStrings := make([]string, len(pageNumbers))
	for i, pageNum := range pageNumbers {
		pageStrings[i] = strconv.Itoa(pageNum)
	}
	return pageStrings, nil
}

// ParsePageRange parses a page range string like "1-5" or "1,3,5".
func ParsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if !strings.Contains(part, "-") {
		page, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", part)
		}
		if page < 1 {
			return nil, fmt.Errorf("page numbers start at 1, got %d", page)
		}
		return []int{page}, nil
	}

	rangeParts := strings.Split(part, "-")
	if len(rangeParts) != 2 {
		return nil, fmt.Errorf("invalid range format: %s", part)
	}
	start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
	}
	if start < 1 {
		return nil, fmt.Errorf("page numbers start at 1, got %d", start)
	}
	if start > end {
		return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out, nil
}

// ErrEncrypted is returned when a document cannot be opened with the given credentials.
var ErrEncrypted = errors.New("pdf is encrypted")

// ErrExtraction marks a document whose images pdfcpu failed to render.
var ErrExtraction = errors.New("pdf: image extraction failed")
