package testutil

import (
	"fmt"
	"image"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// WriteImagePDF writes a PDF with one page per image and returns its path.
// Tests that need a real document skip when pdfcpu cannot build one.
func WriteImagePDF(t *testing.T, dir, name string, pages ...image.Image) string {
	t.Helper()

	files := make([]string, 0, len(pages))
	for i, img := range pages {
		files = append(files, WriteFile(t, dir, fmt.Sprintf("page_%d.png", i+1), EncodePNG(t, img)))
	}

	out := filepath.Join(dir, name)
	if err := api.ImportImagesFile(files, out, pdfcpu.DefaultImportConfig(), nil); err != nil {
		t.Skipf("pdfcpu could not build test PDF: %v", err)
	}
	return out
}

// MinimalPDF is a syntactically valid one-page PDF without any images.
const MinimalPDF = `%PDF-1.4
1 0 obj
<<
/Type /Catalog
/Pages 2 0 R
>>
endobj

2 0 obj
<<
/Type /Pages
/Kids [3 0 R]
/Count 1
>>
endobj

3 0 obj
<<
/Type /Page
/Parent 2 0 R
/MediaBox [0 0 612 792]
>>
endobj

xref
0 4
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
trailer
<<
/Size 4
/Root 1 0 R
>>
startxref
186
%%EOF`
