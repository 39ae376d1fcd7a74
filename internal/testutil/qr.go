package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/stretchr/testify/require"
)

// QRImage renders content as a QR code of size x size pixels, without a
// quiet zone.
func QRImage(t *testing.T, content string, size int) image.Image {
	t.Helper()

	code, err := qr.Encode(content, qr.M, qr.Auto)
	require.NoError(t, err, "Failed to encode QR content")

	scaled, err := barcode.Scale(code, size, size)
	require.NoError(t, err, "Failed to scale QR code")
	return scaled
}

// QRPlacement describes where a code goes on a synthetic page.
type QRPlacement struct {
	Content string
	Size    int
	X       int
	Y       int
}

// QRPage draws a white page with some text and a QR code at the placement.
// The code gets a white quiet zone because the page is white.
func QRPage(t *testing.T, page ImageSize, p QRPlacement) *image.RGBA {
	t.Helper()

	img := CreateTestImage(page.Width, page.Height, color.White)
	DrawText(img, []string{"INVOICE 2024-0117", "Total due: 129.00 EUR", "Thank you for your order"}, 20, 40, color.Black)

	code := QRImage(t, p.Content, p.Size)
	dst := image.Rect(p.X, p.Y, p.X+p.Size, p.Y+p.Size)
	draw.Draw(img, dst, code, code.Bounds().Min, draw.Src)
	return img
}

// TopRightQRPage places a code inside the top-right scan region of a page.
func TopRightQRPage(t *testing.T, content string) *image.RGBA {
	t.Helper()

	page := PageSize
	size := 180
	return QRPage(t, page, QRPlacement{
		Content: content,
		Size:    size,
		X:       page.Width - size - 20,
		Y:       20,
	})
}

// Fade remaps every pixel linearly into [lo, hi], lowering contrast.
func Fade(img image.Image, lo, hi uint8) *image.Gray {
	g := ToGray(img)
	span := int(hi) - int(lo)
	for i, v := range g.Pix {
		g.Pix[i] = uint8(int(lo) + int(v)*span/255)
	}
	return g
}
