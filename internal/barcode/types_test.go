package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrscan/internal/raster"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"qr", FormatQR, true},
		{" QRCode ", FormatQR, true},
		{"qr-code", FormatQR, true},
		{"datamatrix", FormatDataMatrix, true},
		{"aztec", FormatAztec, true},
		{"pdf417", FormatUnknown, false},
		{"code-128", FormatCode128, true},
		{"ean13", FormatEAN13, true},
		{"upc", FormatUnknown, false},
		{"", FormatUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFormat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNamesRoundTrip(t *testing.T) {
	for _, name := range FormatNames() {
		f, ok := ParseFormat(name)
		require.True(t, ok, name)
		assert.Equal(t, name, f.String())
	}
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"qr", "aztec"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatQR, FormatAztec}, got)

	_, err = ParseFormats([]string{"qr", "maxicode"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "maxicode")
}

func TestDetectorFunc(t *testing.T) {
	calls := 0
	d := DetectorFunc(func(img raster.Luma) (string, bool) {
		calls++
		return "x", img.Width > 0
	})

	text, ok := d.Detect(raster.Luma{Width: 1, Height: 1, Pix: []byte{0}})
	assert.True(t, ok)
	assert.Equal(t, "x", text)
	assert.Equal(t, 1, calls)
}
