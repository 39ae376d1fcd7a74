package raster

import (
	"bytes"
	"errors"
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnreadable reports compressed image bytes that could not be decoded.
var ErrUnreadable = errors.New("unreadable image data")

// ImageError represents a failure in one of the raster operations.
type ImageError struct {
	Operation string
	Err       error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("raster %s: %v", e.Operation, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// SupportedImageExtensions lists the file extensions the default loader can decode.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Loader decodes compressed image bytes into a luma raster.
type Loader interface {
	Load(data []byte) (Luma, error)
}

// ImageLoader is the default Loader. It understands every format registered
// with the image package (JPEG, PNG, GIF, BMP, TIFF, WebP) and applies the
// EXIF orientation tag so phone photos come out upright.
type ImageLoader struct{}

// NewImageLoader returns the default loader.
func NewImageLoader() ImageLoader { return ImageLoader{} }

// Load implements Loader. Any decode failure is reported as an *ImageError
// wrapping ErrUnreadable.
func (ImageLoader) Load(data []byte) (Luma, error) {
	if len(data) == 0 {
		return Luma{}, &ImageError{Operation: "decode", Err: fmt.Errorf("%w: empty input", ErrUnreadable)}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Luma{}, &ImageError{Operation: "decode", Err: fmt.Errorf("%w: %v", ErrUnreadable, err)}
	}

	return FromImage(img), nil
}
