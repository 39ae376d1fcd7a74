package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Luma is a row-major, single-channel 8-bit raster. A well-formed buffer has
// len(Pix) == Width*Height.
type Luma struct {
	Width  int
	Height int
	Pix    []byte
}

// Region is a sub-rectangle of a Luma buffer.
type Region struct {
	X int
	Y int
	W int
	H int
}

// NewLuma wraps pix as a raster of the given dimensions without copying.
func NewLuma(pix []byte, width, height int) Luma {
	return Luma{Width: width, Height: height, Pix: pix}
}

// Empty reports whether the buffer has no pixels to look at.
func (l Luma) Empty() bool {
	return l.Width <= 0 || l.Height <= 0 || len(l.Pix) == 0
}

// Valid reports whether the declared dimensions match the pixel data.
// Dimensions whose product overflows int are never valid.
func (l Luma) Valid() bool {
	if l.Width < 0 || l.Height < 0 {
		return false
	}
	if l.Width == 0 {
		return len(l.Pix) == 0
	}
	return len(l.Pix)%l.Width == 0 && len(l.Pix)/l.Width == l.Height
}

// Gray returns an *image.Gray view that shares Pix with l.
func (l Luma) Gray() *image.Gray {
	return &image.Gray{
		Pix:    l.Pix,
		Stride: l.Width,
		Rect:   image.Rect(0, 0, l.Width, l.Height),
	}
}

// FromImage converts any image to an 8-bit luma raster whose origin is (0,0).
func FromImage(img image.Image) Luma {
	if img == nil {
		return Luma{}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := Luma{Width: w, Height: h, Pix: make([]byte, w*h)}
	if w == 0 || h == 0 {
		return out
	}

	if g, ok := img.(*image.Gray); ok {
		for y := range h {
			start := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*w:(y+1)*w], g.Pix[start:start+w])
		}
		return out
	}

	// imaging.Grayscale keeps R=G=B, so the red channel is the luma value.
	gray := imaging.Grayscale(img)
	for y := range h {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := range w {
			out.Pix[y*w+x] = row[x*4]
		}
	}
	return out
}
