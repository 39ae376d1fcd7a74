package raster

import (
	"image/color"

	"github.com/disintegration/imaging"
)

// Enhance returns a copy of src with every pixel pushed away from mid-gray.
// The deviation from mid-gray is scaled by ((100+percent)/100)^2 and the
// result saturates at 0 and 255.
func Enhance(src Luma, percent float64) Luma {
	if src.Empty() || !src.Valid() {
		return Luma{Width: src.Width, Height: src.Height, Pix: append([]byte(nil), src.Pix...)}
	}

	lut := contrastTable(percent)
	adjusted := imaging.AdjustFunc(src.Gray(), func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})

	out := Luma{Width: src.Width, Height: src.Height, Pix: make([]byte, len(src.Pix))}
	for y := range src.Height {
		row := adjusted.Pix[y*adjusted.Stride:]
		for x := range src.Width {
			out.Pix[y*src.Width+x] = row[x*4]
		}
	}
	return out
}

// contrastTable maps every gray level through the contrast curve, computed in
// float32 and truncated toward zero.
func contrastTable(percent float64) [256]uint8 {
	factor := float32((100 + percent) / 100)
	factor *= factor

	var lut [256]uint8
	for v := range lut {
		d := ((float32(v)/255-0.5)*factor + 0.5) * 255
		switch {
		case d <= 0:
			lut[v] = 0
		case d >= 255:
			lut[v] = 255
		default:
			lut[v] = uint8(d)
		}
	}
	return lut
}
