package raster

// Crop copies r out of src. Rows whose byte range would fall outside
// src.Pix are omitted rather than padded, so the returned Height is the
// number of rows actually copied and may be smaller than r.H. A region with
// non-positive size, a negative origin or an X at or past the right edge
// yields an empty buffer.
func Crop(src Luma, r Region) Luma {
	if r.W <= 0 || r.H <= 0 || r.X < 0 || r.Y < 0 || r.X >= src.Width {
		return Luma{}
	}

	// Highest source row whose byte range still ends inside src.Pix. All
	// arithmetic below stays within len(src.Pix).
	spare := len(src.Pix) - r.X
	if r.W > spare {
		return Luma{}
	}
	lastRow := (spare - r.W) / src.Width
	if r.Y > lastRow {
		return Luma{}
	}
	rows := min(r.H, lastRow-r.Y+1)

	out := make([]byte, 0, rows*r.W)
	for i := range rows {
		start := (r.Y+i)*src.Width + r.X
		out = append(out, src.Pix[start:start+r.W]...)
	}
	return Luma{Width: r.W, Height: rows, Pix: out}
}

// TopRightRegion returns the region covering the right (1-xFrac) of the
// width and the top hFrac of the height, the usual placement of a code on
// a scanned document. The width is clamped at zero.
func TopRightRegion(width, height int, xFrac, hFrac float64) Region {
	x := int(float64(width) * xFrac)
	w := width - x
	if w < 0 {
		w = 0
	}
	return Region{
		X: x,
		Y: 0,
		W: w,
		H: int(float64(height) * hFrac),
	}
}
