// Package barcode is the detector boundary of the scanner: it locates and
// decodes a single symbol in a luma raster.
//
// The scan pipeline only depends on the Detector interface, so tests and
// alternative decoders can be swapped in freely. NewDetector returns the
// default implementation backed by gozxing.
//
// Example:
//
//	det, err := barcode.NewDetector(barcode.Options{Formats: []barcode.Format{barcode.FormatQR}})
//	text, ok := det.Detect(luma)
package barcode
