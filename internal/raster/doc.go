// Package raster holds the single-channel pixel buffers the scan pipeline
// works on, together with the pure helpers that operate on them: cropping,
// contrast enhancement and decoding compressed image bytes into luma.
//
// Every function returns a freshly allocated buffer; nothing here keeps
// state between calls.
package raster
