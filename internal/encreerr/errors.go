// Package encreerr defines the sentinel error kinds surfaced at the core's
// boundary. Callers use errors.Is against these; internal stages never
// retry, they just wrap and propagate.
package encreerr

import "errors"

var (
	// ErrInvalidInput covers zero image dimensions and undersized output buffers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDegenerateGamut means the convex hull construction failed or is flat.
	ErrDegenerateGamut = errors.New("degenerate gamut")
	// ErrTooFewColors means fewer than 4 reference colors were supplied.
	ErrTooFewColors = errors.New("too few colors")
	// ErrPaletteTooLarge means palette size exceeds 65535, or width/height exceed 65535 on write.
	ErrPaletteTooLarge = errors.New("palette too large")
	// ErrLoaderFailure is passed through verbatim from the raster loader.
	ErrLoaderFailure = errors.New("loader failure")
	// ErrMalformedFile means the magic, size, or layout didn't parse.
	ErrMalformedFile = errors.New("malformed encre file")
	// ErrIncompatibleFile means width/height/palette-size didn't match the caller's expectation.
	ErrIncompatibleFile = errors.New("incompatible encre file")
	// ErrIOFailure wraps an OS-level read/write error.
	ErrIOFailure = errors.New("i/o failure")
)
