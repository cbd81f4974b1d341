// Package convert wires the color pipeline end to end: decode, rotate,
// fit to the target canvas, tone map, dither, and hand back the
// palette-indexed result ready for the file codec or the display
// controller.
package convert

import (
	"io"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/dither"
	"github.com/AnyUserName/encre/internal/encrefile"
	"github.com/AnyUserName/encre/internal/encreerr"
	"github.com/AnyUserName/encre/internal/palette"
	"github.com/AnyUserName/encre/internal/raster"
	"github.com/AnyUserName/encre/internal/tonemap"
)

// Options bundles every tunable the pipeline needs, named after the CLI
// surface. Zero-value Exposure/Brightness mean "derive automatically".
type Options struct {
	Width, Height         int
	Palette               *palette.Palette
	Rotation              encrefile.Rotation
	DynamicRange          float64
	Contrast              float64
	Exposure              *float64
	Brightness            *float64
	Sharpening            float64
	ClippedChromaRecovery float64
	ErrorAttenuation      float64
}

// Result is the outcome of a single conversion: the dithered index raster
// plus the quantized Oklab raster it was derived from, useful for
// rendering a preview.
type Result struct {
	Width, Height int
	Indices       []uint8
	Quantized     *raster.Raster
}

// Image decodes src, fits it to opts.Width x opts.Height, tone maps and
// dithers it against opts.Palette, and returns the palette-indexed result.
func Image(src io.Reader, opts Options) (*Result, error) {
	if opts.Palette == nil || opts.Width <= 0 || opts.Height <= 0 {
		return nil, encreerr.ErrInvalidInput
	}

	r, err := raster.Load(src, opts.Rotation)
	if err != nil {
		return nil, err
	}
	return fromRaster(r, opts)
}

// Raster runs the tail of the pipeline (fit, tone map, dither) against an
// already-decoded raster, skipping the loader. Used by callers that
// already hold a Raster, e.g. a batch pipeline that decoded once to
// compute other asset metadata.
func Raster(r *raster.Raster, opts Options) (*Result, error) {
	if opts.Palette == nil || opts.Width <= 0 || opts.Height <= 0 {
		return nil, encreerr.ErrInvalidInput
	}
	return fromRaster(r, opts)
}

func fromRaster(r *raster.Raster, opts Options) (*Result, error) {
	black := colorspace.Oklab{L: 0, A: 0, B: 0}

	// Resize and sharpen before tone mapping, so auto exposure/brightness
	// percentiles are computed over the actual image content rather than
	// over the padded canvas. Letterboxing onto the background happens
	// only after tone mapping, mirroring resize -> limit_contrast ->
	// gravity-extend.
	fitted := raster.ResizeToFit(r, opts.Width, opts.Height)
	fitted = raster.Sharpen(fitted, opts.Sharpening)

	tonemap.Apply(fitted, opts.Palette, tonemap.Options{
		DynamicRange: opts.DynamicRange,
		Exposure:     opts.Exposure,
		Brightness:   opts.Brightness,
		Contrast:     opts.Contrast,
	})

	padded := raster.Letterbox(fitted, opts.Width, opts.Height, black)

	d := dither.Dither(padded, opts.Palette, dither.Options{
		ClippedChromaRecovery: opts.ClippedChromaRecovery,
		ErrorAttenuation:      opts.ErrorAttenuation,
	})

	return &Result{
		Width:     d.Width,
		Height:    d.Height,
		Indices:   d.Indices,
		Quantized: d.Quantized,
	}, nil
}

// WriteEncreFile encodes result as an encre binary file using pal's
// vertices as the on-disk palette table.
func WriteEncreFile(w io.Writer, result *Result, pal *palette.Palette, rotation encrefile.Rotation) error {
	return encrefile.Write(w, result.Width, result.Height, pal.Vertices, rotation, result.Indices)
}
