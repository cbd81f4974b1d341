// Package raster holds the width×height Oklab grid that flows through the
// color pipeline, plus (in loader.go) the external-collaborator stand-in
// that decodes an arbitrary image file into one.
package raster

import "github.com/AnyUserName/encre/internal/colorspace"

// Raster is a width*height grid of Oklab triples, stored row-major.
type Raster struct {
	Width, Height int
	Pix           []colorspace.Oklab
}

// New allocates a zeroed raster of the given dimensions.
func New(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]colorspace.Oklab, width*height),
	}
}

// At returns the pixel at (x, y). No bounds checking; callers on the hot
// path (dither, tonemap) are expected to iterate within Width/Height.
func (r *Raster) At(x, y int) colorspace.Oklab {
	return r.Pix[y*r.Width+x]
}

// Set writes the pixel at (x, y).
func (r *Raster) Set(x, y int, v colorspace.Oklab) {
	r.Pix[y*r.Width+x] = v
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	out := &Raster{Width: r.Width, Height: r.Height, Pix: make([]colorspace.Oklab, len(r.Pix))}
	copy(out.Pix, r.Pix)
	return out
}

// ResizeToFit scales src to fit within width x height preserving aspect
// ratio: the scale factor is the smaller of the two axis ratios, so the
// result is never larger than the target box on either axis and may be
// smaller on one of them. Callers that need a full width x height canvas
// follow this with Letterbox.
func ResizeToFit(src *Raster, width, height int) *Raster {
	hScale := float64(width) / float64(src.Width)
	vScale := float64(height) / float64(src.Height)
	scale := hScale
	if vScale < scale {
		scale = vScale
	}
	scaledW := maxInt(1, int(float64(src.Width)*scale+0.5))
	scaledH := maxInt(1, int(float64(src.Height)*scale+0.5))
	return Resize(src, scaledW, scaledH)
}

// Letterbox centers src on a width x height canvas filled with background,
// cropping nothing and never upscaling src itself. src is expected to
// already fit within width x height, e.g. the output of ResizeToFit.
func Letterbox(src *Raster, width, height int, background colorspace.Oklab) *Raster {
	out := New(width, height)
	for i := range out.Pix {
		out.Pix[i] = background
	}

	offX := (width - src.Width) / 2
	offY := (height - src.Height) / 2
	for y := 0; y < src.Height; y++ {
		dy := y + offY
		if dy < 0 || dy >= height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			dx := x + offX
			if dx < 0 || dx >= width {
				continue
			}
			out.Set(dx, dy, src.At(x, y))
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
