// Package dither quantizes a tone-mapped, gamut-clamped Oklab raster down
// to palette indices using Floyd-Steinberg error diffusion.
package dither

import (
	"math"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/gamut"
	"github.com/AnyUserName/encre/internal/palette"
	"github.com/AnyUserName/encre/internal/raster"
)

// Options configures a dither pass.
type Options struct {
	// ClippedChromaRecovery trades lightness preservation for chroma
	// preservation when clamping out-of-gamut colors; passed straight
	// through to gamut.Clamp.
	ClippedChromaRecovery float64
	// ErrorAttenuation (η >= 0) damps large per-pixel quantization errors
	// before they're diffused, so a badly-quantized pixel doesn't smear a
	// far-off color across its neighborhood. 0 disables attenuation.
	ErrorAttenuation float64
}

// Result holds the quantized indices (row-major, one byte per pixel) plus
// the raster each index was snapped to, for callers that want to preview
// the dithered image.
type Result struct {
	Width, Height int
	Indices       []uint8
	Quantized     *raster.Raster
}

// Dither gamut-clamps and quantizes r against pal, diffusing each pixel's
// quantization error into its unprocessed neighbors. r is read but not
// modified.
func Dither(r *raster.Raster, pal *palette.Palette, opts Options) *Result {
	working := r.Clone()
	for i, p := range working.Pix {
		working.Pix[i] = gamut.Clamp(pal, opts.ClippedChromaRecovery, p)
	}

	indices := make([]uint8, working.Width*working.Height)
	quantized := raster.New(working.Width, working.Height)

	for y := 0; y < working.Height; y++ {
		for x := 0; x < working.Width; x++ {
			old := working.At(x, y)
			idx := closestPaletteColor(pal, old)
			newPixel := pal.Vertices[idx]

			indices[y*working.Width+x] = uint8(idx)
			quantized.Set(x, y, newPixel)
			working.Set(x, y, newPixel)

			err := colorspace.Oklab{L: old.L - newPixel.L, A: old.A - newPixel.A, B: old.B - newPixel.B}
			delta := attenuate(err, opts.ErrorAttenuation)
			diffuseError(working, x, y, delta)
		}
	}

	return &Result{Width: working.Width, Height: working.Height, Indices: indices, Quantized: quantized}
}

// attenuate damps err by a sigmoid of its magnitude, so the diffusion delta
// shrinks once the quantization error for a single pixel grows too large to
// be a plausible dithering artifact. eta == 0 disables attenuation (k == 1).
func attenuate(err colorspace.Oklab, eta float64) colorspace.Oklab {
	if eta <= 0 {
		return err
	}
	mag := math.Sqrt(err.L*err.L + err.A*err.A + err.B*err.B)
	k := 1 / (1 + math.Exp(eta*mag-1/eta-4))
	return colorspace.Oklab{L: err.L * k, A: err.A * k, B: err.B * k}
}

func closestPaletteColor(pal *palette.Palette, c colorspace.Oklab) int {
	closest := math.Inf(1)
	index := -1
	for i, v := range pal.Vertices {
		dl, da, db := c.L-v.L, c.A-v.A, c.B-v.B
		d2 := dl*dl + da*da + db*db
		if d2 < closest {
			closest = d2
			index = i
		}
	}
	return index
}

// diffuseError spreads a quantization error to the four not-yet-visited
// neighbors in raster scan order, using the classic Floyd-Steinberg
// weights (7/16 right, 3/16 down-left, 5/16 down, 1/16 down-right).
func diffuseError(r *raster.Raster, x, y int, err colorspace.Oklab) {
	if x+1 < r.Width {
		addError(r, x+1, y, err, 7.0/16)
	}
	if y+1 < r.Height {
		if x >= 1 {
			addError(r, x-1, y+1, err, 3.0/16)
		}
		addError(r, x, y+1, err, 5.0/16)
		if x+1 < r.Width {
			addError(r, x+1, y+1, err, 1.0/16)
		}
	}
}

func addError(r *raster.Raster, x, y int, err colorspace.Oklab, weight float64) {
	p := r.At(x, y)
	r.Set(x, y, colorspace.Oklab{L: p.L + err.L*weight, A: p.A + err.A*weight, B: p.B + err.B*weight})
}
