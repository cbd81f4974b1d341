// Package palette builds the reachable-color-gamut description consumed by
// the tone mapper, gamut clamper, and dither engine: a convex hull over a
// set of measured device colors in Oklab space, plus the achromatic "gray
// line" segment that lies inside it.
package palette

import "github.com/AnyUserName/encre/internal/colorspace"

// DefaultTargetLightness is the brightest color's rescaled L value.
const DefaultTargetLightness = 80

// Plane is an oriented half-space in Oklab: (Nx, Ny, Nz) is the outward
// unit normal and D the signed offset. A point p is outside the plane when
// Nx*p.L + Ny*p.A + Nz*p.B + D > 0.
type Plane struct {
	Nx, Ny, Nz, D float64
}

// Eval returns the signed distance-like quantity n·p + d. Positive means
// outside.
func (p Plane) Eval(l, a, b float64) float64 {
	return p.Nx*l + p.Ny*a + p.Nz*b + p.D
}

// GrayLine is the interval of lightness values for which the pure gray
// point (L, 0, 0) lies inside every face of the hull.
type GrayLine struct {
	Lo, Hi float64
}

// Scaled returns the gray line rescaled by dynamicRange: [Lo*d, Hi*(2-d)].
// For dynamicRange in [0, 1) this lowers Lo and raises Hi, so the interval
// widens; 1 leaves the line untouched.
func (g GrayLine) Scaled(dynamicRange float64) GrayLine {
	return GrayLine{Lo: g.Lo * dynamicRange, Hi: g.Hi * (2 - dynamicRange)}
}

// Palette is immutable after construction: it may be shared freely across
// concurrent conversions.
type Palette struct {
	// Points are the reference colors after lightness rescaling, in input order.
	Points []colorspace.Oklab
	// Vertices are the subset of Points that are hull vertices; these are
	// the quantization targets for the dither engine.
	Vertices []colorspace.Oklab
	// Faces are the oriented planes of the convex hull.
	Faces []Plane
	// Gray is the achromatic segment that lies inside the hull.
	Gray GrayLine
	// LightnessRange is the span of L across Points.
	LightnessRange float64
	// MaxChroma is the largest chroma across Points.
	MaxChroma float64
}

// Size returns the number of quantization targets (palette size).
func (p *Palette) Size() int {
	return len(p.Vertices)
}

// BitsPerColor returns floor(log2(size))+1, the packing width used by the
// file codec and display protocol.
func (p *Palette) BitsPerColor() int {
	return bitsPerColor(len(p.Vertices))
}

func bitsPerColor(size int) int {
	bits := 0
	for v := size; v > 0; v >>= 1 {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}
