// Package gamut tests Oklab colors against a palette's convex hull and, for
// colors that fall outside it, projects them back in along a hue-preserving
// direction (https://bottosson.github.io/posts/gamutclipping/#adaptive-%2C-hue-independent).
package gamut

import (
	"math"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/palette"
)

const epsilon = 1e-5

// IsInside reports whether c lies within every face of pal's hull.
func IsInside(pal *palette.Palette, c colorspace.Oklab) bool {
	for _, f := range pal.Faces {
		if f.Eval(c.L, c.A, c.B) >= epsilon {
			return false
		}
	}
	return true
}

// Clamp projects c onto pal's gamut boundary if it lies outside it,
// otherwise returns c unchanged. clippedChromaRecovery in [0, 1] trades off
// how much the clamp target leans toward preserving lightness (0) versus
// preserving chroma by sliding along the gray line (1).
func Clamp(pal *palette.Palette, clippedChromaRecovery float64, c colorspace.Oklab) colorspace.Oklab {
	if IsInside(pal, c) {
		return c
	}

	chroma := c.Chroma()
	alpha := clippedChromaRecovery
	minGray := pal.Gray.Lo + epsilon
	maxGray := pal.Gray.Hi - epsilon

	if chroma < epsilon || (alpha < epsilon && (c.L < minGray || c.L > maxGray)) {
		return colorspace.Oklab{L: clampFloat(c.L, pal.Gray.Lo, pal.Gray.Hi)}
	}

	target := clampTarget(pal, alpha, c.L, chroma)

	dir := normalize3(target.L-c.L, target.A-c.A, target.B-c.B)
	hueChroma := normalize2(c.A, c.B)

	var clamped colorspace.Oklab
	closest := math.Inf(1)
	found := false

	for _, f := range pal.Faces {
		d := dir.x*f.Nx + dir.y*f.Ny + dir.z*f.Nz
		if d > -epsilon {
			continue
		}

		t := -f.Eval(c.L, c.A, c.B) / d
		projected := colorspace.Oklab{
			L: c.L + t*dir.x,
			A: c.A + t*dir.y,
			B: c.B + t*dir.z,
		}

		if hueChroma.x*projected.A+hueChroma.y*projected.B < -epsilon {
			continue
		}

		dist := distance3(target, projected)
		if found && dist >= closest {
			continue
		}

		clamped = projected
		closest = dist
		found = true
	}

	return clamped
}

// clampTarget picks the achromatic point along the gray line that the
// out-of-gamut color should be pulled toward. With alpha == 0 the target
// keeps the input's lightness (a pure desaturation); as alpha*chroma grows,
// lTarget moves toward the gray line's midpoint, so highly saturated
// colors keep more of their chroma at the cost of lightness.
func clampTarget(pal *palette.Palette, alpha, l, chroma float64) colorspace.Oklab {
	rng := pal.Gray.Hi - pal.Gray.Lo

	lStart := (l - pal.Gray.Lo) / rng
	lDiff := lStart - 0.5
	e1 := 0.5 + math.Abs(lDiff) + alpha*chroma*0.01
	lTarget := (1 + sign(lDiff)*(e1-math.Sqrt(math.Max(0, e1*e1-2*math.Abs(lDiff))))) * 0.5

	return colorspace.Oklab{L: lTarget*rng + pal.Gray.Lo}
}

type vec3 struct{ x, y, z float64 }
type vec2 struct{ x, y float64 }

func normalize3(x, y, z float64) vec3 {
	n := math.Sqrt(x*x + y*y + z*z)
	if n < epsilon {
		return vec3{}
	}
	return vec3{x / n, y / n, z / n}
}

func normalize2(x, y float64) vec2 {
	n := math.Hypot(x, y)
	if n < epsilon {
		return vec2{}
	}
	return vec2{x / n, y / n}
}

func distance3(a, b colorspace.Oklab) float64 {
	return math.Sqrt((a.L-b.L)*(a.L-b.L) + (a.A-b.A)*(a.A-b.A) + (a.B-b.B)*(a.B-b.B))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
