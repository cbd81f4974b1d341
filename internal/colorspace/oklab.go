// Package colorspace converts between CIE-XYZ and Oklab.
//
// The matrices are Björn Ottosson's reference constants
// (https://bottosson.github.io/posts/oklab/). Lightness is scaled by 100
// relative to Ottosson's original [0, 1] convention so that it lines up
// with CIE-XYZ's Y=100 white point; every consumer in this module assumes
// the 100x scaling.
package colorspace

import "math"

// XYZ is a CIE-XYZ tristimulus value. Y is scaled to 100 at diffuse white.
type XYZ struct {
	X, Y, Z float64
}

// Oklab is a perceptual lightness/chroma triple. L is in [0, 100]; a and b
// are unbounded opponent-color axes.
type Oklab struct {
	L, A, B float64
}

// Chroma returns the Euclidean distance from the achromatic axis.
func (o Oklab) Chroma() float64 {
	return math.Hypot(o.A, o.B)
}

var xyzToLMS = [3][3]float64{
	{0.8189330101, 0.3618667424, -0.1288597137},
	{0.0329845436, 0.9293118715, 0.0361456387},
	{0.0482003018, 0.2643662691, 0.6338517070},
}

var lmsToXYZ = invert3(xyzToLMS)

var lmsPrimeToOklab = [3][3]float64{
	{0.2104542553, 0.7936177850, -0.0040720468},
	{1.9779984951, -2.4285922050, 0.4505937099},
	{0.0259040371, 0.7827717662, -0.8086757660},
}

var oklabToLMSPrime = invert3(lmsPrimeToOklab)

// ToOklab converts a CIE-XYZ color (Y scaled to 100) to Oklab.
func ToOklab(xyz XYZ) Oklab {
	v := [3]float64{xyz.X / 100, xyz.Y / 100, xyz.Z / 100}
	lms := mulVec3(xyzToLMS, v)
	lmsPrime := [3]float64{cbrt(lms[0]), cbrt(lms[1]), cbrt(lms[2])}
	lab := mulVec3(lmsPrimeToOklab, lmsPrime)
	return Oklab{L: lab[0] * 100, A: lab[1] * 100, B: lab[2] * 100}
}

// ToXYZ converts an Oklab color back to CIE-XYZ (Y scaled to 100).
func ToXYZ(lab Oklab) XYZ {
	v := [3]float64{lab.L / 100, lab.A / 100, lab.B / 100}
	lmsPrime := mulVec3(oklabToLMSPrime, v)
	lms := [3]float64{
		lmsPrime[0] * lmsPrime[0] * lmsPrime[0],
		lmsPrime[1] * lmsPrime[1] * lmsPrime[1],
		lmsPrime[2] * lmsPrime[2] * lmsPrime[2],
	}
	xyz := mulVec3(lmsToXYZ, lms)
	return XYZ{X: xyz[0] * 100, Y: xyz[1] * 100, Z: xyz[2] * 100}
}

// cbrt is a sign-preserving cube root: tone-mapped lightness can push a and
// b (and, transiently, the LMS intermediates) negative, and math.Cbrt
// already handles that correctly, but we keep the wrapper so the sign
// convention is documented at the call site.
func cbrt(v float64) float64 {
	return math.Cbrt(v)
}

func mulVec3(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func invert3(m [3][3]float64) [3][3]float64 {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	inv := 1 / det

	return [3][3]float64{
		{(e*i - f*h) * inv, (c*h - b*i) * inv, (b*f - c*e) * inv},
		{(f*g - d*i) * inv, (a*i - c*g) * inv, (c*d - a*f) * inv},
		{(d*h - e*g) * inv, (b*g - a*h) * inv, (a*e - b*d) * inv},
	}
}
