package colorspace

import "math"

// CIELab is a standard CIE L*a*b* triple (D65 reference white, matching the
// vips_col_Lab2XYZ convention used by the original implementation — vips
// is built against D65, not D50, and internal/raster's sRGB decode path
// uses the same D65 primaries, so both streams that feed Oklab comparisons
// share one reference white).
type CIELab struct {
	L, A, B float64
}

// d65White is the D65 reference white point, Y scaled to 100.
var d65White = XYZ{X: 95.0489, Y: 100, Z: 108.8840}

// CIELabToXYZ converts a CIE L*a*b* color to CIE-XYZ (D65, Y scaled to 100).
func CIELabToXYZ(lab CIELab) XYZ {
	fy := (lab.L + 16) / 116
	fx := fy + lab.A/500
	fz := fy - lab.B/200

	return XYZ{
		X: labInv(fx) * d65White.X,
		Y: labInv(fy) * d65White.Y,
		Z: labInv(fz) * d65White.Z,
	}
}

func labInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}

// XYZToCIELab converts CIE-XYZ (D65, Y scaled to 100) to CIE L*a*b*. It is
// the inverse of CIELabToXYZ and is provided for symmetry and testing; the
// pipeline itself only ever goes from Lab to XYZ on the way into Oklab.
func XYZToCIELab(xyz XYZ) CIELab {
	fx := labForward(xyz.X / d65White.X)
	fy := labForward(xyz.Y / d65White.Y)
	fz := labForward(xyz.Z / d65White.Z)

	return CIELab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

func labForward(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}
