package palette

import (
	"math"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/encreerr"
)

// BuildFromXYZ constructs a Palette from measured CIE-XYZ reference colors.
// targetLightness rescales the brightest input color's Oklab L to this
// value (a=b unchanged); pass DefaultTargetLightness for the usual 80.
func BuildFromXYZ(colors []colorspace.XYZ, targetLightness float64) (*Palette, error) {
	points := make([]colorspace.Oklab, len(colors))
	for i, c := range colors {
		points[i] = colorspace.ToOklab(c)
	}
	return buildFromOklab(points, targetLightness)
}

// BuildFromLab constructs a Palette from measured CIE-Lab reference colors,
// converting through CIE-XYZ first (D65, matching vips_col_Lab2XYZ, the
// reference transform).
func BuildFromLab(colors []colorspace.CIELab, targetLightness float64) (*Palette, error) {
	points := make([]colorspace.Oklab, len(colors))
	for i, c := range colors {
		points[i] = colorspace.ToOklab(colorspace.CIELabToXYZ(c))
	}
	return buildFromOklab(points, targetLightness)
}

func buildFromOklab(points []colorspace.Oklab, targetLightness float64) (*Palette, error) {
	if len(points) < 4 {
		// buildHull would also catch this, but fail fast with the exact
		// kind before doing any geometry.
		return nil, encreerr.ErrTooFewColors
	}

	lMax := math.Inf(-1)
	for _, p := range points {
		if p.L > lMax {
			lMax = p.L
		}
	}
	scale := targetLightness / lMax

	rescaled := make([]colorspace.Oklab, len(points))
	lMin := math.Inf(1)
	maxChroma := 0.0
	for i, p := range points {
		l := p.L * scale
		rescaled[i] = colorspace.Oklab{L: l, A: p.A, B: p.B}
		if l < lMin {
			lMin = l
		}
		if c := p.Chroma(); c > maxChroma {
			maxChroma = c
		}
	}
	lMaxRescaled := targetLightness

	vertexIdx, faces, err := buildHull(rescaled)
	if err != nil {
		return nil, err
	}

	gray, err := grayLine(faces)
	if err != nil {
		return nil, err
	}

	vertices := make([]colorspace.Oklab, len(vertexIdx))
	for i, idx := range vertexIdx {
		vertices[i] = rescaled[idx]
	}

	return &Palette{
		Points:         rescaled,
		Vertices:       vertices,
		Faces:          faces,
		Gray:           gray,
		LightnessRange: lMaxRescaled - lMin,
		MaxChroma:      maxChroma,
	}, nil
}

// grayLine derives [L_min, L_max]: for each face (nx, ny, nz, d), the
// achromatic line crosses it at L = -d/nx when nx != 0; that L upper-bounds
// L_max when nx > 0, lower-bounds L_min when nx < 0. Faces with nx ~= 0
// don't constrain the gray segment.
//
// minGrayL must seed from -Inf, not the smallest positive float, or a
// palette whose hull has no negative-nx face at all would silently report
// a lower bound of approximately zero instead of failing as degenerate.
func grayLine(faces []Plane) (GrayLine, error) {
	const nxEpsilon = 1e-9

	maxGrayL := math.Inf(1)
	minGrayL := math.Inf(-1)
	for _, f := range faces {
		if math.Abs(f.Nx) < nxEpsilon {
			continue
		}
		l := -f.D / f.Nx
		if f.Nx < 0 {
			if l > minGrayL {
				minGrayL = l
			}
		} else {
			if l < maxGrayL {
				maxGrayL = l
			}
		}
	}

	if math.IsInf(minGrayL, -1) || math.IsInf(maxGrayL, 1) || minGrayL > maxGrayL {
		return GrayLine{}, encreerr.ErrDegenerateGamut
	}

	return GrayLine{Lo: minGrayL, Hi: maxGrayL}, nil
}
