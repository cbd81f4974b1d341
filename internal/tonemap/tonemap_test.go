package tonemap

import (
	"math"
	"testing"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/palette"
	"github.com/AnyUserName/encre/internal/raster"
)

func sevenColorLab() []colorspace.CIELab {
	return []colorspace.CIELab{
		{L: 17.6, A: 8.3, B: -8.9},
		{L: 70.6, A: -0.4, B: 2.4},
		{L: 38.3, A: -26.0, B: 13.4},
		{L: 28.0, A: 9.2, B: -25.0},
		{L: 37.6, A: 35.9, B: 17.4},
		{L: 65.5, A: -6.7, B: 46.4},
		{L: 44.4, A: 24.9, B: 30.0},
	}
}

func TestApply_OutputWithinGrayLine(t *testing.T) {
	pal, err := palette.BuildFromLab(sevenColorLab(), 80)
	if err != nil {
		t.Fatalf("BuildFromLab: %v", err)
	}

	r := raster.New(16, 16)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			l := float64(x+y) / float64(r.Width+r.Height-2) * 100
			r.Set(x, y, colorspace.Oklab{L: l, A: 5, B: -5})
		}
	}

	Apply(r, pal, Options{DynamicRange: 1, Contrast: 0.05})

	target := pal.Gray.Scaled(1)
	const slack = 1e-6
	for _, p := range r.Pix {
		if p.L < target.Lo-slack || p.L > target.Hi+slack {
			t.Fatalf("lightness %v outside target range [%v, %v]", p.L, target.Lo, target.Hi)
		}
	}
}

func TestApply_PreservesChroma(t *testing.T) {
	pal, err := palette.BuildFromLab(sevenColorLab(), 80)
	if err != nil {
		t.Fatalf("BuildFromLab: %v", err)
	}

	r := raster.New(4, 4)
	for i := range r.Pix {
		r.Pix[i] = colorspace.Oklab{L: 50, A: 3, B: 4}
	}

	Apply(r, pal, Options{DynamicRange: 1, Contrast: 0.05})

	for _, p := range r.Pix {
		if p.A != 3 || p.B != 4 {
			t.Errorf("a/b channel modified: got (%v, %v), want (3, 4)", p.A, p.B)
		}
	}
}

func TestLightnessPercentiles_Monotonic(t *testing.T) {
	r := raster.New(10, 10)
	for i := range r.Pix {
		r.Pix[i] = colorspace.Oklab{L: float64(i)}
	}

	iv := lightnessPercentiles(r, 0.05, 0.95)
	if iv.Lo >= iv.Hi {
		t.Errorf("percentile interval not increasing: lo=%v hi=%v", iv.Lo, iv.Hi)
	}
}

func TestResolveExposureBrightness_ExplicitPassthrough(t *testing.T) {
	r := raster.New(2, 2)
	e, b := 1.5, 2.0
	gotE, gotB := resolveExposureBrightness(r, palette.GrayLine{Lo: 0, Hi: 100}, &e, &b)
	if gotE != e || gotB != b {
		t.Errorf("explicit exposure/brightness overridden: got (%v, %v), want (%v, %v)", gotE, gotB, e, b)
	}
}

func TestResolveExposureBrightness_FullOverlapIsNoop(t *testing.T) {
	r := raster.New(10, 10)
	for i := range r.Pix {
		if i%2 == 0 {
			r.Pix[i] = colorspace.Oklab{L: 0}
		} else {
			r.Pix[i] = colorspace.Oklab{L: 100}
		}
	}
	target := palette.GrayLine{Lo: 0, Hi: 100}
	e, b := resolveExposureBrightness(r, target, nil, nil)
	if math.Abs(e-1) > 1e-9 || math.Abs(b) > 1e-9 {
		t.Errorf("full-overlap source should leave exposure/brightness at identity, got (%v, %v)", e, b)
	}
}
