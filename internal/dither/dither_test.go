package dither

import (
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

func TestDither_IndicesInRange(t *testing.T) {
	pal, err := palette.BuildFromLab(sevenColorLab(), 80)
	if err != nil {
		t.Fatalf("BuildFromLab: %v", err)
	}

	r := raster.New(20, 20)
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Set(x, y, colorspace.Oklab{L: float64((x + y) % 80), A: float64(x%10) - 5, B: float64(y%10) - 5})
		}
	}

	result := Dither(r, pal, Options{ClippedChromaRecovery: 0.5, ErrorAttenuation: 1})

	if len(result.Indices) != r.Width*r.Height {
		t.Fatalf("index count = %d, want %d", len(result.Indices), r.Width*r.Height)
	}
	for _, idx := range result.Indices {
		if int(idx) >= pal.Size() {
			t.Errorf("index %d out of range for palette size %d", idx, pal.Size())
		}
	}
}

func TestDither_QuantizedMatchesVertices(t *testing.T) {
	pal, err := palette.BuildFromLab(sevenColorLab(), 80)
	if err != nil {
		t.Fatalf("BuildFromLab: %v", err)
	}

	r := raster.New(4, 4)
	for i := range r.Pix {
		r.Pix[i] = pal.Vertices[0]
	}

	result := Dither(r, pal, Options{ClippedChromaRecovery: 0.5})
	for i, idx := range result.Indices {
		if result.Quantized.Pix[i] != pal.Vertices[idx] {
			t.Errorf("pixel %d: quantized value doesn't match its own index's vertex", i)
		}
	}
}

func TestDither_SourceUnmodified(t *testing.T) {
	pal, err := palette.BuildFromLab(sevenColorLab(), 80)
	if err != nil {
		t.Fatalf("BuildFromLab: %v", err)
	}

	r := raster.New(3, 3)
	for i := range r.Pix {
		r.Pix[i] = colorspace.Oklab{L: 50, A: 500, B: 500}
	}
	before := r.Clone()

	Dither(r, pal, Options{ClippedChromaRecovery: 0.5})

	for i := range r.Pix {
		if r.Pix[i] != before.Pix[i] {
			t.Fatalf("Dither mutated its input raster at index %d", i)
		}
	}
}

func TestAttenuate_ZeroEtaIsIdentity(t *testing.T) {
	err := colorspace.Oklab{L: 10, A: 5, B: -5}
	got := attenuate(err, 0)
	if got != err {
		t.Errorf("attenuate with eta=0 = %+v, want %+v", got, err)
	}
}

func TestAttenuate_LargeErrorShrinks(t *testing.T) {
	small := colorspace.Oklab{L: 1, A: 0, B: 0}
	large := colorspace.Oklab{L: 100, A: 0, B: 0}

	smallOut := attenuate(small, 0.5)
	largeOut := attenuate(large, 0.5)

	smallRatio := smallOut.L / small.L
	largeRatio := largeOut.L / large.L
	if largeRatio >= smallRatio {
		t.Errorf("large error attenuation ratio %v should be smaller than small error ratio %v", largeRatio, smallRatio)
	}
}
