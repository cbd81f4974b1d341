package colorspace

import (
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []XYZ{
		{X: 0, Y: 0, Z: 0},
		{X: 95.047, Y: 100, Z: 108.883}, // D65 white
		{X: 41.24, Y: 21.26, Z: 1.93},   // saturated red-ish
		{X: 1, Y: 50, Z: 2},
	}

	for _, v := range cases {
		lab := ToOklab(v)
		back := ToXYZ(lab)

		tol := 1e-3 * math.Max(1, math.Sqrt(v.X*v.X+v.Y*v.Y+v.Z*v.Z))
		if math.Abs(back.X-v.X) > tol || math.Abs(back.Y-v.Y) > tol || math.Abs(back.Z-v.Z) > tol {
			t.Errorf("round trip %v -> %v -> %v exceeds tolerance %v", v, lab, back, tol)
		}
	}
}

func TestChroma(t *testing.T) {
	o := Oklab{L: 50, A: 3, B: 4}
	if got := o.Chroma(); math.Abs(got-5) > 1e-9 {
		t.Errorf("chroma = %v, want 5", got)
	}
}
