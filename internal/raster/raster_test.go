package raster

import (
	"testing"

	"github.com/AnyUserName/encre/internal/colorspace"
)

func solidRaster(w, h int, v colorspace.Oklab) *Raster {
	r := New(w, h)
	for i := range r.Pix {
		r.Pix[i] = v
	}
	return r
}

func TestResizeToFit_PreservesAspectWithinBox(t *testing.T) {
	src := solidRaster(4, 2, colorspace.Oklab{L: 50})
	fitted := ResizeToFit(src, 10, 10)
	if fitted.Width != 10 || fitted.Height != 5 {
		t.Fatalf("dims = %dx%d, want 10x5", fitted.Width, fitted.Height)
	}
}

func TestLetterbox_CentersOnBackground(t *testing.T) {
	white := colorspace.Oklab{L: 100}
	black := colorspace.Oklab{L: 0}
	src := solidRaster(10, 5, white)

	padded := Letterbox(src, 10, 10, black)
	if padded.Width != 10 || padded.Height != 10 {
		t.Fatalf("dims = %dx%d, want 10x10", padded.Width, padded.Height)
	}

	if padded.At(0, 0).L != black.L {
		t.Errorf("corner = %+v, want background %+v", padded.At(0, 0), black)
	}
	if padded.At(5, 5).L != white.L {
		t.Errorf("center = %+v, want source %+v", padded.At(5, 5), white)
	}
}
