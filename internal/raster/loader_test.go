package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/AnyUserName/encre/internal/encrefile"
)

func whiteSquarePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestLoad_WhiteIsNearMaxLightness(t *testing.T) {
	data := whiteSquarePNG(t, 4, 4)
	r, err := Load(bytes.NewReader(data), encrefile.RotationLandscape)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Width != 4 || r.Height != 4 {
		t.Fatalf("dims = %dx%d, want 4x4", r.Width, r.Height)
	}
	c := r.At(0, 0)
	if c.L < 95 {
		t.Errorf("white pixel L = %.2f, want near 100", c.L)
	}
	if c.Chroma() > 1 {
		t.Errorf("white pixel chroma = %.2f, want near 0", c.Chroma())
	}
}

func TestLoad_RotatePortraitSwapsDimensions(t *testing.T) {
	data := whiteSquarePNG(t, 6, 3)
	r, err := Load(bytes.NewReader(data), encrefile.RotationPortrait)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Width != 3 || r.Height != 6 {
		t.Errorf("dims = %dx%d, want 3x6 after 90deg rotation", r.Width, r.Height)
	}
}

func TestLoad_AutomaticRotatesPortraitSources(t *testing.T) {
	data := whiteSquarePNG(t, 3, 6)
	r, err := Load(bytes.NewReader(data), encrefile.RotationAutomatic)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Width != 6 || r.Height != 3 {
		t.Errorf("dims = %dx%d, want 6x3 (tall source rotated to landscape)", r.Width, r.Height)
	}
}

func TestLoad_AutomaticLeavesLandscapeSourcesAlone(t *testing.T) {
	data := whiteSquarePNG(t, 6, 3)
	landscape, err := Load(bytes.NewReader(data), encrefile.RotationLandscape)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	automatic, err := Load(bytes.NewReader(data), encrefile.RotationAutomatic)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if landscape.Width != automatic.Width || landscape.Height != automatic.Height {
		t.Errorf("automatic rotated a wide source: got %dx%d, want %dx%d",
			automatic.Width, automatic.Height, landscape.Width, landscape.Height)
	}
}

func TestResize_ProducesRequestedDimensions(t *testing.T) {
	data := whiteSquarePNG(t, 20, 10)
	r, err := Load(bytes.NewReader(data), encrefile.RotationLandscape)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	resized := Resize(r, 10, 5)
	if resized.Width != 10 || resized.Height != 5 {
		t.Errorf("dims = %dx%d, want 10x5", resized.Width, resized.Height)
	}
}

func TestLoad_BadData(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("not an image")), encrefile.RotationLandscape)
	if err == nil {
		t.Fatal("expected error decoding garbage data")
	}
}
