// Package e2e exercises the batch pipeline against real fixture files on
// disk, the way gen_fixtures.go's comment describes but never wired up.
package e2e

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/encre/internal/pipeline"
	"github.com/AnyUserName/encre/internal/profile"
)

func writeFixturePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func writeFixtureJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// TestBuild_EndToEnd runs the full batch pipeline over a small tree of
// generated fixtures and checks that every source produces an .encre file
// plus a manifest entry that matches it.
func TestBuild_EndToEnd(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	writeFixturePNG(t, filepath.Join(inDir, "banner.png"), 64, 36)
	if err := os.MkdirAll(filepath.Join(inDir, "cards"), 0o755); err != nil {
		t.Fatalf("mkdir cards: %v", err)
	}
	writeFixtureJPEG(t, filepath.Join(inDir, "cards", "card-1.jpg"), 48, 32)
	writeFixtureJPEG(t, filepath.Join(inDir, "cards", "card-2.jpg"), 32, 48)

	p := pipeline.New(pipeline.Config{
		InputDir:  inDir,
		OutputDir: outDir,
		Profile:   profile.Get("waveshare_7dot3_inch_e_paper_f"),
		Workers:   2,
		Preview:   true,
	})

	m, err := p.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(m.Assets) != 3 {
		t.Fatalf("asset count = %d, want 3", len(m.Assets))
	}

	for key, asset := range m.Assets {
		encrePath := filepath.Join(outDir, asset.Encre.Path)
		info, err := os.Stat(encrePath)
		if err != nil {
			t.Errorf("asset %q: stat %s: %v", key, encrePath, err)
			continue
		}
		if info.Size() != int64(asset.Encre.Size) {
			t.Errorf("asset %q: file size %d, manifest says %d", key, info.Size(), asset.Encre.Size)
		}
		if asset.Preview != nil {
			if _, err := os.Stat(filepath.Join(outDir, asset.Preview.Path)); err != nil {
				t.Errorf("asset %q: stat preview %s: %v", key, asset.Preview.Path, err)
			}
		}
	}

	if m.BuildInfo == nil || m.BuildInfo.Workers != 2 {
		t.Errorf("BuildInfo = %+v, want Workers=2", m.BuildInfo)
	}
}
