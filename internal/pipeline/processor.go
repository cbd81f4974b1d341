package pipeline

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/AnyUserName/encre/internal/convert"
	"github.com/AnyUserName/encre/internal/encoder"
	"github.com/AnyUserName/encre/internal/hasher"
	"github.com/AnyUserName/encre/internal/manifest"
	"github.com/AnyUserName/encre/internal/raster"
	"github.com/AnyUserName/encre/internal/thumbhash"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// processResult holds the result of converting a single source image.
type processResult struct {
	key   string
	asset manifest.Asset
	err   error
}

// processImage handles a single source image: decode, thumbhash, convert
// through the color pipeline, write the .encre file, and optionally
// render a preview.
func processImage(src Source, cfg Config, registry *encoder.Registry) processResult {
	result := processResult{key: src.Key}

	pal := cfg.Profile.Palette()
	if pal == nil {
		result.err = fmt.Errorf("profile %q: unknown palette %q", cfg.Profile.Name, cfg.Profile.PaletteName)
		return result
	}

	f, err := os.Open(src.AbsPath)
	if err != nil {
		result.err = fmt.Errorf("open %s: %w", src.RelPath, err)
		return result
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		result.err = fmt.Errorf("decode %s: %w", src.RelPath, err)
		return result
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	hasAlpha := thumbhash.HasAlpha(img)
	hash := thumbhash.Encode(img)
	avg := computeAvgColor(img)

	result.asset = manifest.Asset{
		Original: manifest.OriginalInfo{
			Width:    origW,
			Height:   origH,
			Format:   src.Format,
			Size:     src.Size,
			HasAlpha: hasAlpha,
		},
		ThumbHash:   base64.StdEncoding.EncodeToString(hash),
		AspectRatio: float64(origW) / float64(origH),
		AvgColor:    &avg,
	}

	r := raster.FromImage(img, cfg.Profile.Rotation)
	res, err := convert.Raster(r, convert.Options{
		Width:                 cfg.Profile.Width,
		Height:                cfg.Profile.Height,
		Palette:               pal,
		Rotation:              cfg.Profile.Rotation,
		DynamicRange:          cfg.Profile.DynamicRange,
		Contrast:              cfg.Profile.Contrast,
		Sharpening:            cfg.Profile.Sharpening,
		ClippedChromaRecovery: cfg.Profile.ClippedChromaRecovery,
		ErrorAttenuation:      cfg.Profile.ErrorAttenuation,
	})
	if err != nil {
		result.err = fmt.Errorf("convert %s: %w", src.RelPath, err)
		return result
	}

	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755)
	}

	var encreBuf bytes.Buffer
	if err := convert.WriteEncreFile(&encreBuf, res, pal, cfg.Profile.Rotation); err != nil {
		result.err = fmt.Errorf("encode %s: %w", src.RelPath, err)
		return result
	}

	encrePath := filepath.ToSlash(filepath.Join(keyDir, filepath.Base(src.Key)+".encre"))
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, encrePath), encreBuf.Bytes(), 0o644); err != nil {
		result.err = fmt.Errorf("write %s: %w", encrePath, err)
		return result
	}

	result.asset.Encre = manifest.EncreInfo{
		Width:        res.Width,
		Height:       res.Height,
		PaletteName:  cfg.Profile.PaletteName,
		PaletteSize:  pal.Size(),
		BitsPerColor: pal.BitsPerColor(),
		Rotation:     int(cfg.Profile.Rotation),
		Size:         int64(encreBuf.Len()),
		Hash:         hasher.ContentHash(encreBuf.Bytes(), 16),
		Path:         encrePath,
	}

	if cfg.Preview {
		preview, err := renderPreview(res, registry, keyDir, src.Key, cfg.OutputDir)
		if err != nil {
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[encre] warn: preview %s: %v\n", src.Key, err)
			}
		} else {
			result.asset.Preview = preview
		}
	}

	return result
}

// renderPreview encodes the dithered output raster back to a viewable
// image using the best available format in registry, writing it alongside
// the .encre file.
func renderPreview(res *convert.Result, registry *encoder.Registry, keyDir, key, outputDir string) (*manifest.Preview, error) {
	format, enc := registry.Best()
	if enc == nil {
		return nil, fmt.Errorf("no preview encoder available")
	}

	data, err := enc.Encode(res.Quantized.ToImage(), 90)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}

	previewPath := filepath.ToSlash(filepath.Join(keyDir, filepath.Base(key)+".preview."+enc.Extension()))
	if err := os.WriteFile(filepath.Join(outputDir, previewPath), data, 0o644); err != nil {
		return nil, fmt.Errorf("write preview: %w", err)
	}

	return &manifest.Preview{
		Format: format,
		Size:   int64(len(data)),
		Hash:   hasher.ContentHash(data, 16),
		Path:   previewPath,
	}, nil
}

func computeAvgColor(img image.Image) [3]uint8 {
	bounds := img.Bounds()
	w := uint64(bounds.Dx())
	h := uint64(bounds.Dy())
	count := w * h
	if count == 0 {
		return [3]uint8{0, 0, 0}
	}
	var rSum, gSum, bSum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += uint64(r >> 8)
			gSum += uint64(g >> 8)
			bSum += uint64(b >> 8)
		}
	}
	return [3]uint8{
		uint8(rSum / count),
		uint8(gSum / count),
		uint8(bSum / count),
	}
}
