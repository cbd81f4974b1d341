package cmd

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/AnyUserName/encre/internal/convert"
	"github.com/AnyUserName/encre/internal/encrefile"
	"github.com/AnyUserName/encre/internal/palette"
	"github.com/AnyUserName/encre/internal/raster"
	"github.com/spf13/cobra"
)

var (
	convertWidth                 uint32
	convertHeight                uint32
	convertOut                   string
	convertPreview               string
	convertPaletteName           string
	convertDynamicRange          float64
	convertExposure              float64
	convertBrightness            float64
	convertContrast              float64
	convertSharpening            float64
	convertClippedChromaRecovery float64
	convertRotation              string
)

var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Convert a single image into an encre file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.Uint32VarP(&convertWidth, "width", "w", 800, "target width")
	f.Uint32VarP(&convertHeight, "height", "h", 480, "target height")
	f.StringVarP(&convertOut, "out", "o", "-", "output path, or \"-\" for <input>.encre")
	f.StringVarP(&convertPreview, "preview", "p", "", "also write a human-viewable preview here, or \"-\" for <input>.preview.png")
	f.StringVar(&convertPaletteName, "palette", "waveshare_7_color", "builtin palette name")
	f.Float64VarP(&convertDynamicRange, "dynamic-range", "v", 0.95, "fraction of the gray line to target, in [0,1]")
	f.Float64VarP(&convertExposure, "exposure", "e", 0, "exposure correction ratio (0 = auto)")
	f.Float64VarP(&convertBrightness, "brightness", "b", 0, "brightness correction shift (0 = auto)")
	f.Float64VarP(&convertContrast, "contrast", "c", 0.065, "sigmoid contrast coefficient")
	f.Float64VarP(&convertSharpening, "sharpening", "s", 4, "unsharp-mask strength applied before dithering")
	f.Float64VarP(&convertClippedChromaRecovery, "clipped-chroma-recovery", "g", 1, "adaptive-alpha gamut clamp strength, in [0,1]")
	f.StringVarP(&convertRotation, "rotation", "r", "automatic", "automatic|landscape|portrait|landscape-upside-down|portrait-upside-down")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	pal := palette.ByName(convertPaletteName)
	if pal == nil {
		return fmt.Errorf("unknown palette %q (available: %s)", convertPaletteName, strings.Join(palette.Names(), ", "))
	}

	rotation, err := parseRotation(convertRotation)
	if err != nil {
		return err
	}

	var exposure, brightness *float64
	if convertExposure != 0 {
		exposure = &convertExposure
	}
	if convertBrightness != 0 {
		brightness = &convertBrightness
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer f.Close()

	result, err := convert.Image(f, convert.Options{
		Width:                 int(convertWidth),
		Height:                int(convertHeight),
		Palette:               pal,
		Rotation:              rotation,
		DynamicRange:          convertDynamicRange,
		Contrast:              convertContrast,
		Exposure:              exposure,
		Brightness:            brightness,
		Sharpening:            convertSharpening,
		ClippedChromaRecovery: convertClippedChromaRecovery,
	})
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	outPath := convertOut
	if outPath == "-" {
		outPath = strings.TrimSuffix(inputPath, fileExt(inputPath)) + ".encre"
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if err := convert.WriteEncreFile(out, result, pal, rotation); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logVerbose("wrote %s (%dx%d, palette=%s)", outPath, result.Width, result.Height, convertPaletteName)

	if convertPreview != "" {
		previewPath := convertPreview
		if previewPath == "-" {
			previewPath = strings.TrimSuffix(inputPath, fileExt(inputPath)) + ".preview.png"
		}
		if err := writePreviewPNG(result.Quantized, previewPath); err != nil {
			return fmt.Errorf("write preview %s: %w", previewPath, err)
		}
		logVerbose("wrote preview %s", previewPath)
	}

	return nil
}

func parseRotation(s string) (encrefile.Rotation, error) {
	switch s {
	case "automatic":
		return encrefile.RotationAutomatic, nil
	case "landscape":
		return encrefile.RotationLandscape, nil
	case "portrait":
		return encrefile.RotationPortrait, nil
	case "landscape-upside-down":
		return encrefile.RotationLandscapeUpsideDown, nil
	case "portrait-upside-down":
		return encrefile.RotationPortraitUpsideDown, nil
	default:
		return 0, fmt.Errorf("unrecognized rotation %q", s)
	}
}

func fileExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func writePreviewPNG(r *raster.Raster, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, r.ToImage())
}
