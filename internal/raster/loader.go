package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/AnyUserName/encre/internal/colorspace"
	"github.com/AnyUserName/encre/internal/encrefile"
	"github.com/AnyUserName/encre/internal/encreerr"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes r into a Raster in Oklab space, applying the requested
// rotation. rotation == encrefile.RotationAutomatic picks landscape or
// portrait to match the image's own orientation, never the target
// device's, since no target dimensions are known at this call site;
// callers that need device-relative automatic rotation should compare
// the decoded bounds against the device profile themselves and pass an
// explicit Rotation.
func Load(r io.Reader, rotation encrefile.Rotation) (*Raster, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("raster: decode: %w", encreerr.ErrLoaderFailure)
	}
	return FromImage(img, rotation), nil
}

// FromImage converts a decoded image.Image into a Raster, applying rotation.
func FromImage(img image.Image, rotation encrefile.Rotation) *Raster {
	img = applyRotation(img, rotation)
	return fromLinearImage(img)
}

// Resize scales src to exactly width x height using Lanczos resampling.
func Resize(r *Raster, width, height int) *Raster {
	img := r.toRGBAImage()
	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	return fromLinearImage(resized)
}

// Sharpen applies an unsharp mask with the given Gaussian sigma. sigma <= 0
// is a no-op, since it would otherwise sharpen with zero radius.
func Sharpen(r *Raster, sigma float64) *Raster {
	if sigma <= 0 {
		return r
	}
	img := r.toRGBAImage()
	sharpened := imaging.Sharpen(img, sigma)
	return fromLinearImage(sharpened)
}

func applyRotation(img image.Image, rotation encrefile.Rotation) image.Image {
	switch rotation {
	case encrefile.RotationLandscape:
		return img
	case encrefile.RotationPortrait:
		return imaging.Rotate90(img)
	case encrefile.RotationLandscapeUpsideDown:
		return imaging.Rotate180(img)
	case encrefile.RotationPortraitUpsideDown:
		return imaging.Rotate270(img)
	default: // RotationAutomatic
		b := img.Bounds()
		if b.Dy() > b.Dx() {
			return imaging.Rotate90(img)
		}
		return img
	}
}

// fromLinearImage converts every pixel to Oklab via the sRGB-to-linear
// approximation and the standard D65 linear-RGB-to-XYZ matrix. There is no
// ICC profile handling; a pragmatic, fixed D65 transform stands in for the
// external collaborator's real color-managed decode.
func fromLinearImage(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := New(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r8, g8, b8, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			xyz := srgb8ToXYZ(uint8(r8>>8), uint8(g8>>8), uint8(b8>>8))
			out.Set(x, y, colorspace.ToOklab(xyz))
		}
	}
	return out
}

// ToImage renders a Raster back to an 8-bit sRGB image, e.g. for preview
// encoding or placeholder-hash generation.
func (r *Raster) ToImage() image.Image {
	return r.toRGBAImage()
}

// toRGBAImage renders a Raster back to an 8-bit sRGB image so the imaging
// package's resize filters can operate on it.
func (r *Raster) toRGBAImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := r.At(x, y)
			xyz := colorspace.ToXYZ(c)
			r8, g8, b8 := xyzToSRGB8(xyz)
			i := img.PixOffset(x, y)
			img.Pix[i] = r8
			img.Pix[i+1] = g8
			img.Pix[i+2] = b8
			img.Pix[i+3] = 0xFF
		}
	}
	return img
}

func srgbToLinear(c float64) float64 {
	c /= 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		c = c * 12.92
	} else {
		c = 1.055*math.Pow(c, 1/2.4) - 0.055
	}
	return clamp01(c) * 255
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// d65LinearToXYZ is the standard sRGB/D65 linear-RGB-to-XYZ matrix,
// Y scaled to 100.
var d65LinearToXYZ = [3][3]float64{
	{41.24, 35.76, 18.05},
	{21.26, 71.52, 7.22},
	{1.93, 11.92, 95.05},
}

var d65XYZToLinear = invertRows(d65LinearToXYZ)

func srgb8ToXYZ(r8, g8, b8 uint8) colorspace.XYZ {
	lr := srgbToLinear(float64(r8))
	lg := srgbToLinear(float64(g8))
	lb := srgbToLinear(float64(b8))
	m := d65LinearToXYZ
	return colorspace.XYZ{
		X: m[0][0]*lr + m[0][1]*lg + m[0][2]*lb,
		Y: m[1][0]*lr + m[1][1]*lg + m[1][2]*lb,
		Z: m[2][0]*lr + m[2][1]*lg + m[2][2]*lb,
	}
}

func xyzToSRGB8(xyz colorspace.XYZ) (uint8, uint8, uint8) {
	m := d65XYZToLinear
	lr := m[0][0]*xyz.X + m[0][1]*xyz.Y + m[0][2]*xyz.Z
	lg := m[1][0]*xyz.X + m[1][1]*xyz.Y + m[1][2]*xyz.Z
	lb := m[2][0]*xyz.X + m[2][1]*xyz.Y + m[2][2]*xyz.Z
	return uint8(linearToSRGB(lr)), uint8(linearToSRGB(lg)), uint8(linearToSRGB(lb))
}

func invertRows(m [3][3]float64) [3][3]float64 {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	inv := 1 / det

	return [3][3]float64{
		{(e*i - f*h) * inv, (c*h - b*i) * inv, (b*f - c*e) * inv},
		{(f*g - d*i) * inv, (a*i - c*g) * inv, (c*d - a*f) * inv},
		{(d*h - e*g) * inv, (b*g - a*h) * inv, (a*e - b*d) * inv},
	}
}
