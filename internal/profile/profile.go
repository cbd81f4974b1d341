// Package profile holds named device profiles: the fixed geometry and
// default tuning parameters for a target e-paper panel, mirroring the
// palette_by_name / rotation_by_name tables of the original firmware
// headers.
package profile

import (
	"github.com/AnyUserName/encre/internal/encrefile"
	"github.com/AnyUserName/encre/internal/palette"
)

// Defaults match the reference device's documented defaults: 80 target
// luminance (baked into the builtin palettes), 0.95 dynamic range, 0.065
// contrast, automatic rotation, and full clipped-chroma recovery.
const (
	DefaultDynamicRange          = 0.95
	DefaultContrast              = 0.065
	DefaultSharpening            = 4.0
	DefaultClippedChromaRecovery = 1.0
	DefaultErrorAttenuation      = 0.0
	NoExposureChange             = 1.0
	NoBrightnessChange           = 0.0
)

// Profile describes a target display: its fixed pixel geometry, which
// builtin palette it reproduces, and the tone-mapping/dithering defaults
// tuned for that panel.
type Profile struct {
	Name                  string
	Width, Height         int
	PaletteName           string
	Rotation              encrefile.Rotation
	DynamicRange          float64
	Contrast              float64
	Sharpening            float64
	ClippedChromaRecovery float64
	ErrorAttenuation      float64
}

// Palette resolves the profile's named palette, or nil if unrecognized.
func (p Profile) Palette() *palette.Palette {
	return palette.ByName(p.PaletteName)
}

var profiles = map[string]Profile{
	"waveshare_7dot3_inch_e_paper_f": {
		Name:                  "waveshare_7dot3_inch_e_paper_f",
		Width:                 800,
		Height:                480,
		PaletteName:           "waveshare_7_color",
		Rotation:              encrefile.RotationAutomatic,
		DynamicRange:          DefaultDynamicRange,
		Contrast:              DefaultContrast,
		Sharpening:            DefaultSharpening,
		ClippedChromaRecovery: DefaultClippedChromaRecovery,
		ErrorAttenuation:      DefaultErrorAttenuation,
	},
	"inky_impression_7_color": {
		Name:                  "inky_impression_7_color",
		Width:                 800,
		Height:                480,
		PaletteName:           "inky_7_color",
		Rotation:              encrefile.RotationAutomatic,
		DynamicRange:          DefaultDynamicRange,
		Contrast:              DefaultContrast,
		Sharpening:            DefaultSharpening,
		ClippedChromaRecovery: DefaultClippedChromaRecovery,
		ErrorAttenuation:      DefaultErrorAttenuation,
	},
}

// byNameOrder keeps listings reproducible.
var byNameOrder = []string{"waveshare_7dot3_inch_e_paper_f", "inky_impression_7_color"}

// Get returns a named profile, falling back to
// waveshare_7dot3_inch_e_paper_f when name is unrecognized.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles["waveshare_7dot3_inch_e_paper_f"]
	p.Name = name
	return p
}

// Names returns the recognized builtin profile names in a stable order.
func Names() []string {
	out := make([]string, len(byNameOrder))
	copy(out, byNameOrder)
	return out
}
