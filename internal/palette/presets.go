package palette

import "github.com/AnyUserName/encre/internal/colorspace"

// Built-in device palettes, measured from real hardware. See
// internal/display for how dither indices into Vertices map onto the
// physical controller's color codes; that mapping stays coupled to the
// controller profile and must never be inferred from this declaration
// order.
var (
	// Waveshare73InchEPaperF is the palette for the Waveshare 7.3" ACeP
	// e-paper HAT (black, white, green, blue, red, yellow, orange).
	Waveshare73InchEPaperF *Palette

	// Inky7Color is the palette for Pimoroni's Inky Impression 7-color panel.
	Inky7Color *Palette
)

func init() {
	var err error
	Waveshare73InchEPaperF, err = BuildFromLab(waveshare73Colors, DefaultTargetLightness)
	if err != nil {
		panic("palette: builtin waveshare_7dot3_inch_e_paper_f palette failed to build: " + err.Error())
	}
	Inky7Color, err = BuildFromLab(inky7Colors, DefaultTargetLightness)
	if err != nil {
		panic("palette: builtin inky_7_color palette failed to build: " + err.Error())
	}
}

var waveshare73Colors = []colorspace.CIELab{
	{L: 17.6, A: 8.3, B: -8.9},
	{L: 70.6, A: -0.4, B: 2.4},
	{L: 38.3, A: -26.0, B: 13.4},
	{L: 28.0, A: 9.2, B: -25.0},
	{L: 37.6, A: 35.9, B: 17.4},
	{L: 65.5, A: -6.7, B: 46.4},
	{L: 44.4, A: 24.9, B: 30.0},
}

var inky7Colors = []colorspace.CIELab{
	{L: 15.45, A: 5.08, B: -8.48},
	{L: 73.65, A: -1.01, B: 2.65},
	{L: 42.76, A: -31.94, B: 16.43},
	{L: 28.0, A: 9.2, B: -25.0},
	{L: 49.02, A: 35.9, B: 17.4},
	{L: 68.38, A: -4.95, B: 56.42},
	{L: 55.04, A: 24.9, B: 30.0},
}

// byNameOrder lists the builtin palette names in insertion order for
// reproducible listings.
var byNameOrder = []string{"waveshare_7_color", "inky_7_color"}

// ByName looks up a builtin palette, returning nil if name is unrecognized.
func ByName(name string) *Palette {
	switch name {
	case "waveshare_7_color":
		return Waveshare73InchEPaperF
	case "inky_7_color":
		return Inky7Color
	default:
		return nil
	}
}

// Names returns the recognized builtin palette names in a stable order.
func Names() []string {
	out := make([]string, len(byNameOrder))
	copy(out, byNameOrder)
	return out
}
