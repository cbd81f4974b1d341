// Package tonemap extracts an Oklab raster's lightness channel, estimates
// exposure/brightness from its histogram, and compresses it into the
// palette's gray line with a sigmoid.
package tonemap

import (
	"math"

	"github.com/AnyUserName/encre/internal/palette"
	"github.com/AnyUserName/encre/internal/raster"
)

// histogramBins is the bin count for the percentile histogram. Only
// percentiles are read back out, so the exact count doesn't affect results,
// just their granularity.
const histogramBins = 256

const outlierThreshold = 0.05

// Options configures a tone-mapping pass. Exposure and Brightness are
// pointers so "absent" (spec's automatic estimation) is representable;
// nil means auto-compute.
type Options struct {
	DynamicRange float64
	Exposure     *float64
	Brightness   *float64
	Contrast     float64
}

// Apply tone-maps r's L channel in place against pal's gray line. The a/b
// channels pass through untouched.
func Apply(r *raster.Raster, pal *palette.Palette, opts Options) {
	target := pal.Gray.Scaled(opts.DynamicRange)

	exposure, brightness := resolveExposureBrightness(r, target, opts.Exposure, opts.Brightness)

	midpoint := (target.Lo + target.Hi) / 2
	span := target.Hi - target.Lo

	for i := range r.Pix {
		l := r.Pix[i].L*exposure + brightness
		r.Pix[i].L = target.Lo + span/(1+math.Exp(opts.Contrast*(midpoint-l)))
	}
}

func resolveExposureBrightness(r *raster.Raster, target palette.GrayLine, exposure, brightness *float64) (float64, float64) {
	if exposure != nil && brightness != nil {
		return *exposure, *brightness
	}

	source := lightnessPercentiles(r, outlierThreshold, 1-outlierThreshold)

	targetRange := target.Hi - target.Lo
	overlap := math.Max(0, math.Min(source.Hi, target.Hi)-math.Max(source.Lo, target.Lo)) / targetRange

	resolvedExposure := 1.0
	resolvedBrightness := 0.0
	if exposure != nil {
		resolvedExposure = *exposure
	}
	if brightness != nil {
		resolvedBrightness = *brightness
	}

	if overlap >= 1 {
		return resolvedExposure, resolvedBrightness
	}

	if exposure == nil {
		sourceRange := source.Hi - source.Lo
		ratio := clamp(targetRange/sourceRange, 0.75, 1.25)
		resolvedExposure = lerp(ratio, 1.0, overlap)
	}

	if brightness == nil {
		shiftLo := target.Lo - resolvedExposure*source.Lo
		shiftHi := target.Hi - resolvedExposure*source.Hi
		shift := shiftLo
		if math.Abs(shiftHi) < math.Abs(shiftLo) {
			shift = shiftHi
		}
		resolvedBrightness = lerp(shift, 0.0, overlap)
	}

	return resolvedExposure, resolvedBrightness
}

type interval struct{ Lo, Hi float64 }

// lightnessPercentiles returns the loPercent/hiPercent percentiles of r's L
// channel, computed via a fixed-bin histogram.
func lightnessPercentiles(r *raster.Raster, loPercent, hiPercent float64) interval {
	lMin, lMax := math.Inf(1), math.Inf(-1)
	for _, p := range r.Pix {
		if p.L < lMin {
			lMin = p.L
		}
		if p.L > lMax {
			lMax = p.L
		}
	}
	if lMax <= lMin {
		return interval{Lo: lMin, Hi: lMax}
	}

	var hist [histogramBins]uint64
	span := lMax - lMin
	for _, p := range r.Pix {
		bin := int((p.L - lMin) / span * float64(histogramBins-1))
		if bin < 0 {
			bin = 0
		} else if bin >= histogramBins {
			bin = histogramBins - 1
		}
		hist[bin]++
	}

	total := uint64(len(r.Pix))
	loBin := percentileBin(hist[:], total, loPercent)
	hiBin := percentileBin(hist[:], total, hiPercent)

	return interval{
		Lo: lMin + float64(loBin)/float64(histogramBins-1)*span,
		Hi: lMin + float64(hiBin)/float64(histogramBins-1)*span,
	}
}

func percentileBin(hist []uint64, total uint64, percent float64) int {
	target := percent * float64(total)
	var prefix uint64
	for bin, count := range hist {
		prefix += count
		if float64(prefix) >= target {
			return bin
		}
	}
	return len(hist) - 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
