// Package align implements the optional translational pre-alignment pass that
// runs before pixel comparison. It compensates for whole-image shifts (for
// example a scrollbar pushing a render off by a few pixels) that would
// otherwise be misclassified as widespread pixel difference.
package align

import (
	"fmt"
	"image"
	"math"

	"designdiff/internal/imaging"
)

// Options configures the alignment search.
type Options struct {
	Enabled         bool // Run the alignment pass at all
	MaxShift        int  // Maximum offset magnitude in full-resolution pixels
	DownscaleMaxDim int  // Longer side of the downscaled search images
	Debug           bool // Print search diagnostics
}

// DefaultOptions returns default alignment options.
func DefaultOptions() Options {
	return Options{
		Enabled:         true,
		MaxShift:        32,
		DownscaleMaxDim: 256,
	}
}

// Offset is the winning translation, in full-resolution pixels.
type Offset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Align shifts the implementation image to best overlay the reference.
// Returns the aligned implementation and the applied offset, or the
// implementation unchanged and a nil offset when alignment is disabled,
// MaxShift is zero, or the reference has zero area.
func Align(reference, implementation *image.RGBA, opts Options) (*image.RGBA, *Offset, error) {
	refW := reference.Bounds().Dx()
	refH := reference.Bounds().Dy()
	if !opts.Enabled || opts.MaxShift == 0 || refW == 0 || refH == 0 {
		return implementation, nil, nil
	}

	// Work on a reference-sized implementation so offsets map 1:1.
	impl := implementation
	if implementation.Bounds().Dx() != refW || implementation.Bounds().Dy() != refH {
		impl = imaging.Resample(implementation, refW, refH)
	}

	refSmall, scale := imaging.Downscale(reference, opts.DownscaleMaxDim)
	implSmall, _ := imaging.Downscale(impl, opts.DownscaleMaxDim)

	searchShift := int(float64(opts.MaxShift)*scale + 0.5)
	if searchShift < 1 {
		searchShift = 1
	}

	refLum := imaging.Luminance(refSmall)
	implLum := imaging.Luminance(implSmall)
	w := refSmall.Bounds().Dx()
	h := refSmall.Bounds().Dy()

	bestDX, bestDY := 0, 0
	bestScore := math.MaxFloat64
	for dy := -searchShift; dy <= searchShift; dy++ {
		for dx := -searchShift; dx <= searchShift; dx++ {
			score, ok := offsetScore(refLum, implLum, w, h, dx, dy)
			if !ok {
				continue
			}
			if score < bestScore ||
				(score == bestScore && abs(dx)+abs(dy) < abs(bestDX)+abs(bestDY)) {
				bestScore = score
				bestDX, bestDY = dx, dy
			}
		}
	}

	if opts.Debug {
		fmt.Printf("align: search shift=%d best=(%d,%d) score=%.4f scale=%.3f\n",
			searchShift, bestDX, bestDY, bestScore, scale)
	}

	// Rescale the winning offset back to full resolution and clamp.
	fullDX := clampInt(roundToInt(float64(bestDX)/scale), -opts.MaxShift, opts.MaxShift)
	fullDY := clampInt(roundToInt(float64(bestDY)/scale), -opts.MaxShift, opts.MaxShift)

	if fullDX == 0 && fullDY == 0 {
		return impl, &Offset{}, nil
	}

	aligned := imaging.CompositeShifted(reference, impl, fullDX, fullDY)
	return aligned, &Offset{DX: fullDX, DY: fullDY}, nil
}

// offsetScore computes the mean absolute luminance difference between the
// reference and the implementation shifted by (dx, dy), over the overlapping
// region only. Returns ok=false when the shift leaves no overlap.
func offsetScore(ref, impl []float64, w, h, dx, dy int) (float64, bool) {
	x0 := max(0, dx)
	y0 := max(0, dy)
	x1 := min(w, w+dx)
	y1 := min(h, h+dy)
	if x0 >= x1 || y0 >= y1 {
		return 0, false
	}

	var sum float64
	count := 0
	for y := y0; y < y1; y++ {
		refRow := ref[y*w:]
		implRow := impl[(y-dy)*w:]
		for x := x0; x < x1; x++ {
			d := refRow[x] - implRow[x-dx]
			if d < 0 {
				d = -d
			}
			sum += d
			count++
		}
	}
	return sum / float64(count), true
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
