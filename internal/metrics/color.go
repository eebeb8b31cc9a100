package metrics

import (
	"fmt"
	"image"
	"sort"

	"designdiff/internal/imaging"
	"designdiff/internal/view"
	"designdiff/pkg/colorutil"
	"designdiff/pkg/geometry"
)

// ColorConfig configures the color palette metric.
type ColorConfig struct {
	SampleStride int // Grid sampling stride in pixels
	ClusterCount int // k for k-means palette extraction
	Iterations   int // k-means refinement iterations
	Debug        bool
}

// DefaultColorConfig returns default color metric settings.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		SampleStride: 4,
		ClusterCount: 5,
		Iterations:   8,
	}
}

// ColorMetric compares the dominant color palettes of the two screenshots.
type ColorMetric struct {
	Config ColorConfig
}

// paletteEntry is one dominant color with its sample weight.
type paletteEntry struct {
	lab    colorutil.Lab
	weight float64
}

// Compute extracts a weighted dominant palette from each screenshot via
// k-means in Lab space and scores how well every reference color has a close
// implementation counterpart.
func (m *ColorMetric) Compute(reference, implementation *view.NormalizedView) (*ColorResult, error) {
	refImg, err := imaging.Load(reference.ScreenshotPath)
	if err != nil {
		return nil, &DecodeError{Path: reference.ScreenshotPath, Err: err}
	}
	implImg, err := imaging.Load(implementation.ScreenshotPath)
	if err != nil {
		return nil, &DecodeError{Path: implementation.ScreenshotPath, Err: err}
	}

	ref := imaging.ToRGBA(refImg)
	impl := imaging.ToRGBA(implImg)

	refPalette := m.extractPalette(ref)
	implPalette := m.extractPalette(impl)
	if len(refPalette) == 0 || len(implPalette) == 0 {
		return &ColorResult{Score: 1.0}, nil
	}

	// Reward reference colors that have any close implementation counterpart,
	// independent of weight ordering on the implementation side.
	var score float64
	for _, entry := range refPalette {
		_, dist := nearestEntry(implPalette, entry.lab)
		match := 1.0 - dist/25.0
		if match < 0 {
			match = 0
		}
		score += entry.weight * match
	}
	if score > 1 {
		score = 1
	}

	diffs := m.paletteDiffs(refPalette, implPalette)

	// A palette of near-identical matches can still hide a genuine shift
	// outside the dominant clusters; fall back to the whole-image average.
	if allNearZero(diffs) {
		refAvg := imaging.AverageRGB(ref)
		implAvg := imaging.AverageRGB(impl)
		refLab := colorutil.RGBToLab(refAvg.R, refAvg.G, refAvg.B)
		implLab := colorutil.RGBToLab(implAvg.R, implAvg.G, implAvg.B)
		delta := refLab.Distance(implLab)
		diffs = append(diffs, ColorDiff{
			Kind:      PrimaryColorShift,
			Bounds:    geometry.Rect{Width: 1, Height: 1},
			Severity:  deltaSeverity(delta),
			RefColor:  colorutil.HexString(refAvg.R, refAvg.G, refAvg.B),
			ImplColor: colorutil.HexString(implAvg.R, implAvg.G, implAvg.B),
			DeltaE:    delta,
		})
	}

	// Palette similarity alone can be misleadingly high when a small but
	// visible shift exists; cap the score if any diff shows a real difference.
	for _, d := range diffs {
		if d.RefColor != d.ImplColor || d.DeltaE > 1.0 {
			if score > 0.8 {
				score = 0.8
			}
			break
		}
	}

	if m.Config.Debug {
		fmt.Printf("color: palette ref=%d impl=%d score=%.4f diffs=%d\n",
			len(refPalette), len(implPalette), score, len(diffs))
	}

	return &ColorResult{Score: score, Diffs: diffs}, nil
}

// extractPalette grid-samples the image, converts to Lab, and clusters with
// deterministic k-means. Weights sum to 1.
func (m *ColorMetric) extractPalette(img *image.RGBA) []paletteEntry {
	stride := m.Config.SampleStride
	if stride < 1 {
		stride = 4
	}
	samples := imaging.GridSample(img, stride)
	if len(samples) == 0 {
		return nil
	}

	labs := make([]colorutil.Lab, len(samples))
	for i, s := range samples {
		labs[i] = colorutil.RGBToLab(s.R, s.G, s.B)
	}

	k := m.Config.ClusterCount
	if k < 1 {
		k = 5
	}
	if k > len(labs) {
		k = len(labs)
	}

	centroids, weights := kmeansLab(labs, k, m.Config.Iterations)

	entries := make([]paletteEntry, 0, len(centroids))
	for i := range centroids {
		if weights[i] == 0 {
			continue
		}
		entries = append(entries, paletteEntry{lab: centroids[i], weight: weights[i]})
	}
	return entries
}

// kmeansLab runs fixed-iteration k-means over Lab samples. Centroids are
// seeded from evenly spaced samples in scan order, so results are fully
// deterministic for the same input.
func kmeansLab(samples []colorutil.Lab, k, iterations int) ([]colorutil.Lab, []float64) {
	if iterations < 1 {
		iterations = 8
	}
	centroids := make([]colorutil.Lab, k)
	step := len(samples) / k
	if step < 1 {
		step = 1
	}
	for i := 0; i < k; i++ {
		centroids[i] = samples[(i*step)%len(samples)]
	}

	assignment := make([]int, len(samples))
	counts := make([]int, k)
	sums := make([]colorutil.Lab, k)

	for iter := 0; iter < iterations; iter++ {
		for i := range counts {
			counts[i] = 0
			sums[i] = colorutil.Lab{}
		}
		for i, s := range samples {
			best := 0
			bestDist := s.Distance(centroids[0])
			for c := 1; c < k; c++ {
				if d := s.Distance(centroids[c]); d < bestDist {
					bestDist = d
					best = c
				}
			}
			assignment[i] = best
			counts[best]++
			sums[best].L += s.L
			sums[best].A += s.A
			sums[best].B += s.B
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			n := float64(counts[c])
			centroids[c] = colorutil.Lab{L: sums[c].L / n, A: sums[c].A / n, B: sums[c].B / n}
		}
	}

	weights := make([]float64, k)
	total := float64(len(samples))
	for _, a := range assignment {
		weights[a] += 1 / total
	}
	return centroids, weights
}

// paletteDiffs pairs the top reference centroids by weight with their nearest
// implementation centroids, ranked primary/accent/background.
func (m *ColorMetric) paletteDiffs(refPalette, implPalette []paletteEntry) []ColorDiff {
	order := make([]int, len(refPalette))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return refPalette[order[a]].weight > refPalette[order[b]].weight
	})

	kinds := []ColorDiffKind{PrimaryColorShift, AccentColorShift, BackgroundColorShift}
	var diffs []ColorDiff
	for rank := 0; rank < len(kinds) && rank < len(order); rank++ {
		ref := refPalette[order[rank]]
		nearest, dist := nearestEntry(implPalette, ref.lab)
		rr, rg, rb := colorutil.LabToRGB(ref.lab)
		ir, ig, ib := colorutil.LabToRGB(nearest)
		diffs = append(diffs, ColorDiff{
			Kind:      kinds[rank],
			Bounds:    geometry.Rect{Width: 1, Height: 1},
			Severity:  deltaSeverity(dist),
			RefColor:  colorutil.HexString(rr, rg, rb),
			ImplColor: colorutil.HexString(ir, ig, ib),
			DeltaE:    dist,
		})
	}
	return diffs
}

func nearestEntry(palette []paletteEntry, lab colorutil.Lab) (colorutil.Lab, float64) {
	best := palette[0].lab
	bestDist := lab.Distance(best)
	for _, e := range palette[1:] {
		if d := lab.Distance(e.lab); d < bestDist {
			bestDist = d
			best = e.lab
		}
	}
	return best, bestDist
}

func allNearZero(diffs []ColorDiff) bool {
	for _, d := range diffs {
		if d.RefColor != d.ImplColor || d.DeltaE > 1.0 {
			return false
		}
	}
	return true
}

func deltaSeverity(delta float64) Severity {
	switch {
	case delta >= 20:
		return SeverityMajor
	case delta >= 10:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}
