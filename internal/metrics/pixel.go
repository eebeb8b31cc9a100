package metrics

import (
	"fmt"
	"math"

	"designdiff/internal/align"
	"designdiff/internal/cluster"
	"designdiff/internal/imaging"
	"designdiff/internal/view"
	"designdiff/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// SSIM stabilizing constants for 8-bit dynamic range.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// PixelConfig configures the pixel similarity metric.
type PixelConfig struct {
	BlockSize         int     // Square diff block side in pixels
	MinorThreshold    float64 // Block mean diff >= this produces a minor region
	ModerateThreshold float64
	MajorThreshold    float64
	Cluster           cluster.Options
	Align             align.Options
	Debug             bool
}

// DefaultPixelConfig returns default pixel metric settings.
func DefaultPixelConfig() PixelConfig {
	return PixelConfig{
		BlockSize:         32,
		MinorThreshold:    0.05,
		ModerateThreshold: 0.15,
		MajorThreshold:    0.30,
		Cluster:           cluster.DefaultOptions(),
		Align:             align.DefaultOptions(),
	}
}

// PixelMetric computes perceptual pixel similarity between two screenshots.
type PixelMetric struct {
	Config PixelConfig
}

// Compute decodes both screenshots, optionally pre-aligns the implementation,
// and returns a whole-image SSIM score plus clustered diff regions.
func (m *PixelMetric) Compute(reference, implementation *view.NormalizedView) (*PixelResult, error) {
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

	w := ref.Bounds().Dx()
	h := ref.Bounds().Dy()
	// Only the implementation is ever resampled; the reference defines the
	// comparison dimensions.
	if impl.Bounds().Dx() != w || impl.Bounds().Dy() != h {
		impl = imaging.Resample(impl, w, h)
	}

	impl, offset, err := align.Align(ref, impl, m.Config.Align)
	if err != nil {
		return nil, fmt.Errorf("pre-alignment failed: %w", err)
	}

	refLum := imaging.Luminance(ref)
	implLum := imaging.Luminance(impl)

	score := ssim(refLum, implLum)
	diffMap := imaging.AbsDiffMap(refLum, implLum)
	raw := m.blockRegions(diffMap, w, h)

	if m.Config.Debug {
		fmt.Printf("pixel: %dx%d ssim=%.4f rawRegions=%d\n", w, h, score, len(raw))
	}

	clustered := cluster.Regions(raw, m.Config.Cluster)
	regions := make([]PixelDiffRegion, 0, len(clustered))
	for _, c := range clustered {
		regions = append(regions, pixelRegionFromCluster(c))
	}

	return &PixelResult{
		Score:       score,
		DiffRegions: regions,
		Offset:      offset,
	}, nil
}

// ssim computes a single-window structural similarity index over two entire
// luminance buffers. Not tiled: the global statistics capture holistic
// perceptual similarity independent of block granularity.
func ssim(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 1.0
	}
	a = a[:n]
	b = b[:n]

	muA := stat.Mean(a, nil)
	muB := stat.Mean(b, nil)
	varA := stat.Variance(a, nil)
	varB := stat.Variance(b, nil)
	cov := stat.Covariance(a, b, nil)

	num := (2*muA*muB + ssimC1) * (2*cov + ssimC2)
	den := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	if math.Abs(den) < 1e-12 {
		// Two flat identical images: structurally equal.
		return 1.0
	}
	s := num / den
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// blockRegions partitions the diff map into non-overlapping square blocks
// (the last row/column clipped to image bounds), averages each block, and
// keeps blocks at or above the minor threshold as raw diff regions.
func (m *PixelMetric) blockRegions(diffMap []float64, w, h int) []cluster.Region {
	blockSize := m.Config.BlockSize
	if blockSize < 1 {
		blockSize = 32
	}

	var regions []cluster.Region
	for by := 0; by < h; by += blockSize {
		bh := blockSize
		if by+bh > h {
			bh = h - by
		}
		for bx := 0; bx < w; bx += blockSize {
			bw := blockSize
			if bx+bw > w {
				bw = w - bx
			}

			var sum float64
			for y := by; y < by+bh; y++ {
				row := diffMap[y*w:]
				for x := bx; x < bx+bw; x++ {
					sum += row[x]
				}
			}
			avg := sum / float64(bw*bh)
			if avg < m.Config.MinorThreshold {
				continue
			}

			severity := SeverityMinor
			if avg >= m.Config.MajorThreshold {
				severity = SeverityMajor
			} else if avg >= m.Config.ModerateThreshold {
				severity = SeverityModerate
			}

			regions = append(regions, cluster.Region{
				Bounds:       geometry.RectInt{X: bx, Y: by, Width: bw, Height: bh}.Normalized(w, h),
				Severity:     severity,
				Intensity:    avg,
				HasIntensity: true,
			})
		}
	}
	return regions
}

// pixelRegionFromCluster converts a merged cluster back into a reportable
// pixel diff region.
func pixelRegionFromCluster(c cluster.ClusteredRegion) PixelDiffRegion {
	reason := "pixel difference"
	if c.RegionCount > 1 {
		reason = fmt.Sprintf("pixel difference across %d merged blocks", c.RegionCount)
	}
	return PixelDiffRegion{
		Bounds:       c.Bounds,
		Severity:     c.Severity,
		Reason:       reason,
		Intensity:    c.Intensity,
		HasIntensity: true,
	}
}
