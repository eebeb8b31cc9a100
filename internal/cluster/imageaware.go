package cluster

import (
	"image"
	"math"

	"designdiff/internal/imaging"
	"designdiff/pkg/colorutil"
	"designdiff/pkg/geometry"

	"gonum.org/v1/gonum/stat"
)

// ImageAwareOptions configures the similarity-gated clustering variant.
type ImageAwareOptions struct {
	Options
	SimilarityThreshold float64 // Min color-signature similarity to union a pair
	SampleCount         int     // Pixel samples per region signature
}

// DefaultImageAwareOptions returns default image-aware clustering options.
func DefaultImageAwareOptions() ImageAwareOptions {
	return ImageAwareOptions{
		Options:             DefaultOptions(),
		SimilarityThreshold: 0.85,
		SampleCount:         16,
	}
}

// signature summarizes the reference pixels under one region: mean RGB in
// 0..1 plus brightness variance.
type signature struct {
	r, g, b  float64
	variance float64
}

// RegionsImageAware merges regions like Regions, but only unions a pair when
// the reference pixels under the two regions also look similar. Two spatially
// adjacent diff blocks sitting over visually distinct backgrounds (a product
// grid next to a pricing panel) stay separate, which keeps each cluster
// aligned with one coherent UI element for downstream semantic analysis.
func RegionsImageAware(regions []Region, reference *image.RGBA, opts ImageAwareOptions) []ClusteredRegion {
	if len(regions) == 0 {
		return nil
	}
	if reference == nil {
		return Regions(regions, opts.Options)
	}

	w := reference.Bounds().Dx()
	h := reference.Bounds().Dy()

	sigs := make([]signature, len(regions))
	for i, r := range regions {
		sigs[i] = regionSignature(reference, r, w, h, opts.SampleCount)
	}

	return mergeRegions(regions, opts.Options, func(i, j int) bool {
		return signatureSimilarity(sigs[i], sigs[j]) >= opts.SimilarityThreshold
	})
}

// regionSignature samples the reference image under a normalized region.
func regionSignature(reference *image.RGBA, r Region, imgW, imgH, samples int) signature {
	px := imaging.SampleRegion(reference, pixelRect(r, imgW, imgH), samples)
	if len(px) == 0 {
		return signature{}
	}

	var sr, sg, sb float64
	lum := make([]float64, len(px))
	for i, p := range px {
		sr += float64(p.R) / 255.0
		sg += float64(p.G) / 255.0
		sb += float64(p.B) / 255.0
		lum[i] = colorutil.Luminance(p.R, p.G, p.B) / 255.0
	}
	n := float64(len(px))
	return signature{
		r:        sr / n,
		g:        sg / n,
		b:        sb / n,
		variance: stat.Variance(lum, nil),
	}
}

// signatureSimilarity weights mean-color distance 0.8 and brightness-variance
// difference 0.2, both mapped into 0..1.
func signatureSimilarity(a, b signature) float64 {
	dr := a.r - b.r
	dg := a.g - b.g
	db := a.b - b.b
	colorDist := math.Sqrt(dr*dr+dg*dg+db*db) / math.Sqrt(3)
	if colorDist > 1 {
		colorDist = 1
	}
	varDiff := math.Abs(a.variance - b.variance)
	if varDiff > 1 {
		varDiff = 1
	}
	return 0.8*(1-colorDist) + 0.2*(1-varDiff)
}

// pixelRect converts a normalized region into an integer pixel rectangle,
// clamped to the image bounds and at least one pixel on each axis.
func pixelRect(r Region, imgW, imgH int) geometry.RectInt {
	x := int(r.Bounds.X * float64(imgW))
	y := int(r.Bounds.Y * float64(imgH))
	w := int(r.Bounds.Width * float64(imgW))
	h := int(r.Bounds.Height * float64(imgH))
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if x+w > imgW {
		w = imgW - x
	}
	if y+h > imgH {
		h = imgH - y
	}
	return geometry.RectInt{X: x, Y: y, Width: w, Height: h}
}
