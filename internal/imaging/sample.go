package imaging

import (
	"image"

	"designdiff/pkg/geometry"
)

// RGB is one 8-bit color sample.
type RGB struct {
	R, G, B uint8
}

// GridSample samples an RGBA buffer on a regular grid with the given pixel
// stride, in row-major scan order. Scan order is load-bearing: the color
// metric seeds k-means with every Nth sample, so reordering samples would
// change the clustering result.
func GridSample(img *image.RGBA, stride int) []RGB {
	if stride < 1 {
		stride = 1
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]RGB, 0, (w/stride+1)*(h/stride+1))
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			i := y*img.Stride + x*4
			out = append(out, RGB{img.Pix[i], img.Pix[i+1], img.Pix[i+2]})
		}
	}
	return out
}

// SampleRegion samples up to n pixels from the given pixel-space region on a
// sqrt(n) x sqrt(n) grid. Coordinates outside the image are skipped.
func SampleRegion(img *image.RGBA, region geometry.RectInt, n int) []RGB {
	if n < 1 {
		n = 1
	}
	side := 1
	for side*side < n {
		side++
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	out := make([]RGB, 0, side*side)
	for gy := 0; gy < side; gy++ {
		for gx := 0; gx < side; gx++ {
			x := region.X + (gx*region.Width+region.Width/2)/side
			y := region.Y + (gy*region.Height+region.Height/2)/side
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			i := y*img.Stride + x*4
			out = append(out, RGB{img.Pix[i], img.Pix[i+1], img.Pix[i+2]})
		}
	}
	return out
}

// AverageRGB returns the mean color of an entire RGBA buffer.
func AverageRGB(img *image.RGBA) RGB {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return RGB{}
	}
	var sr, sg, sb uint64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			sr += uint64(row[x*4])
			sg += uint64(row[x*4+1])
			sb += uint64(row[x*4+2])
		}
	}
	n := uint64(w * h)
	return RGB{uint8(sr / n), uint8(sg / n), uint8(sb / n)}
}
