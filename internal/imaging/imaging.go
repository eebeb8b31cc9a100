// Package imaging provides image loading, resampling, and the pixel-buffer
// primitives shared by the metrics.
package imaging

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"designdiff/pkg/colorutil"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes an image from the specified path.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// ToRGBA converts any image to *image.RGBA with a zero-origin bounds.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst
}

// Resample scales an image to the target dimensions using Catmull-Rom
// interpolation. Used when the implementation screenshot has different
// dimensions from the reference.
func Resample(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Downscale shrinks an image so its longer side is at most maxDim, preserving
// aspect ratio. Bilinear interpolation averages enough neighborhood for the
// coarse alignment search. Returns the image unchanged if already small enough.
func Downscale(img image.Image, maxDim int) (*image.RGBA, float64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if maxDim <= 0 || longer <= maxDim {
		return ToRGBA(img), 1.0
	}
	scale := float64(maxDim) / float64(longer)
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, scale
}

// Luminance converts an RGBA buffer to a single-channel luminance buffer in
// row-major order, values 0..255.
func Luminance(img *image.RGBA) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	i := 0
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			out[i] = colorutil.Luminance(row[x*4], row[x*4+1], row[x*4+2])
			i++
		}
	}
	return out
}

// AbsDiffMap builds a per-pixel absolute-difference map of two equally sized
// luminance buffers, normalized to 0..1.
func AbsDiffMap(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		out[i] = d / 255.0
	}
	return out
}

// CompositeShifted draws the implementation image onto a clone of the
// reference-sized canvas at the given integer offset. Pixels the shifted
// implementation does not cover keep the reference's own pixels, so the
// borders exposed by the shift do not read as artificial diff.
func CompositeShifted(reference, implementation *image.RGBA, dx, dy int) *image.RGBA {
	b := reference.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(dst.Pix, reference.Pix)

	ib := implementation.Bounds()
	for y := 0; y < ib.Dy(); y++ {
		ty := y + dy
		if ty < 0 || ty >= h {
			continue
		}
		for x := 0; x < ib.Dx(); x++ {
			tx := x + dx
			if tx < 0 || tx >= w {
				continue
			}
			si := y*implementation.Stride + x*4
			di := ty*dst.Stride + tx*4
			copy(dst.Pix[di:di+4], implementation.Pix[si:si+4])
		}
	}
	return dst
}

// SupportedFormats returns the list of decodable image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
