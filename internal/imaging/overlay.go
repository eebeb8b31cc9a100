package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"designdiff/pkg/geometry"
)

// BlendMode specifies how the implementation is composited over the reference
// in overlay rendering.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendDifference
)

func (m BlendMode) String() string {
	switch m {
	case BlendDifference:
		return "Difference"
	default:
		return "Normal"
	}
}

// Blend composites the implementation over the reference at the given opacity.
// BlendDifference highlights changed areas: identical pixels render black.
func Blend(reference, implementation *image.RGBA, mode BlendMode, opacity float64) *image.RGBA {
	b := reference.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), reference, image.Point{}, draw.Src)

	ib := implementation.Bounds()
	iw, ih := ib.Dx(), ib.Dy()

	for y := 0; y < h && y < ih; y++ {
		for x := 0; x < w && x < iw; x++ {
			di := y*dst.Stride + x*4
			si := y*implementation.Stride + x*4

			var rf [3]float64
			for c := 0; c < 3; c++ {
				sv := float64(implementation.Pix[si+c]) / 255.0
				dv := float64(dst.Pix[di+c]) / 255.0
				switch mode {
				case BlendDifference:
					rf[c] = math.Abs(sv - dv)
				default:
					rf[c] = sv
				}
				blended := rf[c]*opacity + dv*(1-opacity)
				dst.Pix[di+c] = uint8(clamp(blended, 0, 1) * 255)
			}
			dst.Pix[di+3] = 255
		}
	}
	return dst
}

// DrawRegionOutlines draws rectangle outlines for normalized 0..1 regions
// onto a copy of the image. Used by the CLI's diff PNG output and the viewer.
func DrawRegionOutlines(img *image.RGBA, regions []geometry.Rect, col color.RGBA, thickness int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, image.Point{}, draw.Src)
	if thickness < 1 {
		thickness = 1
	}

	for _, r := range regions {
		x0 := int(r.X * float64(w))
		y0 := int(r.Y * float64(h))
		x1 := int((r.X + r.Width) * float64(w))
		y1 := int((r.Y + r.Height) * float64(h))
		for t := 0; t < thickness; t++ {
			drawRectOutline(dst, x0-t, y0-t, x1+t, y1+t, col)
		}
	}
	return dst
}

func drawRectOutline(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		setPixel(img, x, y0, col)
		setPixel(img, x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		setPixel(img, x0, y, col)
		setPixel(img, x1, y, col)
	}
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	i := (y-b.Min.Y)*img.Stride + (x-b.Min.X)*4
	img.Pix[i] = col.R
	img.Pix[i+1] = col.G
	img.Pix[i+2] = col.B
	img.Pix[i+3] = col.A
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
