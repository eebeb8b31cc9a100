// Package colorutil provides shared color utilities for the design diff engine.
package colorutil

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Common overlay colors used by the diff viewer and overlay rendering.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// Lab is a color in the CIE L*a*b* space. Euclidean distance in this space
// approximates perceived color difference (delta E).
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// RGBToLab converts 8-bit sRGB components to CIE Lab (D65 reference white).
func RGBToLab(r, g, b uint8) Lab {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	l, a, bb := c.Lab()
	// go-colorful keeps L in 0..1; scale to the conventional 0..100 range so
	// distances line up with delta E thresholds from the literature.
	return Lab{L: l * 100, A: a * 100, B: bb * 100}
}

// LabToRGB converts a Lab color back to 8-bit sRGB, clamping out-of-gamut values.
func LabToRGB(lab Lab) (r, g, b uint8) {
	c := colorful.Lab(lab.L/100, lab.A/100, lab.B/100).Clamped()
	rr, gg, bb := c.RGB255()
	return rr, gg, bb
}

// Distance returns the Euclidean distance to another Lab color (delta E 76).
func (l Lab) Distance(other Lab) float64 {
	dl := l.L - other.L
	da := l.A - other.A
	db := l.B - other.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// RGBDistance returns the Euclidean distance between two colors in RGB space,
// normalized so that black vs. white is sqrt(3).
func RGBDistance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := (float64(r1) - float64(r2)) / 255.0
	dg := (float64(g1) - float64(g2)) / 255.0
	db := (float64(b1) - float64(b2)) / 255.0
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Luminance returns the Rec. 601 luma of 8-bit RGB components, in 0..255.
func Luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// HexString formats an RGB triple as a #rrggbb string.
func HexString(r, g, b uint8) string {
	const digits = "0123456789abcdef"
	out := [7]byte{'#'}
	for i, v := range [3]uint8{r, g, b} {
		out[1+i*2] = digits[v>>4]
		out[2+i*2] = digits[v&0xf]
	}
	return string(out[:])
}
