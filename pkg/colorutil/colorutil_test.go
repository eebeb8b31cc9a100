package colorutil

import (
	"math"
	"testing"
)

func TestRGBToLabEndpoints(t *testing.T) {
	white := RGBToLab(255, 255, 255)
	if math.Abs(white.L-100) > 0.5 {
		t.Errorf("white L = %v, want ~100", white.L)
	}

	black := RGBToLab(0, 0, 0)
	if black.L > 0.5 {
		t.Errorf("black L = %v, want ~0", black.L)
	}
}

func TestLabRoundTrip(t *testing.T) {
	cases := []struct{ r, g, b uint8 }{
		{255, 0, 0},
		{0, 128, 255},
		{34, 177, 76},
		{200, 200, 200},
	}
	for _, c := range cases {
		lab := RGBToLab(c.r, c.g, c.b)
		r, g, b := LabToRGB(lab)
		if absDiff(r, c.r) > 2 || absDiff(g, c.g) > 2 || absDiff(b, c.b) > 2 {
			t.Errorf("round trip (%d,%d,%d) -> (%d,%d,%d)", c.r, c.g, c.b, r, g, b)
		}
	}
}

func TestLabDistance(t *testing.T) {
	black := RGBToLab(0, 0, 0)
	white := RGBToLab(255, 255, 255)

	d := black.Distance(white)
	if math.Abs(d-100) > 1 {
		t.Errorf("black-white delta E = %v, want ~100", d)
	}

	if got := white.Distance(black); got != d {
		t.Errorf("Distance not symmetric: %v vs %v", d, got)
	}
	if got := black.Distance(black); got != 0 {
		t.Errorf("self Distance = %v, want 0", got)
	}
}

func TestRGBDistance(t *testing.T) {
	if d := RGBDistance(10, 20, 30, 10, 20, 30); d != 0 {
		t.Errorf("identical RGBDistance = %v, want 0", d)
	}
	if d := RGBDistance(0, 0, 0, 255, 255, 255); math.Abs(d-math.Sqrt(3)) > 1e-9 {
		t.Errorf("black-white RGBDistance = %v, want sqrt(3)", d)
	}
}

func TestLuminanceOrdering(t *testing.T) {
	black := Luminance(0, 0, 0)
	gray := Luminance(128, 128, 128)
	white := Luminance(255, 255, 255)

	if !(black < gray && gray < white) {
		t.Errorf("luminance not monotone: %v %v %v", black, gray, white)
	}
	// Green contributes more than blue in Rec. 601.
	if Luminance(0, 255, 0) <= Luminance(0, 0, 255) {
		t.Error("green should be brighter than blue")
	}
}

func TestHexString(t *testing.T) {
	if got := HexString(255, 0, 128); got != "#ff0080" {
		t.Errorf("HexString = %q, want #ff0080", got)
	}
	if got := HexString(0, 0, 0); got != "#000000" {
		t.Errorf("HexString = %q, want #000000", got)
	}
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}
