package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"designdiff/pkg/geometry"
)

// solidImage builds an RGBA image filled with one color.
func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func writePNG(t *testing.T, img image.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

func TestLoadPNG(t *testing.T) {
	src := solidImage(20, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	path := writePNG(t, src, "a.png")

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("loaded bounds = %v, want 20x10", img.Bounds())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for _, p := range []string{"x.png", "x.JPG", "shot.webp", "a.tiff"} {
		if !IsSupportedFormat(p) {
			t.Errorf("IsSupportedFormat(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"x.txt", "x.svg", "noext"} {
		if IsSupportedFormat(p) {
			t.Errorf("IsSupportedFormat(%q) = true, want false", p)
		}
	}
}

func TestResampleDimensions(t *testing.T) {
	src := solidImage(40, 20, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	out := Resample(src, 10, 10)
	if out.Bounds().Dx() != 10 || out.Bounds().Dy() != 10 {
		t.Fatalf("Resample bounds = %v, want 10x10", out.Bounds())
	}
	// A solid image stays solid through resampling.
	r, g, b, _ := out.At(5, 5).RGBA()
	if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Errorf("resampled pixel = (%d,%d,%d), want (200,100,50)", r>>8, g>>8, b>>8)
	}
}

func TestDownscale(t *testing.T) {
	src := solidImage(512, 256, color.RGBA{A: 255})

	out, scale := Downscale(src, 128)
	if out.Bounds().Dx() != 128 {
		t.Errorf("downscaled width = %d, want 128", out.Bounds().Dx())
	}
	if scale != 0.25 {
		t.Errorf("scale = %v, want 0.25", scale)
	}

	// Already small enough: untouched.
	small := solidImage(64, 64, color.RGBA{A: 255})
	out, scale = Downscale(small, 128)
	if out.Bounds().Dx() != 64 || scale != 1.0 {
		t.Errorf("small image downscaled: %v scale %v", out.Bounds(), scale)
	}
}

func TestLuminanceBuffer(t *testing.T) {
	img := solidImage(4, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	fillRect(img, 0, 0, 2, 2, color.RGBA{A: 255})

	lum := Luminance(img)
	if len(lum) != 8 {
		t.Fatalf("len = %d, want 8", len(lum))
	}
	if lum[0] != 0 {
		t.Errorf("black luminance = %v, want 0", lum[0])
	}
	if lum[3] < 254 {
		t.Errorf("white luminance = %v, want ~255", lum[3])
	}
}

func TestAbsDiffMap(t *testing.T) {
	a := []float64{0, 255, 100}
	b := []float64{255, 255, 50}

	diff := AbsDiffMap(a, b)
	want := []float64{1, 0, 50.0 / 255.0}
	for i := range want {
		if diff[i] != want[i] {
			t.Errorf("diff[%d] = %v, want %v", i, diff[i], want[i])
		}
	}
}

func TestCompositeShifted(t *testing.T) {
	ref := solidImage(10, 10, color.RGBA{R: 1, G: 1, B: 1, A: 255})
	impl := solidImage(10, 10, color.RGBA{R: 9, G: 9, B: 9, A: 255})

	out := CompositeShifted(ref, impl, 3, 0)

	// Columns left of the shift keep the reference pixels.
	if out.RGBAAt(1, 5).R != 1 {
		t.Errorf("uncovered pixel = %d, want reference value 1", out.RGBAAt(1, 5).R)
	}
	if out.RGBAAt(5, 5).R != 9 {
		t.Errorf("covered pixel = %d, want implementation value 9", out.RGBAAt(5, 5).R)
	}
}

func TestGridSampleScanOrder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(y*4 + x), A: 255})
		}
	}

	samples := GridSample(img, 2)
	if len(samples) != 4 {
		t.Fatalf("len = %d, want 4", len(samples))
	}
	wantR := []uint8{0, 2, 8, 10} // (0,0) (2,0) (0,2) (2,2) row-major
	for i, w := range wantR {
		if samples[i].R != w {
			t.Errorf("samples[%d].R = %d, want %d", i, samples[i].R, w)
		}
	}
}

func TestAverageRGB(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	fillRect(img, 0, 0, 4, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	avg := AverageRGB(img)
	if avg.R != 150 {
		t.Errorf("average R = %d, want 150", avg.R)
	}
}

func TestBlendDifference(t *testing.T) {
	a := solidImage(4, 4, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	b := solidImage(4, 4, color.RGBA{R: 50, G: 50, B: 50, A: 255})

	out := Blend(a, b, BlendDifference, 1.0)
	if got := out.RGBAAt(2, 2).R; got != 150 {
		t.Errorf("difference blend = %d, want 150", got)
	}
}

func TestDrawRegionOutlines(t *testing.T) {
	img := solidImage(20, 20, color.RGBA{A: 255})
	red := color.RGBA{R: 255, A: 255}

	out := DrawRegionOutlines(img, []geometry.Rect{
		{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5},
	}, red, 1)

	// Top-left corner of the outline at (5,5); interior stays untouched.
	if out.RGBAAt(5, 5).R != 255 {
		t.Error("outline corner not drawn")
	}
	if out.RGBAAt(10, 10).R != 0 {
		t.Error("region interior should not be filled")
	}
	// Source image untouched.
	if img.RGBAAt(5, 5).R != 0 {
		t.Error("DrawRegionOutlines mutated its input")
	}
}
