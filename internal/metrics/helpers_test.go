package metrics

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"designdiff/internal/view"
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

// imageView writes the image to a temp PNG and wraps it in a view.
func imageView(t *testing.T, img *image.RGBA, name string) *view.NormalizedView {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encode %s: %v", path, err)
	}
	f.Close()

	b := img.Bounds()
	return &view.NormalizedView{
		Kind:           view.KindImage,
		Source:         path,
		ScreenshotPath: path,
		Width:          b.Dx(),
		Height:         b.Dy(),
	}
}

// domView builds a structural view without a screenshot.
func domView(nodes ...view.DomNode) *view.NormalizedView {
	return &view.NormalizedView{
		Kind:   view.KindURL,
		Source: "test",
		Width:  1000,
		Height: 1000,
		DOM:    &view.DomSnapshot{Nodes: nodes},
	}
}

func rect(x, y, w, h float64) geometry.Rect {
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}
}

func domNode(id, tag, text string, x, y, w, h float64) view.DomNode {
	return view.DomNode{
		ID:          id,
		Tag:         tag,
		Text:        text,
		BoundingBox: geometry.Rect{X: x, Y: y, Width: w, Height: h},
	}
}

func styledNode(id, text, family string, size float64, weight string, x, y, w, h float64) view.DomNode {
	n := domNode(id, "span", text, x, y, w, h)
	n.Style = &view.ComputedStyle{
		FontFamily: family,
		FontSize:   size,
		FontWeight: weight,
		LineHeight: size * 1.4,
	}
	return n
}
