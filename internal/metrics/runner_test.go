package metrics

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"designdiff/internal/view"
)

func TestRunnerImageOnlyViews(t *testing.T) {
	img := solidImage(64, 64, color.RGBA{R: 120, G: 120, B: 120, A: 255})
	ref := imageView(t, img, "ref.png")
	impl := imageView(t, img, "impl.png")

	r := NewRunner()
	scores, err := r.Run(ref, impl, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Pixel and color always run; the structural metrics are skipped for
	// plain images.
	if scores.Pixel == nil {
		t.Error("pixel slot nil, want populated")
	}
	if scores.Color == nil {
		t.Error("color slot nil, want populated")
	}
	if scores.Layout != nil || scores.Typography != nil || scores.Content != nil {
		t.Error("structural metrics should be skipped for image-only views")
	}

	populated := scores.Populated()
	if len(populated) != 2 {
		t.Errorf("Populated() = %v, want [pixel color]", populated)
	}
}

func TestRunnerLayoutGatedOnReferenceOnly(t *testing.T) {
	img := solidImage(64, 64, color.RGBA{A: 255})

	// Reference has layout data, implementation does not: layout still runs
	// and reports everything missing.
	ref := imageView(t, img, "ref.png")
	ref.DOM = &view.DomSnapshot{Nodes: []view.DomNode{
		domNode("r1", "button", "OK", 0.1, 0.1, 0.2, 0.1),
	}}
	impl := imageView(t, img, "impl.png")

	r := NewRunner()
	scores, err := r.Run(ref, impl, []Kind{KindLayout})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if scores.Layout == nil {
		t.Fatal("layout slot nil, want populated (gate is reference-side only)")
	}
	if scores.Layout.Score != 0 {
		t.Errorf("layout score = %v, want 0", scores.Layout.Score)
	}

	// Reversed: reference without layout data skips the metric silently.
	scores, err = r.Run(impl, ref, []Kind{KindLayout})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if scores.Layout != nil {
		t.Error("layout should be skipped when the reference has no layout data")
	}
}

func TestRunnerContentGatedOnBothSides(t *testing.T) {
	img := solidImage(64, 64, color.RGBA{A: 255})
	ref := imageView(t, img, "ref.png")
	ref.DOM = &view.DomSnapshot{Nodes: []view.DomNode{
		domNode("r1", "p", "Hello", 0.1, 0.1, 0.2, 0.1),
	}}
	impl := imageView(t, img, "impl.png")

	r := NewRunner()
	scores, err := r.Run(ref, impl, []Kind{KindContent})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if scores.Content != nil {
		t.Error("content should be skipped when the implementation has no text")
	}
}

func TestRunnerTypographyGatedOnBothSides(t *testing.T) {
	img := solidImage(64, 64, color.RGBA{A: 255})
	ref := imageView(t, img, "ref.png")
	ref.DOM = &view.DomSnapshot{Nodes: []view.DomNode{
		styledNode("r1", "Hello", "Inter", 16, "400", 0.1, 0.1, 0.2, 0.05),
	}}
	impl := imageView(t, img, "impl.png")

	r := NewRunner()
	scores, err := r.Run(ref, impl, []Kind{KindTypography})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if scores.Typography != nil {
		t.Error("typography should be skipped when only one side has styled text")
	}
}

func TestRunnerNilView(t *testing.T) {
	r := NewRunner()
	if _, err := r.Run(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil views")
	}
}

func TestRunnerRejectsUnknownKind(t *testing.T) {
	img := solidImage(16, 16, color.RGBA{A: 255})
	ref := imageView(t, img, "ref.png")
	impl := imageView(t, img, "impl.png")

	r := NewRunner()
	_, err := r.Run(ref, impl, []Kind{Kind(99)})
	if err == nil {
		t.Fatal("expected error for out-of-range kind")
	}
	var ume *UnavailableMetricsError
	if !errors.As(err, &ume) {
		t.Fatalf("error %T is not an UnavailableMetricsError", err)
	}
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds([]string{"pixel", "content"})
	if err != nil {
		t.Fatalf("ParseKinds: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != KindPixel || kinds[1] != KindContent {
		t.Errorf("kinds = %v, want [pixel content]", kinds)
	}
}

func TestParseKindsUnknownNames(t *testing.T) {
	_, err := ParseKinds([]string{"pixel", "bogus", "nope"})
	if err == nil {
		t.Fatal("expected error for unknown metric names")
	}
	var ume *UnavailableMetricsError
	if !errors.As(err, &ume) {
		t.Fatalf("error %T is not an UnavailableMetricsError", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "bogus") || !strings.Contains(msg, "nope") {
		t.Errorf("error %q does not name the unknown metrics", msg)
	}
	if strings.Contains(msg, "pixel") {
		t.Errorf("error %q names a valid metric", msg)
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range AllKinds() {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v,%v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("unknown"); ok {
		t.Error("ParseKind accepted an invalid name")
	}
}
