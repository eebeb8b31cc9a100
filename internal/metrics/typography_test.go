package metrics

import (
	"errors"
	"math"
	"testing"

	"designdiff/internal/view"
)

func TestTypographyIdenticalStyles(t *testing.T) {
	ref := domView(styledNode("r1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))
	impl := domView(styledNode("i1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))

	m := &TypographyMetric{Config: DefaultTypographyConfig()}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Score != 1.0 {
		t.Errorf("score = %v, want 1", res.Score)
	}
	if len(res.Diffs) != 0 {
		t.Errorf("identical styles produced %d diffs", len(res.Diffs))
	}
}

func TestTypographyFamilyMismatch(t *testing.T) {
	ref := domView(styledNode("r1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))
	impl := domView(styledNode("i1", "Welcome", "Roboto", 16, "400", 0.1, 0.1, 0.3, 0.05))

	cfg := DefaultTypographyConfig()
	m := &TypographyMetric{Config: cfg}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(res.Score-(1.0-cfg.FamilyWeight)) > 1e-9 {
		t.Errorf("score = %v, want %v", res.Score, 1.0-cfg.FamilyWeight)
	}
	if len(res.Diffs) != 1 {
		t.Fatalf("got %d diffs, want 1", len(res.Diffs))
	}
	d := res.Diffs[0]
	if len(d.Issues) != 1 || d.Issues[0] != FontFamilyMismatch {
		t.Errorf("issues = %v, want [FontFamilyMismatch]", d.Issues)
	}
	if d.Severity != SeverityMajor {
		t.Errorf("severity = %v, want major for weight %v", d.Severity, cfg.FamilyWeight)
	}
}

func TestTypographyFamilyCanonicalization(t *testing.T) {
	// Quoted, stacked, and suffixed variants of the same family must match.
	ref := domView(styledNode("r1", "Welcome", `"Roboto", sans-serif`, 16, "400", 0.1, 0.1, 0.3, 0.05))
	impl := domView(styledNode("i1", "Welcome", "Roboto Flex", 16, "400", 0.1, 0.1, 0.3, 0.05))

	m := &TypographyMetric{Config: DefaultTypographyConfig()}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Score != 1.0 {
		t.Errorf("score = %v, want 1 for canonically equal families", res.Score)
	}
}

func TestTypographyWeightCategory(t *testing.T) {
	ref := domView(styledNode("r1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))
	impl := domView(styledNode("i1", "Welcome", "Inter", 16, "bold", 0.1, 0.1, 0.3, 0.05))

	cfg := DefaultTypographyConfig()
	m := &TypographyMetric{Config: cfg}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(res.Score-(1.0-cfg.WeightCatWeight)) > 1e-9 {
		t.Errorf("score = %v, want %v", res.Score, 1.0-cfg.WeightCatWeight)
	}
	if len(res.Diffs) != 1 || res.Diffs[0].Issues[0] != FontWeightDiff {
		t.Errorf("diffs = %+v, want one FontWeightDiff", res.Diffs)
	}
}

func TestTypographySizeWithinTolerance(t *testing.T) {
	ref := domView(styledNode("r1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))
	// 16 -> 16.4 is a 2.5% difference, inside the 3% tolerance.
	impl := domView(styledNode("i1", "Welcome", "Inter", 16.4, "400", 0.1, 0.1, 0.3, 0.05))

	m := &TypographyMetric{Config: DefaultTypographyConfig()}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Line height derives from size in the helper, so allow its small penalty
	// but no size issue.
	for _, d := range res.Diffs {
		for _, iss := range d.Issues {
			if iss == FontSizeDiff {
				t.Error("size within tolerance flagged as FontSizeDiff")
			}
		}
	}
}

func TestTypographyUnmatchedReferenceText(t *testing.T) {
	ref := domView(
		styledNode("r1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05),
		styledNode("r2", "Sign up", "Inter", 14, "400", 0.1, 0.2, 0.3, 0.05),
	)
	impl := domView(styledNode("i1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))

	m := &TypographyMetric{Config: DefaultTypographyConfig()}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Full penalty on one of two comparisons.
	if math.Abs(res.Score-0.5) > 1e-9 {
		t.Errorf("score = %v, want 0.5", res.Score)
	}
	found := false
	for _, d := range res.Diffs {
		if d.Severity == SeverityMajor && d.Label == "sign up" {
			found = true
		}
	}
	if !found {
		t.Errorf("no major diff for the unmatched label, diffs = %+v", res.Diffs)
	}
}

func TestTypographyExtraImplementationText(t *testing.T) {
	ref := domView(styledNode("r1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))
	impl := domView(
		styledNode("i1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05),
		styledNode("i2", "Limited offer", "Inter", 12, "400", 0.1, 0.5, 0.3, 0.05),
	)

	cfg := DefaultTypographyConfig()
	m := &TypographyMetric{Config: cfg}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// One clean match plus one extra element penalty over two comparisons.
	want := 1.0 - cfg.ExtraElementPenalty/2
	if math.Abs(res.Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", res.Score, want)
	}
}

func TestTypographyMissingData(t *testing.T) {
	ref := domView(domNode("r1", "p", "unstyled", 0.1, 0.1, 0.1, 0.1))
	impl := domView(styledNode("i1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))

	m := &TypographyMetric{Config: DefaultTypographyConfig()}
	_, err := m.Compute(ref, impl)
	if err == nil {
		t.Fatal("expected error for unstyled reference")
	}
	var mde *MissingDataError
	if !errors.As(err, &mde) {
		t.Fatalf("error %T is not a MissingDataError", err)
	}
}

func TestNormalizeLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Hello,  World! ", "hello world"},
		{"SIGN-UP", "sign up"},
		{"", ""},
		{"Tabs\tand\nnewlines", "tabs and newlines"},
	}
	for _, c := range cases {
		if got := NormalizeLabel(c.in); got != c.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTypographyDesignTreeSource(t *testing.T) {
	tree := &view.DesignSnapshot{Nodes: []view.DesignNode{
		{ID: "d1", NodeType: "TEXT", Text: "Welcome", BoundingBox: rect(0.1, 0.1, 0.3, 0.05),
			Typography: &view.TypographyStyle{FontFamily: "Inter", FontSize: 16, FontWeight: "400", LineHeight: 22.4}},
	}}
	ref := &view.NormalizedView{Width: 1000, Height: 1000, DesignTree: tree}
	impl := domView(styledNode("i1", "Welcome", "Inter", 16, "400", 0.1, 0.1, 0.3, 0.05))

	m := &TypographyMetric{Config: DefaultTypographyConfig()}
	res, err := m.Compute(ref, impl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Score != 1.0 {
		t.Errorf("score = %v, want 1 across sources with equal styling", res.Score)
	}
}
