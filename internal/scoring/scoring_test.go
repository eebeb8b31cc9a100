package scoring

import (
	"math"
	"strings"
	"testing"

	"designdiff/internal/metrics"
	"designdiff/pkg/geometry"
)

func TestCombinedScoreSingleMetric(t *testing.T) {
	scores := &metrics.Scores{Pixel: &metrics.PixelResult{Score: 0.7}}

	// With one populated slot the combined score is that score, whatever the
	// weights.
	if got := CombinedScore(scores, DefaultWeights()); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("combined = %v, want 0.7", got)
	}
}

func TestCombinedScoreIgnoresEmptySlots(t *testing.T) {
	scores := &metrics.Scores{
		Pixel:   &metrics.PixelResult{Score: 1.0},
		Content: &metrics.ContentResult{Score: 0.0},
	}
	w := DefaultWeights()

	want := (w.Pixel*1.0 + w.Content*0.0) / (w.Pixel + w.Content)
	if got := CombinedScore(scores, w); math.Abs(got-want) > 1e-9 {
		t.Errorf("combined = %v, want %v", got, want)
	}
}

func TestCombinedScoreWeightRescalingInvariance(t *testing.T) {
	scores := &metrics.Scores{
		Pixel:  &metrics.PixelResult{Score: 0.9},
		Layout: &metrics.LayoutResult{Score: 0.5},
		Color:  &metrics.ColorResult{Score: 0.8},
	}
	w := DefaultWeights()
	doubled := Weights{
		Pixel:      w.Pixel * 2,
		Layout:     w.Layout * 2,
		Typography: w.Typography * 2,
		Color:      w.Color * 2,
		Content:    w.Content * 2,
	}

	a := CombinedScore(scores, w)
	b := CombinedScore(scores, doubled)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("rescaled weights changed the score: %v vs %v", a, b)
	}
}

func TestCombinedScoreNoPopulatedSlots(t *testing.T) {
	if got := CombinedScore(&metrics.Scores{}, DefaultWeights()); got != 0 {
		t.Errorf("combined = %v, want 0 with nothing populated", got)
	}
}

func issueScores() *metrics.Scores {
	return &metrics.Scores{
		Pixel: &metrics.PixelResult{
			Score: 0.6,
			DiffRegions: []metrics.PixelDiffRegion{
				{Bounds: geometry.Rect{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.2},
					Severity: metrics.SeverityMinor, Reason: "pixel difference"},
			},
		},
		Layout: &metrics.LayoutResult{
			Score: 0.5,
			DiffRegions: []metrics.LayoutDiffRegion{
				{Kind: metrics.MissingElement, Severity: metrics.SeverityMajor,
					ElementType: "button", Label: "Submit"},
			},
		},
		Content: &metrics.ContentResult{
			Score:       0.5,
			MissingText: []string{"Cancel"},
		},
	}
}

func TestTopIssuesOrdering(t *testing.T) {
	issues := TopIssues(issueScores(), 10)
	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3", len(issues))
	}

	// Major layout issue first, then the moderate content issue, minor pixel
	// region last.
	if !strings.Contains(issues[0], "Missing button") {
		t.Errorf("issues[0] = %q, want the missing button first", issues[0])
	}
	if !strings.Contains(issues[1], "Missing text") {
		t.Errorf("issues[1] = %q, want the missing text second", issues[1])
	}
	if !strings.Contains(issues[2], "pixel difference") {
		t.Errorf("issues[2] = %q, want the pixel region last", issues[2])
	}
}

func TestTopIssuesTruncation(t *testing.T) {
	issues := TopIssues(issueScores(), 2)
	if len(issues) != 2 {
		t.Errorf("got %d issues, want 2 after truncation", len(issues))
	}

	all := TopIssues(issueScores(), 0)
	if len(all) != 3 {
		t.Errorf("count 0 should not truncate, got %d", len(all))
	}
}

func TestTopIssuesEmptyScores(t *testing.T) {
	if issues := TopIssues(&metrics.Scores{}, 5); len(issues) != 0 {
		t.Errorf("empty scores produced %d issues", len(issues))
	}
}

func TestTopIssuesSkipsCleanColorDiffs(t *testing.T) {
	scores := &metrics.Scores{
		Color: &metrics.ColorResult{
			Score: 1.0,
			Diffs: []metrics.ColorDiff{
				{Kind: metrics.PrimaryColorShift, RefColor: "#ffffff", ImplColor: "#ffffff", DeltaE: 0},
				{Kind: metrics.AccentColorShift, RefColor: "#ff0000", ImplColor: "#cc0000", DeltaE: 8,
					Severity: metrics.SeverityMinor},
			},
		},
	}

	issues := TopIssues(scores, 10)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1 (identical colors are not issues)", len(issues))
	}
	if !strings.Contains(issues[0], "#cc0000") {
		t.Errorf("issue %q does not mention the shifted color", issues[0])
	}
}

func TestWeightAccessor(t *testing.T) {
	w := DefaultWeights()
	sum := 0.0
	for _, k := range metrics.AllKinds() {
		sum += w.Weight(k)
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("default weights sum to %v, want 1", sum)
	}
}
