// Package report assembles and persists comparison reports.
package report

import (
	"encoding/json"
	"os"
	"time"

	"designdiff/internal/metrics"
	"designdiff/internal/scoring"

	"github.com/google/uuid"
)

// DefaultPassThreshold is the combined score at or above which a comparison
// is considered passing.
const DefaultPassThreshold = 0.85

// Verdict is the pass/fail outcome of a comparison.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictFail Verdict = "fail"
)

// Report is the persisted result of one reference/implementation comparison.
type Report struct {
	Version  int       `json:"version"`
	RunID    string    `json:"run_id"`
	Created  time.Time `json:"created"`
	Duration string    `json:"duration,omitempty"`

	ReferenceSource      string `json:"reference"`
	ImplementationSource string `json:"implementation"`

	CombinedScore float64 `json:"combined_score"`
	Threshold     float64 `json:"threshold"`
	Verdict       Verdict `json:"verdict"`

	Metrics   MetricScores `json:"metrics"`
	TopIssues []string     `json:"top_issues,omitempty"`

	// Artifact paths (relative to the report file)
	OverlayPath string `json:"overlay_image,omitempty"`
}

// MetricScores holds the per-metric results. A nil slot means the metric was
// structurally unavailable for this comparison.
type MetricScores struct {
	Pixel      *metrics.PixelResult      `json:"pixel,omitempty"`
	Layout     *metrics.LayoutResult     `json:"layout,omitempty"`
	Typography *metrics.TypographyResult `json:"typography,omitempty"`
	Color      *metrics.ColorResult      `json:"color,omitempty"`
	Content    *metrics.ContentResult    `json:"content,omitempty"`
}

// Params controls report assembly.
type Params struct {
	Threshold  float64
	Weights    scoring.Weights
	IssueCount int
}

// DefaultParams returns default report parameters.
func DefaultParams() Params {
	return Params{
		Threshold:  DefaultPassThreshold,
		Weights:    scoring.DefaultWeights(),
		IssueCount: 10,
	}
}

// New builds a report from a scores record.
func New(refSource, implSource string, scores *metrics.Scores, params Params) *Report {
	combined := scoring.CombinedScore(scores, params.Weights)
	verdict := VerdictFail
	if combined >= params.Threshold {
		verdict = VerdictPass
	}
	return &Report{
		Version:              1,
		RunID:                uuid.NewString(),
		Created:              time.Now(),
		ReferenceSource:      refSource,
		ImplementationSource: implSource,
		CombinedScore:        combined,
		Threshold:            params.Threshold,
		Verdict:              verdict,
		Metrics: MetricScores{
			Pixel:      scores.Pixel,
			Layout:     scores.Layout,
			Typography: scores.Typography,
			Color:      scores.Color,
			Content:    scores.Content,
		},
		TopIssues: scoring.TopIssues(scores, params.IssueCount),
	}
}

// Load loads a report from a JSON file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}

	return &rep, nil
}

// Save writes the report to a JSON file.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
