// Package scoring combines per-metric scores into one similarity verdict and
// derives the ranked, human-readable issue list.
package scoring

import (
	"fmt"
	"sort"

	"designdiff/internal/metrics"
)

// Weights holds the relative weight of each metric in the combined score.
type Weights struct {
	Pixel      float64 `json:"pixel" yaml:"pixel"`
	Layout     float64 `json:"layout" yaml:"layout"`
	Typography float64 `json:"typography" yaml:"typography"`
	Color      float64 `json:"color" yaml:"color"`
	Content    float64 `json:"content" yaml:"content"`
}

// DefaultWeights returns the default metric weighting.
func DefaultWeights() Weights {
	return Weights{
		Pixel:      0.30,
		Layout:     0.25,
		Typography: 0.15,
		Color:      0.15,
		Content:    0.15,
	}
}

// Weight returns the weight for one metric kind.
func (w Weights) Weight(k metrics.Kind) float64 {
	switch k {
	case metrics.KindPixel:
		return w.Pixel
	case metrics.KindLayout:
		return w.Layout
	case metrics.KindTypography:
		return w.Typography
	case metrics.KindColor:
		return w.Color
	case metrics.KindContent:
		return w.Content
	default:
		return 0
	}
}

// CombinedScore computes the weighted mean score over populated metric slots
// only, so a comparison is not penalized for metrics that were structurally
// unavailable. Returns 0 when no slot is populated.
func CombinedScore(scores *metrics.Scores, weights Weights) float64 {
	var weightedSum, weightTotal float64
	for _, kind := range scores.Populated() {
		score, _ := scores.Score(kind)
		w := weights.Weight(kind)
		weightedSum += w * score
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// metricPriority orders same-severity issues deterministically:
// pixel < layout < content < color < typography.
func metricPriority(k metrics.Kind) int {
	switch k {
	case metrics.KindPixel:
		return 0
	case metrics.KindLayout:
		return 1
	case metrics.KindContent:
		return 2
	case metrics.KindColor:
		return 3
	case metrics.KindTypography:
		return 4
	default:
		return 5
	}
}

// severityRank orders issues by severity: major first.
func severityRank(s metrics.Severity) int {
	switch s {
	case metrics.SeverityMajor:
		return 0
	case metrics.SeverityModerate:
		return 1
	default:
		return 2
	}
}

type issue struct {
	severity int
	priority int
	message  string
}

// TopIssues collects textual issues from every populated metric, sorts them
// by (severity, metric priority, message), and truncates to count.
func TopIssues(scores *metrics.Scores, count int) []string {
	var issues []issue

	if scores.Pixel != nil {
		for _, r := range scores.Pixel.DiffRegions {
			issues = append(issues, issue{
				severity: severityRank(r.Severity),
				priority: metricPriority(metrics.KindPixel),
				message: fmt.Sprintf("%s %s at (%.0f%%, %.0f%%) covering %.0f%% x %.0f%% of the page",
					capitalize(r.Severity.String()), r.Reason,
					r.Bounds.X*100, r.Bounds.Y*100, r.Bounds.Width*100, r.Bounds.Height*100),
			})
		}
	}
	if scores.Layout != nil {
		for _, d := range scores.Layout.DiffRegions {
			issues = append(issues, issue{
				severity: severityRank(d.Severity),
				priority: metricPriority(metrics.KindLayout),
				message:  layoutMessage(d),
			})
		}
	}
	if scores.Content != nil {
		for _, t := range scores.Content.MissingText {
			issues = append(issues, issue{
				severity: severityRank(metrics.SeverityModerate),
				priority: metricPriority(metrics.KindContent),
				message:  fmt.Sprintf("Missing text: %q", truncateText(t, 60)),
			})
		}
		for _, t := range scores.Content.ExtraText {
			issues = append(issues, issue{
				severity: severityRank(metrics.SeverityMinor),
				priority: metricPriority(metrics.KindContent),
				message:  fmt.Sprintf("Unexpected text: %q", truncateText(t, 60)),
			})
		}
	}
	if scores.Color != nil {
		for _, d := range scores.Color.Diffs {
			if d.RefColor == d.ImplColor && d.DeltaE <= 1.0 {
				continue
			}
			issues = append(issues, issue{
				severity: severityRank(d.Severity),
				priority: metricPriority(metrics.KindColor),
				message: fmt.Sprintf("%s: %s rendered as %s (delta E %.1f)",
					colorKindLabel(d.Kind), d.RefColor, d.ImplColor, d.DeltaE),
			})
		}
	}
	if scores.Typography != nil {
		for _, d := range scores.Typography.Diffs {
			for _, iss := range d.Issues {
				issues = append(issues, issue{
					severity: severityRank(d.Severity),
					priority: metricPriority(metrics.KindTypography),
					message:  typographyMessage(iss, d.Label),
				})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].severity != issues[j].severity {
			return issues[i].severity < issues[j].severity
		}
		if issues[i].priority != issues[j].priority {
			return issues[i].priority < issues[j].priority
		}
		return issues[i].message < issues[j].message
	})

	if count > 0 && len(issues) > count {
		issues = issues[:count]
	}
	out := make([]string, len(issues))
	for i, iss := range issues {
		out[i] = iss.message
	}
	return out
}

func layoutMessage(d metrics.LayoutDiffRegion) string {
	label := d.Label
	if label != "" {
		label = fmt.Sprintf(" (%q)", truncateText(label, 40))
	}
	switch d.Kind {
	case metrics.MissingElement:
		return fmt.Sprintf("Missing %s element%s", d.ElementType, label)
	case metrics.ExtraElement:
		return fmt.Sprintf("Unexpected %s element%s", d.ElementType, label)
	case metrics.SizeChange:
		return fmt.Sprintf("Resized %s element%s", d.ElementType, label)
	default:
		return fmt.Sprintf("Misplaced %s element%s", d.ElementType, label)
	}
}

func typographyMessage(iss metrics.TypographyIssue, label string) string {
	what := map[metrics.TypographyIssue]string{
		metrics.FontFamilyMismatch: "Font family mismatch",
		metrics.FontSizeDiff:       "Font size difference",
		metrics.FontWeightDiff:     "Font weight difference",
		metrics.LineHeightDiff:     "Line height difference",
		metrics.LetterSpacingDiff:  "Letter spacing difference",
	}[iss]
	if label == "" {
		return what
	}
	return fmt.Sprintf("%s on %q", what, truncateText(label, 40))
}

func colorKindLabel(k metrics.ColorDiffKind) string {
	switch k {
	case metrics.AccentColorShift:
		return "Accent color shift"
	case metrics.BackgroundColorShift:
		return "Background color shift"
	default:
		return "Primary color shift"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
