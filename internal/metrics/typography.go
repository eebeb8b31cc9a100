package metrics

import (
	"math"
	"strconv"
	"strings"

	"designdiff/internal/view"
	"designdiff/pkg/geometry"
)

// TypographyConfig configures the typography similarity metric.
type TypographyConfig struct {
	FamilyWeight        float64 // Penalty weight for a font family mismatch
	SizeWeight          float64 // Max penalty weight for font size difference
	WeightCatWeight     float64 // Penalty weight for a weight-category mismatch
	LineHeightWeight    float64 // Penalty weight for line-height difference
	LetterSpacingWeight float64 // Penalty weight for letter-spacing difference
	SizeTolerance       float64 // Relative font-size tolerance
	LineHeightTolerance float64 // Relative line-height tolerance
	SpacingTolerance    float64 // Letter-spacing tolerance as fraction of font size
	ExtraElementPenalty float64 // Penalty per unmatched implementation element
	Debug               bool
}

// DefaultTypographyConfig returns default typography metric settings.
func DefaultTypographyConfig() TypographyConfig {
	return TypographyConfig{
		FamilyWeight:        0.55,
		SizeWeight:          0.20,
		WeightCatWeight:     0.15,
		LineHeightWeight:    0.05,
		LetterSpacingWeight: 0.05,
		SizeTolerance:       0.03,
		LineHeightTolerance: 0.05,
		SpacingTolerance:    0.02,
		ExtraElementPenalty: 0.2,
	}
}

// TypographyMetric compares text styling between the two views.
type TypographyMetric struct {
	Config TypographyConfig
}

// textElement is the common projection of one styled text element.
type textElement struct {
	id            string
	label         string // normalized text used as the matching key
	family        string
	size          float64
	weight        string
	lineHeight    float64
	letterSpacing float64
	box           geometry.Rect
}

// Compute matches text elements by normalized label and accumulates weighted
// style penalties. Fails when either side exposes no styled text elements.
func (m *TypographyMetric) Compute(reference, implementation *view.NormalizedView) (*TypographyResult, error) {
	refElems := extractTextElements(reference)
	implElems := extractTextElements(implementation)

	if len(refElems) == 0 {
		return nil, &MissingDataError{Metric: KindTypography, Side: "reference", What: "styled text elements"}
	}
	if len(implElems) == 0 {
		return nil, &MissingDataError{Metric: KindTypography, Side: "implementation", What: "styled text elements"}
	}

	// Multimap label -> implementation elements. Popping from the tail means
	// duplicate labels match last-pushed-first; any pairing is acceptable
	// among identical labels.
	byLabel := make(map[string][]int)
	for i, e := range implElems {
		byLabel[e.label] = append(byLabel[e.label], i)
	}

	refW, refH := float64(reference.Width), float64(reference.Height)
	var totalPenalty float64
	comparisons := 0
	var diffs []TypographyDiff
	implMatched := make([]bool, len(implElems))

	for _, ref := range refElems {
		comparisons++

		pool := byLabel[ref.label]
		if len(pool) == 0 {
			// No implementation element carries this text: full penalty.
			totalPenalty += 1.0
			diffs = append(diffs, TypographyDiff{
				ElementIDRef: ref.id,
				Bounds:       normalizeBox(ref.box, refW, refH),
				Severity:     SeverityMajor,
				Issues:       []TypographyIssue{FontFamilyMismatch},
				Label:        ref.label,
			})
			continue
		}
		idx := pool[len(pool)-1]
		byLabel[ref.label] = pool[:len(pool)-1]
		implMatched[idx] = true
		impl := implElems[idx]

		penalty, issues := m.pairPenalty(ref, impl)
		totalPenalty += penalty
		if len(issues) > 0 {
			diffs = append(diffs, TypographyDiff{
				ElementIDRef:  ref.id,
				ElementIDImpl: impl.id,
				Bounds:        normalizeBox(ref.box, refW, refH),
				Severity:      penaltySeverity(penalty),
				Issues:        issues,
				Label:         ref.label,
			})
		}
	}

	// Leftover implementation elements carry text the reference never had.
	for i, impl := range implElems {
		if implMatched[i] {
			continue
		}
		comparisons++
		totalPenalty += m.Config.ExtraElementPenalty
		diffs = append(diffs, TypographyDiff{
			ElementIDImpl: impl.id,
			Bounds:        normalizeBox(impl.box, refW, refH),
			Severity:      SeverityMinor,
			Issues:        []TypographyIssue{FontFamilyMismatch},
			Label:         impl.label,
		})
	}

	score := 1.0
	if comparisons > 0 {
		score = 1.0 - totalPenalty/float64(comparisons)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return &TypographyResult{Score: score, Diffs: diffs}, nil
}

// pairPenalty computes the weighted style penalty for one matched pair and
// records every triggered issue kind.
func (m *TypographyMetric) pairPenalty(ref, impl textElement) (float64, []TypographyIssue) {
	var penalty float64
	var issues []TypographyIssue

	if ref.family != "" && impl.family != "" &&
		canonicalFamily(ref.family) != canonicalFamily(impl.family) {
		penalty += m.Config.FamilyWeight
		issues = append(issues, FontFamilyMismatch)
	}

	if ref.size > 0 && impl.size > 0 {
		relDiff := math.Abs(ref.size-impl.size) / ref.size
		if relDiff > m.Config.SizeTolerance {
			over := relDiff - m.Config.SizeTolerance
			frac := over / 0.5 // half the reference size away = full size penalty
			if frac > 1 {
				frac = 1
			}
			penalty += m.Config.SizeWeight * frac
			issues = append(issues, FontSizeDiff)
		}
	}

	if weightCategory(ref.weight) != weightCategory(impl.weight) {
		penalty += m.Config.WeightCatWeight
		issues = append(issues, FontWeightDiff)
	}

	if ref.lineHeight > 0 && impl.lineHeight > 0 {
		relDiff := math.Abs(ref.lineHeight-impl.lineHeight) / ref.lineHeight
		if relDiff > m.Config.LineHeightTolerance {
			penalty += m.Config.LineHeightWeight
			issues = append(issues, LineHeightDiff)
		}
	}

	if ref.size > 0 {
		spacingDiff := math.Abs(ref.letterSpacing-impl.letterSpacing) / ref.size
		if spacingDiff > m.Config.SpacingTolerance {
			penalty += m.Config.LetterSpacingWeight
			issues = append(issues, LetterSpacingDiff)
		}
	}

	return penalty, issues
}

func penaltySeverity(penalty float64) Severity {
	switch {
	case penalty >= 0.5:
		return SeverityMajor
	case penalty >= 0.2:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// extractTextElements collects styled text elements from both structural
// sources, keyed by normalized label. Elements with empty labels are dropped.
func extractTextElements(v *view.NormalizedView) []textElement {
	var out []textElement
	if v.DOM != nil {
		for _, n := range v.DOM.Nodes {
			if n.Style == nil {
				continue
			}
			label := NormalizeLabel(n.Text)
			if label == "" {
				continue
			}
			out = append(out, textElement{
				id:            n.ID,
				label:         label,
				family:        n.Style.FontFamily,
				size:          n.Style.FontSize,
				weight:        n.Style.FontWeight,
				lineHeight:    n.Style.LineHeight,
				letterSpacing: n.Style.LetterSpacing,
				box:           n.BoundingBox,
			})
		}
	}
	if v.DesignTree != nil {
		for _, n := range v.DesignTree.Nodes {
			if n.Typography == nil {
				continue
			}
			label := NormalizeLabel(n.Text)
			if label == "" {
				continue
			}
			out = append(out, textElement{
				id:            n.ID,
				label:         label,
				family:        n.Typography.FontFamily,
				size:          n.Typography.FontSize,
				weight:        n.Typography.FontWeight,
				lineHeight:    n.Typography.LineHeight,
				letterSpacing: n.Typography.LetterSpacing,
				box:           n.BoundingBox,
			})
		}
	}
	return out
}

// NormalizeLabel lowercases text and collapses every non-alphanumeric run
// into a single space.
func NormalizeLabel(text string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// knownFamilies are canonical names matched by substring so vendor-prefixed
// or quoted variants ("Inter var", `"Roboto", sans-serif`) collapse together.
var knownFamilies = []string{
	"inter", "roboto", "arial", "helvetica", "times", "georgia",
	"verdana", "courier", "menlo", "monaco", "lato", "montserrat",
	"open sans", "segoe",
}

// canonicalFamily reduces a font-family value to a comparable canonical name.
func canonicalFamily(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	if i := strings.IndexByte(f, ','); i >= 0 {
		f = f[:i]
	}
	f = strings.Trim(f, `"' `)
	for _, known := range knownFamilies {
		if strings.Contains(f, known) {
			return known
		}
	}
	return f
}

// weightCategory maps numeric or named font weights onto the CSS 100-900
// scale. Unknown values default to 400.
func weightCategory(weight string) int {
	w := strings.ToLower(strings.TrimSpace(weight))
	if w == "" {
		return 400
	}
	if n, err := strconv.ParseFloat(w, 64); err == nil {
		cat := int(math.Round(n/100)) * 100
		if cat < 100 {
			cat = 100
		}
		if cat > 900 {
			cat = 900
		}
		return cat
	}
	switch {
	case strings.Contains(w, "thin"):
		return 100
	case strings.Contains(w, "extralight"), strings.Contains(w, "ultralight"):
		return 200
	case strings.Contains(w, "light"):
		return 300
	case strings.Contains(w, "medium"):
		return 500
	case strings.Contains(w, "semibold"), strings.Contains(w, "demibold"):
		return 600
	case strings.Contains(w, "extrabold"), strings.Contains(w, "ultrabold"):
		return 800
	case strings.Contains(w, "bold"):
		return 700
	case strings.Contains(w, "black"), strings.Contains(w, "heavy"):
		return 900
	default:
		return 400
	}
}
