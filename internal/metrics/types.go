// Package metrics implements the five parity metrics (pixel, layout,
// typography, color, content) and the runner that executes them.
package metrics

import (
	"designdiff/internal/align"
	"designdiff/internal/cluster"
	"designdiff/pkg/geometry"
)

// Severity re-exports the cluster package's totally ordered severity so every
// diff region type shares one scale.
type Severity = cluster.Severity

const (
	SeverityMinor    = cluster.SeverityMinor
	SeverityModerate = cluster.SeverityModerate
	SeverityMajor    = cluster.SeverityMajor
)

// Kind identifies one of the five metrics. The set is closed: there are
// exactly five metrics and no plugin mechanism.
type Kind int

const (
	KindPixel Kind = iota
	KindLayout
	KindTypography
	KindColor
	KindContent
)

// AllKinds lists every metric kind in runner execution order.
func AllKinds() []Kind {
	return []Kind{KindPixel, KindLayout, KindTypography, KindColor, KindContent}
}

func (k Kind) String() string {
	switch k {
	case KindPixel:
		return "pixel"
	case KindLayout:
		return "layout"
	case KindTypography:
		return "typography"
	case KindColor:
		return "color"
	case KindContent:
		return "content"
	default:
		return "unknown"
	}
}

// ParseKind maps a metric name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range AllKinds() {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// PixelDiffRegion is one visual difference region in normalized coordinates.
type PixelDiffRegion struct {
	Bounds       geometry.Rect `json:"bounds"`
	Severity     Severity      `json:"severity"`
	Reason       string        `json:"reason"`
	Intensity    float64       `json:"intensity,omitempty"`
	HasIntensity bool          `json:"-"`
}

// LayoutDiffKind classifies a layout difference.
type LayoutDiffKind int

const (
	MissingElement LayoutDiffKind = iota
	ExtraElement
	PositionShift
	SizeChange
)

func (k LayoutDiffKind) String() string {
	switch k {
	case ExtraElement:
		return "extra_element"
	case PositionShift:
		return "position_shift"
	case SizeChange:
		return "size_change"
	default:
		return "missing_element"
	}
}

// LayoutDiffRegion is one layout difference.
type LayoutDiffRegion struct {
	Kind        LayoutDiffKind `json:"kind"`
	Bounds      geometry.Rect  `json:"bounds"`
	Severity    Severity       `json:"severity"`
	ElementType string         `json:"element_type,omitempty"`
	Label       string         `json:"label,omitempty"`
}

// ColorDiffKind classifies a palette difference by the rank of the affected
// reference color.
type ColorDiffKind int

const (
	PrimaryColorShift ColorDiffKind = iota
	AccentColorShift
	BackgroundColorShift
)

func (k ColorDiffKind) String() string {
	switch k {
	case AccentColorShift:
		return "accent_color_shift"
	case BackgroundColorShift:
		return "background_color_shift"
	default:
		return "primary_color_shift"
	}
}

// ColorDiff pairs a dominant reference color with its nearest implementation
// counterpart.
type ColorDiff struct {
	Kind      ColorDiffKind `json:"kind"`
	Bounds    geometry.Rect `json:"bounds"`
	Severity  Severity      `json:"severity"`
	RefColor  string        `json:"ref_color"`
	ImplColor string        `json:"impl_color"`
	DeltaE    float64       `json:"delta_e,omitempty"`
}

// TypographyIssue is one triggered typography mismatch kind.
type TypographyIssue int

const (
	FontFamilyMismatch TypographyIssue = iota
	FontSizeDiff
	FontWeightDiff
	LineHeightDiff
	LetterSpacingDiff
)

func (i TypographyIssue) String() string {
	switch i {
	case FontSizeDiff:
		return "font_size_diff"
	case FontWeightDiff:
		return "font_weight_diff"
	case LineHeightDiff:
		return "line_height_diff"
	case LetterSpacingDiff:
		return "letter_spacing_diff"
	default:
		return "font_family_mismatch"
	}
}

// TypographyDiff records the issues found on one matched (or unmatched) text
// element pair.
type TypographyDiff struct {
	ElementIDRef  string            `json:"element_id_ref,omitempty"`
	ElementIDImpl string            `json:"element_id_impl,omitempty"`
	Bounds        geometry.Rect     `json:"bounds"`
	Severity      Severity          `json:"severity"`
	Issues        []TypographyIssue `json:"issues"`
	Label         string            `json:"label,omitempty"`
}

// PixelResult is the pixel metric output.
type PixelResult struct {
	Score       float64           `json:"score"`
	DiffRegions []PixelDiffRegion `json:"diff_regions"`
	Offset      *align.Offset     `json:"alignment_offset,omitempty"`
}

// LayoutResult is the layout metric output.
type LayoutResult struct {
	Score       float64            `json:"score"`
	MatchRate   float64            `json:"match_rate"`
	AvgIoU      float64            `json:"avg_iou"`
	DiffRegions []LayoutDiffRegion `json:"diff_regions"`
}

// TypographyResult is the typography metric output.
type TypographyResult struct {
	Score float64          `json:"score"`
	Diffs []TypographyDiff `json:"diffs"`
}

// ColorResult is the color metric output.
type ColorResult struct {
	Score float64     `json:"score"`
	Diffs []ColorDiff `json:"diffs"`
}

// ContentResult is the content metric output.
type ContentResult struct {
	Score       float64  `json:"score"`
	MissingText []string `json:"missing_text"`
	ExtraText   []string `json:"extra_text"`
}

// Scores holds one optional slot per metric kind. A slot is nil exactly when
// the metric was not requested or its required structural data was unavailable
// on one side.
type Scores struct {
	Pixel      *PixelResult      `json:"pixel,omitempty"`
	Layout     *LayoutResult     `json:"layout,omitempty"`
	Typography *TypographyResult `json:"typography,omitempty"`
	Color      *ColorResult      `json:"color,omitempty"`
	Content    *ContentResult    `json:"content,omitempty"`
}

// Populated returns the kinds whose slots are filled, in execution order.
func (s *Scores) Populated() []Kind {
	var out []Kind
	if s.Pixel != nil {
		out = append(out, KindPixel)
	}
	if s.Layout != nil {
		out = append(out, KindLayout)
	}
	if s.Typography != nil {
		out = append(out, KindTypography)
	}
	if s.Color != nil {
		out = append(out, KindColor)
	}
	if s.Content != nil {
		out = append(out, KindContent)
	}
	return out
}

// Score returns the score for a populated kind; ok is false when the slot
// is empty.
func (s *Scores) Score(k Kind) (float64, bool) {
	switch k {
	case KindPixel:
		if s.Pixel != nil {
			return s.Pixel.Score, true
		}
	case KindLayout:
		if s.Layout != nil {
			return s.Layout.Score, true
		}
	case KindTypography:
		if s.Typography != nil {
			return s.Typography.Score, true
		}
	case KindColor:
		if s.Color != nil {
			return s.Color.Score, true
		}
	case KindContent:
		if s.Content != nil {
			return s.Content.Score, true
		}
	}
	return 0, false
}
