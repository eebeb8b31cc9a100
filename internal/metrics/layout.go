package metrics

import (
	"strings"

	"designdiff/internal/view"
	"designdiff/pkg/geometry"
)

// ElementKind is the coarse element category used for layout matching.
type ElementKind int

const (
	ElementOther ElementKind = iota
	ElementButton
	ElementHeading
	ElementText
	ElementImage
	ElementInput
)

func (k ElementKind) String() string {
	switch k {
	case ElementButton:
		return "button"
	case ElementHeading:
		return "heading"
	case ElementText:
		return "text"
	case ElementImage:
		return "image"
	case ElementInput:
		return "input"
	default:
		return "other"
	}
}

// LayoutConfig configures the layout similarity metric.
type LayoutConfig struct {
	MatchThreshold     float64 // Min IoU for a candidate to count as matched at all
	GoodMatchThreshold float64 // IoU below this flags the pair as a position shift
	Debug              bool
}

// DefaultLayoutConfig returns default layout metric settings.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MatchThreshold:     0.1,
		GoodMatchThreshold: 0.5,
	}
}

// LayoutMetric compares element placement between the two views.
type LayoutMetric struct {
	Config LayoutConfig
}

// layoutElement is the flat {kind, bbox} projection used for matching.
type layoutElement struct {
	kind  ElementKind
	box   geometry.Rect
	label string
}

// Compute greedily matches same-kind elements by IoU and scores the views by
// match rate and average overlap. An implementation side with no elements is
// a valid "everything is missing" result, not an error; only a reference side
// without layout data fails.
func (m *LayoutMetric) Compute(reference, implementation *view.NormalizedView) (*LayoutResult, error) {
	refElems := extractLayoutElements(reference)
	if len(refElems) == 0 {
		return nil, &MissingDataError{Metric: KindLayout, Side: "reference", What: "DOM or design-tree elements"}
	}
	implElems := extractLayoutElements(implementation)

	matched := make([]int, len(refElems)) // impl index per ref element, -1 = unmatched
	implUsed := make([]bool, len(implElems))
	matchIoU := make([]float64, len(refElems))

	for i, ref := range refElems {
		matched[i] = -1
		bestIoU := 0.0
		bestIdx := -1
		for j, impl := range implElems {
			if implUsed[j] || impl.kind != ref.kind {
				continue
			}
			// Strictly-greater keeps ties resolved by first-encountered index.
			if iou := ref.box.IoU(impl.box); iou >= m.Config.MatchThreshold && iou > bestIoU {
				bestIoU = iou
				bestIdx = j
			}
		}
		if bestIdx >= 0 {
			matched[i] = bestIdx
			matchIoU[i] = bestIoU
			implUsed[bestIdx] = true
		}
	}

	matchedCount := 0
	var iouSum float64
	var diffs []LayoutDiffRegion

	refW, refH := float64(reference.Width), float64(reference.Height)
	for i, ref := range refElems {
		if matched[i] < 0 {
			diffs = append(diffs, LayoutDiffRegion{
				Kind:        MissingElement,
				Bounds:      normalizeBox(ref.box, refW, refH),
				Severity:    SeverityMajor,
				ElementType: ref.kind.String(),
				Label:       ref.label,
			})
			continue
		}
		matchedCount++
		iouSum += matchIoU[i]
		if matchIoU[i] < m.Config.GoodMatchThreshold {
			diffs = append(diffs, LayoutDiffRegion{
				Kind:        PositionShift,
				Bounds:      normalizeBox(ref.box, refW, refH),
				Severity:    SeverityMinor,
				ElementType: ref.kind.String(),
				Label:       ref.label,
			})
		}
	}
	for j, impl := range implElems {
		if !implUsed[j] {
			diffs = append(diffs, LayoutDiffRegion{
				Kind:        ExtraElement,
				Bounds:      normalizeBox(impl.box, refW, refH),
				Severity:    SeverityModerate,
				ElementType: impl.kind.String(),
				Label:       impl.label,
			})
		}
	}

	total := len(refElems)
	if len(implElems) > total {
		total = len(implElems)
	}
	matchRate := 1.0
	if total > 0 {
		matchRate = float64(matchedCount) / float64(total)
	}
	avgIoU := 0.0
	if matchedCount > 0 {
		avgIoU = iouSum / float64(matchedCount)
	}

	return &LayoutResult{
		Score:       0.5*matchRate + 0.5*avgIoU,
		MatchRate:   matchRate,
		AvgIoU:      avgIoU,
		DiffRegions: diffs,
	}, nil
}

// extractLayoutElements flattens the view into {kind, bbox} pairs, preferring
// DOM nodes over the design tree when both are present.
func extractLayoutElements(v *view.NormalizedView) []layoutElement {
	var out []layoutElement
	if v.DOM != nil && len(v.DOM.Nodes) > 0 {
		for _, n := range v.DOM.Nodes {
			out = append(out, layoutElement{
				kind:  kindFromTag(n.Tag),
				box:   n.BoundingBox,
				label: n.Text,
			})
		}
		return out
	}
	if v.DesignTree != nil {
		for _, n := range v.DesignTree.Nodes {
			out = append(out, layoutElement{
				kind:  kindFromDesignNode(n),
				box:   n.BoundingBox,
				label: nodeLabel(n),
			})
		}
	}
	return out
}

func kindFromTag(tag string) ElementKind {
	switch strings.ToLower(tag) {
	case "button":
		return ElementButton
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return ElementHeading
	case "p", "span", "a", "label", "li", "td", "th", "blockquote":
		return ElementText
	case "img", "svg", "picture", "video", "canvas":
		return ElementImage
	case "input", "textarea", "select":
		return ElementInput
	default:
		return ElementOther
	}
}

func kindFromDesignNode(n view.DesignNode) ElementKind {
	name := strings.ToLower(n.Name)
	switch strings.ToUpper(n.NodeType) {
	case "TEXT":
		if strings.Contains(name, "heading") || strings.Contains(name, "title") {
			return ElementHeading
		}
		return ElementText
	case "IMAGE", "VECTOR":
		return ElementImage
	}
	if strings.Contains(name, "button") {
		return ElementButton
	}
	if strings.Contains(name, "input") || strings.Contains(name, "field") {
		return ElementInput
	}
	return ElementOther
}

func nodeLabel(n view.DesignNode) string {
	if n.Text != "" {
		return n.Text
	}
	return n.Name
}

// normalizeBox converts a view-pixel box into 0..1 coordinates when the view
// dimensions are known; boxes already in normalized space pass through.
func normalizeBox(box geometry.Rect, w, h float64) geometry.Rect {
	if w <= 0 || h <= 0 {
		return box
	}
	if box.X+box.Width <= 1.5 && box.Y+box.Height <= 1.5 {
		return box
	}
	return geometry.Rect{
		X:      box.X / w,
		Y:      box.Y / h,
		Width:  box.Width / w,
		Height: box.Height / h,
	}
}
