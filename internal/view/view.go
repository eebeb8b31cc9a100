// Package view defines the normalized, capture-method-agnostic representation
// of a design artifact that every metric operates on.
package view

import (
	"strings"

	"designdiff/pkg/geometry"
)

// Kind identifies how an artifact was captured.
type Kind int

const (
	KindImage Kind = iota // Local raster file
	KindURL               // Rendered web page
	KindFigma             // Rasterized design-tool node
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindFigma:
		return "figma"
	default:
		return "image"
	}
}

// NormalizedView is the unified representation of one artifact: a screenshot
// plus whatever structural data the capture method could provide. DOM, design
// tree, and OCR blocks are all optional; a plain image has none of them.
// Views are immutable once produced and owned by the caller for the duration
// of one comparison.
type NormalizedView struct {
	Kind           Kind            `json:"kind"`
	Source         string          `json:"source"`
	ScreenshotPath string          `json:"screenshot_path"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	DOM            *DomSnapshot    `json:"dom,omitempty"`
	DesignTree     *DesignSnapshot `json:"design_tree,omitempty"`
	OCRBlocks      []OcrBlock      `json:"ocr_blocks,omitempty"`
}

// DomSnapshot is a flattened list of rendered DOM elements. The metrics layer
// needs no parent/child ownership beyond the flat list.
type DomSnapshot struct {
	Nodes []DomNode `json:"nodes"`
}

// DomNode is one rendered element with its layout box and computed style.
type DomNode struct {
	ID          string         `json:"id"`
	Tag         string         `json:"tag"`
	Text        string         `json:"text,omitempty"`
	BoundingBox geometry.Rect  `json:"bounding_box"`
	Style       *ComputedStyle `json:"computed_style,omitempty"`
}

// ComputedStyle carries the subset of CSS computed style the metrics consume.
type ComputedStyle struct {
	FontFamily    string  `json:"font_family,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	FontWeight    string  `json:"font_weight,omitempty"`
	LineHeight    float64 `json:"line_height,omitempty"`
	LetterSpacing float64 `json:"letter_spacing,omitempty"`
	Color         string  `json:"color,omitempty"`
	Background    string  `json:"background,omitempty"`
}

// DesignSnapshot is the flattened design-tool node tree.
type DesignSnapshot struct {
	Nodes []DesignNode `json:"nodes"`
}

// DesignNode is one design-tool node.
type DesignNode struct {
	ID          string           `json:"id"`
	NodeType    string           `json:"node_type"`
	Name        string           `json:"name,omitempty"`
	Text        string           `json:"text,omitempty"`
	BoundingBox geometry.Rect    `json:"bounding_box"`
	Typography  *TypographyStyle `json:"typography,omitempty"`
	Fills       []string         `json:"fills,omitempty"`
}

// TypographyStyle is the common projection of text styling shared by DOM and
// design-tree sources.
type TypographyStyle struct {
	FontFamily    string  `json:"font_family,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	FontWeight    string  `json:"font_weight,omitempty"`
	LineHeight    float64 `json:"line_height,omitempty"`
	LetterSpacing float64 `json:"letter_spacing,omitempty"`
}

// OcrBlock is one OCR-detected text region, used as a text source when no
// structural tree exists.
type OcrBlock struct {
	Text        string        `json:"text"`
	BoundingBox geometry.Rect `json:"bounding_box"`
	Confidence  float64       `json:"confidence"`
}

// HasLayoutData reports whether the view exposes any elements with bounding
// boxes (DOM preferred, design tree otherwise).
func (v *NormalizedView) HasLayoutData() bool {
	if v.DOM != nil && len(v.DOM.Nodes) > 0 {
		return true
	}
	return v.DesignTree != nil && len(v.DesignTree.Nodes) > 0
}

// HasStyledText reports whether the view exposes at least one text-bearing
// element with style information.
func (v *NormalizedView) HasStyledText() bool {
	if v.DOM != nil {
		for _, n := range v.DOM.Nodes {
			if strings.TrimSpace(n.Text) != "" && n.Style != nil {
				return true
			}
		}
	}
	if v.DesignTree != nil {
		for _, n := range v.DesignTree.Nodes {
			if strings.TrimSpace(n.Text) != "" && n.Typography != nil {
				return true
			}
		}
	}
	return false
}

// HasTextContent reports whether any text source (DOM, design tree, or OCR)
// yields at least one non-empty string.
func (v *NormalizedView) HasTextContent() bool {
	if v.DOM != nil {
		for _, n := range v.DOM.Nodes {
			if strings.TrimSpace(n.Text) != "" {
				return true
			}
		}
	}
	if v.DesignTree != nil {
		for _, n := range v.DesignTree.Nodes {
			if strings.TrimSpace(n.Text) != "" {
				return true
			}
		}
	}
	for _, b := range v.OCRBlocks {
		if strings.TrimSpace(b.Text) != "" {
			return true
		}
	}
	return false
}

// TextStrings collects all trimmed, non-empty text strings from every
// populated text source, in source order.
func (v *NormalizedView) TextStrings() []string {
	var out []string
	if v.DOM != nil {
		for _, n := range v.DOM.Nodes {
			if t := strings.TrimSpace(n.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	if v.DesignTree != nil {
		for _, n := range v.DesignTree.Nodes {
			if t := strings.TrimSpace(n.Text); t != "" {
				out = append(out, t)
			}
		}
	}
	for _, b := range v.OCRBlocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
