package view

import (
	"reflect"
	"testing"
)

func TestHasLayoutData(t *testing.T) {
	v := &NormalizedView{}
	if v.HasLayoutData() {
		t.Error("empty view claims layout data")
	}

	v.DOM = &DomSnapshot{}
	if v.HasLayoutData() {
		t.Error("empty DOM snapshot claims layout data")
	}

	v.DOM.Nodes = []DomNode{{ID: "a", Tag: "div"}}
	if !v.HasLayoutData() {
		t.Error("DOM nodes not detected")
	}

	tree := &NormalizedView{DesignTree: &DesignSnapshot{Nodes: []DesignNode{{ID: "n"}}}}
	if !tree.HasLayoutData() {
		t.Error("design tree nodes not detected")
	}
}

func TestHasStyledText(t *testing.T) {
	v := &NormalizedView{DOM: &DomSnapshot{Nodes: []DomNode{
		{ID: "a", Tag: "p", Text: "hello"}, // text but no style
	}}}
	if v.HasStyledText() {
		t.Error("unstyled text counted as styled")
	}

	v.DOM.Nodes[0].Style = &ComputedStyle{FontFamily: "Inter"}
	if !v.HasStyledText() {
		t.Error("styled text not detected")
	}

	// Whitespace-only text never counts.
	w := &NormalizedView{DOM: &DomSnapshot{Nodes: []DomNode{
		{ID: "a", Tag: "p", Text: "   ", Style: &ComputedStyle{}},
	}}}
	if w.HasStyledText() {
		t.Error("whitespace text counted as styled")
	}
}

func TestHasTextContentFromOCR(t *testing.T) {
	v := &NormalizedView{OCRBlocks: []OcrBlock{{Text: "Scan me"}}}
	if !v.HasTextContent() {
		t.Error("OCR text not detected")
	}
	if (&NormalizedView{OCRBlocks: []OcrBlock{{Text: " "}}}).HasTextContent() {
		t.Error("blank OCR block counted as text")
	}
}

func TestTextStringsOrder(t *testing.T) {
	v := &NormalizedView{
		DOM: &DomSnapshot{Nodes: []DomNode{
			{Text: " first "},
			{Text: ""},
			{Text: "second"},
		}},
		DesignTree: &DesignSnapshot{Nodes: []DesignNode{{Text: "third"}}},
		OCRBlocks:  []OcrBlock{{Text: "fourth"}},
	}

	got := v.TextStrings()
	want := []string{"first", "second", "third", "fourth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TextStrings() = %v, want %v", got, want)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindImage: "image",
		KindURL:   "url",
		KindFigma: "figma",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
