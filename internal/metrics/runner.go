package metrics

import (
	"fmt"

	"designdiff/internal/view"
)

// Runner selects, gates, and executes the requested metrics against a pair of
// normalized views. It is a plain value: independent comparisons can run
// concurrently with separate Runners.
type Runner struct {
	Pixel      PixelConfig
	Layout     LayoutConfig
	Typography TypographyConfig
	Color      ColorConfig
	Content    ContentConfig
}

// NewRunner returns a Runner with every metric at its default configuration.
func NewRunner() *Runner {
	return &Runner{
		Pixel:      DefaultPixelConfig(),
		Layout:     DefaultLayoutConfig(),
		Typography: DefaultTypographyConfig(),
		Color:      DefaultColorConfig(),
		Content:    DefaultContentConfig(),
	}
}

// Run executes the requested metric kinds (empty = all) and assembles the
// scores record. Structurally unavailable metrics are skipped, leaving their
// slot nil: a comparison never fails outright just because one artifact has
// no DOM. Decode failures and unknown metric kinds are hard errors.
func (r *Runner) Run(reference, implementation *view.NormalizedView, requested []Kind) (*Scores, error) {
	if reference == nil || implementation == nil {
		return nil, fmt.Errorf("runner: nil view")
	}

	kinds := requested
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	if err := validateKinds(kinds); err != nil {
		return nil, err
	}

	scores := &Scores{}
	for _, kind := range kinds {
		switch kind {
		case KindPixel:
			m := &PixelMetric{Config: r.Pixel}
			result, err := m.Compute(reference, implementation)
			if err != nil {
				return nil, fmt.Errorf("pixel metric: %w", err)
			}
			scores.Pixel = result

		case KindLayout:
			// Gated on the reference side only: an implementation without
			// elements is a reportable zero score, not a skip.
			if !reference.HasLayoutData() {
				continue
			}
			m := &LayoutMetric{Config: r.Layout}
			result, err := m.Compute(reference, implementation)
			if err != nil {
				return nil, fmt.Errorf("layout metric: %w", err)
			}
			scores.Layout = result

		case KindTypography:
			if !reference.HasStyledText() || !implementation.HasStyledText() {
				continue
			}
			m := &TypographyMetric{Config: r.Typography}
			result, err := m.Compute(reference, implementation)
			if err != nil {
				return nil, fmt.Errorf("typography metric: %w", err)
			}
			scores.Typography = result

		case KindColor:
			m := &ColorMetric{Config: r.Color}
			result, err := m.Compute(reference, implementation)
			if err != nil {
				return nil, fmt.Errorf("color metric: %w", err)
			}
			scores.Color = result

		case KindContent:
			if !reference.HasTextContent() || !implementation.HasTextContent() {
				continue
			}
			m := &ContentMetric{Config: r.Content}
			result, err := m.Compute(reference, implementation)
			if err != nil {
				return nil, fmt.Errorf("content metric: %w", err)
			}
			scores.Content = result
		}
	}

	return scores, nil
}

// ParseKinds resolves metric names to kinds, failing with an error that
// names every unrecognized metric.
func ParseKinds(names []string) ([]Kind, error) {
	var kinds []Kind
	var unknown []string
	for _, name := range names {
		k, ok := ParseKind(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		kinds = append(kinds, k)
	}
	if len(unknown) > 0 {
		return nil, &UnavailableMetricsError{Names: unknown}
	}
	return kinds, nil
}

// validateKinds rejects metric kinds outside the closed set, naming each
// unknown kind in the error.
func validateKinds(kinds []Kind) error {
	var unknown []string
	for _, k := range kinds {
		if k < KindPixel || k > KindContent {
			unknown = append(unknown, fmt.Sprintf("kind(%d)", int(k)))
		}
	}
	if len(unknown) > 0 {
		return &UnavailableMetricsError{Names: unknown}
	}
	return nil
}
