package metrics

import (
	"strings"

	"designdiff/internal/view"
)

// ContentConfig configures the content similarity metric.
type ContentConfig struct {
	MatchThreshold     float64 // Min token-set similarity for two strings to match
	ExtraPenaltyWeight float64 // Weight on the extra-characters penalty
	Debug              bool
}

// DefaultContentConfig returns default content metric settings.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		MatchThreshold:     0.7,
		ExtraPenaltyWeight: 0.2,
	}
}

// ContentMetric compares the text content of the two views. It never fails:
// two textless views are trivially identical.
type ContentMetric struct {
	Config ContentConfig
}

// Compute matches reference strings to implementation strings by token-set
// similarity, consuming each implementation string at most once.
func (m *ContentMetric) Compute(reference, implementation *view.NormalizedView) (*ContentResult, error) {
	refTexts := reference.TextStrings()
	implTexts := implementation.TextStrings()

	if len(refTexts) == 0 && len(implTexts) == 0 {
		return &ContentResult{Score: 1.0}, nil
	}

	refNorm := make([]string, len(refTexts))
	for i, t := range refTexts {
		refNorm[i] = normalizeContent(t)
	}
	implNorm := make([]string, len(implTexts))
	implTokens := make([]map[string]struct{}, len(implTexts))
	for i, t := range implTexts {
		implNorm[i] = normalizeContent(t)
		implTokens[i] = tokenSet(implNorm[i])
	}

	implUsed := make([]bool, len(implTexts))
	matched := 0
	var missing []string

	for i, norm := range refNorm {
		refToks := tokenSet(norm)
		bestScore := 0.0
		bestIdx := -1
		for j := range implNorm {
			if implUsed[j] {
				continue
			}
			if s := tokenSimilarity(refToks, implTokens[j]); s > bestScore {
				bestScore = s
				bestIdx = j
			}
		}
		if bestIdx >= 0 && bestScore >= m.Config.MatchThreshold {
			implUsed[bestIdx] = true
			matched++
		} else {
			missing = append(missing, refTexts[i])
		}
	}

	var extra []string
	extraChars := 0
	for j, used := range implUsed {
		if !used {
			extra = append(extra, implTexts[j])
			extraChars += len(implNorm[j])
		}
	}

	baseScore := 1.0
	if len(refTexts) > 0 {
		baseScore = float64(matched) / float64(len(refTexts))
	}

	refChars := 0
	for _, n := range refNorm {
		refChars += len(n)
	}
	penalty := 0.0
	if extraChars > 0 {
		if refChars > 0 {
			penalty = float64(extraChars) / float64(refChars) * m.Config.ExtraPenaltyWeight
		} else {
			penalty = 0.5
		}
		if penalty > 0.5 {
			penalty = 0.5
		}
	}

	score := baseScore - penalty
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return &ContentResult{
		Score:       score,
		MissingText: missing,
		ExtraText:   extra,
	}, nil
}

// normalizeContent lowercases and strips everything but letters, digits, and
// whitespace, collapsing whitespace runs.
func normalizeContent(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' || r == '\t' || r == '\n' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// tokenSimilarity is the Dice coefficient over two token sets:
// 2*|A∩B| / (|A|+|B|).
func tokenSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			common++
		}
	}
	return 2 * float64(common) / float64(len(a)+len(b))
}
