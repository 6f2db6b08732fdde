package prompt

import (
	"strings"
	"unicode"
)

// Tuning constants for the enhancement pipeline. The thresholds and phrase
// cap match the production deployment and should not be re-derived.
const (
	// MaxStylePhrases caps how many style enhancement phrases are appended.
	MaxStylePhrases = 2

	// PositiveSentimentThreshold is the mean polarity above which the
	// uplifting clause is appended.
	PositiveSentimentThreshold = 0.5

	// NegativeSentimentThreshold is the mean polarity below which the
	// dramatic clause is appended.
	NegativeSentimentThreshold = -0.5
)

// Clauses appended by the topical and sentiment steps.
const (
	portraitClause  = "detailed facial features, perfect eyes"
	landscapeClause = "epic scenery, atmospheric perspective"
	fantasyClause   = "ethereal lighting, mystical atmosphere"
	upliftingClause = "vibrant colors, uplifting mood"
	dramaticClause  = "moody atmosphere, dramatic lighting"
)

// topicalSets are checked in fixed order; each set whose membership is
// non-empty contributes its clause exactly once. Clauses are additive.
var topicalSets = []struct {
	words  []string
	clause string
}{
	{[]string{"portrait", "face"}, portraitClause},
	{[]string{"landscape", "scenery"}, landscapeClause},
	{[]string{"fantasy", "magical"}, fantasyClause},
}

// Enhancer augments raw prompts with style phrases, topical boosts, and
// sentiment-driven mood clauses. It is a pure function of its inputs and the
// immutable registry and is safe for concurrent use.
type Enhancer struct {
	registry *Registry
}

// NewEnhancer creates an Enhancer over the given style registry.
func NewEnhancer(registry *Registry) *Enhancer {
	return &Enhancer{registry: registry}
}

// Enhance produces the enhanced prompt for a raw prompt and style id.
//
// The original prompt is never truncated or rewritten; every step only
// appends, joining clauses with ", ". Only the style-phrase step deduplicates
// against the original prompt; appended clauses are not deduplicated against
// each other. Unknown style ids skip the phrase step but still run the
// topical and sentiment steps.
func (e *Enhancer) Enhance(prompt, styleID string) string {
	enhanced := prompt
	lower := strings.ToLower(prompt)
	tokens := Tokenize(lower)

	// Style enhancement phrases, in list order, skipping any phrase already
	// present in the prompt.
	if style, ok := e.registry.Style(styleID); ok && len(style.EnhancementPhrases) > 0 {
		var additions []string
		for _, phrase := range style.EnhancementPhrases {
			if len(additions) == MaxStylePhrases {
				break
			}
			if !strings.Contains(lower, strings.ToLower(phrase)) {
				additions = append(additions, phrase)
			}
		}
		if len(additions) > 0 {
			enhanced += ", " + strings.Join(additions, ", ")
		}
	}

	// Topical keyword boosts.
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}
	for _, topical := range topicalSets {
		for _, w := range topical.words {
			if tokenSet[w] {
				enhanced += ", " + topical.clause
				break
			}
		}
	}

	// Sentiment-driven mood clause.
	score := SentimentScore(tokens)
	if score > PositiveSentimentThreshold {
		enhanced += ", " + upliftingClause
	} else if score < NegativeSentimentThreshold {
		enhanced += ", " + dramaticClause
	}

	return enhanced
}

// Tokenize splits a string into lowercase word tokens: maximal runs of
// letters and digits. Pure function.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
