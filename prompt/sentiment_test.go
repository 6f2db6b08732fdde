package prompt

import (
	"math"
	"testing"
)

// TestSentimentScore tests mean polarity over token sequences.
func TestSentimentScore(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   float64
	}{
		{"empty", nil, 0},
		{"neutral words", []string{"a", "castle", "at", "sunset"}, 0},
		{"single positive", []string{"beautiful"}, 3},
		{"single negative", []string{"scary"}, -2},
		{"mixed", []string{"beautiful", "ruins"}, 0.5},
		{"diluted", []string{"happy", "a", "b", "c", "d", "e"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SentimentScore(tt.tokens)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SentimentScore(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}

// TestStem tests suffix folding onto lexicon stems.
func TestStem(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"happiness", "happi"},
		{"happy", "happi"},
		{"gloomy", "gloomi"},
		{"ruins", "ruin"},
		{"haunted", "haunt"},
		{"burning", "burn"},
		{"beautiful", "beauti"},
		{"castle", "castle"},
	}

	for _, tt := range tests {
		if got := stem(tt.token); got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

// TestSentimentScore_StemmedLookup tests that inflected forms score through
// their stems.
func TestSentimentScore_StemmedLookup(t *testing.T) {
	if SentimentScore([]string{"haunted"}) >= 0 {
		t.Error("expected negative score for haunted")
	}
	if SentimentScore([]string{"delightful"}) <= 0 {
		t.Error("expected positive score for delightful")
	}
}
