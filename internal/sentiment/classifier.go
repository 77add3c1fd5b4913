// Package sentiment maps response text to the emotional state the overlay
// should display, using VADER lexical polarity plus simple textual rules.
package sentiment

import (
	"strings"

	"github.com/aikodesk/aiko/pkg/emotion"
	"github.com/jonreiter/govader"
)

// Polarity thresholds for the happy/sad rules.
const (
	happyThreshold = 0.3
	sadThreshold   = -0.3
)

// Classifier scores text polarity and applies the display rules.
// A Classifier is deterministic: identical input always yields identical
// output, within a process and across restarts.
type Classifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewClassifier creates a classifier with the stock VADER lexicon.
func NewClassifier() *Classifier {
	return &Classifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the VADER compound score for text, in [-1, 1].
func (c *Classifier) Polarity(text string) float64 {
	return c.analyzer.PolarityScores(text).Compound
}

// Classify maps text to an emotional state. Rules are ordered and the first
// match wins: a happy-sounding question is happy, not confused, because the
// polarity rules run before the question rule.
func (c *Classifier) Classify(text string) emotion.State {
	polarity := c.Polarity(text)

	switch {
	case polarity > happyThreshold:
		return emotion.StateHappy
	case polarity < sadThreshold:
		return emotion.StateSad
	}

	if strings.Contains(text, "?") || strings.Contains(strings.ToLower(text), "not sure") {
		return emotion.StateConfused
	}
	return emotion.StateIdle
}
