// Package tokens estimates the token count of generated responses. The
// backend does not report usage, so records carry an estimate instead.
package tokens

import (
	"math"
	"unicode/utf8"
)

const charsPerToken = 4

// Counter counts tokens in text.
type Counter interface {
	Count(text string) int
}

// EstimatingCounter approximates token count as ~4 characters per token.
type EstimatingCounter struct{}

func (EstimatingCounter) Count(text string) int {
	return Estimate(text)
}

// Estimate counts characters rather than bytes so that non-ASCII output is
// not overcounted.
func Estimate(text string) int {
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / float64(charsPerToken)))
}
