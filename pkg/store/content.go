package store

import "strings"

// Placeholder prefixes mark raw content produced by a degraded research step.
// Downstream steps treat matching content as error-like rather than real
// source material.
const (
	PlaceholderMinimalInfo  = "Minimal information"
	PlaceholderResearchFail = "Research error"
)

// IsLowInformation reports whether raw content is error-like: either tagged by
// the placeholder convention or shorter than the minimum-information threshold.
func IsLowInformation(content string, minChars int) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < minChars {
		return true
	}
	return strings.HasPrefix(trimmed, PlaceholderMinimalInfo) ||
		strings.HasPrefix(trimmed, PlaceholderResearchFail)
}

// Truncate clips s to at most maxLen runes, never splitting a multi-byte
// rune mid-sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
