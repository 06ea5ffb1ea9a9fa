// Package text provides small text measurement helpers shared by the summarization
// pipeline and the text-generation providers.
package text

import "unicode/utf8"

// bytesPerToken is the average number of UTF-8 bytes per model token used by
// EstimateTokens. It matches the common rule of thumb for English prose.
const bytesPerToken = 4

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters and emoji count as one.
//
//	CountRunes("hello")      // 5
//	CountRunes("héllo wörld") // 11
//	CountRunes("")           // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// EstimateTokens approximates the number of model tokens in text as
// ceil(len(bytes)/4). It is the token-count source for the prompt budget.
func EstimateTokens(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	return (n + bytesPerToken - 1) / bytesPerToken
}

// TruncateToTokens cuts text so that EstimateTokens(result) <= budget. The cut
// never splits a multi-byte rune. The second return value reports whether any
// text was dropped. A non-positive budget returns text unchanged.
func TruncateToTokens(text string, budget int) (string, bool) {
	if budget <= 0 || EstimateTokens(text) <= budget {
		return text, false
	}

	limit := budget * bytesPerToken
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit], true
}
