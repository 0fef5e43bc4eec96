// Package textwin derives the bounded context window ("tail") that the
// assist engine sends to the suggestion provider, and the keystroke-stable
// key used to fingerprint that context.
package textwin

import "strings"

const (
	// DefaultMaxTail is the maximum tail length in runes.
	DefaultMaxTail = 300

	// DefaultKeyTokens is how many trailing tokens the stable key keeps.
	DefaultKeyTokens = 20
)

// Tail returns the suffix of text ending at caret, truncated to the last
// maxChars runes and trimmed of surrounding whitespace. The caret is a byte
// offset on a rune boundary; a caret outside [0,len(text)] means "end of
// text". maxChars <= 0 selects DefaultMaxTail.
func Tail(text string, caret int, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxTail
	}
	if caret >= 0 && caret < len(text) {
		text = text[:caret]
	}
	runes := []rune(text)
	if len(runes) > maxChars {
		runes = runes[len(runes)-maxChars:]
	}
	return strings.TrimSpace(string(runes))
}

// StableKey fingerprints a tail so that keystrokes inside the current word
// do not change the key. The final token is assumed in-progress and is
// dropped; the last keep tokens of the remainder are joined by single
// spaces. keep <= 0 selects DefaultKeyTokens.
//
// "the quick brown fo" and "the quick brown fox" share the key
// "the quick brown"; appending a space and a new letter changes it.
func StableKey(tail string, keep int) string {
	if keep <= 0 {
		keep = DefaultKeyTokens
	}
	tokens := strings.Fields(tail)
	if len(tokens) == 0 {
		return ""
	}
	tokens = tokens[:len(tokens)-1]
	if len(tokens) > keep {
		tokens = tokens[len(tokens)-keep:]
	}
	return strings.Join(tokens, " ")
}

// Words counts whitespace-separated words, excluding empty tokens.
func Words(s string) int {
	return len(strings.Fields(s))
}
