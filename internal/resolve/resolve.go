// Package resolve locates the span of a draft that a proposed edit should
// replace.
//
// Selection state is unreliable: it may have been lost between when an
// edit was requested and when the response arrived, and different input
// surfaces report it differently. Resolution is therefore two-tier: trust
// the selection when its text matches the original fragment, otherwise
// fall back to replacing the first occurrence anywhere in the draft. The
// fallback can pick the wrong occurrence when the fragment repeats; the
// outcome records which tier applied so hosts can log that.
package resolve

import "strings"

// Selection is an ephemeral span reference: byte offsets plus the text the
// surface reported for them. Read once per replacement and discarded.
type Selection struct {
	Start int
	End   int
	Text  string
}

// Tier identifies which resolution path produced an outcome.
type Tier int

const (
	// TierNone means the original fragment was not found; the draft is
	// unchanged.
	TierNone Tier = iota

	// TierSelection means the active selection matched and the exact span
	// was replaced.
	TierSelection

	// TierScan means the whole-document fallback replaced the first
	// occurrence.
	TierScan
)

// String returns the tier name for logs.
func (t Tier) String() string {
	switch t {
	case TierSelection:
		return "selection"
	case TierScan:
		return "scan"
	default:
		return "none"
	}
}

// Outcome is the result of a replacement. Caret is the byte offset just
// past the inserted text, or -1 when nothing changed.
type Outcome struct {
	Text  string
	Caret int
	Via   Tier
}

// Changed reports whether the draft text was modified.
func (o Outcome) Changed() bool {
	return o.Via != TierNone
}

// Replace applies edited over original within text. A selection whose
// trimmed text equals the trimmed original wins and is replaced in place;
// otherwise the first occurrence of original anywhere in text is replaced.
// A missing occurrence is not an error: the outcome reports TierNone.
func Replace(text string, sel *Selection, original, edited string) Outcome {
	if sel != nil && selectionMatches(text, sel, original) {
		out := text[:sel.Start] + edited + text[sel.End:]
		return Outcome{
			Text:  out,
			Caret: sel.Start + len(edited),
			Via:   TierSelection,
		}
	}

	idx := strings.Index(text, original)
	if original == "" || idx < 0 {
		return Outcome{Text: text, Caret: -1, Via: TierNone}
	}
	out := text[:idx] + edited + text[idx+len(original):]
	return Outcome{
		Text:  out,
		Caret: idx + len(edited),
		Via:   TierScan,
	}
}

// selectionMatches guards tier one: the span must be sane for the current
// text and its trimmed content must equal the trimmed original.
func selectionMatches(text string, sel *Selection, original string) bool {
	if sel.Start < 0 || sel.End > len(text) || sel.Start >= sel.End {
		return false
	}
	if strings.TrimSpace(sel.Text) != strings.TrimSpace(original) {
		return false
	}
	// The surface's reported text must still be what the span holds.
	return text[sel.Start:sel.End] == sel.Text
}
