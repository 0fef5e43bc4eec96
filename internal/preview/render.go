package preview

import (
	"strings"
	"unicode"

	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
)

// Stats summarizes a pending edit for the status line.
type Stats struct {
	Inserted int // runes added by the target
	Deleted  int // runes removed from the source
}

// Inline renders source→target as one flowing text: unchanged runs plain,
// removals struck through, additions highlighted. The draft itself is
// never touched; this is the live preview a pending edit derives.
func Inline(source, target string) string {
	var b strings.Builder
	for _, d := range wordDiffs(source, target) {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteStyle.Render(d.Text))
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertStyle.Render(d.Text))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Unified renders source→target as a unified diff with draft/proposed
// labels, for the review pane and the drafts diff command.
func Unified(source, target string) string {
	return udiff.Unified("draft", "proposed", source, target)
}

// DiffStats counts the rune churn between source and target. It measures
// at character granularity so the numbers stay exact even when the inline
// view widens an edit to whole words.
func DiffStats(source, target string) Stats {
	var s Stats
	for _, d := range charDiffs(source, target) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			s.Deleted += len([]rune(d.Text))
		}
	}
	return s
}

// charDiffs computes a character diff with semantic cleanup.
func charDiffs(source, target string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(source, target, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// wordDiffs diffs at word granularity so edits strike and insert whole
// words instead of the letter runs two words happen to share. This is the
// lines-to-chars recipe with word and whitespace runs as the units: each
// distinct token becomes one rune, the rune strings are diffed, and the
// result is mapped back through the vocabulary.
func wordDiffs(source, target string) []diffmatchpatch.Diff {
	vocab := []string{""} // rune 0 is never produced
	index := make(map[string]rune)
	encode := func(text string) string {
		var b strings.Builder
		for _, tok := range splitWords(text) {
			r, ok := index[tok]
			if !ok {
				r = rune(len(vocab))
				index[tok] = r
				vocab = append(vocab, tok)
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	srcEnc := encode(source)
	dstEnc := encode(target)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(srcEnc, dstEnc, false)

	out := make([]diffmatchpatch.Diff, 0, len(diffs))
	for _, d := range diffs {
		var b strings.Builder
		for _, r := range d.Text {
			b.WriteString(vocab[r])
		}
		d.Text = b.String()
		out = append(out, d)
	}
	return out
}

// splitWords tokenizes text into alternating word and whitespace runs.
func splitWords(text string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range text {
		s := unicode.IsSpace(r)
		if i > 0 && s != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
		}
		inSpace = s
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}
