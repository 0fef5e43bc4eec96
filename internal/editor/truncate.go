package editor

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateLine collapses text onto a single display line and truncates it
// to maxWidth columns with a trailing ellipsis. Width-aware so CJK and
// emoji do not overflow the bar.
func truncateLine(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	const ellipsis = "…"
	head := widthPrefix(s, maxWidth-1)
	return head + ellipsis
}

// widthPrefix returns the longest prefix of s whose display width does
// not exceed maxWidth.
func widthPrefix(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}
