package resolve

import (
	"strings"
	"testing"
)

func TestSelectionReplace(t *testing.T) {
	t.Parallel()

	text := "The quick brown fox jumps over the lazy dog"
	start := strings.Index(text, "brown fox")
	sel := &Selection{Start: start, End: start + len("brown fox"), Text: "brown fox"}

	out := Replace(text, sel, "brown fox", "red panda")

	if out.Via != TierSelection {
		t.Fatalf("via = %v, want selection", out.Via)
	}
	want := "The quick red panda jumps over the lazy dog"
	if out.Text != want {
		t.Errorf("text = %q, want %q", out.Text, want)
	}
	if out.Caret != start+len("red panda") {
		t.Errorf("caret = %d, want %d", out.Caret, start+len("red panda"))
	}
}

func TestSelectionMatchIgnoresEdgeWhitespace(t *testing.T) {
	t.Parallel()

	text := "alpha beta gamma"
	start := strings.Index(text, " beta ")
	sel := &Selection{Start: start, End: start + len(" beta "), Text: " beta "}

	out := Replace(text, sel, "beta", "delta")

	if out.Via != TierSelection {
		t.Fatalf("via = %v, want selection", out.Via)
	}
	if out.Text != "alphadeltagamma" {
		t.Errorf("text = %q", out.Text)
	}
}

func TestScanFallbackFirstOccurrence(t *testing.T) {
	t.Parallel()

	text := "say it once, say it twice"

	// No selection at all.
	out := Replace(text, nil, "say it", "shout it")
	if out.Via != TierScan {
		t.Fatalf("via = %v, want scan", out.Via)
	}
	if out.Text != "shout it once, say it twice" {
		t.Errorf("text = %q", out.Text)
	}
	if out.Caret != len("shout it") {
		t.Errorf("caret = %d, want %d", out.Caret, len("shout it"))
	}
}

func TestMismatchedSelectionFallsBack(t *testing.T) {
	t.Parallel()

	text := "one two three two"
	sel := &Selection{Start: 0, End: 3, Text: "one"}

	// Selection text does not match the original: fall back to scan.
	out := Replace(text, sel, "two", "2")
	if out.Via != TierScan {
		t.Fatalf("via = %v, want scan", out.Via)
	}
	if out.Text != "one 2 three two" {
		t.Errorf("text = %q", out.Text)
	}
}

func TestStaleSelectionOffsetsFallBack(t *testing.T) {
	t.Parallel()

	// The span no longer holds the reported text (document changed since
	// the selection was captured).
	text := "rewritten document body"
	sel := &Selection{Start: 0, End: 5, Text: "hello"}

	out := Replace(text, sel, "hello", "goodbye")
	if out.Via != TierNone {
		t.Fatalf("via = %v, want none", out.Via)
	}
	if out.Text != text {
		t.Errorf("text changed: %q", out.Text)
	}
}

func TestNoOccurrenceLeavesTextUntouched(t *testing.T) {
	t.Parallel()

	text := "nothing to see here"
	out := Replace(text, nil, "absent fragment", "replacement")

	if out.Via != TierNone {
		t.Fatalf("via = %v, want none", out.Via)
	}
	if out.Changed() {
		t.Error("Changed() = true for untouched draft")
	}
	if out.Text != text || out.Caret != -1 {
		t.Errorf("out = %+v", out)
	}
}

func TestEmptyOriginalIsNoop(t *testing.T) {
	t.Parallel()

	out := Replace("some text", nil, "", "x")
	if out.Via != TierNone || out.Text != "some text" {
		t.Errorf("out = %+v", out)
	}
}

func TestInvalidSelectionBounds(t *testing.T) {
	t.Parallel()

	text := "short"
	tests := []Selection{
		{Start: -1, End: 3, Text: "sho"},
		{Start: 2, End: 99, Text: "ort"},
		{Start: 3, End: 3, Text: ""},
		{Start: 4, End: 2, Text: "xx"},
	}
	for _, sel := range tests {
		out := Replace(text, &sel, "sho", "SHO")
		if out.Via == TierSelection {
			t.Errorf("selection tier used for invalid span %+v", sel)
		}
	}
}

func TestByteIdenticalOutsideSpan(t *testing.T) {
	t.Parallel()

	text := "prefix MIDDLE suffix"
	start := strings.Index(text, "MIDDLE")
	sel := &Selection{Start: start, End: start + len("MIDDLE"), Text: "MIDDLE"}

	out := Replace(text, sel, "MIDDLE", "mid")

	if !strings.HasPrefix(out.Text, "prefix ") || !strings.HasSuffix(out.Text, " suffix") {
		t.Errorf("bytes outside the span changed: %q", out.Text)
	}
}

func TestTierString(t *testing.T) {
	t.Parallel()

	if TierSelection.String() != "selection" || TierScan.String() != "scan" || TierNone.String() != "none" {
		t.Error("tier names wrong")
	}
}
