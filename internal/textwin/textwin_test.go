package textwin

import (
	"strings"
	"testing"
)

func TestTail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		caret    int
		max      int
		expected string
	}{
		{
			name:     "whole text when caret out of range",
			text:     "I love building",
			caret:    -1,
			max:      300,
			expected: "I love building",
		},
		{
			name:     "caret past end means whole text",
			text:     "hello world",
			caret:    999,
			max:      300,
			expected: "hello world",
		},
		{
			name:     "cut at caret",
			text:     "hello world",
			caret:    5,
			max:      300,
			expected: "hello",
		},
		{
			name:     "caret zero yields empty",
			text:     "hello",
			caret:    0,
			max:      300,
			expected: "",
		},
		{
			name:     "trailing whitespace trimmed",
			text:     "I love ",
			caret:    -1,
			max:      300,
			expected: "I love",
		},
		{
			name:     "truncates to last max runes",
			text:     strings.Repeat("a", 400) + " tail words",
			caret:    -1,
			max:      10,
			expected: "tail words",
		},
		{
			name:     "zero max falls back to default",
			text:     "short text",
			caret:    -1,
			max:      0,
			expected: "short text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tail(tt.text, tt.caret, tt.max)
			if got != tt.expected {
				t.Errorf("Tail(%q, %d, %d) = %q, want %q", tt.text, tt.caret, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTailRuneSafety(t *testing.T) {
	t.Parallel()

	// Multibyte runes must never be split by the length cap.
	text := strings.Repeat("é", 350)
	got := Tail(text, -1, 300)
	if len([]rune(got)) != 300 {
		t.Errorf("rune length = %d, want 300", len([]rune(got)))
	}
	for _, r := range got {
		if r != 'é' {
			t.Fatalf("got corrupted rune %q", r)
		}
	}
}

func TestStableKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tail     string
		keep     int
		expected string
	}{
		{
			name:     "drops in-progress token",
			tail:     "the quick brown fo",
			keep:     20,
			expected: "the quick brown",
		},
		{
			name:     "single token yields empty",
			tail:     "hello",
			keep:     20,
			expected: "",
		},
		{
			name:     "empty tail",
			tail:     "",
			keep:     20,
			expected: "",
		},
		{
			name:     "keeps only last n tokens",
			tail:     "a b c d e f",
			keep:     3,
			expected: "c d e",
		},
		{
			name:     "collapses repeated whitespace",
			tail:     "one   two\tthree x",
			keep:     20,
			expected: "one two three",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StableKey(tt.tail, tt.keep)
			if got != tt.expected {
				t.Errorf("StableKey(%q, %d) = %q, want %q", tt.tail, tt.keep, got, tt.expected)
			}
		})
	}
}

func TestStableKeyStableAcrossWord(t *testing.T) {
	t.Parallel()

	// Typing through a word must not change the key; finishing the word and
	// starting the next one must.
	base := StableKey("I love building AI p", 20)
	for _, tail := range []string{"I love building AI pr", "I love building AI pro", "I love building AI products"} {
		if got := StableKey(tail, 20); got != base {
			t.Errorf("StableKey(%q) = %q, want %q", tail, got, base)
		}
	}
	next := StableKey("I love building AI products n", 20)
	if next == base {
		t.Error("key did not change after completing a word")
	}
}

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"I love ", 2},
		{"I love building AI products", 5},
		{"tabs\tand\nnewlines count", 4},
	}

	for _, tt := range tests {
		if got := Words(tt.input); got != tt.expected {
			t.Errorf("Words(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
