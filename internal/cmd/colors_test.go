package cmd

import (
	"testing"
)

func TestShouldDisableColors_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !shouldDisableColors() {
		t.Error("shouldDisableColors should return true when NO_COLOR is set")
	}
}

func TestShouldDisableColors_TermDumb(t *testing.T) {
	t.Setenv("TERM", "dumb")
	// Unset NO_COLOR to isolate this test
	t.Setenv("NO_COLOR", "")
	if !shouldDisableColors() {
		t.Error("shouldDisableColors should return true when TERM=dumb")
	}
}

func TestShouldDisableColors_Default(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	if shouldDisableColors() {
		t.Error("shouldDisableColors should return false for a capable terminal")
	}
}
