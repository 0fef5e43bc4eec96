package preview

import (
	"testing"
)

func TestEmptyManager(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if m.Active() {
		t.Error("new manager active")
	}
	if _, ok := m.Pending(); ok {
		t.Error("new manager has pending edit")
	}
	if _, ok := m.Confirm(); ok {
		t.Error("Confirm on empty manager returned ok")
	}
	if m.Discard() {
		t.Error("Discard on empty manager returned true")
	}
}

func TestProposeConfirm(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.Propose("old draft", "new draft")

	pending, ok := m.Pending()
	if !ok {
		t.Fatal("no pending edit after Propose")
	}
	if pending.Source != "old draft" || pending.Target != "new draft" {
		t.Errorf("pending = %+v", pending)
	}

	target, ok := m.Confirm()
	if !ok || target != "new draft" {
		t.Errorf("Confirm = (%q, %v)", target, ok)
	}
	if m.Active() {
		t.Error("manager still active after Confirm")
	}
}

func TestProposeDiscard(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.Propose("old", "new")

	if !m.Discard() {
		t.Fatal("Discard returned false with a pending edit")
	}
	if m.Active() {
		t.Error("manager active after Discard")
	}
	// Discarding never produces a target; a later confirm finds nothing.
	if _, ok := m.Confirm(); ok {
		t.Error("Confirm after Discard returned ok")
	}
}

func TestLastProposalWins(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.Propose("draft", "first proposal")
	m.Propose("draft", "second proposal")

	pending, ok := m.Pending()
	if !ok {
		t.Fatal("no pending edit")
	}
	if pending.Target != "second proposal" {
		t.Errorf("target = %q, want the second proposal", pending.Target)
	}

	target, _ := m.Confirm()
	if target != "second proposal" {
		t.Errorf("Confirm = %q; the first proposal leaked through", target)
	}
	// No trace of the first proposal remains.
	if _, ok := m.Confirm(); ok {
		t.Error("a second pending edit surfaced")
	}
}

func TestConfirmIsOneShot(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.Propose("a", "b")
	if _, ok := m.Confirm(); !ok {
		t.Fatal("first Confirm failed")
	}
	if _, ok := m.Confirm(); ok {
		t.Error("second Confirm returned ok")
	}
}
