// Package preview stages proposed draft replacements behind an explicit
// confirm/discard step so no generated text ever lands in the draft
// silently.
//
// The manager is strictly two-state: empty, or exactly one pending edit.
// Proposing while an edit is pending discards the earlier one without a
// trace (last proposal wins): there is no queue and no merge.
package preview

import "sync"

// PendingEdit is a proposed whole-draft replacement awaiting confirmation.
type PendingEdit struct {
	// Source is the draft text the proposal was made against.
	Source string

	// Target is the replacement text. Only a confirm may write it into
	// the draft.
	Target string
}

// Manager holds at most one PendingEdit.
type Manager struct {
	mu      sync.Mutex
	pending *PendingEdit
}

// NewManager creates an empty preview manager.
func NewManager() *Manager {
	return &Manager{}
}

// Propose stages target as the pending edit for the given source text,
// replacing any prior unconfirmed edit.
func (m *Manager) Propose(source, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &PendingEdit{Source: source, Target: target}
}

// Pending returns the staged edit, if any.
func (m *Manager) Pending() (PendingEdit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return PendingEdit{}, false
	}
	return *m.pending, true
}

// Active reports whether an edit is staged.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Confirm clears the staged edit and returns its target for the caller to
// write into the draft. ok is false when nothing was staged.
func (m *Manager) Confirm() (target string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return "", false
	}
	target = m.pending.Target
	m.pending = nil
	return target, true
}

// Discard drops the staged edit, leaving the draft untouched. Returns
// false when nothing was staged.
func (m *Manager) Discard() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return false
	}
	m.pending = nil
	return true
}
