// Package bus carries edit commands between the editor surface and the
// assist engine's consumers: a small typed publish/subscribe dispatcher in
// place of a UI framework's global event mechanism.
//
// Dispatch is synchronous and in subscription order; handlers run on the
// publisher's goroutine. Payloads mirror the three edit commands the editor
// raises: propose a whole-draft replacement, propose an explicit
// source/target pair, and replace a selected span.
package bus

import "sync"

// ApplyEdit proposes replacing draft content source with target, staged
// behind the preview workflow.
type ApplyEdit struct {
	Source string
	Target string
}

// ProposeContent proposes target content for the whole current draft.
type ProposeContent struct {
	Content string
}

// ReplaceSelection asks for an in-place span replacement, resolved against
// the live selection with a whole-document fallback.
type ReplaceSelection struct {
	Original string
	Edited   string
	EditType string
}

// Bus dispatches edit commands to subscribers.
type Bus struct {
	mu               sync.RWMutex
	applyEdit        []func(ApplyEdit)
	proposeContent   []func(ProposeContent)
	replaceSelection []func(ReplaceSelection)
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// SubscribeApplyEdit registers a handler for ApplyEdit commands.
func (b *Bus) SubscribeApplyEdit(fn func(ApplyEdit)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applyEdit = append(b.applyEdit, fn)
}

// SubscribeProposeContent registers a handler for ProposeContent commands.
func (b *Bus) SubscribeProposeContent(fn func(ProposeContent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.proposeContent = append(b.proposeContent, fn)
}

// SubscribeReplaceSelection registers a handler for ReplaceSelection
// commands.
func (b *Bus) SubscribeReplaceSelection(fn func(ReplaceSelection)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaceSelection = append(b.replaceSelection, fn)
}

// PublishApplyEdit delivers ev to every ApplyEdit subscriber.
func (b *Bus) PublishApplyEdit(ev ApplyEdit) {
	for _, fn := range b.applyEditHandlers() {
		fn(ev)
	}
}

// PublishProposeContent delivers ev to every ProposeContent subscriber.
func (b *Bus) PublishProposeContent(ev ProposeContent) {
	for _, fn := range b.proposeContentHandlers() {
		fn(ev)
	}
}

// PublishReplaceSelection delivers ev to every ReplaceSelection subscriber.
func (b *Bus) PublishReplaceSelection(ev ReplaceSelection) {
	for _, fn := range b.replaceSelectionHandlers() {
		fn(ev)
	}
}

// Handler snapshots are taken under the read lock so a handler may
// subscribe or publish without deadlocking.

func (b *Bus) applyEditHandlers() []func(ApplyEdit) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(ApplyEdit), len(b.applyEdit))
	copy(out, b.applyEdit)
	return out
}

func (b *Bus) proposeContentHandlers() []func(ProposeContent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(ProposeContent), len(b.proposeContent))
	copy(out, b.proposeContent)
	return out
}

func (b *Bus) replaceSelectionHandlers() []func(ReplaceSelection) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]func(ReplaceSelection), len(b.replaceSelection))
	copy(out, b.replaceSelection)
	return out
}
