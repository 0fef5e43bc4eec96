// Package draft owns the authoritative text of one editing session.
//
// A Document is mutated only through its methods; every mutation notifies
// the subscribed observers with the new text. Persistence itself is the
// editor's job (its save callback knows why the text changed and labels
// revisions accordingly); observers suit hosts that only need to mirror
// the content.
package draft

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Document is the single authoritative draft for one editor session.
type Document struct {
	mu        sync.RWMutex
	id        string
	title     string
	text      string
	caret     int
	observers []func(text string)
}

// New creates an empty document with a fresh ID.
func New(title string) *Document {
	return &Document{
		id:    uuid.NewString(),
		title: title,
	}
}

// Load rebuilds a document from persisted state. The caret starts at the
// end of the text.
func Load(id, title, text string) *Document {
	if id == "" {
		id = uuid.NewString()
	}
	return &Document{
		id:    id,
		title: title,
		text:  text,
		caret: len(text),
	}
}

// ID returns the document's stable identifier.
func (d *Document) ID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.id
}

// Title returns the document title.
func (d *Document) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// Text returns the current draft text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Caret returns the caret byte offset.
func (d *Document) Caret() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.caret
}

// SetCaret moves the caret, clamped to the text bounds.
func (d *Document) SetCaret(caret int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.caret = clamp(caret, len(d.text))
}

// Snapshot returns text and caret as one consistent pair.
func (d *Document) Snapshot() (text string, caret int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text, d.caret
}

// Words counts whitespace-separated words in the draft.
func (d *Document) Words() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(strings.Fields(d.text))
}

// Subscribe registers an observer for every subsequent text mutation.
// Observers run synchronously in subscription order, outside the lock.
func (d *Document) Subscribe(fn func(text string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// Apply replaces the whole draft text, keeping the caret in bounds.
func (d *Document) Apply(text string) {
	d.mu.Lock()
	d.text = text
	d.caret = clamp(d.caret, len(text))
	observers, snapshot := d.observersAndText()
	d.mu.Unlock()

	notify(observers, snapshot)
}

// ApplyAt replaces the whole draft text and moves the caret. A negative
// caret leaves it where it was (clamped).
func (d *Document) ApplyAt(text string, caret int) {
	d.mu.Lock()
	d.text = text
	if caret >= 0 {
		d.caret = clamp(caret, len(text))
	} else {
		d.caret = clamp(d.caret, len(text))
	}
	observers, snapshot := d.observersAndText()
	d.mu.Unlock()

	notify(observers, snapshot)
}

// InsertAtCaret splices s into the text at the caret and advances the
// caret past the insertion.
func (d *Document) InsertAtCaret(s string) {
	d.mu.Lock()
	at := clamp(d.caret, len(d.text))
	d.text = d.text[:at] + s + d.text[at:]
	d.caret = at + len(s)
	observers, snapshot := d.observersAndText()
	d.mu.Unlock()

	notify(observers, snapshot)
}

// observersAndText copies the observer list and text under the held lock.
func (d *Document) observersAndText() ([]func(string), string) {
	observers := make([]func(string), len(d.observers))
	copy(observers, d.observers)
	return observers, d.text
}

func notify(observers []func(string), text string) {
	for _, fn := range observers {
		fn(text)
	}
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
