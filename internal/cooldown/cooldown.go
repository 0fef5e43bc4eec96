// Package cooldown tracks a single "do not act before T" window.
//
// The assist engine keeps two independent windows: one for the suggestion
// channel (armed from provider retry hints after quota errors) and one for
// the continue cue's reappearance after a dismissal. A window is nothing
// more than an unlock instant; it expires by comparison, never by timer.
package cooldown

import (
	"sync"
	"time"
)

// Window suppresses an action until a stored unlock instant has passed.
// The zero value is an inactive window, ready to use.
type Window struct {
	mu    sync.Mutex
	until time.Time
}

// Active reports whether the window currently suppresses its action.
func (w *Window) Active() bool {
	return w.ActiveAt(time.Now())
}

// ActiveAt is Active with an explicit clock, for tests.
func (w *Window) ActiveAt(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Before(w.until)
}

// Enter arms the window for d from now. A non-positive d clears it.
func (w *Window) Enter(d time.Duration) {
	w.EnterAt(time.Now(), d)
}

// EnterAt is Enter with an explicit clock, for tests.
func (w *Window) EnterAt(now time.Time, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d <= 0 {
		w.until = time.Time{}
		return
	}
	w.until = now.Add(d)
}

// Clear deactivates the window immediately.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.until = time.Time{}
}

// Remaining returns how long the window stays active, zero when inactive.
func (w *Window) Remaining() time.Duration {
	return w.RemainingAt(time.Now())
}

// RemainingAt is Remaining with an explicit clock, for tests.
func (w *Window) RemainingAt(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !now.Before(w.until) {
		return 0
	}
	return w.until.Sub(now)
}
