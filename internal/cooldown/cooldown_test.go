package cooldown

import (
	"sync"
	"testing"
	"time"
)

func TestZeroValueInactive(t *testing.T) {
	t.Parallel()

	var w Window
	if w.ActiveAt(time.Now()) {
		t.Error("zero-value window reported active")
	}
	if got := w.RemainingAt(time.Now()); got != 0 {
		t.Errorf("Remaining = %v, want 0", got)
	}
}

func TestEnterAndExpire(t *testing.T) {
	t.Parallel()

	var w Window
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	w.EnterAt(now, 40*time.Second)

	if !w.ActiveAt(now) {
		t.Error("window inactive immediately after EnterAt")
	}
	if !w.ActiveAt(now.Add(39 * time.Second)) {
		t.Error("window inactive one second before unlock")
	}
	// Boundary: the unlock instant itself is no longer suppressed.
	if w.ActiveAt(now.Add(40 * time.Second)) {
		t.Error("window still active at the unlock instant")
	}
	if w.ActiveAt(now.Add(41 * time.Second)) {
		t.Error("window still active after unlock")
	}
}

func TestRemainingAt(t *testing.T) {
	t.Parallel()

	var w Window
	now := time.Unix(1000, 0)
	w.EnterAt(now, 15*time.Second)

	if got := w.RemainingAt(now); got != 15*time.Second {
		t.Errorf("Remaining = %v, want 15s", got)
	}
	if got := w.RemainingAt(now.Add(10 * time.Second)); got != 5*time.Second {
		t.Errorf("Remaining = %v, want 5s", got)
	}
	if got := w.RemainingAt(now.Add(20 * time.Second)); got != 0 {
		t.Errorf("Remaining = %v, want 0", got)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	var w Window
	now := time.Unix(2000, 0)
	w.EnterAt(now, time.Minute)
	w.Clear()

	if w.ActiveAt(now) {
		t.Error("window active after Clear")
	}
}

func TestNonPositiveDurationClears(t *testing.T) {
	t.Parallel()

	var w Window
	now := time.Unix(3000, 0)
	w.EnterAt(now, time.Minute)
	w.EnterAt(now, 0)

	if w.ActiveAt(now) {
		t.Error("window active after zero-duration EnterAt")
	}
}

func TestRearmExtends(t *testing.T) {
	t.Parallel()

	var w Window
	now := time.Unix(4000, 0)
	w.EnterAt(now, 10*time.Second)
	w.EnterAt(now.Add(5*time.Second), 30*time.Second)

	if !w.ActiveAt(now.Add(30 * time.Second)) {
		t.Error("re-armed window expired on the old schedule")
	}
	if w.ActiveAt(now.Add(35 * time.Second)) {
		t.Error("re-armed window outlived the new schedule")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	var w Window
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				w.Enter(time.Millisecond)
				w.Active()
				w.Remaining()
				w.Clear()
			}
		}()
	}
	wg.Wait()
}
