// Package assist decides when the editor asks the suggestion provider for
// a continuation of the draft being typed.
//
// One Controller serves one editing session. Its life cycle:
//
//	idle: fewer than MinWords words before the caret, nothing scheduled
//	scheduled: enough words typed, first fetch armed behind FirstDelay
//	  of inactivity (every further edit re-arms the timer)
//	settled: the first fetch has completed, successfully or not; automatic
//	  fetching is over for the session and the manual continue cue takes
//	  across, debounced behind CueDelay of inactivity
//
// Two independent cooldown windows gate the channels: the suggestion
// window (armed by quota errors, from the provider's retry hint) and the
// cue window (armed by dismissals and failed manual fetches). Provider
// errors never escape the controller; they surface as a stored user-facing
// message in the state snapshot.
package assist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/inkwell-sh/inkwell/internal/cooldown"
	"github.com/inkwell-sh/inkwell/internal/provider"
	"github.com/inkwell-sh/inkwell/internal/textwin"
)

// CueState is where the manual continue affordance currently stands.
type CueState int

const (
	// CueHidden means the cue is not shown and no reveal is pending.
	CueHidden CueState = iota

	// CueArming means the reveal debounce is running.
	CueArming

	// CueVisible means the cue is shown.
	CueVisible
)

// String returns the state name for logs.
func (s CueState) String() string {
	switch s {
	case CueArming:
		return "arming"
	case CueVisible:
		return "visible"
	default:
		return "hidden"
	}
}

// Snapshot is the host-visible controller state after a transition.
type Snapshot struct {
	// Suggestion is the current candidate, nil when none is held.
	Suggestion *provider.Suggestion

	// Err is the stored user-facing failure message, empty when none.
	Err string

	// CueVisible reports whether the continue cue should be shown.
	CueVisible bool

	// Fetching reports whether a provider call is in flight.
	Fetching bool
}

// Controller runs the trigger state machine for one session. All state
// mutation happens under one mutex; timer fires and fetch completions
// re-enter through it, so hosts may call from any goroutine.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	prov   provider.Provider
	logger *slog.Logger
	notify func(Snapshot)

	suggestGate cooldown.Window
	cueGate     cooldown.Window

	autoFired bool
	fetching  bool
	closed    bool

	lastText  string
	lastCaret int

	current *provider.Suggestion
	errMsg  string
	cue     CueState

	firstTimer *time.Timer
	timerGen   uint64
	cueTimer   *time.Timer
	cueGen     uint64

	reqGen      uint64
	cancelFetch context.CancelFunc

	now func() time.Time
}

// New creates a controller for one session. notify receives a state
// snapshot after every visible transition; it runs outside the controller
// lock and may call back in. A nil notify is allowed.
func New(cfg Config, prov provider.Provider, notify func(Snapshot)) *Controller {
	cfg.applyDefaults()
	return &Controller{
		cfg:    cfg,
		prov:   prov,
		logger: cfg.Logger,
		notify: notify,
		now:    time.Now,
	}
}

// State returns the current snapshot.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// OnEdit is called for every text change or caret move while assistance
// is enabled. Before the first trigger it schedules the debounced
// automatic fetch; afterwards it clears any visible suggestion and
// debounces the continue cue.
func (c *Controller) OnEdit(text string, caret int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.lastText, c.lastCaret = text, caret
	now := c.now()

	if !c.autoFired {
		if c.suggestGate.ActiveAt(now) {
			c.mu.Unlock()
			return
		}
		tail := textwin.Tail(text, caret, c.cfg.TailChars)
		if textwin.Words(tail) >= c.cfg.MinWords {
			c.armFirstTimerLocked()
		} else {
			c.stopFirstTimerLocked()
		}
		c.mu.Unlock()
		return
	}

	dirty := false
	if c.current != nil {
		c.current = nil
		dirty = true
	}
	c.stopCueTimerLocked()
	if c.cue == CueVisible {
		dirty = true
	}
	if c.cueGate.ActiveAt(now) {
		c.cue = CueHidden
	} else {
		c.cue = CueArming
		c.armCueTimerLocked()
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if dirty {
		c.publish(snap)
	}
}

// Continue is the manual fetch: it skips the word-count and debounce
// checks, hides the cue and clears the cue cooldown, and supersedes any
// fetch already in flight. An active suggestion cooldown makes it a
// silent no-op.
func (c *Controller) Continue() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.suggestGate.ActiveAt(c.now()) {
		c.logger.Debug("manual continue suppressed by cooldown",
			"remaining", c.suggestGate.Remaining())
		c.mu.Unlock()
		return
	}
	c.cueGate.Clear()
	c.stopCueTimerLocked()
	c.cue = CueHidden

	c.stopFirstTimerLocked()
	tail := textwin.Tail(c.lastText, c.lastCaret, c.cfg.TailChars)
	c.startFetchLocked(tail, true)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// Dismiss clears the suggestion and error, hides the cue, and arms the
// cue cooldown.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.errMsg = ""
	c.stopCueTimerLocked()
	c.cue = CueHidden
	c.cueGate.EnterAt(c.now(), c.cfg.CueCooldown)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// Accept returns the current suggestion text and clears the slot. ok is
// false when no suggestion is held. The host inserts the text at the
// caret.
func (c *Controller) Accept() (text string, ok bool) {
	c.mu.Lock()
	if c.closed || c.current == nil {
		c.mu.Unlock()
		return "", false
	}
	text = c.current.Text
	c.current = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
	return text, true
}

// Close tears the controller down: both timers stop and late fetch
// completions are dropped. Safe to call twice.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopFirstTimerLocked()
	c.stopCueTimerLocked()
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.reqGen++
	c.mu.Unlock()
}

// armFirstTimerLocked (re)arms the first-trigger debounce, cancelling any
// pending unfired timer.
func (c *Controller) armFirstTimerLocked() {
	c.stopFirstTimerLocked()
	gen := c.timerGen
	c.firstTimer = time.AfterFunc(c.cfg.FirstDelay, func() {
		c.firstTimerFired(gen)
	})
}

func (c *Controller) stopFirstTimerLocked() {
	c.timerGen++
	if c.firstTimer != nil {
		c.firstTimer.Stop()
		c.firstTimer = nil
	}
}

func (c *Controller) armCueTimerLocked() {
	gen := c.cueGen
	c.cueTimer = time.AfterFunc(c.cfg.CueDelay, func() {
		c.cueTimerFired(gen)
	})
}

func (c *Controller) stopCueTimerLocked() {
	c.cueGen++
	if c.cueTimer != nil {
		c.cueTimer.Stop()
		c.cueTimer = nil
	}
}

// firstTimerFired runs when the first-trigger debounce elapses without
// further edits. It yields to any fetch already in flight rather than
// superseding it; the next qualifying edit re-arms the debounce.
func (c *Controller) firstTimerFired(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen || c.autoFired || c.fetching {
		c.mu.Unlock()
		return
	}
	c.firstTimer = nil
	if c.suggestGate.ActiveAt(c.now()) {
		c.mu.Unlock()
		return
	}
	tail := textwin.Tail(c.lastText, c.lastCaret, c.cfg.TailChars)
	if textwin.Words(tail) < c.cfg.MinWords {
		c.mu.Unlock()
		return
	}
	c.startFetchLocked(tail, false)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// cueTimerFired runs when the cue debounce elapses without further edits.
func (c *Controller) cueTimerFired(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.cueGen || c.cue != CueArming {
		c.mu.Unlock()
		return
	}
	c.cueTimer = nil
	c.cue = CueVisible
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// startFetchLocked begins a provider call, superseding any fetch already
// in flight: the old call is cancelled and its completion, should it
// still arrive, is dropped by generation.
func (c *Controller) startFetchLocked(tail string, manual bool) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.reqGen++
	gen := c.reqGen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel
	c.fetching = true

	req := &provider.SuggestRequest{
		Tail:          tail,
		TailKey:       textwin.StableKey(tail, c.cfg.KeyTokens),
		MaxCandidates: c.cfg.MaxCandidates,
	}
	c.logger.Debug("suggestion fetch started",
		"manual", manual,
		"tail_words", textwin.Words(tail))

	go c.fetch(ctx, gen, req, manual)
}

func (c *Controller) fetch(ctx context.Context, gen uint64, req *provider.SuggestRequest, manual bool) {
	fctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()
	resp, err := c.prov.Suggest(fctx, req)
	c.fetchDone(gen, manual, resp, err)
}

// fetchDone lands a completion back on the controller. Stale generations
// (superseded or closed) are dropped without effect.
func (c *Controller) fetchDone(gen uint64, manual bool, resp *provider.SuggestResponse, err error) {
	c.mu.Lock()
	if c.closed || gen != c.reqGen {
		c.mu.Unlock()
		return
	}
	c.fetching = false
	c.cancelFetch = nil
	now := c.now()

	if err != nil {
		kind, retry := provider.Classify(err)
		c.errMsg = provider.UserMessage(kind)
		c.current = nil
		if kind == provider.KindQuota {
			if retry <= 0 {
				retry = provider.DefaultQuotaCooldown
			}
			c.suggestGate.EnterAt(now, retry)
		}
		if manual {
			c.cueGate.EnterAt(now, c.cfg.CueCooldown)
			c.stopCueTimerLocked()
			c.cue = CueHidden
		} else {
			c.autoFired = true
			c.stopCueTimerLocked()
			c.cue = CueVisible
		}
		c.logger.Warn("suggestion fetch failed",
			"manual", manual,
			"kind", string(kind),
			"error", err)
	} else {
		c.errMsg = ""
		if len(resp.Suggestions) > 0 {
			s := resp.Suggestions[0]
			c.current = &s
		} else {
			c.current = nil
		}
		if !manual {
			c.autoFired = true
			c.stopCueTimerLocked()
			c.cue = CueHidden
		}
		c.logger.Debug("suggestion fetch done",
			"manual", manual,
			"candidates", suggestionCount(resp))
	}

	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Suggestion: c.current,
		Err:        c.errMsg,
		CueVisible: c.cue == CueVisible,
		Fetching:   c.fetching,
	}
}

func (c *Controller) publish(snap Snapshot) {
	if c.notify != nil {
		c.notify(snap)
	}
}

func suggestionCount(resp *provider.SuggestResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Suggestions)
}
