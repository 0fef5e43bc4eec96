package editor

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inkwell-sh/inkwell/internal/assist"
	"github.com/inkwell-sh/inkwell/internal/bus"
)

// AssistMsg delivers a trigger-machine snapshot to the editor model. The
// assist controller publishes from its own goroutines; the relay posts the
// snapshot back onto the Bubble Tea loop so all model mutation stays there.
type AssistMsg struct {
	Snap assist.Snapshot
}

// applyEditMsg re-enters a bus ApplyEdit command on the event loop.
type applyEditMsg struct {
	ev bus.ApplyEdit
}

// proposeContentMsg re-enters a bus ProposeContent command on the event loop.
type proposeContentMsg struct {
	ev bus.ProposeContent
}

// replaceSelectionMsg re-enters a bus ReplaceSelection command on the
// event loop.
type replaceSelectionMsg struct {
	ev bus.ReplaceSelection
}

// reviseDoneMsg is sent when an async Reviser.Revise completes.
type reviseDoneMsg struct {
	requestID uint64
	source    string
	revised   string
	err       error
}

// autosaveTickMsg fires on the autosave interval.
type autosaveTickMsg struct{}

// Relay forwards messages from non-UI goroutines (controller callbacks,
// bus handlers) into the running program. Messages sent before Attach are
// dropped; nothing interesting happens before the program runs.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach binds the relay to the running program.
func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

// Send posts msg onto the program's event loop.
func (r *Relay) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
