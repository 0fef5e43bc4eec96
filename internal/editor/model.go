// Package editor hosts the drafting surface: a textarea over the
// authoritative draft document, wired to the assist trigger machine, the
// diff preview manager, and the edit command bus.
package editor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/inkwell-sh/inkwell/internal/assist"
	"github.com/inkwell-sh/inkwell/internal/bus"
	"github.com/inkwell-sh/inkwell/internal/draft"
	"github.com/inkwell-sh/inkwell/internal/preview"
	"github.com/inkwell-sh/inkwell/internal/provider"
	"github.com/inkwell-sh/inkwell/internal/resolve"
)

// mode is the editor's interaction mode.
type mode int

const (
	modeWrite    mode = iota // typing into the draft
	modeInstruct             // entering a revision instruction
	modePreview              // reviewing a pending edit
)

// SaveFunc persists the draft text. origin labels the snapshot
// ("manual", "assist", "revise"); an empty origin is an autosave that
// rewrites the draft without recording a revision.
type SaveFunc func(text, origin string) error

// Options wires the editor to its collaborators. Doc is required;
// everything else degrades gracefully when absent.
type Options struct {
	Doc *draft.Document

	// Provider enables the assist controller; nil disables assistance.
	Provider provider.Provider

	// Assist tunes the trigger machine when Provider is set.
	Assist assist.Config

	// Reviser enables whole-draft revision (ctrl+r); nil hides it.
	Reviser provider.Reviser

	// Bus carries external edit commands; nil means none arrive.
	Bus *bus.Bus

	// Save persists the draft; nil disables saving.
	Save SaveFunc

	// AutosaveEvery is the autosave interval; zero disables autosave.
	AutosaveEvery time.Duration

	// ReviseTimeout bounds one Reviser call; zero means a minute.
	ReviseTimeout time.Duration

	ShowStats bool
	DarkTheme bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Model is the Bubble Tea model for the editor session.
type Model struct {
	mode mode

	ta          textarea.Model
	instruction textinput.Model
	diffView    viewport.Model

	doc    *draft.Document
	ctrl   *assist.Controller
	pm     *preview.Manager
	bus    *bus.Bus
	revise provider.Reviser
	save   SaveFunc
	relay  *Relay
	logger *slog.Logger

	snap assist.Snapshot

	autosaveEvery time.Duration
	reviseTimeout time.Duration
	showStats     bool
	styles        styles

	revising  bool
	reviseID  uint64
	unified   bool // preview renders the unified diff instead of inline
	lastSaved string
	status    string
	errText   string
	quitting  bool

	width  int
	height int
}

// New builds the editor model. Call Attach with the running program
// before any input arrives so controller and bus callbacks reach it.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ReviseTimeout <= 0 {
		opts.ReviseTimeout = time.Minute
	}

	ta := textarea.New()
	ta.Placeholder = "Start writing…"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetValue(opts.Doc.Text()) // leaves the cursor at the end
	ta.Focus()

	in := textinput.New()
	in.Placeholder = "revision instruction, e.g. \"tighten the opening paragraph\""
	in.CharLimit = 200

	relay := &Relay{}
	m := Model{
		mode:          modeWrite,
		ta:            ta,
		instruction:   in,
		diffView:      viewport.New(80, 20),
		doc:           opts.Doc,
		pm:            preview.NewManager(),
		bus:           opts.Bus,
		revise:        opts.Reviser,
		save:          opts.Save,
		relay:         relay,
		logger:        logger,
		autosaveEvery: opts.AutosaveEvery,
		reviseTimeout: opts.ReviseTimeout,
		showStats:     opts.ShowStats,
		styles:        newStyles(opts.DarkTheme),
		lastSaved:     opts.Doc.Text(),
		status:        "ready",
	}

	if opts.Provider != nil {
		opts.Assist.Logger = logger
		m.ctrl = assist.New(opts.Assist, opts.Provider, func(s assist.Snapshot) {
			relay.Send(AssistMsg{Snap: s})
		})
	}

	if opts.Bus != nil {
		opts.Bus.SubscribeApplyEdit(func(ev bus.ApplyEdit) {
			relay.Send(applyEditMsg{ev: ev})
		})
		opts.Bus.SubscribeProposeContent(func(ev bus.ProposeContent) {
			relay.Send(proposeContentMsg{ev: ev})
		})
		opts.Bus.SubscribeReplaceSelection(func(ev bus.ReplaceSelection) {
			relay.Send(replaceSelectionMsg{ev: ev})
		})
	}

	return m
}

// Attach binds the running program so asynchronous callbacks can post
// messages onto its loop.
func (m Model) Attach(p *tea.Program) {
	m.relay.Attach(p)
}

// Preview exposes the pending-edit manager, mainly for tests.
func (m Model) Preview() *preview.Manager {
	return m.pm
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.autosaveEvery > 0 && m.save != nil {
		cmds = append(cmds, m.autosaveTick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInstruct:
			return m.handleInstructKey(msg)
		case modePreview:
			return m.handlePreviewKey(msg)
		default:
			return m.handleWriteKey(msg)
		}

	case AssistMsg:
		m.snap = msg.Snap
		return m, nil

	case applyEditMsg:
		return m.enterPreview(msg.ev.Source, msg.ev.Target), nil

	case proposeContentMsg:
		return m.enterPreview(m.doc.Text(), msg.ev.Content), nil

	case replaceSelectionMsg:
		return m.handleReplaceSelection(msg.ev), nil

	case reviseDoneMsg:
		return m.handleReviseDone(msg)

	case autosaveTickMsg:
		if m.save != nil && m.dirty() {
			if err := m.save(m.ta.Value(), ""); err != nil {
				m.logger.Warn("autosave failed", "error", err)
			} else {
				m.lastSaved = m.ta.Value()
				m.status = "autosaved"
			}
		}
		return m, m.autosaveTick()
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

// handleWriteKey processes keys while typing into the draft.
func (m Model) handleWriteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+q", "ctrl+c":
		return m.quit()

	case "ctrl+s":
		m = m.saveNow("manual")
		return m, nil

	case "ctrl+g":
		if m.ctrl != nil {
			m.ctrl.Continue()
		}
		return m, nil

	case "ctrl+r":
		if m.revise == nil {
			m.status = "revision not available"
			return m, nil
		}
		m.mode = modeInstruct
		m.instruction.SetValue("")
		m.ta.Blur()
		return m, m.instruction.Focus()

	case "tab":
		if m.ctrl != nil {
			if text, ok := m.ctrl.Accept(); ok {
				m.ta.InsertString(text)
				m.syncAssist()
				m = m.saveNow("assist")
				m.status = "suggestion accepted"
				return m, nil
			}
		}

	case "esc":
		if m.ctrl != nil && (m.snap.Suggestion != nil || m.snap.Err != "" || m.snap.CueVisible) {
			m.ctrl.Dismiss()
			return m, nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	m.syncAssist()
	return m, cmd
}

// handleInstructKey processes keys while the revision instruction line
// has focus.
func (m Model) handleInstructKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeWrite
		m.instruction.Blur()
		m.ta.Focus()
		return m, nil

	case "enter":
		instruction := strings.TrimSpace(m.instruction.Value())
		if instruction == "" {
			m.mode = modeWrite
			m.instruction.Blur()
			m.ta.Focus()
			return m, nil
		}
		m.mode = modeWrite
		m.instruction.Blur()
		m.ta.Focus()
		m.revising = true
		m.reviseID++
		m.status = "revising…"
		return m, m.startRevise(m.reviseID, m.doc.Text(), instruction)
	}

	var cmd tea.Cmd
	m.instruction, cmd = m.instruction.Update(msg)
	return m, cmd
}

// handlePreviewKey processes keys while a pending edit is shown.
func (m Model) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		target, ok := m.pm.Confirm()
		if !ok {
			m.mode = modeWrite
			m.ta.Focus()
			return m, nil
		}
		m.doc.Apply(target)
		m.ta.SetValue(target)
		m.mode = modeWrite
		m.ta.Focus()
		m = m.saveNow("revise")
		m.status = "revision applied"
		m.syncAssist()
		return m, nil

	case "esc", "ctrl+c":
		m.pm.Discard()
		m.mode = modeWrite
		m.ta.Focus()
		m.status = "revision discarded"
		return m, nil

	case "d":
		m.unified = !m.unified
		m.renderPreview()
		return m, nil

	case "ctrl+q":
		m.pm.Discard()
		return m.quit()
	}

	var cmd tea.Cmd
	m.diffView, cmd = m.diffView.Update(msg)
	return m, cmd
}

// handleReplaceSelection resolves a span replacement against the draft.
// The textarea exposes no selection, so resolution always goes through
// the first-occurrence scan tier.
func (m Model) handleReplaceSelection(ev bus.ReplaceSelection) Model {
	out := resolve.Replace(m.doc.Text(), nil, ev.Original, ev.Edited)
	if !out.Changed() {
		m.status = "edit target not found"
		m.logger.Warn("replace-selection missed",
			"edit_type", ev.EditType,
			"via", out.Via.String())
		return m
	}
	m.doc.ApplyAt(out.Text, out.Caret)
	m.ta.SetValue(out.Text)
	m.status = "edit applied (" + out.Via.String() + ")"
	m.logger.Debug("replace-selection resolved",
		"edit_type", ev.EditType,
		"via", out.Via.String())
	m.syncAssist()
	return m
}

func (m Model) handleReviseDone(msg reviseDoneMsg) (tea.Model, tea.Cmd) {
	if msg.requestID != m.reviseID {
		return m, nil // superseded
	}
	m.revising = false
	if msg.err != nil {
		m.errText = "revision failed"
		m.status = ""
		m.logger.Warn("revise failed", "error", msg.err)
		return m, nil
	}
	m.errText = ""
	return m.enterPreview(msg.source, msg.revised), nil
}

// enterPreview stages a pending edit and switches to the preview pane.
// A prior unconfirmed edit is discarded by Propose.
func (m Model) enterPreview(source, target string) Model {
	m.pm.Propose(source, target)
	m.mode = modePreview
	m.unified = false
	m.ta.Blur()
	m.renderPreview()
	return m
}

func (m *Model) renderPreview() {
	pe, ok := m.pm.Pending()
	if !ok {
		m.diffView.SetContent("")
		return
	}
	if m.unified {
		m.diffView.SetContent(preview.Unified(pe.Source, pe.Target))
	} else {
		m.diffView.SetContent(preview.Inline(pe.Source, pe.Target))
	}
	m.diffView.GotoTop()
}

// syncAssist pushes the textarea state into the document and the trigger
// machine. Called after every edit or caret move.
func (m *Model) syncAssist() {
	text := m.ta.Value()
	caret := caretOffset(&m.ta)
	m.doc.ApplyAt(text, caret)
	if m.ctrl != nil {
		m.ctrl.OnEdit(text, caret)
	}
}

// saveNow persists immediately with the given revision origin.
func (m Model) saveNow(origin string) Model {
	if m.save == nil {
		return m
	}
	if err := m.save(m.ta.Value(), origin); err != nil {
		m.errText = "save failed"
		m.logger.Warn("save failed", "origin", origin, "error", err)
		return m
	}
	m.lastSaved = m.ta.Value()
	m.errText = ""
	m.status = "saved"
	return m
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.save != nil && m.dirty() {
		if err := m.save(m.ta.Value(), ""); err != nil {
			m.logger.Warn("save on quit failed", "error", err)
		}
	}
	if m.ctrl != nil {
		m.ctrl.Close()
	}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) dirty() bool {
	return m.ta.Value() != m.lastSaved
}

func (m Model) autosaveTick() tea.Cmd {
	return tea.Tick(m.autosaveEvery, func(time.Time) tea.Msg {
		return autosaveTickMsg{}
	})
}

// startRevise calls the reviser off-loop; the completion lands as a
// reviseDoneMsg and is dropped if a newer revision superseded it.
func (m Model) startRevise(id uint64, text, instruction string) tea.Cmd {
	rev := m.revise
	timeout := m.reviseTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := rev.Revise(ctx, &provider.ReviseRequest{
			Text:        text,
			Instruction: instruction,
		})
		if err != nil {
			return reviseDoneMsg{requestID: id, err: err}
		}
		return reviseDoneMsg{requestID: id, source: text, revised: resp.Text}
	}
}

// layout sizes the panes to the terminal.
func (m *Model) layout() {
	w := m.width
	if w <= 0 {
		w = 80
	}
	h := m.height
	if h <= 0 {
		h = 24
	}
	// Header, suggestion bar, and status bar each take one row.
	body := h - 3
	if body < 3 {
		body = 3
	}
	m.ta.SetWidth(w)
	m.ta.SetHeight(body)
	m.diffView.Width = w
	m.diffView.Height = body
	m.instruction.Width = w - 4
}

// caretOffset converts the textarea cursor position to a byte offset into
// its value. The cursor column is taken from the soft-wrapped line info.
func caretOffset(ta *textarea.Model) int {
	value := ta.Value()
	row := ta.Line()
	li := ta.LineInfo()
	col := li.StartColumn + li.CharOffset

	lines := strings.Split(value, "\n")
	off := 0
	for i := 0; i < row && i < len(lines); i++ {
		off += len(lines[i]) + 1 // +1 for the newline
	}
	if row >= 0 && row < len(lines) {
		runes := []rune(lines[row])
		if col > len(runes) {
			col = len(runes)
		}
		if col < 0 {
			col = 0
		}
		off += len(string(runes[:col]))
	}
	if off > len(value) {
		off = len(value)
	}
	return off
}
