package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/inkwell-sh/inkwell/internal/preview"
	"github.com/inkwell-sh/inkwell/internal/textwin"
)

// styles holds the editor chrome styling for one theme.
type styles struct {
	header     lipgloss.Style
	headerNote lipgloss.Style
	suggestion lipgloss.Style
	sources    lipgloss.Style
	cue        lipgloss.Style
	errText    lipgloss.Style
	statusBar  lipgloss.Style
	statusKey  lipgloss.Style
	dim        lipgloss.Style
}

func newStyles(dark bool) styles {
	// The dim foreground is the only color that needs a per-theme pick;
	// everything else reads fine on both backgrounds.
	dimColor := lipgloss.Color("240")
	if !dark {
		dimColor = lipgloss.Color("245")
	}
	return styles{
		header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1),
		headerNote: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		suggestion: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		sources:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		cue:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		errText:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		statusBar:  lipgloss.NewStyle().Foreground(dimColor),
		statusKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dim:        lipgloss.NewStyle().Foreground(dimColor),
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteRune('\n')

	switch m.mode {
	case modePreview:
		b.WriteString(m.diffView.View())
		b.WriteRune('\n')
		b.WriteString(m.viewPreviewBar())
	case modeInstruct:
		b.WriteString(m.ta.View())
		b.WriteRune('\n')
		b.WriteString(m.styles.headerNote.Render("revise: ") + m.instruction.View())
	default:
		b.WriteString(m.ta.View())
		b.WriteRune('\n')
		b.WriteString(m.viewSuggestionBar())
	}

	b.WriteRune('\n')
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m Model) viewHeader() string {
	title := m.doc.Title()
	if title == "" {
		title = "untitled"
	}
	if m.dirty() {
		title += " •"
	}
	head := m.styles.header.Render(title)

	note := ""
	switch {
	case m.mode == modePreview:
		note = "proposed revision"
	case m.revising:
		note = "revising…"
	case m.snap.Fetching:
		note = "thinking…"
	}
	if note != "" {
		head += " " + m.styles.headerNote.Render(note)
	}
	return head
}

// viewSuggestionBar renders the single line under the textarea: the
// stored error, the current suggestion, or the continue cue.
func (m Model) viewSuggestionBar() string {
	w := m.width
	if w <= 0 {
		w = 80
	}
	switch {
	case m.errText != "":
		return m.styles.errText.Render(truncateLine(m.errText, w))
	case m.snap.Err != "":
		line := m.snap.Err + "  (esc to dismiss)"
		return m.styles.errText.Render(truncateLine(line, w))
	case m.snap.Suggestion != nil:
		s := m.snap.Suggestion
		hint := "  ⇥ accept · esc dismiss"
		if n := len(s.Sources); n > 0 {
			hint = fmt.Sprintf("  [%d sources]", n) + hint
		}
		avail := w - lipgloss.Width(hint)
		if avail < 8 {
			avail = 8
		}
		return m.styles.suggestion.Render(truncateLine(s.Text, avail)) +
			m.styles.sources.Render(hint)
	case m.snap.CueVisible:
		return m.styles.cue.Render("ctrl+g to continue writing")
	default:
		return ""
	}
}

func (m Model) viewPreviewBar() string {
	pe, ok := m.pm.Pending()
	if !ok {
		return ""
	}
	st := preview.DiffStats(pe.Source, pe.Target)
	return m.styles.dim.Render(fmt.Sprintf("+%d −%d", st.Inserted, st.Deleted))
}

func (m Model) viewStatusBar() string {
	var left string
	switch m.mode {
	case modePreview:
		left = m.hints([][2]string{
			{"enter", "apply"}, {"esc", "discard"}, {"d", "view"},
		})
	case modeInstruct:
		left = m.hints([][2]string{
			{"enter", "revise"}, {"esc", "cancel"},
		})
	default:
		left = m.hints([][2]string{
			{"ctrl+s", "save"}, {"ctrl+g", "continue"}, {"ctrl+r", "revise"}, {"ctrl+q", "quit"},
		})
	}

	right := ""
	if m.showStats {
		text := m.ta.Value()
		right = fmt.Sprintf("%dw %dc", textwin.Words(text), len([]rune(text)))
		if m.status != "" {
			right = m.status + " · " + right
		}
	} else if m.status != "" {
		right = m.status
	}

	w := m.width
	if w <= 0 {
		w = 80
	}
	gap := w - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + m.styles.statusBar.Render(right)
}

func (m Model) hints(pairs [][2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, m.styles.statusKey.Render(p[0])+" "+m.styles.statusBar.Render(p[1]))
	}
	return strings.Join(parts, m.styles.statusBar.Render("  "))
}
