package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"cadence-cli/internal/model"
	"cadence-cli/internal/schedule"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "252"})
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "17", Dark: "81"})
	styleDone     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	styleMeta     = lipgloss.NewStyle().Faint(true)
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "203"})
	styleBorder   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
)

func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height
	if height <= 0 {
		height = 24
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("cadence · %s", m.partition)))
	b.WriteString("\n\n")

	listHeight := height - 8
	if listHeight < 3 {
		listHeight = 3
	}
	top := 0
	if m.cursor >= listHeight {
		top = m.cursor - listHeight + 1
	}
	for i := top; i < len(m.rows) && i < top+listHeight; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor, width))
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(styleMeta.Render("empty outline — `cadence add` creates the first task"))
		b.WriteString("\n")
	}

	if t, ok := m.current(); ok && strings.TrimSpace(t.Description) != "" {
		b.WriteString("\n")
		b.WriteString(styleBorder.Render(renderDescription(t.Description, width-4)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styleStatus.Render(ansi.Truncate(m.status, width, "…")))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderRow(r row, selected bool, width int) string {
	t, ok := m.snap.Get(r.id)
	if !ok {
		return ""
	}

	indent := strings.Repeat("  ", r.depth)
	marker := "  "
	if m.snap.HasChildren(t.ID) {
		marker = "▾ "
		if m.collapsed[t.ID] {
			marker = "▸ "
		}
	}

	line := indent + marker + t.Title + " " + styleMeta.Render(scheduleLabel(m, t))
	line = ansi.Truncate(line, width-2, "…")

	switch {
	case selected:
		return styleSelected.Render("› " + line)
	case t.Done:
		return "  " + styleDone.Render(line)
	default:
		return "  " + line
	}
}

func scheduleLabel(m *Model, t model.Task) string {
	days := t.EffectiveDuration()
	if m.snap.HasChildren(t.ID) {
		days = schedule.New(m.log).AggregateDuration(m.snap, t.ID)
		done, total := schedule.CompletionRollup(m.snap, t.ID)
		if t.Start != nil && t.Due != nil {
			return fmt.Sprintf("(%dd · %d/%d · %s → %s)", days, done, total, *t.Start, *t.Due)
		}
		return fmt.Sprintf("(%dd · %d/%d)", days, done, total)
	}
	if t.Start != nil && t.Due != nil {
		return fmt.Sprintf("(%dd · %s → %s)", days, *t.Start, *t.Due)
	}
	return fmt.Sprintf("(%dd)", days)
}

var (
	descOnce     sync.Once
	descRenderer *glamour.TermRenderer
)

// renderDescription renders markdown for the detail pane. The style is
// resolved once from the terminal background; auto-style per render
// would re-query the terminal.
func renderDescription(md string, width int) string {
	if width < 10 {
		width = 10
	}
	descOnce.Do(func() {
		style := "dark"
		if !termenv.HasDarkBackground() {
			style = "light"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			descRenderer = r
		}
	})
	if descRenderer == nil {
		return md
	}
	out, err := descRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
