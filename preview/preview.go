// Package preview plays a layout result in the terminal, keeping the pivot
// character in a fixed column.
package preview

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ByLCY/anchorgif/layout"
)

// Line is one unit aligned for the terminal: Pad spaces put the pivot in the
// shared column.
type Line struct {
	Pad   int
	Split layout.PivotSplit
}

// Align pads every split so that all pivots start in the same terminal
// column. Widths are counted in terminal cells, so full-width characters
// count as two.
func Align(splits []layout.PivotSplit) []Line {
	maxPrefix := 0
	for _, s := range splits {
		if w := ansi.StringWidth(s.Prefix); w > maxPrefix {
			maxPrefix = w
		}
	}
	lines := make([]Line, len(splits))
	for i, s := range splits {
		lines[i] = Line{Pad: maxPrefix - ansi.StringWidth(s.Prefix), Split: s}
	}
	return lines
}

type tickMsg struct{ index int }

// Model is the bubbletea model of the preview.
type Model struct {
	lines     []Line
	durations []time.Duration
	index     int
	done      bool

	text     lipgloss.Style
	pivot    lipgloss.Style
	hint     lipgloss.Style
	progress progress.Model
}

// New builds a preview of result using the colors of cfg.
func New(result *layout.Result, cfg layout.Config) Model {
	splits := make([]layout.PivotSplit, len(result.Frames))
	durations := make([]time.Duration, len(result.Frames))
	for i, f := range result.Frames {
		splits[i] = f.Split
		durations[i] = time.Duration(f.Duration) * time.Millisecond
	}

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 30
	return Model{
		lines:     Align(splits),
		durations: durations,
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.TextColor.Hex())),
		pivot:     lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.PivotColor().Hex())).Bold(true),
		hint:      lipgloss.NewStyle().Faint(true),
		progress:  prog,
	}
}

// Index returns the frame currently shown.
func (m Model) Index() int { return m.index }

// Done reports whether playback has finished or was aborted.
func (m Model) Done() bool { return m.done }

func (m Model) tick() tea.Cmd {
	if m.index >= len(m.durations) {
		return nil
	}
	idx := m.index
	return tea.Tick(m.durations[idx], func(time.Time) tea.Msg { return tickMsg{index: idx} })
}

// Init starts the timer of the first frame.
func (m Model) Init() tea.Cmd {
	if len(m.lines) == 0 {
		return tea.Quit
	}
	return m.tick()
}

// Update advances one frame per tick and quits after the last one.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if w := msg.Width - 4; w > 0 && w < 60 {
			m.progress.Width = w
		}
	case tickMsg:
		// 忽略过期的计时
		if msg.index != m.index {
			return m, nil
		}
		m.index++
		if m.index >= len(m.lines) {
			m.index = len(m.lines) - 1
			m.done = true
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// View renders the current unit with its pivot in the fixed column.
func (m Model) View() string {
	if len(m.lines) == 0 {
		return ""
	}
	line := m.lines[m.index]
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(strings.Repeat(" ", line.Pad))
	b.WriteString(m.text.Render(line.Split.Prefix))
	b.WriteString(m.pivot.Render(line.Split.Pivot))
	b.WriteString(m.text.Render(line.Split.Suffix))
	b.WriteString("\n\n  ")
	b.WriteString(m.progress.ViewAs(float64(m.index+1) / float64(len(m.lines))))
	b.WriteString("\n  ")
	b.WriteString(m.hint.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// Run plays result until the last frame or until the user quits.
func Run(result *layout.Result, cfg layout.Config) error {
	_, err := tea.NewProgram(New(result, cfg)).Run()
	return err
}
