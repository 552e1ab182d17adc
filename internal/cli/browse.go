package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// runListModel is the bubbletea model for interactive run browsing.
type runListModel struct {
	Runs     []*store.Run
	Cursor   int
	Selected *store.Run
	Height   int
	Offset   int
}

// newRunListModel creates a new run list model.
func newRunListModel(runs []*store.Run) runListModel {
	return runListModel{
		Runs:   runs,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m runListModel) Init() tea.Cmd {
	return nil
}

func (m runListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Runs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Runs[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m runListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Tracked Runs"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Runs) {
		end = len(m.Runs)
	}

	for i := m.Offset; i < end; i++ {
		r := m.Runs[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		line := fmt.Sprintf("%s%-36s %-8s %s", cursor, r.ID, r.Status,
			r.StartTime.Format(time.RFC3339))
		b.WriteString(style.Render(line))
		if r.Name != "" {
			b.WriteString(listDimStyle.Render("  " + r.Name))
		}
		b.WriteString("\n")
	}

	return b.String()
}
