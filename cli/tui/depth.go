package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/relay/cli/reader"
)

// DepthModel shows one queue depth reading as stat boxes.
type DepthModel struct {
	data     *reader.DepthResponse
	quitting bool
}

// NewDepthModel creates a new depth model.
func NewDepthModel(data any) DepthModel {
	resp, _ := data.(*reader.DepthResponse)
	return DepthModel{data: resp}
}

// Init implements tea.Model.
func (m DepthModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m DepthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m DepthModel) View() string {
	if m.quitting {
		return ""
	}
	if m.data == nil {
		return "Invalid data type for depth"
	}
	d := m.data

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Queue Depth"))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render("Queue:") + " " + ValueStyle.Render(d.Queue))
	b.WriteString("\n\n")

	total := toneWarn
	if d.Empty {
		total = toneOK
	}
	boxes := []string{
		statTile("Visible", d.Visible, toneAccent),
		statTile("In flight", d.InFlight, toneAccent),
		statTile("Delayed", d.Delayed, toneAccent),
		statTile("Total", d.Total, total),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(fmt.Sprintf("checked %s • q quit", d.CheckedAt.Format("15:04:05 MST"))))

	return b.String()
}
