package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/relay/cli/reader"
)

// InspectModel shows a run summary above a scrollable fragment list.
type InspectModel struct {
	data     *reader.InspectRunResponse
	list     viewport.Model
	ready    bool
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(data any) InspectModel {
	resp, _ := data.(*reader.InspectRunResponse)
	return InspectModel{data: resp}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - lipgloss.Height(m.renderSummary()) - 4
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.list = viewport.New(msg.Width, height)
			m.list.SetContent(m.renderFragments())
			m.ready = true
		} else {
			m.list.Width = msg.Width
			m.list.Height = height
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}
	if m.data == nil {
		return "Invalid data type for inspect_run"
	}

	list := m.renderFragments()
	if m.ready {
		list = m.list.View()
	}
	help := HelpStyle.Render("↑/↓ scroll • q quit")
	return m.renderSummary() + "\n" + list + "\n" + help
}

func (m InspectModel) renderSummary() string {
	if m.data == nil {
		return ""
	}
	d := m.data

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run Artifacts"))
	b.WriteString("\n\n")

	rows := [][2]string{{"Origin", d.Origin}}
	if d.RunID != "" {
		rows = append(rows,
			[2]string{"Run ID", d.RunID},
			[2]string{"Attempt", strconv.Itoa(d.Attempt)},
			[2]string{"Source", d.Source},
			[2]string{"Day", d.Day},
		)
	}
	if d.JobID != "" {
		rows = append(rows, [2]string{"Job ID", d.JobID})
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1])))
	}

	counts := []struct {
		label string
		n     int
		style lipgloss.Style
	}{
		{"Collected", d.Collected, ValueStyle},
		{"Valid", d.Valid, ValueStyle},
		{"Distinct", d.Distinct, ValueStyle},
		{"Invalid", d.Invalid, CountStyle(d.Invalid)},
		{"Duplicates", d.Duplicates, CountStyle(d.Duplicates)},
		{"Missing", len(d.Missing), CountStyle(len(d.Missing))},
	}
	for _, c := range counts {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(c.label+":"), c.style.Render(strconv.Itoa(c.n))))
	}
	if len(d.Missing) > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Missing idx:"), warnStyle.Render(joinInts(d.Missing))))
	}

	phrase := d.Phrase
	label := "Phrase:"
	if phrase == "" {
		phrase = d.Preview
		label = "Preview:"
	}
	b.WriteString(fmt.Sprintf("%s %s", LabelStyle.Render(label), ValueStyle.Render(phrase)))

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderFragments() string {
	if m.data == nil || len(m.data.Fragments) == 0 {
		return HelpStyle.Render("(no fragments)")
	}

	var b strings.Builder
	b.WriteString(LabelStyle.Render("seq") + LabelStyle.Render("order_no") + "word\n")
	for _, f := range m.data.Fragments {
		order := "-"
		if f.OrderNo != nil {
			order = strconv.Itoa(*f.OrderNo)
		}
		word := "-"
		if f.Word != nil {
			word = strconv.Quote(*f.Word)
		}
		style := ValidityStyle(f.Valid)
		b.WriteString(style.Width(16).Render(strconv.Itoa(f.Seq)))
		b.WriteString(style.Width(16).Render(order))
		b.WriteString(style.UnsetWidth().Render(word))
		b.WriteString("\n")
	}
	return b.String()
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
