package tui

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// View types.
const (
	ViewInspectRun = "inspect_run"
	ViewDepth      = "depth"
)

// Run starts the view for viewType and blocks until the user quits.
func Run(viewType string, data any) error {
	model, err := newModel(viewType, data)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// IsTUISupported returns true if the view type has a TUI.
func IsTUISupported(viewType string) bool {
	return slices.Contains(SupportedTUIViews(), viewType)
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{ViewInspectRun, ViewDepth}
}

// RenderStatic renders a view once without starting a program.
func RenderStatic(viewType string, data any) (string, error) {
	model, err := newModel(viewType, data)
	if err != nil {
		return "", err
	}
	return model.View(), nil
}

func newModel(viewType string, data any) (tea.Model, error) {
	switch viewType {
	case ViewInspectRun:
		return NewInspectModel(data), nil
	case ViewDepth:
		return NewDepthModel(data), nil
	default:
		return nil, fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
}
