package ui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/scaffold"
)

// RunNewTUI starts the interactive wizard for project creation.
func RunNewTUI(projectName string) (scaffold.ProjectConfig, error) {
	if !isatty() {
		return scaffold.ProjectConfig{}, fmt.Errorf("not running in a terminal, use --no-interactive flag")
	}

	model := NewModel(projectName)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return scaffold.ProjectConfig{}, fmt.Errorf("TUI error: %w", err)
	}

	m := finalModel.(Model)
	if m.executionError != nil {
		return m.GetConfig(), m.executionError
	}
	if m.quitting && m.step != StepComplete {
		return scaffold.ProjectConfig{}, fmt.Errorf("project creation cancelled")
	}

	// The wizard wrote the project files during StepExecuting.
	return m.GetConfig(), nil
}

// isatty checks if we're running in a terminal
func isatty() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
