// Package ui implements the interactive wizard behind svelgo new.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/svelgo/svelgo/cmd/svelgo/internal/scaffold"
)

// Step represents the current step in the creation flow
type Step int

const (
	StepBasics Step = iota
	StepFormat
	StepOptions
	StepSummary
	StepExecuting
	StepComplete
)

// formats lists the selectable output formats in display order.
var formats = []struct {
	Name        string
	Description string
}{
	{"esm", "ES modules (import / export)"},
	{"cjs", "CommonJS (require / module.exports)"},
}

// Model represents the wizard state
type Model struct {
	width  int
	height int

	step Step

	config scaffold.ProjectConfig

	textInputs   []textinput.Model
	currentInput int
	selectedItem int
	gitInit      bool
	spinner      spinner.Model

	executionError error
	quitting       bool
	errorMessage   string
}

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Space key.Binding
	Back  key.Binding
	Quit  key.Binding
	Tab   key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Space: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
}

// Messages
type executionCompleteMsg struct{}
type executionErrorMsg struct{ err error }

// NewModel creates a new wizard model
func NewModel(projectName string) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "my-svelgo-app"
	nameInput.Focus()
	nameInput.CharLimit = 50
	nameInput.Width = 40
	if projectName != "" {
		nameInput.SetValue(projectName)
	}

	portInput := textinput.New()
	portInput.Placeholder = "3000"
	portInput.CharLimit = 5
	portInput.Width = 10
	portInput.SetValue("3000")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		step:       StepBasics,
		textInputs: []textinput.Model{nameInput, portInput},
		spinner:    s,
		gitInit:    true,
		config: scaffold.ProjectConfig{
			Name:   projectName,
			Format: "esm",
			Port:   3000,
		},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) && m.step != StepExecuting && m.step != StepBasics {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.step {
		case StepBasics:
			cmd := m.handleBasicsKeys(msg)
			if cmd != nil {
				return m, cmd
			}

		case StepFormat:
			cmd := m.handleFormatKeys(msg)
			if cmd != nil {
				return m, cmd
			}

		case StepOptions:
			cmd := m.handleOptionsKeys(msg)
			if cmd != nil {
				return m, cmd
			}

		case StepSummary:
			if key.Matches(msg, DefaultKeyMap.Enter) {
				m.step = StepExecuting
				return m, m.executeCreation()
			}
			if key.Matches(msg, DefaultKeyMap.Back) {
				m.step = StepOptions
				return m, nil
			}

		case StepComplete:
			if key.Matches(msg, DefaultKeyMap.Enter) {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case executionCompleteMsg:
		m.step = StepComplete
		return m, nil

	case executionErrorMsg:
		m.executionError = msg.err
		return m, tea.Quit
	}

	if m.step == StepBasics && m.currentInput < len(m.textInputs) {
		var cmd tea.Cmd
		m.textInputs[m.currentInput], cmd = m.textInputs[m.currentInput].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleBasicsKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, DefaultKeyMap.Tab), key.Matches(msg, DefaultKeyMap.Down):
		m.textInputs[m.currentInput].Blur()
		m.currentInput = (m.currentInput + 1) % len(m.textInputs)
		m.textInputs[m.currentInput].Focus()
		return textinput.Blink

	case key.Matches(msg, DefaultKeyMap.Up):
		m.textInputs[m.currentInput].Blur()
		m.currentInput = (m.currentInput + len(m.textInputs) - 1) % len(m.textInputs)
		m.textInputs[m.currentInput].Focus()
		return textinput.Blink

	case key.Matches(msg, DefaultKeyMap.Enter):
		name := m.textInputs[0].Value()
		if !isValidProjectName(name) {
			m.errorMessage = "project name may only contain letters, numbers, hyphens and underscores"
			return nil
		}
		m.errorMessage = ""
		m.config.Name = name
		if port := m.textInputs[1].Value(); port != "" {
			fmt.Sscanf(port, "%d", &m.config.Port)
		}
		m.step = StepFormat
		return nil
	}
	return nil
}

func (m *Model) handleFormatKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.selectedItem < len(formats)-1 {
			m.selectedItem++
		}
	case key.Matches(msg, DefaultKeyMap.Enter):
		m.config.Format = formats[m.selectedItem].Name
		m.step = StepOptions
	case key.Matches(msg, DefaultKeyMap.Back):
		m.step = StepBasics
	}
	return nil
}

func (m *Model) handleOptionsKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, DefaultKeyMap.Space):
		m.gitInit = !m.gitInit
	case key.Matches(msg, DefaultKeyMap.Enter):
		m.config.GitInit = m.gitInit
		m.step = StepSummary
	case key.Matches(msg, DefaultKeyMap.Back):
		m.step = StepFormat
	}
	return nil
}

func (m Model) executeCreation() tea.Cmd {
	config := m.config
	return func() tea.Msg {
		if err := scaffold.Create(&config); err != nil {
			return executionErrorMsg{err: err}
		}
		return executionCompleteMsg{}
	}
}

// Utility function to validate project name
func isValidProjectName(name string) bool {
	if name == "" || len(name) > 50 {
		return false
	}
	for _, ch := range name {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch == '-' || ch == '_') {
			return false
		}
	}
	return true
}

// GetConfig returns the final project configuration
func (m Model) GetConfig() scaffold.ProjectConfig {
	config := m.config
	if len(m.textInputs) > 0 && config.Name == "" {
		config.Name = m.textInputs[0].Value()
	}
	if config.Directory == "" {
		config.Directory = config.Name
	}
	return config
}
