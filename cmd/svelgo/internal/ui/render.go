package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	primaryColor = lipgloss.Color("#ff3e00")
	mutedColor   = lipgloss.Color("#94a3b8")
	successColor = lipgloss.Color("#10b981")
	errorColor   = lipgloss.Color("#ef4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.step {
	case StepBasics:
		content = m.renderBasics()
	case StepFormat:
		content = m.renderFormat()
	case StepOptions:
		content = m.renderOptions()
	case StepSummary:
		content = m.renderSummary()
	case StepExecuting:
		content = m.renderExecuting()
	case StepComplete:
		content = m.renderComplete()
	}

	return content + "\n" + m.renderFooter()
}

func (m Model) renderBasics() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create a new svelgo project"))
	b.WriteString("\n\n")
	b.WriteString("Project name\n")
	b.WriteString(m.textInputs[0].View())
	b.WriteString("\n\nDev server port\n")
	b.WriteString(m.textInputs[1].View())
	b.WriteString("\n")
	if m.errorMessage != "" {
		b.WriteString("\n" + errorStyle.Render(m.errorMessage) + "\n")
	}
	return boxStyle.Render(b.String())
}

func (m Model) renderFormat() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Output format"))
	b.WriteString("\n\n")
	for i, f := range formats {
		cursor := "  "
		line := fmt.Sprintf("%s (%s)", f.Name, f.Description)
		if i == m.selectedItem {
			cursor = "> "
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	return boxStyle.Render(b.String())
}

func (m Model) renderOptions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Options"))
	b.WriteString("\n\n")
	check := "[ ]"
	if m.gitInit {
		check = "[x]"
	}
	b.WriteString(fmt.Sprintf("%s Initialize a git repository\n", check))
	return boxStyle.Render(b.String())
}

func (m Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Summary"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Name:    %s\n", m.config.Name))
	b.WriteString(fmt.Sprintf("Format:  %s\n", m.config.Format))
	b.WriteString(fmt.Sprintf("Port:    %d\n", m.config.Port))
	b.WriteString(fmt.Sprintf("Git:     %v\n", m.gitInit))
	b.WriteString("\n" + mutedStyle.Render("Press enter to create the project"))
	return boxStyle.Render(b.String())
}

func (m Model) renderExecuting() string {
	if m.executionError != nil {
		return boxStyle.Render(errorStyle.Render("Creation failed: " + m.executionError.Error()))
	}
	return boxStyle.Render(fmt.Sprintf("%s Creating %s...", m.spinner.View(), m.config.Name))
}

func (m Model) renderComplete() string {
	var b strings.Builder
	b.WriteString(successStyle.Render("✨ Project " + m.config.Name + " created"))
	b.WriteString("\n\n")
	b.WriteString("Next steps:\n")
	b.WriteString(fmt.Sprintf("  cd %s\n", m.config.Name))
	b.WriteString("  svelgo dev\n")
	b.WriteString("\n" + mutedStyle.Render("Press enter to exit"))
	return boxStyle.Render(b.String())
}

func (m Model) renderFooter() string {
	switch m.step {
	case StepBasics:
		return footerStyle.Render("tab: next field • enter: continue • ctrl+c: quit")
	case StepOptions:
		return footerStyle.Render("space: toggle • enter: continue • esc: back • q: quit")
	case StepExecuting:
		return footerStyle.Render("")
	default:
		return footerStyle.Render("↑/↓: move • enter: confirm • esc: back • q: quit")
	}
}
