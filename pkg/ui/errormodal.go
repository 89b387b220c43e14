package ui

import (
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// ErrorModalModel renders a blocking error box. Any key dismisses it;
// the caller owns that decision.
type ErrorModalModel struct {
	width  int
	height int
	theme  Theme
}

// NewErrorModalModel creates a modal using theme
func NewErrorModalModel(theme Theme) ErrorModalModel {
	return ErrorModalModel{theme: theme}
}

// SetSize sets the modal dimensions
func (m *ErrorModalModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders err centered in the terminal
func (m ErrorModalModel) View(err error) string {
	if err == nil {
		return ""
	}

	width := 60
	if m.width > 0 && m.width < 70 {
		width = m.width - 10
	}
	if width < 30 {
		width = 30
	}

	var b strings.Builder

	titleStyle := m.theme.Renderer.NewStyle().
		Bold(true).
		Foreground(m.theme.Danger).
		Width(width - 4).
		Align(lipgloss.Center)
	b.WriteString(titleStyle.Render(model.ErrorKind(err)))
	b.WriteString("\n\n")

	msgStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)
	b.WriteString(msgStyle.Render(wordwrap.String(err.Error(), width-6)))
	b.WriteString("\n\n")

	hintStyle := m.theme.Renderer.NewStyle().Faint(true)
	b.WriteString(hintStyle.Render("[Press any key to continue]"))

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Danger).
		Padding(1, 2).
		Width(width)

	box := boxStyle.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
