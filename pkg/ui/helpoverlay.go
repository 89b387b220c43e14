package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# picam

## Controls

| Key | Action |
|-----|--------|
| ↑/↓ or k/j | Select parameter |
| ←/→ or h/l | Move slider by 1 |
| H/L | Move slider by 10 |
| 0-9, - | Type a value, enter to apply |
| r | Reset to the default profile |

## Preview

| Key | Action |
|-----|--------|
| p | Toggle preview |
| w/a/s/d | Move the preview window |

Losing terminal focus or suspending (ctrl+z) stops the preview.

## Capture and profiles

| Key | Action |
|-----|--------|
| t or space | Take picture |
| c | Copy last capture path |
| o | Open a profile |
| S | Save current values as a profile |
| D | Delete a profile |
| v | Toggle capture history |
| ? | Toggle this help |
| q | Quit |
`

// HelpOverlayModel shows keyboard shortcuts help
type HelpOverlayModel struct {
	visible  bool
	width    int
	height   int
	theme    Theme
	rendered string
}

// NewHelpOverlayModel creates a new help overlay
func NewHelpOverlayModel(theme Theme) HelpOverlayModel {
	return HelpOverlayModel{theme: theme}
}

// Toggle toggles visibility
func (m *HelpOverlayModel) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.rendered = renderHelp(m.boxWidth())
	}
}

// IsVisible returns true if overlay is showing
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// SetSize sets dimensions
func (m *HelpOverlayModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.visible {
		m.rendered = renderHelp(m.boxWidth())
	}
}

// Update handles input
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		// Any key closes help
		m.visible = false
	}
	return m, nil
}

func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimSpace(out)
}

func (m HelpOverlayModel) boxWidth() int {
	width := 64
	if m.width > 0 && m.width < width+8 {
		width = m.width - 8
	}
	if width < 30 {
		width = 30
	}
	return width
}

// View renders the help overlay
func (m HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}

	body := m.rendered
	if body == "" {
		body = helpMarkdown
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	hintStyle := m.theme.Renderer.NewStyle().Faint(true).Italic(true)
	b.WriteString(hintStyle.Render("[Press any key to close]"))

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)

	return boxStyle.Render(b.String())
}
