package ui

import (
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/Dicklesworthstone/picam/pkg/profile"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Selector purposes
const (
	SelectLoad   = "load"
	SelectDelete = "delete"
)

// ProfileSelectorModel is a fuzzy-searchable profile picker overlay
type ProfileSelectorModel struct {
	purpose  string
	all      []string
	filtered []string

	searchInput   textinput.Model
	selectedIndex int

	width  int
	height int
	theme  Theme

	confirmed bool
	cancelled bool
	selected  string
}

// NewProfileSelectorModel creates a selector over names. Deleting never
// offers the default profile.
func NewProfileSelectorModel(names []string, purpose string, theme Theme) ProfileSelectorModel {
	ti := textinput.New()
	ti.Placeholder = "Search profiles..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	var all []string
	for _, n := range names {
		if purpose == SelectDelete && strings.EqualFold(n, model.DefaultProfileName) {
			continue
		}
		all = append(all, n)
	}

	return ProfileSelectorModel{
		purpose:     purpose,
		all:         all,
		filtered:    all,
		searchInput: ti,
		theme:       theme,
		width:       60,
		height:      20,
	}
}

// SetSize updates the selector dimensions
func (m *ProfileSelectorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = 20
	}
	if inputWidth > 50 {
		inputWidth = 50
	}
	m.searchInput.Width = inputWidth
}

// Update handles a key and reports whether it was consumed
func (m *ProfileSelectorModel) Update(key string) (handled bool) {
	switch key {
	case "up", "ctrl+k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
		return true
	case "down", "ctrl+j":
		if m.selectedIndex < len(m.filtered)-1 {
			m.selectedIndex++
		}
		return true
	case "enter":
		if m.selectedIndex < len(m.filtered) {
			m.selected = m.filtered[m.selectedIndex]
			m.confirmed = true
		}
		return true
	case "esc":
		m.cancelled = true
		return true
	case "backspace":
		if v := m.searchInput.Value(); len(v) > 0 {
			m.searchInput.SetValue(v[:len(v)-1])
			m.filter()
		}
		return true
	default:
		if IsPrintableKey(key) {
			m.searchInput.SetValue(m.searchInput.Value() + key)
			m.filter()
			return true
		}
	}
	return false
}

func (m *ProfileSelectorModel) filter() {
	m.filtered = profile.Filter(m.all, strings.TrimSpace(m.searchInput.Value()))
	m.selectedIndex = 0
}

// IsConfirmed returns true if user confirmed a selection
func (m *ProfileSelectorModel) IsConfirmed() bool { return m.confirmed }

// IsCancelled returns true if user cancelled the selector
func (m *ProfileSelectorModel) IsCancelled() bool { return m.cancelled }

// Selected returns the chosen profile name
func (m *ProfileSelectorModel) Selected() string { return m.selected }

// Purpose returns SelectLoad or SelectDelete
func (m *ProfileSelectorModel) Purpose() string { return m.purpose }

// ItemCount returns the number of filtered items
func (m *ProfileSelectorModel) ItemCount() int { return len(m.filtered) }

// View renders the selector overlay
func (m *ProfileSelectorModel) View(current string) string {
	t := m.theme

	boxWidth := 50
	if m.width < 60 {
		boxWidth = m.width - 10
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	contentWidth := boxWidth - 4

	var lines []string

	title := "Load Profile"
	if m.purpose == SelectDelete {
		title = "Delete Profile"
	}
	titleStyle := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	lines = append(lines, titleStyle.Render(title), "")

	inputStyle := t.Renderer.NewStyle().
		Foreground(t.Base.GetForeground()).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(contentWidth - 2)
	search := m.searchInput.Value()
	if search == "" {
		search = t.Renderer.NewStyle().Foreground(t.Subtext).Render(m.searchInput.Placeholder)
	}
	lines = append(lines, inputStyle.Render(search), "")

	maxVisible := m.height - 12
	if maxVisible < 5 {
		maxVisible = 5
	}
	if maxVisible > 15 {
		maxVisible = 15
	}

	if len(m.filtered) == 0 {
		emptyStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true)
		lines = append(lines, emptyStyle.Render("  No matching profiles"))
	}

	// Scroll so the selection stays visible
	start := 0
	if m.selectedIndex >= maxVisible {
		start = m.selectedIndex - maxVisible + 1
	}
	for i := start; i < len(m.filtered) && i < start+maxVisible; i++ {
		lines = append(lines, m.renderItem(m.filtered[i], i == m.selectedIndex, m.filtered[i] == current, contentWidth))
	}
	if hidden := len(m.filtered) - maxVisible; hidden > 0 {
		moreStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true)
		lines = append(lines, moreStyle.Render("  ... and "+strconv.Itoa(hidden)+" more"))
	}

	lines = append(lines, "")
	footerStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true)
	lines = append(lines, footerStyle.Render("↑/↓: navigate • enter: select • esc: cancel"))

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(strings.Join(lines, "\n")))
}

func (m *ProfileSelectorModel) renderItem(name string, selected, current bool, maxWidth int) string {
	t := m.theme

	prefix := "  "
	if selected {
		prefix = "▸ "
	}
	style := t.Renderer.NewStyle().Foreground(t.Base.GetForeground())
	if selected {
		style = style.Foreground(t.Primary).Bold(true)
	}

	suffix := ""
	if current {
		suffix = " (active)"
	}
	name = runewidth.Truncate(name, maxWidth-runewidth.StringWidth(prefix+suffix)-1, "…")
	line := style.Render(prefix + name)
	if suffix != "" {
		line += t.Renderer.NewStyle().Foreground(t.Subtext).Render(suffix)
	}
	return line
}
