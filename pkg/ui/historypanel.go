package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/history"
	"github.com/Dicklesworthstone/picam/pkg/model"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// HistoryPanelModel lists recent captures with journal stats
type HistoryPanelModel struct {
	viewport viewport.Model
	captures []model.Capture
	summary  history.Summary
	theme    Theme
	width    int
}

// NewHistoryPanelModel creates an empty panel
func NewHistoryPanelModel(theme Theme) HistoryPanelModel {
	return HistoryPanelModel{
		viewport: viewport.New(40, MinContentHeight),
		theme:    theme,
		width:    40,
	}
}

// SetSize resizes the viewport
func (m *HistoryPanelModel) SetSize(width, height int) {
	if height < MinContentHeight {
		height = MinContentHeight
	}
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(m.content())
}

// SetData replaces the listed captures and summary
func (m *HistoryPanelModel) SetData(captures []model.Capture, summary history.Summary) {
	m.captures = captures
	m.summary = summary
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

// Update scrolls the viewport
func (m HistoryPanelModel) Update(msg tea.Msg) (HistoryPanelModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m HistoryPanelModel) content() string {
	t := m.theme
	if len(m.captures) == 0 {
		return t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).Render("No captures yet")
	}

	okStyle := t.Renderer.NewStyle().Foreground(t.Success)
	failStyle := t.Renderer.NewStyle().Foreground(t.Danger)
	dimStyle := t.Renderer.NewStyle().Foreground(t.Subtext)

	nameWidth := m.width - 22
	if nameWidth < 10 {
		nameWidth = 10
	}

	var lines []string
	for _, c := range m.captures {
		mark := okStyle.Render("✓")
		if !c.Succeeded() {
			mark = failStyle.Render("✗")
		}
		name := runewidth.Truncate(filepath.Base(c.Path), nameWidth, "…")
		name = runewidth.FillRight(name, nameWidth)
		when := c.StartedAt.Local().Format("15:04:05")
		lines = append(lines, fmt.Sprintf("%s %s %s", mark, name, dimStyle.Render(when)))
		if !c.Succeeded() {
			lines = append(lines, "  "+failStyle.Render(runewidth.Truncate(c.Error, m.width-2, "…")))
		}
	}
	return strings.Join(lines, "\n")
}

// View renders the panel body and a stats footer
func (m HistoryPanelModel) View() string {
	t := m.theme
	title := t.Renderer.NewStyle().Foreground(t.Secondary).Bold(true).Render("HISTORY")
	stats := t.Renderer.NewStyle().Foreground(t.Subtext).Render(
		runewidth.Truncate(m.summary.String(), m.width, "…"))
	return title + "\n" + m.viewport.View() + "\n" + stats
}
