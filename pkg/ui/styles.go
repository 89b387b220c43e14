package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
	SpaceLG = 4
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgSubtle    = lipgloss.Color("#363949")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorSubtext     = lipgloss.Color("#BFBFBF")
	ColorMuted       = lipgloss.Color("#6272A4")

	ColorPrimary   = lipgloss.Color("#BD93F9")
	ColorSecondary = lipgloss.Color("#6272A4")
	ColorInfo      = lipgloss.Color("#8BE9FD")
	ColorSuccess   = lipgloss.Color("#50FA7B")
	ColorWarning   = lipgloss.Color("#FFB86C")
	ColorDanger    = lipgloss.Color("#FF5555")

	// Badge backgrounds
	ColorLiveBg = lipgloss.Color("#1A3D2A")
	ColorBusyBg = lipgloss.Color("#3D2A1A")
	ColorIdleBg = lipgloss.Color("#2A2A3D")
)

// Theme carries the renderer and adaptive colors for one output
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Base      lipgloss.Style
}

// DefaultTheme builds the theme for r; nil means the default renderer
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: string(ColorPrimary)},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: string(ColorSecondary)},
		Subtext:   lipgloss.AdaptiveColor{Light: "#777777", Dark: string(ColorSubtext)},
		Border:    lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: string(ColorBgHighlight)},
		Success:   lipgloss.AdaptiveColor{Light: "#1E8E3E", Dark: string(ColorSuccess)},
		Warning:   lipgloss.AdaptiveColor{Light: "#B8620B", Dark: string(ColorWarning)},
		Danger:    lipgloss.AdaptiveColor{Light: "#C62828", Dark: string(ColorDanger)},
		Base:      r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: string(ColorText)}),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// RenderPreviewBadge shows whether the preview is running
func RenderPreviewBadge(running bool) string {
	fg, bg, label := ColorMuted, ColorIdleBg, " PREVIEW OFF "
	if running {
		fg, bg, label = ColorSuccess, ColorLiveBg, " PREVIEW ON "
	}
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Bold(true).Render(label)
}

// RenderCaptureBadge shows the take-picture control state
func RenderCaptureBadge(enabled bool, spinner string) string {
	if !enabled {
		return lipgloss.NewStyle().
			Foreground(ColorWarning).
			Background(ColorBusyBg).
			Render(" " + spinner + " CAPTURING ")
	}
	return lipgloss.NewStyle().
		Foreground(ColorText).
		Background(ColorBgHighlight).
		Bold(true).
		Render(" [t] TAKE PICTURE ")
}

// ══════════════════════════════════════════════════════════════════════════════
// SLIDERS
// ══════════════════════════════════════════════════════════════════════════════

// RenderSlider draws a horizontal track with a knob at value's position in [min, max]
func RenderSlider(value, min, max, width int, focused bool, t Theme) string {
	if width <= 0 {
		return ""
	}
	pos := 0
	if max > min {
		pos = (value - min) * (width - 1) / (max - min)
	}
	if pos < 0 {
		pos = 0
	}
	if pos > width-1 {
		pos = width - 1
	}

	color := t.Secondary
	if focused {
		color = t.Primary
	}
	track := strings.Repeat("━", pos) + "●" + strings.Repeat("─", width-pos-1)
	return t.Renderer.NewStyle().Foreground(color).Render(track)
}

// RenderSpinbox draws the numeric entry beside a slider
func RenderSpinbox(value int, editing string, focused bool, t Theme) string {
	text := fmt.Sprintf("%5d", value)
	if editing != "" {
		text = fmt.Sprintf("%5s", editing+"_")
	}
	style := t.Renderer.NewStyle().Foreground(t.Subtext)
	if focused {
		style = style.Foreground(t.Primary).Bold(true)
	}
	return style.Render("[" + text + "]")
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
