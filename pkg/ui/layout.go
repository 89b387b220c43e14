package ui

// Layout breakpoints for responsive design.
const (
	// BreakpointNarrow is the width below which sliders shrink and the
	// history panel is hidden.
	BreakpointNarrow = 80

	// BreakpointMedium is the width above which the history panel sits
	// beside the controls instead of below them.
	BreakpointMedium = 110
)

// Box and panel dimension constraints.
const (
	// MinSliderWidth keeps the knob position readable.
	MinSliderWidth = 10

	// MaxSliderWidth stops sliders stretching across wide terminals.
	MaxSliderWidth = 50

	// MinContentHeight is the minimum height for scrollable content areas.
	MinContentHeight = 5

	// LabelWidth is the column holding parameter names.
	LabelWidth = 12
)

// sliderWidth picks a track width for a terminal of the given width
func sliderWidth(total int) int {
	w := total - LabelWidth - 20
	if total >= BreakpointMedium {
		w = total/2 - LabelWidth - 16
	}
	if w < MinSliderWidth {
		w = MinSliderWidth
	}
	if w > MaxSliderWidth {
		w = MaxSliderWidth
	}
	return w
}
