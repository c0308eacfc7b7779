package intake

import (
	"charm.land/lipgloss/v2"
)

// Modal layout constants
const (
	modalWidth        = 72                                                       // Total modal width including border
	modalPadding      = 2                                                        // Horizontal padding on each side
	modalBorderWidth  = 1                                                        // Border width on each side
	modalContentWidth = modalWidth - (modalPadding * 2) - (modalBorderWidth * 2) // 66
)

// Color palette (Catppuccin Mocha)
var (
	colorSubtext0 = lipgloss.Color("#a6adc8") // Subtext0
	colorSubtext1 = lipgloss.Color("#bac2de") // Subtext1
	colorSurface2 = lipgloss.Color("#585b70") // Surface2
)

// Hint bar styles
var (
	styleHintKey = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Bold(true)

	styleHintDesc = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	styleHintSeparator = lipgloss.NewStyle().
				Foreground(colorSurface2)
)

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("↑↓", "fields", "enter", "next", "esc", "close")
// Returns: "↑↓ fields • enter next • esc close"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	var result string
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i]
		desc := pairs[i+1]

		if i > 0 {
			result += " " + styleHintSeparator.Render("•") + " "
		}

		result += styleHintKey.Render(key) + " " + styleHintDesc.Render(desc)
	}

	return result
}
