package intake

import (
	"charm.land/lipgloss/v2"
	"github.com/registradesk/registra/internal/notify"
	"github.com/registradesk/registra/internal/tui/theme"
)

// RenderConfirmationModal renders a confirmation prompt: title, message,
// an optional preformatted detail block, and the Y/N hint with the
// prompt's own button labels.
func RenderConfirmationModal(c notify.Confirmation) string {
	t := theme.Current()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Warning)).
		MarginBottom(1)
	titleText := titleStyle.Render("⚠ " + c.Title)

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase)).
		MarginBottom(1)
	messageText := messageStyle.Render(c.Message)

	parts := []string{titleText, messageText}

	if c.Detail != "" {
		detailStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.FgSubtle)).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(t.BorderDefault)).
			MarginBottom(1)
		parts = append(parts, detailStyle.Render(c.Detail))
	}

	yes := c.YesLabel
	if yes == "" {
		yes = "Yes"
	}
	no := c.NoLabel
	if no == "" {
		no = "No"
	}
	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgMuted))
	buttons := buttonStyle.Render("Y: " + yes + "  •  N/ESC: " + no)

	parts = append(parts, "", buttons)

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	modalStyle := lipgloss.NewStyle().
		Width(56).
		Padding(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Warning))

	return modalStyle.Render(content)
}
