package intake

import (
	"charm.land/lipgloss/v2"
	"github.com/registradesk/registra/internal/dupcheck"
	"github.com/registradesk/registra/internal/tui/theme"
)

// renderDupBanner renders the duplicate-detection alert above the button
// bar. Exact matches use the error color and block submission; similar
// matches are advisory and styled as a warning.
func renderDupBanner(alert dupcheck.Alert, width int) string {
	if alert.Status == dupcheck.StatusNone {
		return ""
	}

	t := theme.Current()

	accent := t.Warning
	icon := "⚠"
	if alert.Status == dupcheck.StatusExact {
		accent = t.Error
		icon = "✗"
	}

	headStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(accent))
	rowStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgSubtle)).
		PaddingLeft(2)

	lines := []string{headStyle.Render(icon + " " + alert.Message)}
	for _, c := range alert.Candidates {
		row := "• "
		if c.RegistryNo != "" {
			row += "Registry No. " + c.RegistryNo
		} else {
			row += c.ID
		}
		if name := candidateName(c.Identity); name != "" {
			row += " — " + name
		}
		lines = append(lines, rowStyle.Render(row))
	}

	bannerStyle := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(accent))

	return bannerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// candidateName builds a short display name from a candidate's identity
// fields. Works for both single-person and couple identities.
func candidateName(identity map[string]string) string {
	pairs := [][2]string{
		{"first_name", "last_name"},
		{"husband_first_name", "husband_last_name"},
		{"wife_first_name", "wife_last_name"},
	}
	var name string
	for _, p := range pairs {
		first, last := identity[p[0]], identity[p[1]]
		if first == "" && last == "" {
			continue
		}
		part := first
		if last != "" {
			if part != "" {
				part += " "
			}
			part += last
		}
		if name != "" {
			name += " & "
		}
		name += part
	}
	return name
}
