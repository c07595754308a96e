package tui

import (
	"github.com/charmbracelet/lipgloss"

	"hainzelman/pkg/widgettypes"
)

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79FF"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	errorColor  = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentColor).
			Padding(0, 1)

	bubbleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentColor).
			Padding(0, 2)

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true)
	errorLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	errorBodyStyle      = lipgloss.NewStyle().Foreground(errorColor)

	typingStyle = lipgloss.NewStyle().Italic(true).Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	statusStyle = lipgloss.NewStyle().Foreground(accentColor)

	inputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(mutedColor)
	inputActiveBorderStyle = inputBorderStyle.BorderForeground(accentColor)
)

func roleLabel(role widgettypes.Role) string {
	switch role {
	case widgettypes.RoleUser:
		return userLabelStyle.Render("You")
	case widgettypes.RoleAssistantError:
		return errorLabelStyle.Render("Assistant")
	default:
		return assistantLabelStyle.Render("Assistant")
	}
}
