package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"hainzelman/pkg/widgettypes"
)

// RoleStyles is the lipgloss StyleProvider for terminals.
type RoleStyles struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	failure   lipgloss.Style
	body      lipgloss.Style
	errorBody lipgloss.Style
}

// NewRoleStyles creates the default role styles.
func NewRoleStyles() *RoleStyles {
	red := lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	return &RoleStyles{
		user:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79FF"}),
		assistant: lipgloss.NewStyle().Bold(true),
		failure:   lipgloss.NewStyle().Bold(true).Foreground(red),
		body:      lipgloss.NewStyle(),
		errorBody: lipgloss.NewStyle().Foreground(red),
	}
}

// LabelStyle implements StyleProvider.
func (s *RoleStyles) LabelStyle(role widgettypes.Role) TextStyle {
	switch role {
	case widgettypes.RoleUser:
		return s.user
	case widgettypes.RoleAssistantError:
		return s.failure
	default:
		return s.assistant
	}
}

// BodyStyle implements StyleProvider.
func (s *RoleStyles) BodyStyle(role widgettypes.Role) TextStyle {
	if role == widgettypes.RoleAssistantError {
		return s.errorBody
	}
	return s.body
}

// IsAvailable reports whether the terminal supports colour.
func (s *RoleStyles) IsAvailable() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}

// plainStyle renders text unchanged.
type plainStyle struct{}

func (plainStyle) Render(strs ...string) string {
	return strings.Join(strs, " ")
}

// Label returns the display label of a role.
func Label(role widgettypes.Role) string {
	switch role {
	case widgettypes.RoleUser:
		return "You"
	case widgettypes.RoleAssistantError:
		return "Error"
	default:
		return "Assistant"
	}
}
