// Package output prints the chat transcript as a stream of lines.
// It is the Presenter used by non-interactive hosts such as the ask command.
package output

import "hainzelman/pkg/widgettypes"

// StyleProvider supplies the style of each transcript role.
type StyleProvider interface {
	// LabelStyle styles the role label in front of a message.
	LabelStyle(role widgettypes.Role) TextStyle
	// BodyStyle styles the message content.
	BodyStyle(role widgettypes.Role) TextStyle
	// IsAvailable returns false when the provider cannot style, e.g. no colour support.
	IsAvailable() bool
}

// TextStyle is implemented by lipgloss.Style.
type TextStyle interface {
	Render(strs ...string) string
}

// Mode selects how messages are written.
type Mode int

const (
	// ModeAuto styles output when a StyleProvider is available.
	ModeAuto Mode = iota
	// ModeStyled always uses the StyleProvider.
	ModeStyled
	// ModePlain writes labels and content with ANSI sequences removed.
	ModePlain
	// ModeJSON writes one JSON object per message.
	ModeJSON
)
