package tui

import "hainzelman/pkg/widgettypes"

// Messages emitted by Presenter. They carry presentation commands from the
// controller into the Bubble Tea event loop.
type (
	shellMsg         struct{}
	clearMessagesMsg struct{}
	renderMessageMsg struct {
		content string
		role    widgettypes.Role
	}
	composerMsg struct {
		typing       bool
		inputEnabled bool
	}
	clearInputMsg struct{}
	focusInputMsg struct{}
	panelMsg      struct{ open bool }
	scrollMsg     struct{}
)

// Results of controller calls made from commands.
type (
	bootstrapDoneMsg struct{ err error }
	sendDoneMsg      struct{ err error }
	toggledMsg       struct{ open bool }
	copiedMsg        struct {
		chars int
		err   error
	}
)
