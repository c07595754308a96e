// Package widgettypes defines the collaborator interfaces of the widget.
// This file contains the capabilities the session controller consumes: the
// remote gateway, the presenter sink, the persisted session-id slot, the
// optional markdown renderer and the injected logger.
package widgettypes

import "context"

// Gateway performs the four remote session operations. Every method returns
// either a payload or an error; it never panics and never retries.
type Gateway interface {
	CreateSession(ctx context.Context) (*ChatSession, error)
	FetchSession(ctx context.Context, id string) (*ChatSession, error)
	SendMessage(ctx context.Context, sessionID, prompt string) (*ChatReply, error)
	SubmitHandoffContact(ctx context.Context, sessionID, prompt, supportEmail string) (*ChatReply, error)
}

// Presenter is the visual sink of the widget. Implementations must not call
// back into the controller synchronously.
type Presenter interface {
	RenderShell()
	ClearMessages()
	RenderMessage(content string, role Role)
	// SetComposer applies the typing indicator and input-enabled flag in one step.
	SetComposer(typing bool, inputEnabled bool)
	ClearInput()
	FocusInput()
	SetPanelVisible(open bool)
	ScrollToLatest()
}

// SessionStore persists the current session id between widget instantiations.
type SessionStore interface {
	// Get returns the stored id and whether one was present.
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, id string) error
	Remove(ctx context.Context) error
	Close() error
}

// HandoffStore is implemented by session stores that also remember whether
// the stored session was handed off to a human. Removing the session id clears it.
type HandoffStore interface {
	HandoffActive(ctx context.Context) (bool, error)
	SetHandoffActive(ctx context.Context, active bool) error
}

// MarkdownRenderer turns message markdown into displayable text.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// Logger is the diagnostic sink. *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}
