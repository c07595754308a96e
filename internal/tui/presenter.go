package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"hainzelman/pkg/widgettypes"
)

// Presenter forwards presentation commands to a running Bubble Tea program.
// Calls made before Attach are dropped.
//
// Presenter methods block until the program receives the message, so they must
// never be called from inside Model.Update.
type Presenter struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ widgettypes.Presenter = (*Presenter)(nil)

// NewPresenter creates a detached presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Attach connects the presenter to a program, typically (*tea.Program).Send.
func (p *Presenter) Attach(send func(tea.Msg)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.send = send
}

func (p *Presenter) emit(msg tea.Msg) {
	p.mu.RLock()
	send := p.send
	p.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

// RenderShell tells the model the widget frame exists; View renders nothing before it.
func (p *Presenter) RenderShell() {
	p.emit(shellMsg{})
}

// ClearMessages empties the transcript ahead of a history replay.
func (p *Presenter) ClearMessages() {
	p.emit(clearMessagesMsg{})
}

// RenderMessage appends one entry to the transcript.
func (p *Presenter) RenderMessage(content string, role widgettypes.Role) {
	p.emit(renderMessageMsg{content: content, role: role})
}

// SetComposer shows or hides the typing line and enables or disables the input.
func (p *Presenter) SetComposer(typing bool, inputEnabled bool) {
	p.emit(composerMsg{typing: typing, inputEnabled: inputEnabled})
}

// ClearInput empties the textarea.
func (p *Presenter) ClearInput() {
	p.emit(clearInputMsg{})
}

// FocusInput gives the textarea keyboard focus.
func (p *Presenter) FocusInput() {
	p.emit(focusInputMsg{})
}

// SetPanelVisible opens or collapses the chat panel.
func (p *Presenter) SetPanelVisible(open bool) {
	p.emit(panelMsg{open: open})
}

// ScrollToLatest moves the viewport to the newest message.
func (p *Presenter) ScrollToLatest() {
	p.emit(scrollMsg{})
}
