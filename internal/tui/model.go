// Package tui hosts the chat widget in a terminal.
//
// The Bubble Tea model keeps its own view state, fed exclusively by the
// messages Presenter emits. Controller calls always run inside commands, never
// in Update, because the controller reports back through the same program.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"hainzelman/internal/logger"
	"hainzelman/internal/widget"
	"hainzelman/pkg/widgettypes"
)

// DefaultTitle is shown in the panel header.
const DefaultTitle = "Chat with us"

// TypingIndicator is displayed while a reply is outstanding.
const TypingIndicator = "Agent is typing..."

const inputHeight = 3

// Widget is the part of the session controller the terminal host drives.
type Widget interface {
	Bootstrap(ctx context.Context) error
	Send(ctx context.Context, input string) error
	TogglePanel() bool
	Transcript() []widgettypes.Message
}

// Options configures the model.
type Options struct {
	Title string
	// OpenOnStart opens the panel once bootstrap has finished.
	OpenOnStart bool
	// Clipboard receives copied replies. Defaults to the system clipboard.
	Clipboard func(string) error
	Logger    widgettypes.Logger
}

type entry struct {
	role    widgettypes.Role
	content string
}

// Model is the Bubble Tea model of the terminal widget.
type Model struct {
	widget      Widget
	ctx         context.Context
	title       string
	openOnStart bool
	copyText    func(string) error
	log         widgettypes.Logger

	width  int
	height int

	input    textarea.Model
	viewport viewport.Model

	shellReady   bool
	ready        bool
	entries      []entry
	typing       bool
	inputEnabled bool
	panelOpen    bool
	status       string
}

// New creates the model. ctx bounds every controller call.
func New(ctx context.Context, w Widget, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Clipboard == nil {
		opts.Clipboard = writeClipboard
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	input := textarea.New()
	input.Placeholder = "Type your message..."
	input.CharLimit = widgettypes.MaxInputLength
	input.ShowLineNumbers = false
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	return Model{
		widget:       w,
		ctx:          ctx,
		title:        opts.Title,
		openOnStart:  opts.OpenOnStart,
		copyText:     opts.Clipboard,
		log:          opts.Logger,
		input:        input,
		viewport:     viewport.New(0, 0),
		inputEnabled: true,
	}
}

// Init starts the cursor blink and bootstraps the session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.bootstrap())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case shellMsg:
		m.shellReady = true
		return m, nil

	case clearMessagesMsg:
		m.entries = nil
		m.syncViewport()
		return m, nil

	case renderMessageMsg:
		m.entries = append(m.entries, entry{role: msg.role, content: msg.content})
		m.syncViewport()
		return m, nil

	case composerMsg:
		m.typing = msg.typing
		m.inputEnabled = msg.inputEnabled
		if !m.inputEnabled {
			m.input.Blur()
		}
		m.layout()
		return m, nil

	case clearInputMsg:
		m.input.Reset()
		return m, nil

	case focusInputMsg:
		if m.inputEnabled {
			return m, m.input.Focus()
		}
		return m, nil

	case panelMsg:
		m.panelOpen = msg.open
		m.layout()
		return m, nil

	case scrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case bootstrapDoneMsg:
		m.ready = true
		if msg.err != nil {
			m.log.Warn("Chat started without a session", "error", msg.err)
		}
		if m.openOnStart && !m.panelOpen {
			return m, m.toggle()
		}
		return m, nil

	case sendDoneMsg:
		m.status = sendStatus(msg.err)
		return m, nil

	case toggledMsg:
		return m, nil

	case copiedMsg:
		switch {
		case msg.err != nil:
			m.status = "Clipboard unavailable: " + msg.err.Error()
		case msg.chars == 0:
			m.status = "Nothing to copy yet"
		default:
			m.status = "Copied last reply"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+o":
		return m, m.toggle()
	}

	if !m.panelOpen {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, m.toggle()
	case "ctrl+y":
		return m, m.copyLastReply()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		if !m.inputEnabled || !m.ready {
			return m, nil
		}
		m.status = ""
		return m, m.send(m.input.Value())
	case "alt+enter":
		if m.inputEnabled {
			m.input.InsertString("\n")
		}
		return m, nil
	}

	if !m.inputEnabled {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) bootstrap() tea.Cmd {
	w, ctx := m.widget, m.ctx
	return func() tea.Msg {
		return bootstrapDoneMsg{err: w.Bootstrap(ctx)}
	}
}

func (m Model) send(input string) tea.Cmd {
	w, ctx := m.widget, m.ctx
	return func() tea.Msg {
		return sendDoneMsg{err: w.Send(ctx, input)}
	}
}

func (m Model) toggle() tea.Cmd {
	w := m.widget
	return func() tea.Msg {
		return toggledMsg{open: w.TogglePanel()}
	}
}

func (m Model) copyLastReply() tea.Cmd {
	w, copyText := m.widget, m.copyText
	return func() tea.Msg {
		text := lastReply(w.Transcript())
		if text == "" {
			return copiedMsg{}
		}
		if err := copyText(text); err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{chars: len([]rune(text))}
	}
}

// lastReply returns the most recent assistant message that is not an error.
func lastReply(messages []widgettypes.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == widgettypes.RoleAssistant {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

func sendStatus(err error) string {
	switch {
	case err == nil, errors.Is(err, widget.ErrEmptyInput), errors.Is(err, widget.ErrReplyPending):
		return ""
	case errors.Is(err, widget.ErrSessionNotReady):
		return "Still connecting, try again in a moment"
	default:
		return err.Error()
	}
}
