package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hainzelman/internal/widget"
	"hainzelman/pkg/widgettypes"
)

type fakeWidget struct {
	mu           sync.Mutex
	sent         []string
	toggles      int
	open         bool
	bootstrapped bool
	bootstrapErr error
	sendErr      error
	transcript   []widgettypes.Message
}

func (w *fakeWidget) Bootstrap(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bootstrapped = true
	return w.bootstrapErr
}

func (w *fakeWidget) Send(_ context.Context, input string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sent = append(w.sent, input)
	return w.sendErr
}

func (w *fakeWidget) TogglePanel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.toggles++
	w.open = !w.open
	return w.open
}

func (w *fakeWidget) Transcript() []widgettypes.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]widgettypes.Message(nil), w.transcript...)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// openModel returns a sized model with the shell rendered, bootstrap done and
// the panel open.
func openModel(t *testing.T, w *fakeWidget) Model {
	t.Helper()
	m := New(context.Background(), w, Options{Clipboard: func(string) error { return nil }})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	m, _ = update(t, m, shellMsg{})
	m, _ = update(t, m, bootstrapDoneMsg{})
	m, _ = update(t, m, panelMsg{open: true})
	return m
}

func TestInit_Bootstraps(t *testing.T) {
	w := &fakeWidget{}
	m := New(context.Background(), w, Options{})

	msg := m.Init()()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok)

	var done bool
	for _, cmd := range batch {
		if cmd == nil {
			continue
		}
		if _, ok := cmd().(bootstrapDoneMsg); ok {
			done = true
		}
	}
	assert.True(t, done)
	assert.True(t, w.bootstrapped)
}

func TestUpdate_BootstrapOpensPanelWhenRequested(t *testing.T) {
	w := &fakeWidget{}
	m := New(context.Background(), w, Options{OpenOnStart: true})

	m, cmd := update(t, m, bootstrapDoneMsg{err: errors.New("offline")})
	require.NotNil(t, cmd)
	assert.Equal(t, toggledMsg{open: true}, cmd())
	assert.True(t, m.ready)
}

func TestUpdate_PresenterMessages(t *testing.T) {
	m := openModel(t, &fakeWidget{})

	m, _ = update(t, m, renderMessageMsg{content: "Hi there", role: widgettypes.RoleAssistant})
	m, _ = update(t, m, renderMessageMsg{content: "hello", role: widgettypes.RoleUser})
	require.Len(t, m.entries, 2)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Hi there")
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "You")

	m, _ = update(t, m, clearMessagesMsg{})
	assert.Empty(t, m.entries)
	assert.NotContains(t, ansi.Strip(m.View()), "Hi there")
}

func TestUpdate_ComposerTogglesTypingAndInput(t *testing.T) {
	m := openModel(t, &fakeWidget{})

	m, _ = update(t, m, composerMsg{typing: true, inputEnabled: false})
	assert.Contains(t, ansi.Strip(m.View()), TypingIndicator)
	assert.False(t, m.inputEnabled)
	assert.False(t, m.input.Focused())

	m, _ = update(t, m, composerMsg{typing: false, inputEnabled: true})
	m, _ = update(t, m, focusInputMsg{})
	assert.NotContains(t, ansi.Strip(m.View()), TypingIndicator)
	assert.True(t, m.input.Focused())
}

func TestUpdate_EnterSendsInput(t *testing.T) {
	w := &fakeWidget{}
	m := openModel(t, w)
	m.input.SetValue("hello")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, sendDoneMsg{}, cmd())
	assert.Equal(t, []string{"hello"}, w.sent)
	assert.Equal(t, "hello", m.input.Value(), "the controller clears the input")

	m, _ = update(t, m, clearInputMsg{})
	assert.Empty(t, m.input.Value())
}

func TestUpdate_EnterIgnoredWhileInputDisabled(t *testing.T) {
	w := &fakeWidget{}
	m := openModel(t, w)
	m.input.SetValue("hello")
	m, _ = update(t, m, composerMsg{typing: true, inputEnabled: false})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, w.sent)
}

func TestUpdate_EnterIgnoredBeforeBootstrap(t *testing.T) {
	w := &fakeWidget{}
	m := New(context.Background(), w, Options{})
	m, _ = update(t, m, panelMsg{open: true})
	m.input.SetValue("hello")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestUpdate_AltEnterInsertsNewline(t *testing.T) {
	m := openModel(t, &fakeWidget{})
	m.input.SetValue("line one")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	assert.Nil(t, cmd)
	m.input.InsertString("line two")

	assert.Equal(t, "line one\nline two", m.input.Value())
}

func TestUpdate_TypingGoesToInput(t *testing.T) {
	m := openModel(t, &fakeWidget{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hey")})
	assert.Equal(t, "hey", m.input.Value())
}

func TestUpdate_InputCharLimit(t *testing.T) {
	m := openModel(t, &fakeWidget{})
	assert.Equal(t, widgettypes.MaxInputLength, m.input.CharLimit)
}

func TestUpdate_TogglePanel(t *testing.T) {
	w := &fakeWidget{}
	m := openModel(t, w)
	m, _ = update(t, m, panelMsg{open: false})

	assert.Contains(t, ansi.Strip(m.View()), DefaultTitle)
	assert.Contains(t, ansi.Strip(m.View()), "ctrl+o open")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	assert.Equal(t, toggledMsg{open: true}, cmd())
	assert.Equal(t, 1, w.toggles)
}

func TestUpdate_ClosedPanelIgnoresInput(t *testing.T) {
	w := &fakeWidget{}
	m := openModel(t, w)
	m, _ = update(t, m, panelMsg{open: false})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.Empty(t, m.input.Value())
}

func TestUpdate_SendStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ok", nil, ""},
		{"empty", widget.ErrEmptyInput, ""},
		{"pending", widget.ErrReplyPending, ""},
		{"not ready", widget.ErrSessionNotReady, "Still connecting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := openModel(t, &fakeWidget{})
			m, _ = update(t, m, sendDoneMsg{err: tt.err})
			if tt.want == "" {
				assert.Empty(t, m.status)
				return
			}
			assert.Contains(t, m.status, tt.want)
		})
	}
}

func TestUpdate_CopyLastReply(t *testing.T) {
	var copied string
	w := &fakeWidget{transcript: []widgettypes.Message{
		{Role: widgettypes.RoleAssistant, Content: "Hi!"},
		{Role: widgettypes.RoleUser, Content: "question"},
		{Role: widgettypes.RoleAssistant, Content: "  **answer**  "},
		{Role: widgettypes.RoleAssistantError, Content: widget.ErrorMessage},
	}}
	m := New(context.Background(), w, Options{Clipboard: func(s string) error { copied = s; return nil }})
	m, _ = update(t, m, panelMsg{open: true})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "**answer**", copied)

	m, _ = update(t, m, msg)
	assert.Equal(t, "Copied last reply", m.status)
}

func TestUpdate_CopyFailures(t *testing.T) {
	m := New(context.Background(), &fakeWidget{}, Options{Clipboard: func(string) error { return errors.New("no display") }})
	m, _ = update(t, m, copiedMsg{})
	assert.Equal(t, "Nothing to copy yet", m.status)

	m, _ = update(t, m, copiedMsg{err: errors.New("no display")})
	assert.True(t, strings.HasPrefix(m.status, "Clipboard unavailable"))
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := openModel(t, &fakeWidget{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestView_EmptyBeforeShell(t *testing.T) {
	m := New(context.Background(), &fakeWidget{}, Options{})
	assert.Empty(t, m.View())
}

func TestTranscript_WrapsToViewportWidth(t *testing.T) {
	m := openModel(t, &fakeWidget{})
	m, _ = update(t, m, renderMessageMsg{content: strings.Repeat("word ", 40), role: widgettypes.RoleAssistant})

	for _, line := range strings.Split(m.transcript(), "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 60)
	}
}

func TestLastReply(t *testing.T) {
	assert.Empty(t, lastReply(nil))
	assert.Empty(t, lastReply([]widgettypes.Message{{Role: widgettypes.RoleUser, Content: "x"}}))
	assert.Equal(t, "b", lastReply([]widgettypes.Message{
		{Role: widgettypes.RoleAssistant, Content: "a"},
		{Role: widgettypes.RoleAssistant, Content: "b"},
		{Role: widgettypes.RoleAssistantError, Content: "c"},
	}))
}
