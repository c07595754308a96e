package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"hainzelman/pkg/widgettypes"
)

func TestPresenter_DropsUntilAttached(t *testing.T) {
	p := NewPresenter()
	p.RenderShell() // must not panic

	var got []tea.Msg
	p.Attach(func(msg tea.Msg) { got = append(got, msg) })
	p.ScrollToLatest()

	assert.Equal(t, []tea.Msg{scrollMsg{}}, got)
}

func TestPresenter_EmitsMessages(t *testing.T) {
	var got []tea.Msg
	p := NewPresenter()
	p.Attach(func(msg tea.Msg) { got = append(got, msg) })

	p.RenderShell()
	p.ClearMessages()
	p.RenderMessage("hello", widgettypes.RoleUser)
	p.SetComposer(true, false)
	p.ClearInput()
	p.FocusInput()
	p.SetPanelVisible(true)
	p.ScrollToLatest()

	assert.Equal(t, []tea.Msg{
		shellMsg{},
		clearMessagesMsg{},
		renderMessageMsg{content: "hello", role: widgettypes.RoleUser},
		composerMsg{typing: true, inputEnabled: false},
		clearInputMsg{},
		focusInputMsg{},
		panelMsg{open: true},
		scrollMsg{},
	}, got)
}
