package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"hainzelman/pkg/widgettypes"
)

// chrome is the number of rows around the transcript: header, typing line,
// bordered input and help line.
const chrome = 1 + 1 + (inputHeight + 2) + 1

// View implements tea.Model.
func (m Model) View() string {
	if !m.shellReady {
		return ""
	}
	if !m.panelOpen {
		return m.launcher()
	}

	sections := []string{
		m.header(),
		m.viewport.View(),
		m.typingLine(),
		m.inputView(),
		m.helpLine(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) launcher() string {
	bubble := bubbleStyle.Render("💬 " + m.title)
	help := helpStyle.Render("ctrl+o open · ctrl+c quit")
	line := lipgloss.JoinHorizontal(lipgloss.Center, bubble, "  ", help)
	if m.width > 0 {
		line = ansi.Truncate(line, m.width, "…")
	}
	return line
}

func (m Model) header() string {
	title := m.title
	if m.width > 0 {
		// headerStyle pads one cell on each side.
		title = ansi.Truncate(title, max(m.width-2, 1), "…")
		return headerStyle.Width(m.width).Render(title)
	}
	return headerStyle.Render(title)
}

func (m Model) typingLine() string {
	if !m.typing {
		return ""
	}
	return typingStyle.Render(TypingIndicator)
}

func (m Model) inputView() string {
	style := inputBorderStyle
	if m.inputEnabled {
		style = inputActiveBorderStyle
	}
	return style.Render(m.input.View())
}

func (m Model) helpLine() string {
	if m.status != "" {
		return statusStyle.Render(m.truncate(m.status))
	}
	return helpStyle.Render(m.truncate("enter send · alt+enter newline · ctrl+y copy reply · esc close"))
}

func (m Model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return ansi.Truncate(s, m.width, "…")
}

// layout resizes the components after a size, panel or composer change.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.input.SetWidth(max(m.width-2, 1))
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 1)
	m.syncViewport()
}

func (m *Model) syncViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.transcript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) transcript() string {
	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		blocks = append(blocks, renderEntry(e, m.viewport.Width))
	}
	return strings.Join(blocks, "\n\n")
}

func renderEntry(e entry, width int) string {
	body := lipgloss.NewStyle()
	if e.role == widgettypes.RoleAssistantError {
		body = errorBodyStyle
	}
	if width > 0 {
		body = body.Width(width)
	}
	return roleLabel(e.role) + "\n" + body.Render(e.content)
}
