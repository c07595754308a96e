package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"hainzelman/pkg/widgettypes"
)

var typingStyle = lipgloss.NewStyle().Italic(true).Faint(true)

// Printer writes transcript messages as lines. It implements
// widgettypes.Presenter; operations without a line equivalent (input focus,
// panel visibility) are ignored.
type Printer struct {
	mu          sync.Mutex
	writer      io.Writer
	mode        Mode
	styles      StyleProvider
	skipHistory bool
	typingText  string

	replaying bool
	typing    bool
	printed   int
}

var _ widgettypes.Presenter = (*Printer)(nil)

// NewPrinter creates a Printer writing to os.Stdout unless configured otherwise.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// RenderShell is a no-op for line output.
func (p *Printer) RenderShell() {}

// ClearMessages marks the start of a history replay.
func (p *Printer) ClearMessages() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replaying = true
}

// ScrollToLatest ends a history replay.
func (p *Printer) ScrollToLatest() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replaying = false
}

// RenderMessage prints one message.
func (p *Printer) RenderMessage(content string, role widgettypes.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.skipHistory && p.replaying {
		return
	}
	p.printed++
	_, _ = fmt.Fprint(p.writer, p.format(content, role))
}

// SetComposer prints the typing notice when a reply starts pending.
func (p *Printer) SetComposer(typing bool, _ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := typing && !p.typing
	p.typing = typing
	if !started || p.typingText == "" || p.mode == ModeJSON {
		return
	}
	text := p.typingText
	if p.stylable() {
		text = typingStyle.Render(text)
	}
	_, _ = fmt.Fprintln(p.writer, text)
}

// ClearInput is a no-op; line output has no input field.
func (p *Printer) ClearInput() {}

// FocusInput is a no-op.
func (p *Printer) FocusInput() {}

// SetPanelVisible is a no-op; line output has no panel.
func (p *Printer) SetPanelVisible(bool) {}

// Printed returns the number of messages written so far.
func (p *Printer) Printed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printed
}

func (p *Printer) stylable() bool {
	switch p.mode {
	case ModeStyled, ModeAuto:
		return p.styles != nil
	default:
		return false
	}
}

func (p *Printer) format(content string, role widgettypes.Role) string {
	if p.mode == ModeJSON {
		data, err := json.Marshal(struct {
			Role    widgettypes.Role `json:"role"`
			Content string           `json:"content"`
		}{role, ansi.Strip(content)})
		if err != nil {
			return ansi.Strip(content) + "\n"
		}
		return string(data) + "\n"
	}

	var label, body TextStyle = plainStyle{}, plainStyle{}
	if p.stylable() {
		label, body = p.styles.LabelStyle(role), p.styles.BodyStyle(role)
	}
	if p.mode == ModePlain {
		content = ansi.Strip(content)
	}

	sep := " "
	if strings.Contains(content, "\n") {
		sep = "\n"
	}
	return label.Render(Label(role)+":") + sep + body.Render(content) + "\n"
}
