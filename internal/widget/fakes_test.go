package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"hainzelman/pkg/widgettypes"
)

var errNetwork = errors.New("connection refused")

type gatewayCall struct {
	op           string
	sessionID    string
	prompt       string
	supportEmail string
}

// fakeGateway records calls and answers with the configured functions.
type fakeGateway struct {
	mu    sync.Mutex
	calls []gatewayCall

	create  func() (*widgettypes.ChatSession, error)
	fetch   func(id string) (*widgettypes.ChatSession, error)
	send    func(sessionID, prompt string) (*widgettypes.ChatReply, error)
	handoff func(sessionID, prompt, supportEmail string) (*widgettypes.ChatReply, error)
}

func (g *fakeGateway) record(call gatewayCall) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGateway) Calls() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gatewayCall(nil), g.calls...)
}

func (g *fakeGateway) CreateSession(_ context.Context) (*widgettypes.ChatSession, error) {
	g.record(gatewayCall{op: "create"})
	if g.create == nil {
		return nil, fmt.Errorf("create: %w", errNetwork)
	}
	return g.create()
}

func (g *fakeGateway) FetchSession(_ context.Context, id string) (*widgettypes.ChatSession, error) {
	g.record(gatewayCall{op: "fetch", sessionID: id})
	if g.fetch == nil {
		return nil, fmt.Errorf("fetch: %w", errNetwork)
	}
	return g.fetch(id)
}

func (g *fakeGateway) SendMessage(_ context.Context, sessionID, prompt string) (*widgettypes.ChatReply, error) {
	g.record(gatewayCall{op: "send", sessionID: sessionID, prompt: prompt})
	if g.send == nil {
		return nil, fmt.Errorf("send: %w", errNetwork)
	}
	return g.send(sessionID, prompt)
}

func (g *fakeGateway) SubmitHandoffContact(_ context.Context, sessionID, prompt, supportEmail string) (*widgettypes.ChatReply, error) {
	g.record(gatewayCall{op: "handoff", sessionID: sessionID, prompt: prompt, supportEmail: supportEmail})
	if g.handoff == nil {
		return nil, fmt.Errorf("handoff: %w", errNetwork)
	}
	return g.handoff(sessionID, prompt, supportEmail)
}

func newSession(id string, messages ...widgettypes.Message) func() (*widgettypes.ChatSession, error) {
	return func() (*widgettypes.ChatSession, error) {
		return &widgettypes.ChatSession{ID: id, Messages: messages}, nil
	}
}

// reply builds a ChatReply the way the gateway decodes it.
func reply(body string) *widgettypes.ChatReply {
	var r widgettypes.ChatReply
	if err := r.UnmarshalJSON([]byte(body)); err != nil {
		panic(err)
	}
	return &r
}

type renderedMessage struct {
	Role    widgettypes.Role
	Content string
}

// recordingPresenter keeps an ordered event log plus the visible state.
type recordingPresenter struct {
	mu           sync.Mutex
	events       []string
	messages     []renderedMessage
	typing       bool
	inputEnabled bool
	panelOpen    bool
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{inputEnabled: true}
}

func (p *recordingPresenter) log(event string) {
	p.events = append(p.events, event)
}

func (p *recordingPresenter) RenderShell() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log("shell")
}

func (p *recordingPresenter) ClearMessages() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
	p.log("clear")
}

func (p *recordingPresenter) RenderMessage(content string, role widgettypes.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, renderedMessage{Role: role, Content: content})
	p.log(fmt.Sprintf("message %s: %s", role, content))
}

func (p *recordingPresenter) SetComposer(typing bool, inputEnabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typing, p.inputEnabled = typing, inputEnabled
	p.log(fmt.Sprintf("composer typing=%t input=%t", typing, inputEnabled))
}

func (p *recordingPresenter) ClearInput() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log("clear-input")
}

func (p *recordingPresenter) FocusInput() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log("focus")
}

func (p *recordingPresenter) SetPanelVisible(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panelOpen = open
	p.log(fmt.Sprintf("panel open=%t", open))
}

func (p *recordingPresenter) ScrollToLatest() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log("scroll")
}

func (p *recordingPresenter) Messages() []renderedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]renderedMessage(nil), p.messages...)
}

func (p *recordingPresenter) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *recordingPresenter) Composer() (typing bool, inputEnabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typing, p.inputEnabled
}

func (p *recordingPresenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// failingStore simulates a storage backend that cannot be read or written.
type failingStore struct{}

func (failingStore) Get(context.Context) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingStore) Set(context.Context, string) error { return errors.New("disk gone") }
func (failingStore) Remove(context.Context) error { return errors.New("disk gone") }
func (failingStore) Close() error { return nil }

type tagMarkdown struct{ fail bool }

func (m tagMarkdown) Render(markdown string) (string, error) {
	if m.fail {
		return "", errors.New("renderer broke")
	}
	return "<md>" + markdown + "</md>", nil
}
