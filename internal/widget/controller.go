// Package widget implements the session controller of the chat widget.
//
// The controller owns the state store and is the only component with business
// logic: it bootstraps the session (resume or create), admits and dispatches
// user messages, interprets backend replies and latches the bot-to-human
// handoff. Presentation happens exclusively through the injected Presenter.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"hainzelman/internal/logger"
	"hainzelman/internal/state"
	"hainzelman/internal/storage"
	"hainzelman/pkg/widgettypes"
)

// ErrorMessage is shown in the transcript when a send or handoff fails.
const ErrorMessage = "Something went wrong"

var (
	// ErrEmptyInput is returned when the submitted text is blank.
	ErrEmptyInput = errors.New("input is empty")
	// ErrReplyPending is returned when a send is attempted while another is outstanding.
	ErrReplyPending = errors.New("a reply is still pending")
	// ErrSessionNotReady is returned when a send is attempted before bootstrap completed.
	ErrSessionNotReady = errors.New("session bootstrap has not completed")
	// ErrAlreadyBootstrapped is returned by a second Bootstrap call.
	ErrAlreadyBootstrapped = errors.New("session already bootstrapped")
	// ErrBootstrapFailed reports that the widget fell back to an empty session.
	ErrBootstrapFailed = errors.New("session bootstrap failed")
)

// Options holds the host-provided settings the controller needs.
type Options struct {
	GreetingMessage string
	SupportEmail    string
	// Resume fetches the persisted session instead of always creating a new one.
	Resume bool
}

// Deps are the collaborators of the controller. Markdown is optional.
type Deps struct {
	Gateway   widgettypes.Gateway
	Sessions  widgettypes.SessionStore
	Presenter widgettypes.Presenter
	Markdown  widgettypes.MarkdownRenderer
	Logger    widgettypes.Logger
}

type phase int

const (
	phaseNew phase = iota
	phaseBootstrapping
	phaseReady
)

// Controller orchestrates one widget instance.
type Controller struct {
	opts      Options
	gateway   widgettypes.Gateway
	sessions  widgettypes.SessionStore
	presenter widgettypes.Presenter
	markdown  widgettypes.MarkdownRenderer
	log       widgettypes.Logger

	state *state.Store

	// mu serialises bootstrap phase changes, send admission and panel toggles.
	mu    sync.Mutex
	phase phase
}

// New wires a controller. Missing optional collaborators get inert defaults.
func New(opts Options, deps Deps) *Controller {
	c := &Controller{
		opts:      opts,
		gateway:   deps.Gateway,
		sessions:  deps.Sessions,
		presenter: deps.Presenter,
		markdown:  deps.Markdown,
		log:       deps.Logger,
	}
	if c.sessions == nil {
		c.sessions = storage.NewMemory()
	}
	if c.presenter == nil {
		c.presenter = discardPresenter{}
	}
	if c.log == nil {
		c.log = logger.Nop()
	}

	c.state = state.NewStore(state.Effects{
		state.FieldSession:       {c.renderHistory},
		state.FieldAwaitingReply: {c.applyComposer},
	})
	return c
}

// Bootstrap renders the shell and resumes or creates the chat session.
// On failure the persisted id is removed and the widget stays usable with an
// empty session; the returned error wraps ErrBootstrapFailed for diagnostics.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != phaseNew {
		c.mu.Unlock()
		return ErrAlreadyBootstrapped
	}
	c.phase = phaseBootstrapping
	c.mu.Unlock()
	defer c.setPhase(phaseReady)

	c.presenter.RenderShell()

	session, resumed, err := c.resumeOrCreate(ctx)
	if err != nil {
		c.log.Warn("Bootstrap failed, continuing without session", "error", err)
		if rmErr := c.sessions.Remove(ctx); rmErr != nil {
			c.log.Error("Failed to clear persisted session id", "error", rmErr)
		}
		return fmt.Errorf("%w: %w", ErrBootstrapFailed, err)
	}

	greeting := widgettypes.Message{Role: widgettypes.RoleAssistant, Content: c.opts.GreetingMessage}
	messages := make([]widgettypes.Message, 0, len(session.Messages)+1)
	messages = append(messages, greeting)
	messages = append(messages, session.Messages...)
	committed := session.WithMessages(messages)

	c.restoreHandoff(ctx, committed.ID, resumed)
	c.state.SetSession(committed)
	if err := c.sessions.Set(ctx, committed.ID); err != nil {
		c.log.Error("Failed to persist session id", "session_id", committed.ID, "error", err)
	}
	c.log.Debug("Session ready", "session_id", committed.ID, "history", len(session.Messages),
		"handoff", c.state.Get().HandoffActive)
	return nil
}

// resumeOrCreate reports whether the session was fetched by its persisted id.
func (c *Controller) resumeOrCreate(ctx context.Context) (*widgettypes.ChatSession, bool, error) {
	id, found, err := c.sessions.Get(ctx)
	if err != nil {
		c.log.Warn("Failed to read persisted session id", "error", err)
		found = false
	}

	if found && id != "" && c.opts.Resume {
		c.log.Debug("Resuming session", "session_id", id)
		session, err := c.gateway.FetchSession(ctx, id)
		return session, true, err
	}
	c.log.Debug("Creating new session")
	session, err := c.gateway.CreateSession(ctx)
	return session, false, err
}

// restoreHandoff re-arms the handoff latch of a resumed session and drops a
// stale flag left behind by a replaced one. Stores without a flag are skipped.
func (c *Controller) restoreHandoff(ctx context.Context, sessionID string, resumed bool) {
	store, ok := c.sessions.(widgettypes.HandoffStore)
	if !ok {
		return
	}
	if !resumed {
		if err := store.SetHandoffActive(ctx, false); err != nil {
			c.log.Warn("Failed to clear persisted handoff flag", "session_id", sessionID, "error", err)
		}
		return
	}
	active, err := store.HandoffActive(ctx)
	if err != nil {
		c.log.Warn("Failed to read persisted handoff flag", "session_id", sessionID, "error", err)
		return
	}
	if active {
		c.state.SetHandoffActive(true)
		c.log.Debug("Handoff restored", "session_id", sessionID)
	}
}

// persistHandoff records a newly latched handoff so a resumed session keeps it.
func (c *Controller) persistHandoff(ctx context.Context, sessionID string) {
	store, ok := c.sessions.(widgettypes.HandoffStore)
	if !ok {
		return
	}
	if err := store.SetHandoffActive(ctx, true); err != nil {
		c.log.Error("Failed to persist handoff flag", "session_id", sessionID, "error", err)
	}
}

// Send submits user input. Blank input, a pending reply or an unfinished
// bootstrap reject the call without side effects. Backend failures are not
// returned: they appear in the transcript as an assistant-error message.
func (c *Controller) Send(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.phase != phaseReady {
		c.mu.Unlock()
		return ErrSessionNotReady
	}
	snap := c.state.Get()
	if snap.AwaitingReply {
		c.mu.Unlock()
		return ErrReplyPending
	}
	c.state.SetAwaitingReply(true)
	c.mu.Unlock()

	c.presenter.ClearInput()
	c.appendAndRender(widgettypes.Message{Role: widgettypes.RoleUser, Content: input})

	var (
		reply *widgettypes.ChatReply
		err   error
	)
	if snap.HandoffActive {
		reply, err = c.gateway.SubmitHandoffContact(ctx, snap.Session.ID, input, c.opts.SupportEmail)
	} else {
		reply, err = c.gateway.SendMessage(ctx, snap.Session.ID, input)
	}

	if err != nil {
		c.log.Error("Message delivery failed", "session_id", snap.Session.ID, "handoff", snap.HandoffActive, "error", err)
		c.appendAndRender(widgettypes.Message{Role: widgettypes.RoleAssistantError, Content: ErrorMessage})
		c.state.SetAwaitingReply(false)
		return nil
	}

	if requestsHandoff(reply) && c.state.SetHandoffActive(true) {
		c.log.Info("Conversation handed off to a human agent", "session_id", snap.Session.ID)
		c.persistHandoff(ctx, snap.Session.ID)
	}
	c.appendAndRender(widgettypes.Message{Role: widgettypes.RoleAssistant, Content: reply.Response})
	c.state.SetAwaitingReply(false)
	return nil
}

// requestsHandoff checks both backend flags literally: a truthy redirect, or a
// validMail key paired with a truthy validEmail.
func requestsHandoff(reply *widgettypes.ChatReply) bool {
	return reply.Truthy("redirect") || (reply.Has("validMail") && reply.Truthy("validEmail"))
}

// TogglePanel opens or closes the panel and returns the new visibility.
func (c *Controller) TogglePanel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	open := !c.state.Get().PanelOpen
	c.state.SetPanelOpen(open)
	c.presenter.SetPanelVisible(open)
	if open {
		c.presenter.ScrollToLatest()
	}
	return open
}

// State returns a snapshot of the widget state.
func (c *Controller) State() state.Snapshot {
	return c.state.Get()
}

// Transcript returns a copy of the committed messages.
func (c *Controller) Transcript() []widgettypes.Message {
	return append([]widgettypes.Message(nil), c.state.Get().Session.Messages...)
}

// SessionID returns the id of the committed session, empty before bootstrap.
func (c *Controller) SessionID() string {
	return c.state.Get().Session.ID
}

// Ready reports whether bootstrap has finished, successfully or not.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == phaseReady
}

func (c *Controller) setPhase(p phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

func (c *Controller) appendAndRender(msg widgettypes.Message) {
	c.state.AppendMessage(msg)
	c.renderMessage(msg)
	c.presenter.ScrollToLatest()
}

func (c *Controller) renderHistory(snap state.Snapshot) {
	c.presenter.ClearMessages()
	for _, msg := range snap.Session.Messages {
		c.renderMessage(msg)
	}
	c.presenter.ScrollToLatest()
}

func (c *Controller) renderMessage(msg widgettypes.Message) {
	content := msg.Content
	if c.markdown != nil && strings.TrimSpace(content) != "" {
		rendered, err := c.markdown.Render(content)
		if err != nil {
			c.log.Debug("Markdown rendering failed, using plain text", "error", err)
		} else {
			content = rendered
		}
	}
	c.presenter.RenderMessage(content, msg.Role)
}

func (c *Controller) applyComposer(snap state.Snapshot) {
	c.presenter.SetComposer(snap.AwaitingReply, !snap.AwaitingReply)
	c.presenter.FocusInput()
}

type discardPresenter struct{}

func (discardPresenter) RenderShell() {}
func (discardPresenter) ClearMessages() {}
func (discardPresenter) RenderMessage(string, widgettypes.Role) {}
func (discardPresenter) SetComposer(bool, bool) {}
func (discardPresenter) ClearInput() {}
func (discardPresenter) FocusInput() {}
func (discardPresenter) SetPanelVisible(bool) {}
func (discardPresenter) ScrollToLatest() {}
