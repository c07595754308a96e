// Package devserver is an in-memory chat backend speaking the widget protocol.
// It backs local development, the stub-server command and end-to-end tests.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"hainzelman/internal/logger"
	"hainzelman/pkg/widgettypes"
)

// maxRequestBodySize bounds request bodies; prompts are capped well below it.
const maxRequestBodySize = 1 << 20

// Reply is what a Responder returns for a prompt.
type Reply struct {
	Response string
	// Redirect asks the widget to route the next message to a human.
	Redirect bool
}

// Responder produces the assistant answer for a prompt.
type Responder func(session *widgettypes.ChatSession, prompt string) Reply

// Contact is a handoff request captured by the contact endpoint.
type Contact struct {
	SessionID    string
	Email        string
	SupportEmail string
	ReceivedAt   time.Time
}

// Options configures a Server.
type Options struct {
	// Authorization is the exact header value required. Empty accepts any request.
	Authorization string
	Responder     Responder
	Logger        widgettypes.Logger
	// NewID generates session ids. Defaults to random UUIDs.
	NewID func() string
	Clock func() time.Time
}

// Server holds sessions and captured contacts in memory.
type Server struct {
	auth      string
	responder Responder
	log       widgettypes.Logger
	newID     func() string
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*widgettypes.ChatSession
	contacts []Contact
}

// New creates a server.
func New(opts Options) *Server {
	s := &Server{
		auth:      opts.Authorization,
		responder: opts.Responder,
		log:       opts.Logger,
		newID:     opts.NewID,
		now:       opts.Clock,
		sessions:  make(map[string]*widgettypes.ChatSession),
	}
	if s.responder == nil {
		s.responder = DefaultResponder
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the HTTP handler serving the protocol.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(s.requestLogger)
	r.Use(s.authorize)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the four widget endpoints.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/create", s.handleCreate)
		r.Get("/{id}", s.handleFetch)
	})
	r.Route("/widget", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/contact", s.handleContact)
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Stub backend listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("stub backend stopped: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down stub backend: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Session returns a copy of a stored session.
func (s *Server) Session(id string) (*widgettypes.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return session.WithMessages(session.Messages), true
}

// Contacts returns the captured handoff contacts.
func (s *Server) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Contact(nil), s.contacts...)
}

// DefaultResponder echoes the prompt and offers a human handoff when the
// prompt asks for a person.
func DefaultResponder(_ *widgettypes.ChatSession, prompt string) Reply {
	lower := strings.ToLower(prompt)
	for _, word := range []string{"human", "agent", "person", "support"} {
		if strings.Contains(lower, word) {
			return Reply{
				Response: "I can connect you with our support team. Please enter your **email address** so they can reach you.",
				Redirect: true,
			}
		}
	}
	return Reply{Response: fmt.Sprintf("You said: *%s*", strings.TrimSpace(prompt))}
}

type createRequest struct {
	IsWidgetChat bool `json:"isWidgetChat"`
	RAG          bool `json:"rag"`
}

type chatRequest struct {
	ChatID string `json:"chatId"`
	Prompt string `json:"prompt"`
}

type contactRequest struct {
	ChatID       string `json:"chatId"`
	Prompt       string `json:"prompt"`
	SupportEmail string `json:"supportEmail"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}

	created, err := json.Marshal(s.now().UTC().Format(time.RFC3339))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	session := &widgettypes.ChatSession{
		ID:       s.newID(),
		Messages: []widgettypes.Message{},
		Extra:    map[string]json.RawMessage{"createdAt": created},
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.log.Debug("Session created", "session_id", session.ID, "widget", req.IsWidgetChat, "rag", req.RAG)
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": session})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	session, ok := s.Session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	s.mu.Lock()
	session, ok := s.sessions[req.ChatID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}
	reply := s.responder(session.WithMessages(session.Messages), req.Prompt)
	s.record(session, req.Prompt, reply.Response)
	s.mu.Unlock()

	body := map[string]interface{}{"response": reply.Response}
	if reply.Redirect {
		body["redirect"] = true
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[req.ChatID]
	if !ok {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Prompt))
	if err != nil {
		response := "That does not look like an email address. Please try again."
		s.record(session, req.Prompt, response)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"response":   response,
			"validMail":  true,
			"validEmail": false,
		})
		return
	}

	s.contacts = append(s.contacts, Contact{
		SessionID:    session.ID,
		Email:        addr.Address,
		SupportEmail: req.SupportEmail,
		ReceivedAt:   s.now(),
	})
	response := fmt.Sprintf("Thank you! Our team will contact you at %s shortly.", addr.Address)
	if req.SupportEmail != "" {
		response += fmt.Sprintf(" You can also write to %s.", req.SupportEmail)
	}
	s.record(session, req.Prompt, response)
	s.log.Info("Handoff contact received", "session_id", session.ID, "email", addr.Address)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response":   response,
		"validMail":  true,
		"validEmail": true,
	})
}

// record appends one exchange to the session. Callers hold s.mu.
func (s *Server) record(session *widgettypes.ChatSession, prompt, response string) {
	messages := append(append([]widgettypes.Message(nil), session.Messages...),
		widgettypes.Message{Role: widgettypes.RoleUser, Content: prompt},
		widgettypes.Message{Role: widgettypes.RoleAssistant, Content: response},
	)
	s.sessions[session.ID] = session.WithMessages(messages)
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth != "" && r.Header.Get("Authorization") != s.auth {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
