// Package widgettypes defines the session and conversation types shared by the
// Hainzelman widget components.
// This file contains the chat session and message types exchanged with the backend.
package widgettypes

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a message in the transcript.
type Role string

const (
	// RoleUser marks messages typed by the person using the widget.
	RoleUser Role = "user"
	// RoleAssistant marks backend replies and the greeting.
	RoleAssistant Role = "assistant"
	// RoleAssistantError marks locally generated failure notices.
	RoleAssistantError Role = "assistant-error"
)

// MaxInputLength is the character cap applied by hosts to the input field.
const MaxInputLength = 5000

// Message is a single transcript entry. Messages are immutable once appended.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatSession is a server-tracked conversation.
// Fields other than id and messages are kept in Extra so that they survive a
// decode/encode round trip untouched.
type ChatSession struct {
	ID       string                     `json:"id"`
	Messages []Message                  `json:"messages"`
	Extra    map[string]json.RawMessage `json:"-"`
}

// IsZero reports whether the session is the empty placeholder used before a
// successful bootstrap.
func (s *ChatSession) IsZero() bool {
	return s == nil || (s.ID == "" && len(s.Messages) == 0 && len(s.Extra) == 0)
}

// WithMessages returns a copy of the session carrying the given messages.
// The receiver is left untouched.
func (s *ChatSession) WithMessages(messages []Message) *ChatSession {
	out := &ChatSession{
		Messages: append([]Message(nil), messages...),
	}
	if s == nil {
		return out
	}
	out.ID = s.ID
	if len(s.Extra) > 0 {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// UnmarshalJSON decodes a backend session, keeping unknown fields in Extra.
func (s *ChatSession) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("session must be a JSON object")
	}

	*s = ChatSession{}
	if v, ok := raw["id"]; ok {
		if err := json.Unmarshal(v, &s.ID); err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}
		delete(raw, "id")
	}
	if v, ok := raw["messages"]; ok {
		if err := json.Unmarshal(v, &s.Messages); err != nil {
			return fmt.Errorf("invalid session messages: %w", err)
		}
		delete(raw, "messages")
	}
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

// MarshalJSON encodes the session including passthrough fields.
func (s ChatSession) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Extra)+2)
	for k, v := range s.Extra {
		out[k] = v
	}

	id, err := json.Marshal(s.ID)
	if err != nil {
		return nil, err
	}
	out["id"] = id

	messages := s.Messages
	if messages == nil {
		messages = []Message{}
	}
	encoded, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}
	out["messages"] = encoded

	return json.Marshal(out)
}
