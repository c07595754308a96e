package widgettypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChatReply is the decoded answer of the send and handoff operations.
// Response holds the text to show; Fields keeps the whole JSON object so that
// routing flags can be inspected by key.
type ChatReply struct {
	Response string
	Fields   map[string]json.RawMessage
}

// UnmarshalJSON decodes a reply object. A present response field must be a string.
func (r *ChatReply) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("reply must be a JSON object")
	}

	*r = ChatReply{Fields: raw}
	if v, ok := raw["response"]; ok && !isJSONNull(v) {
		if err := json.Unmarshal(v, &r.Response); err != nil {
			return fmt.Errorf("invalid reply response: %w", err)
		}
	}
	return nil
}

// Has reports whether key is present in the reply object, whatever its value.
func (r *ChatReply) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Fields[key]
	return ok
}

// Truthy reports whether the value under key is truthy in the JavaScript
// sense: absent, null, false, 0 and "" are falsy, everything else is truthy.
func (r *ChatReply) Truthy(key string) bool {
	if r == nil {
		return false
	}
	v, ok := r.Fields[key]
	if !ok {
		return false
	}
	return truthy(v)
}

func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 'n':
		return false
	case 't':
		return true
	case 'f':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return false
		}
		return s != ""
	case '{', '[':
		return true
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return false
		}
		return f != 0
	}
}

func isJSONNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
