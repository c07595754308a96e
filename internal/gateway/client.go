// Package gateway talks to the chat backend on behalf of the widget.
// It wraps the four remote session operations with uniform error handling:
// every failure (transport, non-2xx status, undecodable body) is logged and
// returned as an error wrapping ErrRequestFailed after a single attempt.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hainzelman/internal/logger"
	"hainzelman/pkg/widgettypes"
)

// ErrRequestFailed is the failure sentinel of every gateway operation.
var ErrRequestFailed = errors.New("chat backend request failed")

const (
	opCreate  = "create"
	opFetch   = "fetch"
	opSend    = "send"
	opHandoff = "handoff"

	// maxErrorExcerpt bounds how much of a failed response body is logged.
	maxErrorExcerpt = 512
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	Authorization string
	// Timeout bounds each request. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     widgettypes.Logger
	// UserAgent is sent when non-empty.
	UserAgent string
}

// Client implements widgettypes.Gateway over HTTP+JSON.
type Client struct {
	baseURL string
	auth    string
	timeout time.Duration
	agent   string
	client  *http.Client
	log     widgettypes.Logger
}

var _ widgettypes.Gateway = (*Client)(nil)

// New creates a gateway client for the backend at opts.BaseURL.
func New(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	var l widgettypes.Logger = opts.Logger
	if l == nil {
		l = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		auth:    opts.Authorization,
		timeout: opts.Timeout,
		agent:   opts.UserAgent,
		client:  client,
		log:     l,
	}
}

type createRequest struct {
	IsWidgetChat bool `json:"isWidgetChat"`
	RAG          bool `json:"rag"`
}

type createResponse struct {
	Result *widgettypes.ChatSession `json:"result"`
}

type sendRequest struct {
	ChatID string `json:"chatId"`
	Prompt string `json:"prompt"`
}

type contactRequest struct {
	ChatID       string `json:"chatId"`
	Prompt       string `json:"prompt"`
	SupportEmail string `json:"supportEmail"`
}

// CreateSession requests a new widget session with retrieval enabled.
func (c *Client) CreateSession(ctx context.Context) (*widgettypes.ChatSession, error) {
	var out createResponse
	if err := c.do(ctx, opCreate, http.MethodPost, "/chat/create", createRequest{IsWidgetChat: true, RAG: true}, &out); err != nil {
		return nil, err
	}
	if out.Result == nil {
		return nil, c.fail(opCreate, "", fmt.Errorf("response has no result"))
	}
	return out.Result, nil
}

// FetchSession retrieves an existing session by id.
func (c *Client) FetchSession(ctx context.Context, id string) (*widgettypes.ChatSession, error) {
	if id == "" {
		return nil, c.fail(opFetch, "", fmt.Errorf("session id is required"))
	}
	var out widgettypes.ChatSession
	if err := c.do(ctx, opFetch, http.MethodGet, "/chat/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage relays a prompt to the automated assistant.
func (c *Client) SendMessage(ctx context.Context, sessionID, prompt string) (*widgettypes.ChatReply, error) {
	if sessionID == "" {
		return nil, c.fail(opSend, "", fmt.Errorf("session id is required"))
	}
	var out widgettypes.ChatReply
	if err := c.do(ctx, opSend, http.MethodPost, "/widget/chat", sendRequest{ChatID: sessionID, Prompt: prompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitHandoffContact relays a prompt to the human handoff endpoint together
// with the support address the host configured.
func (c *Client) SubmitHandoffContact(ctx context.Context, sessionID, prompt, supportEmail string) (*widgettypes.ChatReply, error) {
	if sessionID == "" {
		return nil, c.fail(opHandoff, "", fmt.Errorf("session id is required"))
	}
	body := contactRequest{ChatID: sessionID, Prompt: prompt, SupportEmail: supportEmail}
	var out widgettypes.ChatReply
	if err := c.do(ctx, opHandoff, http.MethodPost, "/widget/contact", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return c.fail(op, "", fmt.Errorf("failed to encode request: %w", err))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return c.fail(op, "", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}

	c.log.Debug("Starting backend request", "operation", op, "method", method, "url", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(op, "", fmt.Errorf("failed to execute request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error on close
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(op, resp.Status, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(op, resp.Status, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, excerpt(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return c.fail(op, resp.Status, fmt.Errorf("failed to decode response: %w", err))
	}

	c.log.Debug("Backend request completed", "operation", op, "status_code", resp.StatusCode, "body_length", len(data))
	return nil
}

func (c *Client) fail(op, status string, cause error) error {
	c.log.Error("Backend request failed", "operation", op, "status", status, "error", cause)
	return fmt.Errorf("%s: %w: %w", op, ErrRequestFailed, cause)
}

func excerpt(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorExcerpt {
		return s[:maxErrorExcerpt] + "..."
	}
	return s
}
