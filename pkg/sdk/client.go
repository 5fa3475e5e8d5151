// Package lexchat is the Go client for the lexchat HTTP API. Streaming
// endpoints return a Stream that yields answer fragments as the server
// produces them.
package lexchat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Minute

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lexchat: API error %d: %s", e.StatusCode, e.Message)
}

// Client calls the lexchat HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client. The default has a
// generous timeout because answers stream for a while.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("lexchat: base URL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Query streams the answer to a question. The caller must Close the
// returned stream.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*Stream, error) {
	resp, err := c.do(ctx, http.MethodPut, "/api/query", req)
	if err != nil {
		return nil, err
	}
	return newStream(resp.Body), nil
}

// Chat streams the answer within a persisted session and returns the
// session ID (newly created when the request carried none). The caller
// must Close the returned stream.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, *Stream, error) {
	resp, err := c.do(ctx, http.MethodPut, "/api/chat", req)
	if err != nil {
		return "", nil, err
	}
	return resp.Header.Get("X-Session-Id"), newStream(resp.Body), nil
}

// CreateSession starts an empty session.
func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/sessions", nil, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteSession removes a session and its transcript.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/sessions/"+id, nil, nil)
}

// ListMessages returns a session transcript in order.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var msgs []Message
	path := "/api/messages?sessionId=" + sessionID
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// do issues a request and returns the raw response after status checks.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("lexchat: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("lexchat: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lexchat: request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, parseAPIError(resp)
	}
	return resp, nil
}

// doJSON issues a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lexchat: decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&parsed) == nil && parsed.Error != "" {
		apiErr.Message = parsed.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
