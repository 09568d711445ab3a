// Package client talks to an opencode-compatible server over HTTP. It
// implements the catalog source for remote commands and the session and
// message collaborators the dispatcher delegates to.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/opencode-ai/commandbar/internal/logging"
	"github.com/opencode-ai/commandbar/pkg/types"
)

const (
	defaultTimeout  = 30 * time.Second
	catalogAttempts = 3
)

// Client is an HTTP client for one server. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logging.Component("client"),
	}
}

// remoteError is the error envelope the server returns on non-2xx responses.
type remoteError struct {
	Error string `json:"error"`
}

// List fetches the server's command catalog. Transient failures are retried
// with exponential backoff; the engine absorbs whatever error survives the
// retries and falls back to built-ins.
func (c *Client) List(ctx context.Context) ([]types.Command, error) {
	var commands []types.Command

	operation := func() error {
		err := c.do(ctx, http.MethodGet, "/command", nil, &commands)
		if err != nil {
			c.log.Debug().Err(err).Msg("command catalog fetch failed")
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), catalogAttempts-1),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	for i := range commands {
		commands[i].Source = types.SourceRemote
		commands[i].BuiltIn = false
	}
	return commands, nil
}

// Messages lists the session's messages in conversation order.
func (c *Client) Messages(ctx context.Context, sessionID string) ([]types.Message, error) {
	var messages []types.Message
	err := c.do(ctx, http.MethodGet, "/session/"+sessionID+"/message", nil, &messages)
	return messages, err
}

// Revert rolls the session back to the checkpoint before messageID.
func (c *Client) Revert(ctx context.Context, sessionID, messageID string) error {
	body := map[string]string{"messageID": messageID}
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/revert", body, nil)
}

// Unrevert restores messages removed by the last revert.
func (c *Client) Unrevert(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/unrevert", nil, nil)
}

// Interrupt stops the in-flight response.
func (c *Client) Interrupt(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/abort", nil, nil)
}

// Init asks the server to analyze the project and seed the session.
func (c *Client) Init(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/init", nil, nil)
}

// Summarize asks the server to summarize the conversation so far.
func (c *Client) Summarize(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/summarize", nil, nil)
}

// EditMessage replaces the content of one message.
func (c *Client) EditMessage(ctx context.Context, sessionID, messageID, content string) error {
	body := map[string]string{"content": content}
	return c.do(ctx, http.MethodPatch, "/session/"+sessionID+"/message/"+messageID, body, nil)
}

// ClearSession deletes the session's messages.
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/session/"+sessionID+"/message", nil, nil)
}

// CompactSession rewrites the conversation into a compacted form.
func (c *Client) CompactSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/session/"+sessionID+"/compact", nil, nil)
}

// do performs one request. A non-2xx response becomes an error carrying the
// server's error message when the body provides one.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var remote remoteError
	if err := json.Unmarshal(data, &remote); err == nil && remote.Error != "" {
		return fmt.Errorf("%s", remote.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
