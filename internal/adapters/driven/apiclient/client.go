// Package apiclient is the JSON-over-HTTP plumbing shared by the model
// provider adapters. Every transport or protocol failure is wrapped in the
// sentinel the adapter passes in, so the core can tell "provider down"
// apart from bad input.
package apiclient

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

// maxErrorBody bounds how much of an unparseable error body is quoted.
const maxErrorBody = 200

// StatusError is a non-2xx reply. Message is the provider's explanation
// when it sent one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Client talks to one provider.
type Client struct {
	provider    string
	baseURL     string
	header      http.Header
	http        *http.Client
	unavailable error
}

// New returns a client for provider at baseURL. Failures wrap unavailable.
func New(provider, baseURL string, timeout time.Duration, unavailable error) *Client {
	return &Client{
		provider:    provider,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		header:      http.Header{},
		http:        &http.Client{Timeout: timeout},
		unavailable: unavailable,
	}
}

// SetHeader adds a header to every request, typically credentials.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// Post sends in as JSON to path and decodes the reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.provider, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	reply, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(reply, out); err != nil {
		return c.Fail("decode response: %w", err)
	}
	return nil
}

// Ping issues a GET to a cheap endpoint such as a model listing.
func (c *Client) Ping(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

// Fail wraps a protocol problem the adapter noticed, such as an empty
// choice list, in the unavailable sentinel.
func (c *Client) Fail(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", c.unavailable, c.provider, fmt.Errorf(format, args...))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.Fail("%w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.Fail("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.Fail("%w", &StatusError{Status: resp.StatusCode, Message: errorMessage(body)})
	}
	return body, nil
}

// errorMessage pulls the explanation out of an error body. OpenAI and
// Anthropic send {"error": {"message": ...}}, Ollama sends {"error": "..."}.
func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Error) > 0 {
		var text string
		if json.Unmarshal(envelope.Error, &text) == nil {
			return text
		}
		var detail struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &detail) == nil && detail.Message != "" {
			return detail.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// IsStatus reports whether err is a reply with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
