// Package foodshop wraps the FoodShop ordering backend behind a typed
// client: bearer-token injection, envelope decoding, and a small error
// taxonomy the UI layers can branch on.
package foodshop

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
)

// TokenSource supplies the bearer token attached to every request. An
// empty token leaves the Authorization header off.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client talks to the FoodShop REST backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTokenSource wires the bearer token provider.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithUnauthorizedHandler registers the hook invoked on every 401. The web
// client redirects to the login route here; headless callers usually clear
// their stored token.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New instantiates the client with sane defaults.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("foodshop base URL is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// get performs a GET request and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post performs a JSON POST request and decodes the envelope data into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c == nil || c.httpClient == nil {
		return errors.New("foodshop client not configured")
	}
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.Token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call foodshop API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.mapError(resp.StatusCode, raw)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if envelope.Status == StatusError {
		return &APIError{Kind: KindGeneric, StatusCode: resp.StatusCode, Message: messageOrGeneric(envelope.Message)}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// mapError converts non-2xx responses into the taxonomy the UI expects.
func (c *Client) mapError(statusCode int, raw []byte) error {
	var envelope struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(raw, &envelope)

	switch statusCode {
	case http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &APIError{Kind: KindUnauthorized, StatusCode: statusCode, Message: messageOrGeneric(envelope.Message)}
	case http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: statusCode, Message: messageOrGeneric(envelope.Message)}
	case http.StatusUnprocessableEntity:
		apiErr := &APIError{Kind: KindValidation, StatusCode: statusCode, Fields: envelope.Errors}
		apiErr.Message = apiErr.FirstFieldMessage()
		if apiErr.Message == "" {
			apiErr.Message = messageOrGeneric(envelope.Message)
		}
		return apiErr
	case http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, StatusCode: statusCode, Message: MsgTooManyAttempts}
	default:
		return &APIError{Kind: KindGeneric, StatusCode: statusCode, Message: MsgGeneric}
	}
}

func messageOrGeneric(message string) string {
	if msg := strings.TrimSpace(message); msg != "" {
		return msg
	}
	return MsgGeneric
}
