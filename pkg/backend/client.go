// Package backend is the HTTP client for the CENACE LLM backend: chat
// streaming, history, conversations, and the documents, solutions and
// tickets corpora.
package backend

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

	"go.uber.org/zap"
)

const (
	defaultTimeout = 5 * time.Minute

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 * 1024

	// detailPreview is how much of a non-JSON error body ends up in Detail.
	detailPreview = 100
)

// Client talks to one backend.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for regular requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout of regular requests. Chat streams are only
// bounded by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		stream:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int

	// Detail is the "detail" field of a JSON error body, or a preview of a
	// plain text body.
	Detail string

	Body string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Detail)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// newAPIError reads resp's body and extracts the best available detail.
// A JSON body contributes its "detail" field (possibly none); any other body
// contributes its first characters.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["detail"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				apiErr.Detail = s
			} else {
				apiErr.Detail = string(raw)
			}
		}
		return apiErr
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		apiErr.Detail = http.StatusText(resp.StatusCode)
		return apiErr
	}

	runes := []rune(text)
	if len(runes) > detailPreview {
		runes = runes[:detailPreview]
	}
	apiErr.Detail = string(runes) + "..."
	return apiErr
}

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a JSON response into out, when out is non-nil.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, target string, body, out any) error {
	req, err := c.newRequest(ctx, method, target, body)
	if err != nil {
		return err
	}
	return c.do(c.http, req, out)
}

// Ping checks that the backend is up.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	out := &PingResponse{}
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("ping"), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}
