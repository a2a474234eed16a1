// Package client is the HTTP gateway to an Elasticsearch cluster. It issues
// authenticated requests with per-call timeouts and status handlers, and
// wraps the search, async search, point-in-time and catalog APIs in typed
// operations.
package client

import (
	"bytes"
	"context"
	"go.uber.org/zap"
	"heckel.io/esctl/config"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout applies to requests without an explicit per-call timeout.
const DefaultTimeout = 30 * time.Second

// ErrorBehavior tells the gateway what to do with a matched response status.
type ErrorBehavior int

const (
	// Fail turns the status into a fatal StatusError.
	Fail ErrorBehavior = iota
	// Suppress swallows the status and reports absence to the caller.
	Suppress
	// Warn logs the status, then reports absence like Suppress.
	Warn
)

// StatusHandler overrides the default handling of one response status.
type StatusHandler struct {
	Behavior ErrorBehavior
	Message  string
}

// Client talks to a single cluster. Every request carries the ApiKey
// authorization header. Inside a Session, requests run over a dedicated
// connection pool instead of the process-wide one.
type Client struct {
	baseURL string
	header  string
	hc      *http.Client
	session *http.Client
	logger  *zap.Logger
}

// New creates a client for the given cluster URL and base64-encoded API key
// pair. A nil logger disables diagnostics.
func New(baseURL, encodedKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  "ApiKey " + encodedKey,
		hc:      &http.Client{},
		logger:  logger,
	}
}

// FromCredentials creates a client from the stored credentials, or from the
// ESCTL_* environment variables when they are set. Returns
// ErrNotAuthenticated when neither exists.
func FromCredentials(logger *zap.Logger) (*Client, error) {
	creds, err := config.Load()
	if err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrNotAuthenticated
	}
	return New(creds.URL, creds.Encoded(), logger), nil
}

// Session gives the client a dedicated connection pool until the returned
// release func runs. Operations that issue many sequential requests, like
// export and describe, hold a session so connections are reused and then
// closed in one place.
func (c *Client) Session() (release func()) {
	transport := &http.Transport{MaxIdleConnsPerHost: 4} // Avoid opening/closing connections
	c.session = &http.Client{Transport: transport}
	return func() {
		c.session = nil
		transport.CloseIdleConnections()
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration, handlers map[int]StatusHandler) ([]byte, bool, error) {
	return c.do(ctx, http.MethodGet, path, params, nil, timeout, handlers)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, body []byte, timeout time.Duration, handlers map[int]StatusHandler) ([]byte, bool, error) {
	return c.do(ctx, http.MethodPost, path, params, body, timeout, handlers)
}

func (c *Client) del(ctx context.Context, path string, body []byte, timeout time.Duration, handlers map[int]StatusHandler) ([]byte, bool, error) {
	return c.do(ctx, http.MethodDelete, path, nil, body, timeout, handlers)
}

// do executes one request. It returns the response body and true on 2xx, or
// nil and false when a Suppress/Warn handler swallowed the status. Transport
// failures come back as ConnectError, unhandled statuses as StatusError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, timeout time.Duration, handlers map[int]StatusHandler) ([]byte, bool, error) {
	uri := c.baseURL + path
	if len(params) > 0 {
		uri += "?" + params.Encode()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, reqBody)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", c.header)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.hc
	if c.session != nil {
		hc = c.session
	}
	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, false, &ConnectError{Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &ConnectError{Err: err}
	}
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, true, nil
	}
	if handler, ok := handlers[resp.StatusCode]; ok {
		switch handler.Behavior {
		case Suppress:
			return nil, false, nil
		case Warn:
			message := handler.Message
			if message == "" {
				message = "request failed"
			}
			c.logger.Warn(message, zap.String("path", path), zap.Int("status", resp.StatusCode))
			return nil, false, nil
		default:
			return nil, false, &StatusError{StatusCode: resp.StatusCode, Body: string(data), Message: handler.Message}
		}
	}
	return nil, false, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
}
