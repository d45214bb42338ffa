// Package api is the REST client for the bookstore backend. It owns
// request construction, bearer-token injection, response decoding and
// the classification of failures into the storefront error taxonomy.
package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"bookstorefront/internal/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTimeout = 10 * time.Second

// Config configures the backend client.
type Config struct {
	BaseURL     string
	Credentials *session.Credentials
	Timeout     time.Duration
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// Client calls the bookstore backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *session.Credentials
}

// New constructs a backend client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	creds := cfg.Credentials
	if creds == nil {
		creds = session.NewCredentials()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		creds:      creds,
	}
}

// Credentials exposes the credential holder shared with the stores.
func (c *Client) Credentials() *session.Credentials {
	return c.creds
}

// get issues an unauthenticated GET and decodes the body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return networkError("build request: "+err.Error(), err)
	}
	return c.do(req, out)
}

// authedRequest builds a request carrying the bearer credential. It
// fails fast with an auth failure when no usable credential is stored,
// before any network traffic.
func (c *Client) authedRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	if !c.creds.Present() {
		return nil, authError("authentication required")
	}
	if !c.creds.Valid() {
		c.creds.NotifyAuthFailure()
		return nil, authError("credential expired")
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, networkError("build request: "+err.Error(), err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.Token())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doAuthed runs an authenticated call end to end.
func (c *Client) doAuthed(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := c.authedRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes the request and decodes a successful body into out.
// Error responses become classified *APIError values; the backend's
// {"message": ...} payload is carried through when present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			// Cancelled or deadline exceeded by the caller.
			return networkError("request cancelled: "+err.Error(), err)
		}
		return networkError("request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		kind := classifyStatus(resp.StatusCode)
		if kind == FailureAuth {
			c.creds.NotifyAuthFailure()
		}
		slog.Debug("api_error", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "kind", string(kind))
		return &APIError{Status: resp.StatusCode, Message: msg, Kind: kind}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return networkError("decode response: "+err.Error(), err)
	}
	return nil
}
