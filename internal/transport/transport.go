// Package transport is the shared HTTP layer for all authorized client
// calls: it injects the bearer credential, decodes responses and maps
// failures onto the client error taxonomy.
package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

// TokenSource supplies the current bearer token. An empty string means no
// active session.
type TokenSource interface {
	Token() string
}

// Client issues requests against the resolved API base.
type Client struct {
	apiBase string
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// New constructs a transport client. tokens may be nil for purely
// unauthenticated use.
func New(apiBase string, httpClient *http.Client, tokens TokenSource, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{apiBase: apiBase, http: httpClient, tokens: tokens, logger: logger}
}

// APIBase returns the base URL requests are issued against.
func (c *Client) APIBase() string {
	return c.apiBase
}

// CurrentToken returns the bearer token for the active session, or "".
func (c *Client) CurrentToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Get issues an authorized GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, "", true, out)
}

// GetOpen issues an unauthenticated GET, used by the connectivity probe.
func (c *Client) GetOpen(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, nil, "", false, out)
}

// Delete issues an authorized DELETE.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, "", true, out)
}

// Post issues an authorized POST with the given body and content type.
func (c *Client) Post(ctx context.Context, path string, body io.Reader, contentType string, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, contentType, true, out)
}

// Do performs a single round trip. Authorized calls fail with MISSING_TOKEN
// before any network I/O when no session is active. No retries are attempted;
// every failure is surfaced to the caller.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, authed bool, out interface{}) error {
	token := ""
	if authed {
		token = c.CurrentToken()
		if token == "" {
			return appErrors.Clone(appErrors.ErrMissingToken, "")
		}
	}

	target := c.apiBase + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed response body")
	}
	return nil
}

// Raw performs an authorized GET and hands back the response body unread,
// used for file downloads. The caller owns closing the body.
func (c *Client) Raw(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	target := c.apiBase + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return appErrors.FromStatus(resp.StatusCode, payload.Message)
}
