package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fleetver/fleetver/internal/model"
)

// RPC method identifiers understood by the device-management API.
const (
	// methodGetOrganizations lists every organization visible to the key.
	methodGetOrganizations = "getOrganizations"

	// methodGetUsers lists the users (with nested device records) of one
	// organization, selected by the orgId parameter.
	methodGetUsers = "getUsers"
)

// maxErrorBodySize bounds how much of an error response we read.
// Error bodies are small; the cap only guards against a misbehaving server.
const maxErrorBodySize = 64 * 1024

// Client talks to the device-management API.
//
// Design decision: the client holds a single *http.Client and is safe for
// concurrent use; the report builder fans user fetches out over it. All
// per-call state lives on the stack.
type Client struct {
	// endpoint is the fixed RPC URL every call POSTs to.
	endpoint string

	// apiKey is the bearer credential sent with every request.
	apiKey string

	// httpClient performs the actual round trips. Its timeout is the only
	// timeout in play; there is no per-call override.
	httpClient *http.Client

	// logger receives one line per failed call, with the server detail
	// when available. The redacting handler upstream keeps the key out.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that need transport customization.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the given endpoint and credential.
// The endpoint must be an absolute http(s) URL. The timeout applies to each
// round trip; the constructor performs no network activity.
func NewClient(endpoint, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// rpcRequest is the wire format of a call body.
type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// rpcResponse is the wire format of a successful response.
// The result payload is kept raw so each caller can decode its own shape.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// rpcError is the wire format of a JSON error body.
type rpcError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs one RPC round trip and returns the raw result payload.
// A nil RawMessage with a nil error means the server answered 2xx without
// a result field; callers treat that as an empty payload.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		callErr := &CallError{Method: method, Err: err}
		c.logger.Error("api call failed", "method", method, "error", err)
		return nil, callErr
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.decodeError(method, resp)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		callErr := &CallError{Method: method, StatusCode: resp.StatusCode, Detail: "malformed response body", Err: err}
		c.logger.Error("api call failed", "method", method, "status", resp.StatusCode, "error", err)
		return nil, callErr
	}

	return decoded.Result, nil
}

// decodeError turns a non-2xx response into a CallError. It prefers the
// server's JSON error envelope and falls back to the raw body text.
func (c *Client) decodeError(method string, resp *http.Response) error {
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	detail := ""
	if readErr == nil && len(raw) > 0 {
		var envelope rpcError
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
			detail = envelope.Error.Message
		} else {
			detail = strings.TrimSpace(string(raw))
		}
	}

	callErr := &CallError{Method: method, StatusCode: resp.StatusCode, Detail: detail}
	c.logger.Error("api call failed",
		"method", method,
		"status", resp.StatusCode,
		"detail", detail,
	)
	return callErr
}

// Organizations lists every organization visible to the configured key,
// in the order the API returns them. A 2xx response without a result field
// yields an empty slice.
func (c *Client) Organizations(ctx context.Context) ([]model.Organization, error) {
	raw, err := c.call(ctx, methodGetOrganizations, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []model.Organization{}, nil
	}

	var orgs []model.Organization
	if err := json.Unmarshal(raw, &orgs); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", methodGetOrganizations, err)
	}
	return orgs, nil
}

// Users lists the users of one organization, in the order the API returns
// them. Device records arrive nested under each user.
func (c *Client) Users(ctx context.Context, orgID string) ([]model.User, error) {
	params := map[string]string{"orgId": orgID}
	raw, err := c.call(ctx, methodGetUsers, params)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []model.User{}, nil
	}

	var users []model.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", methodGetUsers, err)
	}
	return users, nil
}
