// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

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
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/bureau-foundation/roster/lib/roster"
	"github.com/bureau-foundation/roster/lib/secret"
)

// maxResponseSize bounds response body reads. Roster payloads are a few
// kilobytes; the bound only protects against a pathological server.
const maxResponseSize int64 = 16 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the registry (e.g.,
	// "http://localhost:8000"). Required.
	ServerURL string

	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used, which applies no timeout beyond the transport defaults.
	HTTPClient *http.Client

	// Logger is used for request-level debug logging. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to one registry origin.
type Client struct {
	baseURL    string
	origin     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("registry: ServerURL is required")
	}

	parsed, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("registry: invalid ServerURL %q: %w", config.ServerURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("registry: ServerURL %q must use http or https", config.ServerURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("registry: ServerURL %q has no host", config.ServerURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		origin:     Origin(parsed),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Origin returns the scheme://host[:port] form of a URL, lowercased.
// Credential storage is keyed by this value.
func Origin(parsed *url.URL) string {
	return strings.ToLower(parsed.Scheme + "://" + parsed.Host)
}

// Origin returns the origin of the registry this client talks to.
func (c *Client) Origin() string {
	return c.origin
}

// Activities fetches the full roster.
func (c *Client) Activities(ctx context.Context) (roster.Roster, error) {
	const path = "/activities"
	body, _, err := c.doRequest(ctx, http.MethodGet, path, "", nil, nil)
	if err != nil {
		return nil, err
	}

	decoded, err := roster.Decode(body)
	if err != nil {
		return nil, &TransportError{
			Method: http.MethodGet,
			Path:   path,
			Err:    fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}
	return decoded, nil
}

// Signup enrolls email in activity and returns the server's
// confirmation message.
func (c *Client) Signup(ctx context.Context, token, activity, email string) (string, error) {
	return c.mutate(ctx, http.MethodPost, activityPath(activity, "signup"), token, email)
}

// Unregister removes email from activity and returns the server's
// confirmation message.
func (c *Client) Unregister(ctx context.Context, token, activity, email string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, activityPath(activity, "unregister"), token, email)
}

// Login exchanges teacher credentials for a bearer token. The password
// buffer is read but not closed; the caller retains ownership. A
// success status without a non-empty token is reported as a
// *RejectedError carrying the response's detail, if any.
func (c *Client) Login(ctx context.Context, username string, password *secret.Buffer) (string, error) {
	const path = "/login"
	if password == nil {
		return "", fmt.Errorf("registry: password is required for login")
	}

	// Password is converted to string at the JSON serialization boundary.
	request := loginRequest{Username: username, Password: password.String()}
	body, status, err := c.doRequest(ctx, http.MethodPost, path, "", nil, request)
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", &TransportError{Method: http.MethodPost, Path: path, Err: ErrMalformedResponse}
	}
	token := gjson.GetBytes(body, "token")
	if token.Type != gjson.String || token.String() == "" {
		return "", &RejectedError{
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: status,
			Detail:     detailOf(body),
		}
	}

	c.logger.Info("teacher login succeeded", "origin", c.origin, "username", username)
	return token.String(), nil
}

// Logout asks the server to invalidate token. The response body is
// ignored; only transport failures and rejections are reported.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, _, err := c.doRequest(ctx, http.MethodPost, "/logout", token, nil, nil)
	return err
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mutate performs a signup or unregister call and extracts "message".
func (c *Client) mutate(ctx context.Context, method, path, token, email string) (string, error) {
	query := url.Values{"email": {email}}
	body, _, err := c.doRequest(ctx, method, path, token, query, nil)
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", &TransportError{Method: method, Path: path, Err: ErrMalformedResponse}
	}
	return gjson.GetBytes(body, "message").String(), nil
}

// activityPath builds /activities/{name}/{action} with the name
// escaped as a single path segment.
func activityPath(activity, action string) string {
	return "/activities/" + url.PathEscape(activity) + "/" + action
}

// doRequest performs an HTTP request and returns the response body and
// status on 2xx. Non-2xx responses with a JSON body become *RejectedError;
// everything else that prevents a usable response becomes
// *TransportError. token may be empty for unauthenticated endpoints.
func (c *Client) doRequest(ctx context.Context, method, path, token string, query url.Values, requestBody any) ([]byte, int, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, 0, fmt.Errorf("registry: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("registry: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, &TransportError{Method: method, Path: path, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, 0, &TransportError{Method: method, Path: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.logger.Debug("registry request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"bytes", len(responseBody),
	)

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, response.StatusCode, nil
	}

	if !gjson.ValidBytes(responseBody) {
		return nil, 0, &TransportError{
			Method: method,
			Path:   path,
			Err:    fmt.Errorf("%w: unexpected %d response: %s", ErrMalformedResponse, response.StatusCode, excerpt(responseBody)),
		}
	}

	return nil, response.StatusCode, &RejectedError{
		Method:     method,
		Path:       path,
		StatusCode: response.StatusCode,
		Detail:     detailOf(responseBody),
	}
}

// detailOf returns the body's "detail" field when it is a string.
func detailOf(body []byte) string {
	detail := gjson.GetBytes(body, "detail")
	if detail.Type != gjson.String {
		return ""
	}
	return detail.String()
}

// excerpt truncates a body for inclusion in an error message. The cut
// never splits a UTF-8 sequence.
func excerpt(body []byte) string {
	const limit = 200
	if len(body) <= limit {
		return string(body)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
