package services

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
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/onlyhub/internal/shared"
)

const defaultTimeout = 15 * time.Second

// ClientOpts configures a [Client].
type ClientOpts struct {
	URL        string
	AnonKey    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *log.Logger
}

// Client talks to one Supabase project.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     *log.Logger
	session    *sessionHolder
	override   string
}

type sessionHolder struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// NewClient creates a backend client. It fails with [shared.ErrBackendNotConfigured] when the URL or key is missing.
func NewClient(opts ClientOpts) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	anonKey := strings.TrimSpace(opts.AnonKey)
	if baseURL == "" || anonKey == "" {
		return nil, shared.ErrBackendNotConfigured
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid backend url %q: %v", shared.ErrInvalidConfig, baseURL, err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NopLogger()
	}

	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: httpClient,
		logger:     shared.WithLogger(logger, "component", "supabase"),
		session:    &sessionHolder{},
	}, nil
}

// URL returns the project base URL without a trailing slash.
func (c *Client) URL() string { return c.baseURL }

// SetSession binds an access token so later requests run as that user.
func (c *Client) SetSession(tok *oauth2.Token) {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.token = tok
}

// ClearSession drops the bound access token.
func (c *Client) ClearSession() { c.SetSession(nil) }

// Session returns the bound token, if any.
func (c *Client) Session() *oauth2.Token {
	c.session.mu.RLock()
	defer c.session.mu.RUnlock()
	return c.session.token
}

// As returns a copy of the client that authenticates every request with accessToken.
//
// The copy shares the HTTP client and the bound session of c.
func (c *Client) As(accessToken string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		anonKey:    c.anonKey,
		httpClient: c.httpClient,
		logger:     c.logger,
		session:    c.session,
		override:   accessToken,
	}
}

func (c *Client) bearer() string {
	if c.override != "" {
		return c.override
	}
	if tok := c.Session(); tok != nil && tok.AccessToken != "" {
		return tok.AccessToken
	}
	return c.anonKey
}

// APIError is a non-2xx backend response.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

// StatusCode extracts the HTTP status of an [*APIError] in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorBody covers the error shapes of PostgREST, GoTrue and Storage.
type errorBody struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
	Details          string `json:"details"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Message, b.Msg, b.ErrorDescription, b.Error, b.Details} {
		if s != "" {
			return s
		}
	}
	return ""
}

type request struct {
	service string
	method  string
	path    string
	query   url.Values
	header  http.Header
	body    io.Reader
}

func jsonRequest(service, method, path string, payload any) (request, error) {
	req := request{service: service, method: method, path: path, header: http.Header{}}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("failed to encode request: %w", err)
		}
		req.body = bytes.NewReader(data)
		req.header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doRequest performs an authenticated request and decodes a JSON response into result when non-nil.
func (c *Client) doRequest(ctx context.Context, r request, result any) error {
	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range r.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(raw, &body); err != nil {
			body.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Debug("backend request rejected", "service", r.service, "method", r.method, "path", r.path, "status", resp.StatusCode)
		return &APIError{Service: r.service, StatusCode: resp.StatusCode, Message: body.text()}
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
