// Package httpclient is the authenticated HTTP client for the CareSync
// backend. It wraps a retrying transport with a fixed base URL and an
// explicit middleware chain: request correlation, bearer-header injection
// from the credential store, and a refresh coordinator that exchanges the
// refresh token and replays a 401'd request exactly once.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/appleboy/go-httpretry"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync-cli/credstore"
)

// Timeout configuration for different operations
const (
	defaultRequestTimeout = 15 * time.Second
	refreshTimeout        = 10 * time.Second
)

const defaultRefreshPath = "/auth/refresh"

// Client issues requests against a fixed base URL through the middleware
// chain. It performs no retries and interprets no status codes itself; the
// refresh coordinator owns the single 401-triggered replay.
type Client struct {
	baseURL string
	store   *credstore.Store
	doer    Doer
	timeout time.Duration
}

type config struct {
	transport   Doer
	logger      zerolog.Logger
	extra       []Middleware
	timeout     time.Duration
	refreshPath string
	hooks       RefreshHooks
}

// Option configures the client.
type Option func(*config)

// WithTransport replaces the default retrying transport. Used in tests and
// by callers that need custom dialing.
func WithTransport(d Doer) Option {
	return func(c *config) { c.transport = d }
}

// WithLogger enables per-dispatch debug logging. The client is silent by
// default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMiddleware adds middleware outside the built-in chain.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) { c.extra = append(c.extra, mw...) }
}

// WithTimeout sets the per-call timeout used by the JSON helpers.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithRefreshPath overrides the token refresh endpoint path.
func WithRefreshPath(path string) Option {
	return func(c *config) { c.refreshPath = path }
}

// WithRefreshHooks installs callbacks observing the refresh cycle.
func WithRefreshHooks(hooks RefreshHooks) Option {
	return func(c *config) { c.hooks = hooks }
}

// New creates a client for baseURL backed by store.
func New(baseURL string, store *credstore.Store, opts ...Option) (*Client, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := config{
		logger:      zerolog.Nop(),
		timeout:     defaultRequestTimeout,
		refreshPath: defaultRefreshPath,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := cfg.transport
	if transport == nil {
		t, err := newRetryTransport()
		if err != nil {
			return nil, err
		}
		transport = t
	}
	base := wrapTransportErrors(transport)

	coordinator := newCoordinator(store, baseURL+cfg.refreshPath, base, cfg.hooks)

	// Outermost first: caller extras, correlation id (shared by the replay),
	// refresh coordination, then per-dispatch logging and bearer injection.
	middleware := append([]Middleware{}, cfg.extra...)
	middleware = append(
		middleware,
		RequestID(),
		coordinator.Middleware(),
		Logging(cfg.logger),
		BearerAuth(store),
	)

	return &Client{
		baseURL: baseURL,
		store:   store,
		doer:    Chain(base, middleware...),
		timeout: cfg.timeout,
	}, nil
}

// newRetryTransport builds the default transport: a background retry client
// over a keep-alive TLS 1.2+ transport.
func newRetryTransport() (Doer, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   false,
		},
	}

	retryClient, err := retry.NewBackgroundClient(
		retry.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		return retryClient.DoWithContext(req.Context(), req)
	}), nil
}

// wrapTransportErrors converts connection-level failures into TransportError
// so callers can tell them apart from HTTP-level failures.
func wrapTransportErrors(transport Doer) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := transport.Do(req)
		if err != nil {
			return nil, &TransportError{URL: req.URL.String(), Err: err}
		}
		return resp, nil
	})
}

// validateBaseURL validates that the base URL is properly formatted.
func validateBaseURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("URL must include a host")
	}

	return nil
}

// BaseURL returns the client's base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Do dispatches req through the middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.doer.Do(req)
}

// NewRequest builds a request for path relative to the base URL. A non-nil
// body is JSON-encoded into a rewindable body so the refresh coordinator
// can replay the request.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// DoJSON dispatches a JSON request and decodes a 2xx response into out,
// which may be nil. Non-2xx responses come back as *HTTPError; failures of
// the refresh exchange as *RefreshError; connection failures as
// *TransportError.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newHTTPError(resp, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Get issues a GET for path and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, nil)
}
