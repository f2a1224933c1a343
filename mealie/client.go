package mealie

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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rsclarke/mealie/internal/logging"
)

const (
	// Version is reported in the User-Agent header.
	Version = "0.3.0"

	apiPrefix        = "api"
	tokenPath        = "auth/token"
	refreshPath      = "auth/refresh"
	defaultUserAgent = "mealie-go/" + Version
	defaultTimeout   = 30 * time.Second
	logBodyLimit     = 100
)

// Client talks to a Mealie server. It is safe for concurrent use; the only
// shared mutable state is its Credentials.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	creds     *Credentials
	decoders  *Decoders
	logger    *zap.Logger
	userAgent string

	login   *passwordLogin
	loginMu sync.Mutex
}

type passwordLogin struct {
	username   string
	password   string
	rememberMe bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger enables request diagnostics on logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithDecoders replaces the response decoder table.
func WithDecoders(d *Decoders) Option {
	return func(c *Client) {
		if d != nil {
			c.decoders = d
		}
	}
}

// WithCredentials shares an existing credential store with the client.
func WithCredentials(creds *Credentials) Option {
	return func(c *Client) {
		if creds != nil {
			c.creds = creds
		}
	}
}

// WithAPIKey authenticates with a long-lived API token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.creds.SetToken(key, "bearer")
	}
}

// WithToken restores a previously issued access token, e.g. from a saved
// session.
func WithToken(value, tokenType string) Option {
	return func(c *Client) {
		c.creds.SetToken(value, tokenType)
	}
}

// WithPasswordLogin makes the client log in with username and password the
// first time an authenticated request is sent without a token.
func WithPasswordLogin(username, password string, rememberMe bool) Option {
	return func(c *Client) {
		c.login = &passwordLogin{username: username, password: password, rememberMe: rememberMe}
	}
}

// New builds a Client for baseURL. The URL must carry a scheme and host;
// otherwise a *ConfigError is returned and no request is attempted.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		creds:     &Credentials{},
		decoders:  DefaultDecoders(),
		logger:    zap.NewNop(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &ConfigError{Field: "base URL", Value: raw, Reason: "unparseable", Cause: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{Field: "base URL", Value: raw, Reason: "scheme and host are required"}
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u, nil
}

// BaseURL returns the validated server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Credentials returns the client's credential store.
func (c *Client) Credentials() *Credentials {
	return c.creds
}

// Endpoint returns the absolute URL for an API path.
func (c *Client) Endpoint(path string) string {
	r := Request{Path: path}
	return c.endpoint(r.apiPath(), nil).String()
}

func (c *Client) endpoint(path string, query url.Values) *url.URL {
	base := *c.baseURL
	if base.Path == "" {
		// JoinPath keeps an empty base path relative.
		base.Path = "/"
	}
	u := base.JoinPath(apiPrefix, path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}

// Send performs one request and decodes its response. It makes exactly one
// network attempt. Failures are *TransportError when no response arrived,
// *APIError for classified responses, or a wrapped encoding error for an
// unencodable body.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("mealie: nil request")
	}
	method := req.method()
	u := c.endpoint(req.apiPath(), req.Query)
	path := u.Path

	if !req.SkipAuth {
		if err := c.ensureToken(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	var contentType string
	if req.Body != nil {
		var err error
		body, contentType, err = req.Body.Encode()
		if err != nil {
			return nil, fmt.Errorf("mealie: %s %s: %w", method, path, err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("mealie: create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.SkipAuth {
		httpReq.Header.Del("Authorization")
	} else {
		for k, v := range c.creds.Headers() {
			httpReq.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed",
			logging.Method(method),
			logging.URL(sanitizeURL(u)),
			logging.RequestID(requestID),
			logging.Duration(time.Since(start)),
			zap.Error(err))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if ce := c.logger.Check(zap.DebugLevel, "api request"); ce != nil {
		ce.Write(
			logging.Method(method),
			logging.URL(sanitizeURL(u)),
			logging.Status(resp.StatusCode),
			logging.RequestID(requestID),
			logging.Duration(time.Since(start)),
			logging.Body(logBody(req.apiPath(), raw)),
		)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		decoded, err := c.decoders.Decode(resp.StatusCode, resp.Header.Get("Content-Type"), bytes.NewReader(raw))
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				apiErr.Method = method
				apiErr.Path = path
				if apiErr.Body == nil {
					apiErr.Body = raw
				}
			}
			return nil, err
		}
		return decoded, nil
	}

	apiErr := Classify(resp.StatusCode, raw)
	apiErr.Method = method
	apiErr.Path = path
	return nil, apiErr
}

// ensureToken performs the deferred password login, once, when the client
// was configured for it and holds no token yet.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.login == nil || c.creds.HasToken() {
		return nil
	}
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	if c.creds.HasToken() {
		return nil
	}
	return c.Login(ctx, c.login.username, c.login.password, c.login.rememberMe)
}

// logBody truncates a body for debug logs. Auth endpoint bodies carry
// tokens and are never logged; elsewhere JSON fields with sensitive names
// are masked.
func logBody(path string, body []byte) string {
	if strings.HasPrefix(path, "auth/") {
		return "[REDACTED]"
	}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		if masked, err := json.Marshal(maskSensitive(v)); err == nil {
			body = masked
		}
	}
	if len(body) > logBodyLimit {
		return string(body[:logBodyLimit]) + "..."
	}
	return string(body)
}

// sensitiveParams are query parameter and JSON field name fragments
// redacted from logs.
var sensitiveParams = []string{"token", "password", "secret", "key"}

func sensitiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveParams {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// maskSensitive returns a copy of a decoded JSON value with the values of
// sensitive object keys replaced.
func maskSensitive(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if sensitiveName(k) {
				out[k] = "[REDACTED]"
				continue
			}
			out[k] = maskSensitive(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = maskSensitive(item)
		}
		return out
	default:
		return v
	}
}

func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	for param := range q {
		if sensitiveName(param) {
			q.Set(param, "[REDACTED]")
		}
	}
	safe := *u
	safe.RawQuery = q.Encode()
	return safe.String()
}
