// Package rest talks to the JSON API of the movie backend.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moviehub/errs"
	"moviehub/pkg/logger"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 4 << 20
	msgNetworkError = "Network Error"
)

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetryAttempts sets how many times an idempotent request is tried.
func WithRetryAttempts(n uint) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithRateLimit caps outgoing requests. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client is safe for concurrent use. Copies made by WithAuth share the
// underlying HTTP client and rate limiter.
type Client struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	log        *zap.SugaredLogger

	tokens         oauth2.TokenSource
	onUnauthorized func(ctx context.Context)
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		attempts:   1,
		retryDelay: 200 * time.Millisecond,
		log:        logger.NOOPLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAuth returns a copy of c that sends the bearer token from tokens and
// calls onUnauthorized when the API answers 401.
func (c *Client) WithAuth(tokens oauth2.TokenSource, onUnauthorized func(ctx context.Context)) *Client {
	cp := *c
	cp.tokens = tokens
	cp.onUnauthorized = onUnauthorized
	return &cp
}

// apiError is the error body of the backend.
type apiError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	for _, msgs := range e.Errors {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.retried(ctx, path, func() error {
		return c.do(ctx, http.MethodGet, path, query, nil, out)
	})
}

// Query posts body to path and retries transport failures the way reads
// are retried. It serves read-only RPC endpoints such as GraphQL queries.
func (c *Client) Query(ctx context.Context, path string, body, out interface{}) error {
	return c.retried(ctx, path, func() error {
		return c.do(ctx, http.MethodPost, path, nil, body, out)
	})
}

func (c *Client) retried(ctx context.Context, path string, call func() error) error {
	return retry.Do(
		call,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errs.Is(err, errs.ETRANSPORT)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debugw("retrying request", "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errs.Wrap(errs.ETRANSPORT, err, msgNetworkError)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errs.Wrap(errs.EINTERNAL, err, "cannot encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errs.Wrap(errs.EINTERNAL, err, "cannot build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if tok, err := c.tokens.Token(); err == nil {
			tok.SetAuthHeader(req)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(errs.ETRANSPORT, err, msgNetworkError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errs.Wrap(errs.ETRANSPORT, err, msgNetworkError)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(ctx, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.Wrap(errs.EPROTOCOL, err, "malformed response from movie API")
	}
	return nil
}

func (c *Client) statusError(ctx context.Context, status int, body []byte) error {
	var payload apiError
	_ = json.Unmarshal(body, &payload)
	msg := payload.text()
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}

	var code string
	switch {
	case status == http.StatusUnauthorized:
		code = errs.EUNAUTHORIZED
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	case status == http.StatusForbidden:
		code = errs.EUNAUTHORIZED
	case status == http.StatusNotFound:
		code = errs.ENOTFOUND
	case status == http.StatusConflict:
		code = errs.ECONFLICT
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		code = errs.ETRANSPORT
	default:
		code = errs.EINVALID
	}
	return errs.Errorf(code, "%s", msg).WithStatus(status)
}

// envelope is the {success, message} wrapper of account and favorite endpoints.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// check turns success=false into an error. A missing flag counts as success.
func (e envelope) check(fallback string) error {
	if e.Success == nil || *e.Success {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = fallback
	}
	return errs.Errorf(errs.EINVALID, "%s", msg)
}
