// Package remote is the client side of the order API: a typed HTTP client
// with retries, rate limiting and response shape validation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// IdempotencyKeyHeader lets the server recognise a resent mutation
const IdempotencyKeyHeader = "Idempotency-Key"

const maxResponseBytes = 4 << 20

// Options configures a Client
type Options struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
	RateLimit    float64 // requests per second, 0 disables
	RateBurst    int
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// OptionsFromConfig maps the client section of the configuration
func OptionsFromConfig(cfg config.ClientConfig) Options {
	return Options{
		BaseURL:      cfg.BaseURL,
		Token:        cfg.Token,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	}
}

// Client calls the order API
type Client struct {
	httpClient   *http.Client
	baseURL      *url.URL
	token        string
	maxRetries   int
	retryBackoff time.Duration
	maxBackoff   time.Duration
	limiter      *rate.Limiter
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewClient creates a client for the API rooted at opts.BaseURL
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("remote: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", base.Scheme)
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 200 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      base,
		token:        opts.Token,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		maxBackoff:   opts.MaxBackoff,
		limiter:      limiter,
		validate:     newResponseValidator(),
		logger:       opts.Logger.Named("remote"),
	}, nil
}

// request is one API call
type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// retryable reports whether a method may be resent without side effects.
// POST is resent only when it carries an idempotency key.
func (r request) retryable() bool {
	switch r.method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	case http.MethodPost:
		return r.headers[IdempotencyKeyHeader] != ""
	}
	return false
}

// call executes r, decodes the envelope and stores its data in out.
// out may be nil when the caller ignores the payload.
func (c *Client) call(ctx context.Context, r request, out any) (*PageMeta, error) {
	u := c.baseURL.JoinPath(strings.TrimLeft(r.path, "/"))
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("remote: encode %s %s: %w", r.method, r.path, err)
		}
	}

	attempts := 1
	if r.retryable() {
		attempts += c.maxRetries
	}

	var status int
	var body []byte
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, &TransportError{Op: r.method + " " + r.path, Err: err}
			}
		}

		status, body, lastErr = c.send(ctx, r, u, payload)
		if !shouldRetry(status, lastErr) || ctx.Err() != nil {
			break
		}
		c.logger.Debug("Retrying request",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("attempt", attempt+1),
			zap.Int("status", status),
			zap.Error(lastErr),
		)
	}
	if lastErr != nil {
		return nil, &TransportError{Op: r.method + " " + r.path, Err: lastErr}
	}

	return c.decode(status, body, out)
}

func (c *Client) send(ctx context.Context, r request, u *url.URL, payload []byte) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func (c *Client) backoff(attempt int) time.Duration {
	d := float64(c.retryBackoff) * math.Pow(2, float64(attempt-1))
	if d > float64(c.maxBackoff) {
		d = float64(c.maxBackoff)
	}
	// ±20% jitter
	d += (rand.Float64()*2 - 1) * d * 0.2
	return time.Duration(d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
