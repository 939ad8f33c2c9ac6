// Package restapi talks to a remote contract store over its REST API. It is
// the gateway used when contracts and reference data are owned by another
// service instead of the local database.
package restapi

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
	"time"

	"github.com/rental/backend/internal/domain/shared"
	"github.com/rental/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseSize = 4 << 20

var (
	// ErrUnavailable is returned when the API cannot be reached or answers 5xx
	ErrUnavailable = errors.New("contract API unavailable")
	// ErrRequestFailed is returned for unexpected 4xx answers
	ErrRequestFailed = errors.New("contract API request failed")
)

// Client is an HTTP client for the contract store API
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the API rooted at cfg.BaseURL. Requests are
// traced through an otelhttp transport.
func NewClient(cfg config.GatewayConfig, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gateway base URL %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiError is the error body returned by the API. Message is either a
// string or a list of strings.
type apiError struct {
	Message json.RawMessage `json:"message"`
}

func (e apiError) text() string {
	var single string
	if err := json.Unmarshal(e.Message, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(e.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// do sends a request and decodes the JSON answer into out. Only GET requests
// are retried, so a create is never sent twice.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt-1)):
			}
		}

		lastErr = c.send(ctx, method, path, payload, out)
		var retry *retryableError
		if lastErr == nil || !errors.As(lastErr, &retry) || ctx.Err() != nil {
			break
		}
		c.logger.Warn("Contract API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}

	var retry *retryableError
	if errors.As(lastErr, &retry) {
		return retry.err
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryableError{err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &retryableError{err: fmt.Errorf("%w: read response: %v", ErrUnavailable, err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return shared.NewDomainError(shared.ErrInvalidInput.Code, msg)
	case resp.StatusCode >= 500:
		return &retryableError{err: fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)}
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
