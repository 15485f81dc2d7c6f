// Package apiclient is a typed client for the court booking REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/models"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

var (
	ErrMissingBaseURL = errors.New("api base url is required")
	errEmptyToken     = errors.New("login response has no token")
)

type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
	Token             string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client calls the booking API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter

	mu    sync.RWMutex
	token string
}

// StatusError carries a non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d", e.StatusCode)
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrMissingBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url scheme %q", base.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		limiter: limiter,
		token:   strings.TrimSpace(cfg.Token),
	}, nil
}

// SetToken replaces the bearer token sent with every call.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do performs one call. Transport and decoding problems become
// NetworkFailure; an error body from the backend becomes ServerRejection
// with the backend's message untouched.
func (c *Client) do(ctx context.Context, req call, out any) error {
	logger := log.Ctx(ctx)
	generic := "could not " + req.op

	if err := c.limiter.Wait(ctx); err != nil {
		return booking.NewError(booking.NetworkFailure, generic, err)
	}

	endpoint := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		endpoint.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", req.op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Warn().Err(err).Str("op", req.op).Str("path", req.path).Msg("Booking API call failed")
		return booking.NewError(booking.NetworkFailure, generic, err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Str("op", req.op).
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Booking API call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusFailure(resp, generic)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return booking.NewError(booking.NetworkFailure, generic, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusFailure(resp *http.Response, generic string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload models.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return booking.NewError(booking.ServerRejection, payload.Error, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    payload.Error,
		})
	}
	return booking.NewError(booking.NetworkFailure, generic, &StatusError{StatusCode: resp.StatusCode})
}

// StatusCode returns the HTTP status behind err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}
