// Package fetch performs the outbound GET requests of the price sources.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/etnz/fintrack"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a request when the caller passes no timeout.
const DefaultTimeout = 20 * time.Second

// BrowserUserAgent is sent with HTML requests, some pages refuse unknown clients.
const BrowserUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// Client fetches text and JSON documents. Requests are never retried.
type Client struct {
	http      *http.Client
	userAgent string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport gets
// wrapped to log responses.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a Client logging every response to log at debug level.
func New(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http:      new(http.Client),
		userAgent: BrowserUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.http
	wrapped.Transport = &logged{base: base, log: log.With().Str("component", "fetch").Logger()}
	c.http = &wrapped
	return c
}

// Text returns the body of addr as a string.
func (c *Client) Text(ctx context.Context, addr string, timeout time.Duration) (string, error) {
	body, err := c.get(ctx, addr, timeout, func(h http.Header) {
		h.Set("User-Agent", c.userAgent)
		h.Set("Accept", "text/html,application/xhtml+xml")
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON decodes the body of addr into v. Numbers are decoded as json.Number
// when v holds untyped values, so no precision is lost on the way to decimals.
func (c *Client) JSON(ctx context.Context, addr string, timeout time.Duration, v any) error {
	body, err := c.get(ctx, addr, timeout, func(h http.Header) {
		h.Set("Accept", "application/json")
	})
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: cannot decode %s: %w", fintrack.ErrDecode, addr, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, addr string, timeout time.Duration, header func(http.Header)) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request %q: %w", fintrack.ErrNetwork, addr, err)
	}
	header(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot http GET %s: %w", fintrack.ErrNetwork, addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: cannot http GET %v%v: %v", fintrack.ErrNetwork, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %w", fintrack.ErrNetwork, addr, err)
	}
	return buf.Bytes(), nil
}

// logged is a RoundTripper logging each response.
type logged struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (l *logged) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.base.RoundTrip(req)
	if err != nil {
		l.log.Debug().Err(err).Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("request failed")
		return nil, err
	}
	l.log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("response")
	return resp, nil
}
