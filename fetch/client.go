// Package fetch is the single choke point for outbound catalog requests.
// It owns response caching, per-host request spacing, bounded retry with
// linear backoff, and offline degradation to stale cache entries.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lantern-mc/lantern/core"
)

const UserAgent = "lantern-mc/lantern"

const (
	DefaultAttempts       = 3
	DefaultBackoff        = 500 * time.Millisecond
	DefaultAttemptTimeout = 10 * time.Second
	DefaultTTL            = 2 * time.Minute
)

// Options tune a Client. Zero values fall back to the defaults above.
type Options struct {
	Attempts       int
	Backoff        time.Duration
	AttemptTimeout time.Duration
	HostSpacing    time.Duration
	DefaultTTL     time.Duration
	Logger         *log.Logger
}

// Client performs resilient HTTP requests. The cache and the per-host
// timestamps are the only shared state, and nothing outside this package
// mutates them.
type Client struct {
	http           *http.Client
	stream         *http.Client
	cache          *Cache
	gate           *hostGate
	attempts       int
	backoff        time.Duration
	attemptTimeout time.Duration
	defaultTTL     time.Duration
	log            *log.Logger
}

func NewClient(cache *Cache, opts Options) *Client {
	if cache == nil {
		cache = NewCache()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Client{
		http:           &http.Client{},
		stream:         &http.Client{},
		cache:          cache,
		gate:           newHostGate(opts.HostSpacing),
		attempts:       opts.Attempts,
		backoff:        opts.Backoff,
		attemptTimeout: opts.AttemptTimeout,
		defaultTTL:     opts.DefaultTTL,
		log:            opts.Logger,
	}
}

// Response is a completed (possibly cached) request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// GetJSON fetches url and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, ttl time.Duration, v any) error {
	return c.GetJSONWithHeaders(ctx, url, nil, ttl, v)
}

// GetJSONWithHeaders is GetJSON with extra request headers (e.g. API keys).
// The headers participate in the cache key.
func (c *Client) GetJSONWithHeaders(ctx context.Context, url string, headers http.Header, ttl time.Duration, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, url, headers, nil, ttl)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Body, v)
}

// GetText fetches url and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string, ttl time.Duration) (string, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, nil, nil, ttl)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// PostJSON sends a JSON payload (GraphQL queries and the like) and decodes
// the response into v.
func (c *Client) PostJSON(ctx context.Context, url string, ttl time.Duration, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	headers := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.Do(ctx, http.MethodPost, url, headers, body, ttl)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Body, v)
}

// Do runs one logical request through cache, rate gate and retry. A ttl of
// zero uses the client default; pass a negative ttl to bypass the cache.
func (c *Client) Do(ctx context.Context, method, rawURL string, headers http.Header, body []byte, ttl time.Duration) (*Response, error) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	key := CacheKey(method, rawURL, headers)
	if len(body) > 0 {
		// Distinguish POSTs with different payloads against the same URL.
		key += "\n" + fmt.Sprintf("%x", bodyDigest(body))
	}

	cacheable := ttl > 0
	if cacheable {
		if entry, ok, fresh := c.cache.Get(key, time.Now()); ok && fresh {
			return &Response{Status: entry.Status, Header: entry.Header, Body: entry.Body}, nil
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.gate.Wait(ctx, parsed.Host); err != nil {
		return nil, err
	}

	resp, lastErr := c.attemptLoop(ctx, method, rawURL, headers, body)
	if lastErr == nil {
		if cacheable {
			c.cache.Set(key, Entry{
				Status:    resp.Status,
				Header:    resp.Header,
				Body:      resp.Body,
				ExpiresAt: time.Now().Add(ttl),
			})
		}
		return resp, nil
	}

	if !isRetryable(lastErr) {
		// Non-retryable statuses fail immediately with no stale fallback.
		return nil, lastErr
	}

	// Last resort: serve a stale entry rather than failing outright.
	if entry, ok, _ := c.cache.Get(key, time.Now()); ok {
		c.log.Warn("serving stale cached response", "url", rawURL, "error", lastErr)
		return &Response{Status: entry.Status, Header: entry.Header, Body: entry.Body}, nil
	}

	if isNetworkErr(lastErr) {
		return nil, fmt.Errorf("%s: %w", rawURL, core.ErrOffline)
	}
	return nil, lastErr
}

func (c *Client) attemptLoop(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, err := c.attempt(ctx, method, rawURL, headers, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
		if attempt < c.attempts {
			// Linear backoff: base, 2*base, 3*base...
			delay := time.Duration(attempt) * c.backoff
			c.log.Debug("retrying request", "url", rawURL, "attempt", attempt, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, headers http.Header, body []byte) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for name, values := range headers {
		req.Header[name] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &networkError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &networkError{err}
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: data}, nil
}

// Open streams a download without caching it. The caller owns the body.
// Length is -1 when the server does not report one.
func (c *Client) Open(ctx context.Context, rawURL string) (body io.ReadCloser, length int64, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, err
	}
	if err := c.gate.Wait(ctx, parsed.Host); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, 0, &networkError{err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, 0, &core.StatusError{Code: resp.StatusCode, URL: rawURL}
	}
	return resp.Body, resp.ContentLength, nil
}

// HTTPClient adapts the fetch client into a *http.Client so typed API
// clients (go-modrinth) route through the same cache, gate and retry.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: roundTripper{c}}
}

type roundTripper struct {
	client *Client
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		body = data
	}

	resp, err := rt.client.Do(req.Context(), req.Method, req.URL.String(), req.Header, body, 0)
	if err != nil {
		return nil, err
	}
	return &http.Response{
		StatusCode:    resp.Status,
		Status:        http.StatusText(resp.Status),
		Header:        resp.Header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}, nil
}

func bodyDigest(body []byte) []byte {
	sum := sha1.Sum(body)
	return sum[:]
}

// networkError marks transport-level failures (DNS, refused connections,
// attempt timeouts). Always retryable, and the trigger for offline fallback.
type networkError struct {
	err error
}

func (e *networkError) Error() string { return e.err.Error() }
func (e *networkError) Unwrap() error { return e.err }

func isNetworkErr(err error) bool {
	var ne *networkError
	return errors.As(err, &ne)
}

func isRetryable(err error) bool {
	if isNetworkErr(err) {
		return true
	}
	var se *core.StatusError
	return errors.As(err, &se) && se.Retryable()
}
