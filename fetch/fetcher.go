// Package fetch downloads published release notes documents with retry, circuit
// breaking, and PURL-based URL resolution, and decodes them with the registered codecs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrNotModified  = errors.New("document not modified")
	ErrTooLarge     = errors.New("document too large")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream unavailable")
)

const (
	// acceptHeader prefers the CycloneDX media types but takes anything a codec may recognize by extension.
	acceptHeader = "application/vnd.cyclonedx+json, application/vnd.cyclonedx+xml;q=0.9, application/yaml;q=0.8, application/toml;q=0.8, */*;q=0.1"

	defaultMaxSize = 10 << 20
	maxRetryAfter  = time.Minute
)

// Document is a fetched release notes document. Reading Body past the
// fetcher's size limit fails with ErrTooLarge.
type Document struct {
	Body        io.ReadCloser
	Size        int64 // -1 if unknown
	ContentType string
	ETag        string
}

// FetcherInterface defines the interface for document fetchers.
type FetcherInterface interface {
	Fetch(ctx context.Context, url string, opts ...RequestOption) (*Document, error)
}

type request struct {
	etag string
}

// RequestOption adjusts a single fetch.
type RequestOption func(*request)

// IfNoneMatch makes the fetch conditional: a server answering 304 yields ErrNotModified.
func IfNoneMatch(etag string) RequestOption {
	return func(r *request) {
		r.etag = etag
	}
}

// Fetcher downloads release notes documents over HTTP.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	maxSize    int64
	authFn     func(url string) (headerName, headerValue string)
	logger     *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets how many times a rate-limited or failing request is retried.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the first retry delay; later delays grow exponentially.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithMaxSize limits document bodies to n bytes. Zero or less disables the limit.
func WithMaxSize(n int64) Option {
	return func(f *Fetcher) {
		f.maxSize = n
	}
}

// WithAuthFunc sets a function that returns an auth header for a request URL.
// Return empty strings to send no header.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(f *Fetcher) {
		f.authFn = fn
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a new Fetcher with the given options.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: cachingTransport(5 * time.Minute),
		},
		userAgent:  "releasenotes",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		maxSize:    defaultMaxSize,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// cachingTransport dials through a DNS cache refreshed every interval.
func cachingTransport(refresh time.Duration) *http.Transport {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(refresh)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		ips, err := resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		lastErr := fmt.Errorf("no addresses for %s", host)
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}

	return &http.Transport{
		DialContext:         dial,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Fetch downloads a document. Rate limits and server errors are retried with
// jittered exponential backoff, honoring Retry-After. The caller must close
// the returned Document.Body.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts ...RequestOption) (*Document, error) {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	delays := f.backOff()
	for attempt := 0; ; attempt++ {
		doc, wait, err := f.do(ctx, url, req)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrUpstreamDown) {
			return nil, err
		}
		if attempt >= f.maxRetries {
			f.logger.Warn("giving up on document", "url", url, "attempts", attempt+1, "error", err)
			return nil, err
		}

		if wait <= 0 {
			wait = delays.NextBackOff()
		}
		if wait == backoff.Stop {
			wait = f.baseDelay
		}
		f.logger.Debug("retrying document fetch", "url", url, "attempt", attempt+1, "delay", wait, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (f *Fetcher) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.baseDelay
	b.RandomizationFactor = 0.1
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// do performs one request. The returned duration is the server's Retry-After, if any.
func (f *Fetcher) do(ctx context.Context, url string, r request) (*Document, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	if r.etag != "" {
		req.Header.Set("If-None-Match", r.etag)
	}
	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching document: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if f.maxSize > 0 && resp.ContentLength > f.maxSize {
			_ = resp.Body.Close()
			return nil, 0, fmt.Errorf("%w: %s declares %d bytes, limit is %d", ErrTooLarge, url, resp.ContentLength, f.maxSize)
		}
		body := resp.Body
		if f.maxSize > 0 {
			body = &limitedBody{ReadCloser: resp.Body, remaining: f.maxSize}
		}
		return &Document{
			Body:        body,
			Size:        resp.ContentLength,
			ContentType: resp.Header.Get("Content-Type"),
			ETag:        resp.Header.Get("ETag"),
		}, 0, nil

	case resp.StatusCode == http.StatusNotModified:
		_ = resp.Body.Close()
		return nil, 0, ErrNotModified

	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, 0, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, retryAfter(resp.Header.Get("Retry-After")), ErrRateLimited

	case resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: status %d", ErrUpstreamDown, resp.StatusCode)

	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(msg))
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
// The result is capped at maxRetryAfter; zero means no usable hint.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = time.Until(t)
	}
	if d <= 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

// limitedBody fails with ErrTooLarge once more than remaining bytes are read.
type limitedBody struct {
	io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}
	n, err := b.ReadCloser.Read(p)
	if int64(n) > b.remaining {
		n = int(b.remaining)
		b.remaining = 0
		return n, ErrTooLarge
	}
	b.remaining -= int64(n)
	return n, err
}
