package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"sync"

	_ "github.com/git-pkgs/releasenotes/all"
	"github.com/git-pkgs/releasenotes/internal/core"
)

const defaultConcurrency = 15

// Loader fetches release notes documents and decodes them with the registered codecs.
type Loader struct {
	fetcher  FetcherInterface
	resolver *Resolver
	logger   *slog.Logger

	// cache is nil unless WithETagCache is set.
	cache   map[string]cachedDocument
	cacheMu sync.Mutex
}

type cachedDocument struct {
	etag  string
	notes core.ReleaseNotes
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithResolver enables LoadPURL.
func WithResolver(r *Resolver) LoaderOption {
	return func(l *Loader) {
		l.resolver = r
	}
}

// WithLoaderLogger sets the logger used for decode diagnostics.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithETagCache remembers each loaded document by URL and its ETag, and
// revalidates with If-None-Match on later loads. A 304 answer returns a copy
// of the remembered notes without decoding.
func WithETagCache() LoaderOption {
	return func(l *Loader) {
		l.cache = make(map[string]cachedDocument)
	}
}

// NewLoader creates a loader on top of f. If f is nil, a circuit-breaking
// fetcher with default settings is used.
func NewLoader(f FetcherInterface, opts ...LoaderOption) *Loader {
	if f == nil {
		f = NewCircuitBreakerFetcher(NewFetcher())
	}
	l := &Loader{
		fetcher: f,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the document at rawURL and decodes it. The format is chosen from
// the response Content-Type, falling back to the URL's file extension.
func (l *Loader) Load(ctx context.Context, rawURL string) (*core.ReleaseNotes, error) {
	var opts []RequestOption
	cached, haveCached := l.cached(rawURL)
	if haveCached {
		opts = append(opts, IfNoneMatch(cached.etag))
	}

	doc, err := l.fetcher.Fetch(ctx, rawURL, opts...)
	if haveCached && errors.Is(err, ErrNotModified) {
		l.logger.Debug("document not modified", "url", rawURL, "etag", cached.etag)
		rn := cached.notes.Clone()
		return &rn, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Body.Close() }()

	format, err := detectFormat(doc.ContentType, rawURL)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	rn, err := core.Unmarshal(format, data)
	if err != nil {
		l.logger.Warn("decoding release notes failed", "url", rawURL, "format", format, "error", err)
		return nil, err
	}
	l.remember(rawURL, doc.ETag, rn)
	return rn, nil
}

func (l *Loader) cached(rawURL string) (cachedDocument, bool) {
	if l.cache == nil {
		return cachedDocument{}, false
	}
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	c, ok := l.cache[rawURL]
	return c, ok
}

func (l *Loader) remember(rawURL, etag string, rn *core.ReleaseNotes) {
	if l.cache == nil || etag == "" {
		return
	}
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.cache[rawURL] = cachedDocument{etag: etag, notes: rn.Clone()}
}

// LoadPURL resolves a versioned PURL to its document and loads it.
func (l *Loader) LoadPURL(ctx context.Context, purl string) (*core.ReleaseNotes, error) {
	if l.resolver == nil {
		return nil, fmt.Errorf("%w: loader has no resolver", ErrNoBaseURL)
	}
	info, err := l.resolver.Resolve(purl)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, info.URL)
}

// LoadAll loads multiple documents in parallel.
// Individual failures are omitted from the result, which maps URL to release notes.
func (l *Loader) LoadAll(ctx context.Context, urls []string) map[string]*core.ReleaseNotes {
	return l.LoadAllWithConcurrency(ctx, urls, defaultConcurrency)
}

// LoadAllWithConcurrency loads documents with a custom concurrency limit.
func (l *Loader) LoadAllWithConcurrency(ctx context.Context, urls []string, concurrency int) map[string]*core.ReleaseNotes {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make(map[string]*core.ReleaseNotes)
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			rn, err := l.Load(ctx, u)
			if err != nil {
				l.logger.Debug("skipping document", "url", u, "error", err)
				return
			}
			mu.Lock()
			results[u] = rn
			mu.Unlock()
		}(u)
	}

	wg.Wait()
	return results
}

func detectFormat(contentType, rawURL string) (string, error) {
	if format, ok := core.FormatForMediaType(contentType); ok {
		return format, nil
	}
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}
	if format, ok := core.FormatForExtension(path.Ext(p)); ok {
		return format, nil
	}
	return "", fmt.Errorf("%w: content type %q, url %s", ErrUnsupportedFormat, contentType, rawURL)
}
