package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/git-pkgs/releasenotes/internal/core"
)

const jsonNotes = `{"type":"patch","title":"1.0.1","timestamp":"1969-06-28T01:20:00.00-04:00","aliases":[]}`

const xmlNotes = `<releaseNotes xmlns="http://cyclonedx.org/schema/bom/1.5">
  <type>major</type>
  <featuredImage>https://example.com/img.png</featuredImage>
  <tags><tag>breaking</tag></tags>
</releaseNotes>`

func newTestLoader(opts ...LoaderOption) *Loader {
	return NewLoader(NewCircuitBreakerFetcher(NewFetcher(WithBaseDelay(time.Millisecond), WithMaxRetries(1))), opts...)
}

func notesServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/typed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.cyclonedx+json; charset=utf-8")
		_, _ = w.Write([]byte(jsonNotes))
	})
	mux.HandleFunc("/notes.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(xmlNotes))
	})
	mux.HandleFunc("/text.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(xmlNotes))
	})
	mux.HandleFunc("/notes.yaml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("type: internal\nnotes:\n  - locale: en\n    text: hi\n"))
	})
	mux.HandleFunc("/bad.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"Major"}`))
	})
	mux.HandleFunc("/unknown", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("???"))
	})
	mux.HandleFunc("/npm/lodash/4.17.21.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(jsonNotes))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestLoad(t *testing.T) {
	server := notesServer(t)
	l := newTestLoader()
	ctx := context.Background()

	tests := []struct {
		path     string
		wantType core.ReleaseType
	}{
		{"/typed", core.Patch},
		{"/notes.xml", core.Major},
		{"/text.xml", core.Major},
		{"/notes.yaml", core.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rn, err := l.Load(ctx, server.URL+tt.path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if rn.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", rn.Type, tt.wantType)
			}
		})
	}
}

func TestLoadKeepsPresenceAndOffset(t *testing.T) {
	server := notesServer(t)
	rn, err := newTestLoader().Load(context.Background(), server.URL+"/typed")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rn.Aliases == nil || len(*rn.Aliases) != 0 {
		t.Errorf("Aliases = %v, want empty but present", rn.Aliases)
	}
	if rn.Tags != nil {
		t.Errorf("Tags = %v, want absent", rn.Tags)
	}
	if got := rn.Timestamp.String(); got != "1969-06-28T01:20:00-04:00" {
		t.Errorf("Timestamp = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	server := notesServer(t)
	l := newTestLoader()
	ctx := context.Background()

	if _, err := l.Load(ctx, server.URL+"/bad.json"); !errors.Is(err, core.ErrInvalidReleaseType) {
		t.Errorf("bad.json error = %v, want ErrInvalidReleaseType", err)
	}
	if _, err := l.Load(ctx, server.URL+"/unknown"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := l.Load(ctx, server.URL+"/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing error = %v, want ErrNotFound", err)
	}
}

func TestLoadTooLarge(t *testing.T) {
	tests := []struct {
		name  string
		flush bool
	}{
		{"declared length", false},
		{"chunked body", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"type":"major","title":"`))
				if tt.flush {
					w.(http.Flusher).Flush()
				}
				_, _ = w.Write([]byte(strings.Repeat("a", 256)))
				_, _ = w.Write([]byte(`"}`))
			}))
			defer server.Close()

			l := NewLoader(NewFetcher(WithMaxSize(128), WithMaxRetries(0)))
			_, err := l.Load(context.Background(), server.URL+"/notes.json")
			if !errors.Is(err, ErrTooLarge) {
				t.Errorf("Load error = %v, want ErrTooLarge", err)
			}
		})
	}
}

func TestLoadETagCache(t *testing.T) {
	var full, conditional int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"rev1"` {
			conditional++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"rev1"`)
		_, _ = w.Write([]byte(jsonNotes))
	}))
	defer server.Close()

	l := newTestLoader(WithETagCache())
	ctx := context.Background()

	first, err := l.Load(ctx, server.URL+"/notes.json")
	if err != nil {
		t.Fatalf("first Load: %v", err)
	}
	mutated := "mutated"
	first.Title = &mutated

	second, err := l.Load(ctx, server.URL+"/notes.json")
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if second.Title == nil || *second.Title != "1.0.1" {
		t.Errorf("cached Title = %v, want 1.0.1", second.Title)
	}
	if second.Type != core.Patch {
		t.Errorf("cached Type = %v, want patch", second.Type)
	}
	if full != 1 || conditional != 1 {
		t.Errorf("full = %d, conditional = %d, want 1 and 1", full, conditional)
	}

	// Without the cache every load is unconditional.
	plain := newTestLoader()
	for range 2 {
		if _, err := plain.Load(ctx, server.URL+"/notes.json"); err != nil {
			t.Fatalf("plain Load: %v", err)
		}
	}
	if full != 3 || conditional != 1 {
		t.Errorf("full = %d, conditional = %d, want 3 and 1", full, conditional)
	}
}

func TestLoadPURL(t *testing.T) {
	server := notesServer(t)
	l := newTestLoader(WithResolver(NewResolver(server.URL, "json")))

	rn, err := l.LoadPURL(context.Background(), "pkg:npm/lodash@4.17.21")
	if err != nil {
		t.Fatalf("LoadPURL failed: %v", err)
	}
	if rn.Type != core.Patch {
		t.Errorf("Type = %v, want patch", rn.Type)
	}

	if _, err := newTestLoader().LoadPURL(context.Background(), "pkg:npm/lodash@4.17.21"); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("LoadPURL without resolver error = %v, want ErrNoBaseURL", err)
	}
}

func TestLoadAll(t *testing.T) {
	server := notesServer(t)
	l := newTestLoader()

	urls := []string{
		server.URL + "/typed",
		server.URL + "/notes.xml",
		server.URL + "/bad.json",
		server.URL + "/missing.json",
	}
	results := l.LoadAllWithConcurrency(context.Background(), urls, 2)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}
	if rn := results[server.URL+"/typed"]; rn == nil || rn.Type != core.Patch {
		t.Errorf("typed = %v", rn)
	}
	if rn := results[server.URL+"/notes.xml"]; rn == nil || rn.Type != core.Major {
		t.Errorf("notes.xml = %v", rn)
	}
	if _, ok := results[server.URL+"/bad.json"]; ok {
		t.Error("failed documents should be omitted")
	}
}

func TestLoadAllCancelled(t *testing.T) {
	server := notesServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newTestLoader().LoadAll(ctx, []string{server.URL + "/typed", server.URL + "/notes.xml"})
	if len(results) != 0 {
		t.Errorf("got %d results from a cancelled context, want 0", len(results))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		contentType string
		url         string
		want        string
		wantErr     bool
	}{
		{"application/vnd.cyclonedx+json", "https://x.test/a", "json", false},
		{"application/vnd.cyclonedx+xml", "https://x.test/a.json", "xml", false},
		{"application/octet-stream", "https://x.test/a.yml", "yaml", false},
		{"", "https://x.test/notes.toml?ref=main", "toml", false},
		{"text/plain; charset=utf-8", "https://x.test/a.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := detectFormat(tt.contentType, tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectFormat error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("detectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}
