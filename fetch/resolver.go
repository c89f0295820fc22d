package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/git-pkgs/releasenotes/internal/core"
)

var (
	ErrNoBaseURL         = errors.New("no base URL for PURL")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Resolver maps package URLs to the locations of their published release notes.
//
// Documents live at <base>/<type>/<namespace>/<name>/<version>.<ext>. A PURL's
// repository_url qualifier overrides the base for that package.
type Resolver struct {
	baseURL string
	bases   map[string]string // per PURL type
	format  string
}

// NewResolver creates a resolver rooted at baseURL that resolves documents in format.
func NewResolver(baseURL, format string) *Resolver {
	return &Resolver{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bases:   make(map[string]string),
		format:  format,
	}
}

// RegisterBase sets the base URL for one PURL type (e.g., "npm").
func (r *Resolver) RegisterBase(purlType, baseURL string) {
	r.bases[purlType] = strings.TrimSuffix(baseURL, "/")
}

// DocumentInfo describes where a release notes document can be fetched.
type DocumentInfo struct {
	URL      string
	Filename string
	Format   string
	Name     string // full package name
	Version  string
}

// Resolve returns the document location for a versioned PURL.
func (r *Resolver) Resolve(purl string) (*DocumentInfo, error) {
	p, err := core.ParsePURL(purl)
	if err != nil {
		return nil, err
	}

	docPath, err := p.DocumentPath()
	if err != nil {
		return nil, err
	}

	base := p.Qualifier("repository_url")
	if base == "" {
		base = r.bases[p.Type]
	}
	if base == "" {
		base = r.baseURL
	}
	if base == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoBaseURL, purl)
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	ext := extensionFor(r.format)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, r.format)
	}

	segments := strings.Split(docPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	filename := segments[len(segments)-1] + ext

	return &DocumentInfo{
		URL:      base + "/" + strings.Join(segments, "/") + ext,
		Filename: filename,
		Format:   r.format,
		Name:     p.FullName(),
		Version:  p.Version,
	}, nil
}

func extensionFor(format string) string {
	for _, ext := range []string{".json", ".xml", ".yaml", ".toml"} {
		if f, ok := core.FormatForExtension(ext); ok && f == format {
			return ext
		}
	}
	return ""
}
