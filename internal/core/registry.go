package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Codec converts release notes to and from one interchange format.
type Codec interface {
	// Format returns the short format name (e.g., "json", "xml").
	Format() string

	// MediaType returns the media type documents in this format are served with.
	MediaType() string

	// Marshal validates rn and encodes it.
	Marshal(rn *ReleaseNotes) ([]byte, error)

	// Unmarshal decodes and validates a release notes document.
	Unmarshal(data []byte) (*ReleaseNotes, error)
}

// Factory creates a codec instance.
type Factory func() Codec

type registration struct {
	factory    Factory
	mediaType  string
	extensions []string
}

var (
	codecs = make(map[string]registration)
	mu     sync.RWMutex
)

// Register adds a codec factory to the global registry.
// format is the short name, mediaType the served content type, and
// extensions the file extensions (with leading dot) documents use.
func Register(format, mediaType string, extensions []string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	codecs[format] = registration{
		factory:    factory,
		mediaType:  mediaType,
		extensions: extensions,
	}
}

// New creates a codec for the given format.
func New(format string) (Codec, error) {
	mu.RLock()
	reg, ok := codecs[format]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return reg.factory(), nil
}

// SupportedFormats returns all registered format names, sorted.
func SupportedFormats() []string {
	mu.RLock()
	defer mu.RUnlock()

	formats := make([]string, 0, len(codecs))
	for f := range codecs {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// FormatForMediaType returns the format registered for a Content-Type value.
// Parameters such as charset are ignored.
func FormatForMediaType(contentType string) (string, bool) {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if mt == "" {
		return "", false
	}

	mu.RLock()
	defer mu.RUnlock()
	for format, reg := range codecs {
		if reg.mediaType == mt {
			return format, true
		}
	}
	// CycloneDX documents are often served with generic types.
	for format := range codecs {
		if strings.HasSuffix(mt, "+"+format) || mt == "application/"+format || mt == "text/"+format {
			return format, true
		}
	}
	return "", false
}

// FormatForExtension returns the format registered for a file extension such as ".json".
func FormatForExtension(ext string) (string, bool) {
	ext = strings.ToLower(ext)

	mu.RLock()
	defer mu.RUnlock()
	for format, reg := range codecs {
		for _, e := range reg.extensions {
			if e == ext {
				return format, true
			}
		}
	}
	return "", false
}

// Marshal encodes rn with the codec registered for format.
func Marshal(format string, rn *ReleaseNotes) ([]byte, error) {
	c, err := New(format)
	if err != nil {
		return nil, err
	}
	return c.Marshal(rn)
}

// Unmarshal decodes data with the codec registered for format.
func Unmarshal(format string, data []byte) (*ReleaseNotes, error) {
	c, err := New(format)
	if err != nil {
		return nil, err
	}
	return c.Unmarshal(data)
}
