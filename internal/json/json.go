// Package json provides the CycloneDX JSON codec for release notes.
package json

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/git-pkgs/releasenotes/internal/core"
	"github.com/git-pkgs/releasenotes/internal/wire"
)

const (
	format    = "json"
	MediaType = "application/vnd.cyclonedx+json"
)

func init() {
	core.Register(format, MediaType, []string{".json"}, func() core.Codec {
		return New()
	})
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Codec encodes release notes as CycloneDX JSON.
type Codec struct {
	indent string
}

// Option configures a Codec.
type Option func(*Codec)

// WithIndent makes Marshal emit indented output.
func WithIndent(indent string) Option {
	return func(c *Codec) {
		c.indent = indent
	}
}

// New returns a JSON codec; output is compact unless WithIndent is given.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Format() string {
	return format
}

func (c *Codec) MediaType() string {
	return MediaType
}

func (c *Codec) Marshal(rn *core.ReleaseNotes) ([]byte, error) {
	if err := rn.Validate(); err != nil {
		return nil, err
	}
	w := wire.FromCore(rn)
	if c.indent != "" {
		return json.MarshalIndent(w, "", c.indent)
	}
	return json.Marshal(w)
}

func (c *Codec) Unmarshal(data []byte) (*core.ReleaseNotes, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var w wire.ReleaseNotes
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding release notes: %w", err)
	}
	return wire.ToCore(&w)
}
