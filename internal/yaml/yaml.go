// Package yaml provides a YAML codec for authoring release notes with CycloneDX keys.
package yaml

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/releasenotes/internal/core"
	"github.com/git-pkgs/releasenotes/internal/wire"
)

const (
	format    = "yaml"
	MediaType = "application/yaml"
)

func init() {
	core.Register(format, MediaType, []string{".yaml", ".yml"}, func() core.Codec {
		return New()
	})
}

// Codec encodes release notes as YAML using the CycloneDX key names.
type Codec struct{}

// New returns a YAML codec.
func New() *Codec {
	return &Codec{}
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

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(wire.FromCore(rn)); err != nil {
		return nil, fmt.Errorf("encoding release notes: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding release notes: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a YAML document. Unknown keys are rejected.
func (c *Codec) Unmarshal(data []byte) (*core.ReleaseNotes, error) {
	var w wire.ReleaseNotes
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding release notes: %w", err)
	}
	return wire.ToCore(&w)
}
