// Package toml provides a TOML codec for authoring release notes with CycloneDX keys.
package toml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/git-pkgs/releasenotes/internal/core"
	"github.com/git-pkgs/releasenotes/internal/wire"
)

const (
	format    = "toml"
	MediaType = "application/toml"
)

func init() {
	core.Register(format, MediaType, []string{".toml"}, func() core.Codec {
		return New()
	})
}

// Codec encodes release notes as TOML using the CycloneDX key names.
type Codec struct{}

// New returns a TOML codec.
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
	if err := toml.NewEncoder(&buf).Encode(wire.FromCore(rn)); err != nil {
		return nil, fmt.Errorf("encoding release notes: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a TOML document. Unknown keys are rejected.
func (c *Codec) Unmarshal(data []byte) (*core.ReleaseNotes, error) {
	var w wire.ReleaseNotes
	md, err := toml.Decode(string(data), &w)
	if err != nil {
		return nil, fmt.Errorf("decoding release notes: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("decoding release notes: unknown keys %s", strings.Join(keys, ", "))
	}
	return wire.ToCore(&w)
}
