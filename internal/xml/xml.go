// Package xml provides the CycloneDX XML codec for release notes.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/git-pkgs/releasenotes/internal/core"
)

const (
	format    = "xml"
	MediaType = "application/vnd.cyclonedx+xml"

	// Namespace is the CycloneDX 1.5 BOM namespace.
	Namespace = "http://cyclonedx.org/schema/bom/1.5"
)

func init() {
	core.Register(format, MediaType, []string{".xml"}, func() core.Codec {
		return New()
	})
}

// Codec encodes release notes as a CycloneDX releaseNotes element.
type Codec struct {
	indent    string
	namespace string
}

// Option configures a Codec.
type Option func(*Codec)

// WithIndent makes Marshal emit indented output.
func WithIndent(indent string) Option {
	return func(c *Codec) {
		c.indent = indent
	}
}

// WithNamespace overrides the namespace written on the root element.
// An empty namespace writes none.
func WithNamespace(ns string) Option {
	return func(c *Codec) {
		c.namespace = ns
	}
}

// New returns an XML codec writing the CycloneDX 1.5 namespace.
func New(opts ...Option) *Codec {
	c := &Codec{namespace: Namespace}
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

// releaseNotes mirrors the CycloneDX XML releaseNotes element. Collections use
// wrapper pointers so an empty <aliases/> survives distinct from a missing one.
type releaseNotes struct {
	XMLName       xml.Name   `xml:"releaseNotes"`
	Xmlns         string     `xml:"xmlns,attr,omitempty"`
	Type          *string    `xml:"type"`
	Title         *string    `xml:"title"`
	FeaturedImage *string    `xml:"featuredImage"`
	SocialImage   *string    `xml:"socialImage"`
	Description   *string    `xml:"description"`
	Timestamp     *string    `xml:"timestamp"`
	Aliases       *aliasList `xml:"aliases"`
	Tags          *tagList   `xml:"tags"`
	Resolves      *issueList `xml:"resolves"`
	Notes         *noteList  `xml:"notes"`
}

type aliasList struct {
	Alias []string `xml:"alias"`
}

type tagList struct {
	Tag []string `xml:"tag"`
}

type issueList struct {
	Issue []issue `xml:"issue"`
}

type issue struct {
	Type        string         `xml:"type,attr"`
	ID          *string        `xml:"id"`
	Name        *string        `xml:"name"`
	Description *string        `xml:"description"`
	Source      *source        `xml:"source"`
	References  *referenceList `xml:"references"`
}

type source struct {
	Name *string `xml:"name"`
	URL  *string `xml:"url"`
}

type referenceList struct {
	URL []string `xml:"url"`
}

type noteList struct {
	Note []note `xml:"note"`
}

type note struct {
	Locale string `xml:"locale"`
	Text   string `xml:"text"`
}

func (c *Codec) Marshal(rn *core.ReleaseNotes) ([]byte, error) {
	if err := rn.Validate(); err != nil {
		return nil, err
	}

	if err := checkChars(rn); err != nil {
		return nil, err
	}

	doc := fromCore(rn)
	doc.Xmlns = c.namespace

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if c.indent != "" {
		enc.Indent("", c.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding release notes: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding release notes: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Codec) Unmarshal(data []byte) (*core.ReleaseNotes, error) {
	var doc releaseNotes
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding release notes: %w", err)
	}
	return toCore(&doc)
}

func fromCore(rn *core.ReleaseNotes) *releaseNotes {
	rt := rn.Type.String()
	doc := &releaseNotes{
		Type:        &rt,
		Title:       rn.Title,
		Description: rn.Description,
	}
	if rn.FeaturedImage != nil {
		s := rn.FeaturedImage.String()
		doc.FeaturedImage = &s
	}
	if rn.SocialImage != nil {
		s := rn.SocialImage.String()
		doc.SocialImage = &s
	}
	if rn.Timestamp != nil {
		s := rn.Timestamp.String()
		doc.Timestamp = &s
	}
	if rn.Aliases != nil {
		doc.Aliases = &aliasList{Alias: *rn.Aliases}
	}
	if rn.Tags != nil {
		doc.Tags = &tagList{Tag: *rn.Tags}
	}
	if rn.Issues != nil {
		list := &issueList{Issue: make([]issue, len(*rn.Issues))}
		for i, is := range *rn.Issues {
			list.Issue[i] = issue{
				Type:        string(is.Type),
				ID:          nonEmpty(is.ID),
				Name:        nonEmpty(is.Name),
				Description: nonEmpty(is.Description),
			}
			if is.Source != nil {
				list.Issue[i].Source = &source{Name: nonEmpty(is.Source.Name), URL: nonEmpty(is.Source.URL)}
			}
			if is.References != nil {
				list.Issue[i].References = &referenceList{URL: *is.References}
			}
		}
		doc.Resolves = list
	}
	if rn.Notes != nil {
		list := &noteList{Note: make([]note, len(*rn.Notes))}
		for i, n := range *rn.Notes {
			list.Note[i] = note{Locale: n.Locale, Text: n.Text}
		}
		doc.Notes = list
	}
	return doc
}

func toCore(doc *releaseNotes) (*core.ReleaseNotes, error) {
	rn := &core.ReleaseNotes{
		Type:        core.DefaultReleaseType(),
		Title:       doc.Title,
		Description: doc.Description,
	}

	if doc.Type != nil {
		rt, err := core.ParseReleaseType(*doc.Type)
		if err != nil {
			return nil, fieldError(err, "type")
		}
		rn.Type = rt
	}
	if doc.FeaturedImage != nil {
		iri, err := core.ParseIRI(*doc.FeaturedImage)
		if err != nil {
			return nil, fieldError(err, "featuredImage")
		}
		rn.FeaturedImage = &iri
	}
	if doc.SocialImage != nil {
		iri, err := core.ParseIRI(*doc.SocialImage)
		if err != nil {
			return nil, fieldError(err, "socialImage")
		}
		rn.SocialImage = &iri
	}
	if doc.Timestamp != nil {
		ts, err := core.ParseTimestamp(*doc.Timestamp)
		if err != nil {
			return nil, fieldError(err, "timestamp")
		}
		rn.Timestamp = &ts
	}
	if doc.Aliases != nil {
		rn.Aliases = present(doc.Aliases.Alias)
	}
	if doc.Tags != nil {
		rn.Tags = present(doc.Tags.Tag)
	}
	if doc.Resolves != nil {
		issues := make([]core.Issue, len(doc.Resolves.Issue))
		for i, is := range doc.Resolves.Issue {
			issues[i] = core.Issue{
				Type:        core.IssueType(is.Type),
				ID:          deref(is.ID),
				Name:        deref(is.Name),
				Description: deref(is.Description),
			}
			if is.Source != nil {
				issues[i].Source = &core.IssueSource{Name: deref(is.Source.Name), URL: deref(is.Source.URL)}
			}
			if is.References != nil {
				issues[i].References = present(is.References.URL)
			}
		}
		rn.Issues = &issues
	}
	if doc.Notes != nil {
		notes := make([]core.LocalizedString, len(doc.Notes.Note))
		for i, n := range doc.Notes.Note {
			notes[i] = core.LocalizedString{Locale: n.Locale, Text: n.Text}
		}
		rn.Notes = &notes
	}

	if err := rn.Validate(); err != nil {
		return nil, err
	}
	return rn, nil
}

// checkChars rejects text containing runes outside the XML 1.0 Char production,
// which no XML document can carry.
func checkChars(rn *core.ReleaseNotes) error {
	check := func(field string, values ...string) error {
		for _, v := range values {
			for _, r := range v {
				if !isXMLChar(r) {
					return &core.ConversionError{
						Field: field,
						Value: v,
						Kind:  core.ErrInvalidText,
						Err:   fmt.Errorf("character %U not allowed in XML", r),
					}
				}
			}
		}
		return nil
	}

	if rn.Title != nil {
		if err := check("title", *rn.Title); err != nil {
			return err
		}
	}
	if rn.Description != nil {
		if err := check("description", *rn.Description); err != nil {
			return err
		}
	}
	if rn.Aliases != nil {
		if err := check("aliases", *rn.Aliases...); err != nil {
			return err
		}
	}
	if rn.Tags != nil {
		if err := check("tags", *rn.Tags...); err != nil {
			return err
		}
	}
	if rn.Issues != nil {
		for _, is := range *rn.Issues {
			if err := check("resolves", is.ID, is.Name, is.Description); err != nil {
				return err
			}
			if is.Source != nil {
				if err := check("resolves", is.Source.Name, is.Source.URL); err != nil {
					return err
				}
			}
			if is.References != nil {
				if err := check("resolves", *is.References...); err != nil {
					return err
				}
			}
		}
	}
	if rn.Notes != nil {
		for _, n := range *rn.Notes {
			if err := check("notes", n.Locale, n.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// present returns a non-nil pointer even for an empty list.
func present(s []string) *[]string {
	out := make([]string, len(s))
	copy(out, s)
	return &out
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fieldError(err error, field string) error {
	if convErr, ok := err.(*core.ConversionError); ok {
		c := *convErr
		c.Field = field
		return &c
	}
	return err
}
