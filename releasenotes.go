// Package releasenotes models CycloneDX release notes and converts them to and
// from the interchange formats without losing field presence or timestamp offsets.
//
// Basic usage:
//
//	import (
//		"github.com/git-pkgs/releasenotes"
//		_ "github.com/git-pkgs/releasenotes/all"
//	)
//
//	b := releasenotes.NewBuilder()
//	b.SetType(releasenotes.Major)
//	b.SetTitle("2.0.0")
//	if err := b.SetTimestamp("2024-03-01T09:30:00+01:00"); err != nil {
//		log.Fatal(err)
//	}
//	b.AddNote("en-US", "Rewrote the resolver.")
//
//	rn := b.Build()
//	data, err := releasenotes.Marshal("json", &rn)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(data))
//
// Optional collections are pointers to slices: nil means absent, a pointer to an
// empty slice means present but empty. Codecs preserve the distinction.
package releasenotes

import (
	"github.com/git-pkgs/purl"
	"github.com/git-pkgs/releasenotes/internal/core"
)

// Re-export types from internal/core
type (
	// ReleaseType classifies how significant a release is.
	ReleaseType = core.ReleaseType

	// ReleaseNotes describes a software release.
	ReleaseNotes = core.ReleaseNotes

	// LocalizedString is one locale's rendition of release notes text.
	LocalizedString = core.LocalizedString

	// IRI is a validated IRI reference.
	IRI = core.IRI

	// Timestamp is an RFC 3339 date-time that keeps its UTC offset.
	Timestamp = core.Timestamp

	// Issue is an issue resolved by a release.
	Issue = core.Issue

	// IssueType is the kind of a resolved issue.
	IssueType = core.IssueType

	// IssueSource names where an issue is tracked.
	IssueSource = core.IssueSource

	// Builder accumulates release notes fields.
	Builder = core.Builder

	// BuilderOption configures a Builder.
	BuilderOption = core.BuilderOption

	// Codec converts release notes to and from one format.
	Codec = core.Codec
)

// Re-export constants
const (
	Major      = core.Major
	Minor      = core.Minor
	Patch      = core.Patch
	PreRelease = core.PreRelease
	Internal   = core.Internal

	IssueDefect      = core.IssueDefect
	IssueEnhancement = core.IssueEnhancement
	IssueSecurity    = core.IssueSecurity
)

// Re-export errors
var (
	ErrInvalidReleaseType = core.ErrInvalidReleaseType
	ErrInvalidIRI         = core.ErrInvalidIRI
	ErrInvalidTimestamp   = core.ErrInvalidTimestamp
	ErrInvalidLocale      = core.ErrInvalidLocale
	ErrInvalidIssue       = core.ErrInvalidIssue
	ErrInvalidText        = core.ErrInvalidText
	ErrUnknownFormat      = core.ErrUnknownFormat
)

// ConversionError reports a value that could not be converted into its typed form.
type ConversionError = core.ConversionError

// DefaultReleaseType returns Minor, the release type used when none is given.
func DefaultReleaseType() ReleaseType {
	return core.DefaultReleaseType()
}

// ParseReleaseType converts a wire token ("major", "pre-release", ...) into a ReleaseType.
// Matching is exact and case-sensitive.
func ParseReleaseType(s string) (ReleaseType, error) {
	return core.ParseReleaseType(s)
}

// ParseIRI validates an IRI reference.
func ParseIRI(s string) (IRI, error) {
	return core.ParseIRI(s)
}

// ParseTimestamp parses an RFC 3339 date-time, keeping its offset.
func ParseTimestamp(s string) (Timestamp, error) {
	return core.ParseTimestamp(s)
}

// NewBuilder returns a builder whose release type defaults to Minor.
func NewBuilder(opts ...BuilderOption) *Builder {
	return core.NewBuilder(opts...)
}

// WithStrictLocales makes the builder reject malformed BCP 47 locale tags in notes.
var WithStrictLocales = core.WithStrictLocales

// ValidateLocale checks that locale is a well-formed BCP 47 tag.
func ValidateLocale(locale string) error {
	return core.ValidateLocale(locale)
}

// NewCodec returns the codec for a format.
// Note: codecs must be imported to be registered.
func NewCodec(format string) (Codec, error) {
	return core.New(format)
}

// SupportedFormats returns all registered format names.
func SupportedFormats() []string {
	return core.SupportedFormats()
}

// Marshal validates rn and encodes it in the given format.
func Marshal(format string, rn *ReleaseNotes) ([]byte, error) {
	return core.Marshal(format, rn)
}

// Unmarshal decodes a release notes document in the given format.
func Unmarshal(format string, data []byte) (*ReleaseNotes, error) {
	return core.Unmarshal(format, data)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}
