// Package core provides the release notes model, its conversions, and the codec registry.
package core

import (
	"errors"
	"unicode/utf8"
)

// LocalizedString is one locale's rendition of release notes text.
type LocalizedString struct {
	Locale string
	Text   string
}

// ReleaseNotes describes a software release.
//
// Every field except Type is optional. A nil pointer means the field is absent;
// a non-nil pointer to an empty slice is an empty but present collection.
type ReleaseNotes struct {
	Type          ReleaseType
	Title         *string
	FeaturedImage *IRI
	SocialImage   *IRI
	Description   *string
	Timestamp     *Timestamp
	Aliases       *[]string
	Tags          *[]string
	Issues        *[]Issue // serialized as "resolves"
	Notes         *[]LocalizedString
}

// Equal reports whether both values have identical fields, including presence.
func (rn ReleaseNotes) Equal(other ReleaseNotes) bool {
	if rn.Type != other.Type {
		return false
	}
	if !equalPtr(rn.Title, other.Title) || !equalPtr(rn.Description, other.Description) {
		return false
	}
	if !equalPtr(rn.FeaturedImage, other.FeaturedImage) || !equalPtr(rn.SocialImage, other.SocialImage) {
		return false
	}
	if (rn.Timestamp == nil) != (other.Timestamp == nil) {
		return false
	}
	if rn.Timestamp != nil && !rn.Timestamp.Equal(*other.Timestamp) {
		return false
	}
	eqString := func(a, b string) bool { return a == b }
	if !equalOptionalSlice(rn.Aliases, other.Aliases, eqString) || !equalOptionalSlice(rn.Tags, other.Tags, eqString) {
		return false
	}
	if !equalOptionalSlice(rn.Issues, other.Issues, Issue.Equal) {
		return false
	}
	return equalOptionalSlice(rn.Notes, other.Notes, func(a, b LocalizedString) bool { return a == b })
}

// Clone returns a deep copy that shares no memory with rn.
func (rn ReleaseNotes) Clone() ReleaseNotes {
	c := ReleaseNotes{
		Type:          rn.Type,
		Title:         clonePtr(rn.Title),
		FeaturedImage: clonePtr(rn.FeaturedImage),
		SocialImage:   clonePtr(rn.SocialImage),
		Description:   clonePtr(rn.Description),
		Timestamp:     clonePtr(rn.Timestamp),
		Aliases:       cloneOptionalSlice(rn.Aliases),
		Tags:          cloneOptionalSlice(rn.Tags),
		Notes:         cloneOptionalSlice(rn.Notes),
	}
	if rn.Issues != nil {
		issues := make([]Issue, len(*rn.Issues))
		for i, issue := range *rn.Issues {
			issues[i] = issue.Clone()
		}
		c.Issues = &issues
	}
	return c
}

// Validate checks every typed field. Values built through a Builder or decoded by a
// codec are already valid; Validate catches struct literals and direct conversions.
func (rn ReleaseNotes) Validate() error {
	if !rn.Type.Valid() {
		return &ConversionError{Field: "type", Value: rn.Type.String(), Kind: ErrInvalidReleaseType}
	}
	if err := rn.validateText(); err != nil {
		return err
	}
	if rn.FeaturedImage != nil {
		if _, err := ParseIRI(string(*rn.FeaturedImage)); err != nil {
			return withField(err, "featuredImage")
		}
	}
	if rn.SocialImage != nil {
		if _, err := ParseIRI(string(*rn.SocialImage)); err != nil {
			return withField(err, "socialImage")
		}
	}
	if rn.Timestamp != nil && rn.Timestamp.IsZero() {
		return &ConversionError{Field: "timestamp", Kind: ErrInvalidTimestamp}
	}
	if rn.Issues != nil {
		for _, issue := range *rn.Issues {
			if err := issue.Validate(); err != nil {
				return withField(err, "resolves")
			}
		}
	}
	return nil
}

func (rn ReleaseNotes) validateText() error {
	if rn.Title != nil {
		if err := checkText("title", *rn.Title); err != nil {
			return err
		}
	}
	if rn.Description != nil {
		if err := checkText("description", *rn.Description); err != nil {
			return err
		}
	}
	if err := checkTexts("aliases", rn.Aliases); err != nil {
		return err
	}
	if err := checkTexts("tags", rn.Tags); err != nil {
		return err
	}
	if rn.Notes != nil {
		for _, n := range *rn.Notes {
			if err := checkText("notes", n.Locale); err != nil {
				return err
			}
			if err := checkText("notes", n.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkText rejects text that is not valid UTF-8. No interchange format can
// carry such text without replacing bytes.
func checkText(field, s string) error {
	if !utf8.ValidString(s) {
		return &ConversionError{Field: field, Value: s, Kind: ErrInvalidText, Err: errors.New("not valid UTF-8")}
	}
	return nil
}

func checkTexts(field string, p *[]string) error {
	if p == nil {
		return nil
	}
	for _, s := range *p {
		if err := checkText(field, s); err != nil {
			return err
		}
	}
	return nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalOptionalSlice[T any](a, b *[]T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(*a) != len(*b) {
		return false
	}
	for i := range *a {
		if !eq((*a)[i], (*b)[i]) {
			return false
		}
	}
	return true
}

func cloneOptionalSlice[T any](p *[]T) *[]T {
	if p == nil {
		return nil
	}
	s := make([]T, len(*p))
	copy(s, *p)
	return &s
}
