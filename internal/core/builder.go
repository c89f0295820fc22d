package core

import "time"

// Builder accumulates release notes fields one setter at a time.
// A failing setter leaves the builder unchanged.
type Builder struct {
	notes         ReleaseNotes
	strictLocales bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStrictLocales makes AddNote and SetNotes reject malformed BCP 47 locale tags.
func WithStrictLocales() BuilderOption {
	return func(b *Builder) {
		b.strictLocales = true
	}
}

// NewBuilder returns a builder whose release type defaults to Minor.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{notes: ReleaseNotes{Type: DefaultReleaseType()}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetType sets the release type.
func (b *Builder) SetType(rt ReleaseType) {
	b.notes.Type = rt
}

// SetTypeToken sets the release type from its wire token.
func (b *Builder) SetTypeToken(token string) error {
	rt, err := ParseReleaseType(token)
	if err != nil {
		return withField(err, "type")
	}
	b.notes.Type = rt
	return nil
}

// SetTitle sets the title.
func (b *Builder) SetTitle(title string) {
	b.notes.Title = &title
}

// SetDescription sets the description.
func (b *Builder) SetDescription(description string) {
	b.notes.Description = &description
}

// SetFeaturedImage sets the featured image, failing with ErrInvalidIRI for a malformed reference.
func (b *Builder) SetFeaturedImage(iri string) error {
	v, err := ParseIRI(iri)
	if err != nil {
		return withField(err, "featuredImage")
	}
	b.notes.FeaturedImage = &v
	return nil
}

// SetSocialImage sets the social image, failing with ErrInvalidIRI for a malformed reference.
func (b *Builder) SetSocialImage(iri string) error {
	v, err := ParseIRI(iri)
	if err != nil {
		return withField(err, "socialImage")
	}
	b.notes.SocialImage = &v
	return nil
}

// SetTimestamp parses an RFC 3339 date-time and keeps its offset.
func (b *Builder) SetTimestamp(s string) error {
	ts, err := ParseTimestamp(s)
	if err != nil {
		return withField(err, "timestamp")
	}
	b.notes.Timestamp = &ts
	return nil
}

// SetTime sets the timestamp from t, keeping t's offset.
func (b *Builder) SetTime(t time.Time) {
	ts := NewTimestamp(t)
	b.notes.Timestamp = &ts
}

// SetAliases replaces the aliases. With no arguments it records an empty list.
func (b *Builder) SetAliases(aliases ...string) {
	b.notes.Aliases = cloneOptionalSlice(&aliases)
}

// AddAlias appends an alias, creating the list if it is absent.
func (b *Builder) AddAlias(alias string) {
	b.notes.Aliases = appendOptional(b.notes.Aliases, alias)
}

// SetTags replaces the tags. With no arguments it records an empty list.
func (b *Builder) SetTags(tags ...string) {
	b.notes.Tags = cloneOptionalSlice(&tags)
}

// AddTag appends a tag, creating the list if it is absent.
func (b *Builder) AddTag(tag string) {
	b.notes.Tags = appendOptional(b.notes.Tags, tag)
}

// SetIssues replaces the resolved issues. With no arguments it records an empty list.
func (b *Builder) SetIssues(issues ...Issue) error {
	cloned := make([]Issue, len(issues))
	for i, issue := range issues {
		if err := issue.Validate(); err != nil {
			return withField(err, "resolves")
		}
		cloned[i] = issue.Clone()
	}
	b.notes.Issues = &cloned
	return nil
}

// AddIssue appends a resolved issue. Issues with an unknown type are rejected.
func (b *Builder) AddIssue(issue Issue) error {
	if err := issue.Validate(); err != nil {
		return withField(err, "resolves")
	}
	b.notes.Issues = appendOptional(b.notes.Issues, issue.Clone())
	return nil
}

// SetNotes replaces the localized notes, keeping their order and any repeated locales.
func (b *Builder) SetNotes(notes ...LocalizedString) error {
	if b.strictLocales {
		for _, n := range notes {
			if err := ValidateLocale(n.Locale); err != nil {
				return err
			}
		}
	}
	b.notes.Notes = cloneOptionalSlice(&notes)
	return nil
}

// AddNote appends a localized note. Repeated locales are kept.
func (b *Builder) AddNote(locale, text string) error {
	if b.strictLocales {
		if err := ValidateLocale(locale); err != nil {
			return err
		}
	}
	b.notes.Notes = appendOptional(b.notes.Notes, LocalizedString{Locale: locale, Text: text})
	return nil
}

// Build returns the accumulated release notes. The builder may keep being used;
// later changes do not affect values already built.
func (b *Builder) Build() ReleaseNotes {
	return b.notes.Clone()
}

func appendOptional[T any](p *[]T, v T) *[]T {
	if p == nil {
		return &[]T{v}
	}
	s := append(*p, v)
	return &s
}
