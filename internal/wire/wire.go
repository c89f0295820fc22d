// Package wire defines the CycloneDX key layout shared by the JSON, YAML and TOML codecs
// and maps it to and from the core model.
package wire

import (
	"github.com/git-pkgs/releasenotes/internal/core"
)

// ReleaseNotes mirrors the CycloneDX releaseNotes object.
// Pointers keep absent fields distinct from empty ones in every format.
type ReleaseNotes struct {
	Type          *string   `json:"type" yaml:"type" toml:"type"`
	Title         *string   `json:"title,omitempty" yaml:"title,omitempty" toml:"title"`
	FeaturedImage *string   `json:"featuredImage,omitempty" yaml:"featuredImage,omitempty" toml:"featuredImage"`
	SocialImage   *string   `json:"socialImage,omitempty" yaml:"socialImage,omitempty" toml:"socialImage"`
	Description   *string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Timestamp     *string   `json:"timestamp,omitempty" yaml:"timestamp,omitempty" toml:"timestamp"`
	Aliases       *[]string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases"`
	Tags          *[]string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags"`
	Resolves      *[]Issue  `json:"resolves,omitempty" yaml:"resolves,omitempty" toml:"resolves"`
	Notes         *[]Note   `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes"`
}

type Issue struct {
	Type        string    `json:"type" yaml:"type" toml:"type"`
	ID          string    `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Source      *Source   `json:"source,omitempty" yaml:"source,omitempty" toml:"source"`
	References  *[]string `json:"references,omitempty" yaml:"references,omitempty" toml:"references"`
}

type Source struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
}

type Note struct {
	Locale string `json:"locale" yaml:"locale" toml:"locale"`
	Text   string `json:"text" yaml:"text" toml:"text"`
}

// FromCore converts a validated model into its wire form.
func FromCore(rn *core.ReleaseNotes) *ReleaseNotes {
	rt := rn.Type.String()
	w := &ReleaseNotes{
		Type:        &rt,
		Title:       copyString(rn.Title),
		Description: copyString(rn.Description),
		Aliases:     copyStrings(rn.Aliases),
		Tags:        copyStrings(rn.Tags),
	}
	if rn.FeaturedImage != nil {
		s := rn.FeaturedImage.String()
		w.FeaturedImage = &s
	}
	if rn.SocialImage != nil {
		s := rn.SocialImage.String()
		w.SocialImage = &s
	}
	if rn.Timestamp != nil {
		s := rn.Timestamp.String()
		w.Timestamp = &s
	}
	if rn.Issues != nil {
		issues := make([]Issue, len(*rn.Issues))
		for i, issue := range *rn.Issues {
			issues[i] = Issue{
				Type:        string(issue.Type),
				ID:          issue.ID,
				Name:        issue.Name,
				Description: issue.Description,
				References:  copyStrings(issue.References),
			}
			if issue.Source != nil {
				issues[i].Source = &Source{Name: issue.Source.Name, URL: issue.Source.URL}
			}
		}
		w.Resolves = &issues
	}
	if rn.Notes != nil {
		notes := make([]Note, len(*rn.Notes))
		for i, n := range *rn.Notes {
			notes[i] = Note{Locale: n.Locale, Text: n.Text}
		}
		w.Notes = &notes
	}
	return w
}

// ToCore converts a decoded wire value into the model, validating every typed field.
// A missing type decodes as the default release type.
func ToCore(w *ReleaseNotes) (*core.ReleaseNotes, error) {
	rn := &core.ReleaseNotes{
		Type:        core.DefaultReleaseType(),
		Title:       copyString(w.Title),
		Description: copyString(w.Description),
		Aliases:     copyStrings(w.Aliases),
		Tags:        copyStrings(w.Tags),
	}

	if w.Type != nil {
		rt, err := core.ParseReleaseType(*w.Type)
		if err != nil {
			return nil, fieldError(err, "type")
		}
		rn.Type = rt
	}
	if w.FeaturedImage != nil {
		iri, err := core.ParseIRI(*w.FeaturedImage)
		if err != nil {
			return nil, fieldError(err, "featuredImage")
		}
		rn.FeaturedImage = &iri
	}
	if w.SocialImage != nil {
		iri, err := core.ParseIRI(*w.SocialImage)
		if err != nil {
			return nil, fieldError(err, "socialImage")
		}
		rn.SocialImage = &iri
	}
	if w.Timestamp != nil {
		ts, err := core.ParseTimestamp(*w.Timestamp)
		if err != nil {
			return nil, fieldError(err, "timestamp")
		}
		rn.Timestamp = &ts
	}
	if w.Resolves != nil {
		issues := make([]core.Issue, len(*w.Resolves))
		for i, issue := range *w.Resolves {
			issues[i] = core.Issue{
				Type:        core.IssueType(issue.Type),
				ID:          issue.ID,
				Name:        issue.Name,
				Description: issue.Description,
				References:  copyStrings(issue.References),
			}
			if issue.Source != nil {
				issues[i].Source = &core.IssueSource{Name: issue.Source.Name, URL: issue.Source.URL}
			}
		}
		rn.Issues = &issues
	}
	if w.Notes != nil {
		notes := make([]core.LocalizedString, len(*w.Notes))
		for i, n := range *w.Notes {
			notes[i] = core.LocalizedString{Locale: n.Locale, Text: n.Text}
		}
		rn.Notes = &notes
	}

	if err := rn.Validate(); err != nil {
		return nil, err
	}
	return rn, nil
}

func fieldError(err error, field string) error {
	if convErr, ok := err.(*core.ConversionError); ok {
		c := *convErr
		c.Field = field
		return &c
	}
	return err
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func copyStrings(p *[]string) *[]string {
	if p == nil {
		return nil
	}
	s := make([]string, len(*p))
	copy(s, *p)
	return &s
}
