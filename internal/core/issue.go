package core

// IssueType is the kind of issue a release resolves.
type IssueType string

const (
	IssueDefect      IssueType = "defect"
	IssueEnhancement IssueType = "enhancement"
	IssueSecurity    IssueType = "security"
)

// Issue is an issue resolved by a release.
// Release notes hold issues by value; their lifecycle belongs to the issue tracker.
type Issue struct {
	Type        IssueType
	ID          string
	Name        string
	Description string
	Source      *IssueSource
	References  *[]string // URLs
}

// IssueSource names the tracker or advisory database an issue comes from.
type IssueSource struct {
	Name string
	URL  string
}

// Validate checks the issue type against the known issue types and rejects
// text that is not valid UTF-8.
func (i Issue) Validate() error {
	switch i.Type {
	case IssueDefect, IssueEnhancement, IssueSecurity:
	default:
		return &ConversionError{Field: "type", Value: string(i.Type), Kind: ErrInvalidIssue}
	}

	for _, f := range []struct{ name, value string }{
		{"id", i.ID},
		{"name", i.Name},
		{"description", i.Description},
	} {
		if err := checkText(f.name, f.value); err != nil {
			return err
		}
	}
	if i.Source != nil {
		if err := checkText("source", i.Source.Name); err != nil {
			return err
		}
		if err := checkText("source", i.Source.URL); err != nil {
			return err
		}
	}
	return checkTexts("references", i.References)
}

// Equal reports whether both issues carry the same fields, including absent-vs-empty references.
func (i Issue) Equal(other Issue) bool {
	if i.Type != other.Type || i.ID != other.ID || i.Name != other.Name || i.Description != other.Description {
		return false
	}
	if (i.Source == nil) != (other.Source == nil) {
		return false
	}
	if i.Source != nil && *i.Source != *other.Source {
		return false
	}
	return equalOptionalSlice(i.References, other.References, func(a, b string) bool { return a == b })
}

// Clone returns a deep copy of the issue.
func (i Issue) Clone() Issue {
	c := i
	if i.Source != nil {
		src := *i.Source
		c.Source = &src
	}
	c.References = cloneOptionalSlice(i.References)
	return c
}
