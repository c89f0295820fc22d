package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReleaseType is returned when a token is not one of the release type tokens.
	ErrInvalidReleaseType = errors.New("invalid release type")

	// ErrInvalidIRI is returned when an image reference is not a valid IRI reference.
	ErrInvalidIRI = errors.New("invalid IRI reference")

	// ErrInvalidTimestamp is returned when a timestamp is not an RFC 3339 date-time with offset.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidLocale is returned by strict builders for malformed BCP 47 locale tags.
	ErrInvalidLocale = errors.New("invalid locale")

	// ErrInvalidIssue is returned when a resolved issue is missing its type or has an unknown one.
	ErrInvalidIssue = errors.New("invalid issue")

	// ErrInvalidText is returned when a text field cannot be carried by the target format.
	ErrInvalidText = errors.New("invalid text")

	// ErrUnknownFormat is returned when no codec is registered for a format.
	ErrUnknownFormat = errors.New("unknown format")
)

// ConversionError reports a value that could not be converted into its typed form.
type ConversionError struct {
	Field string
	Value string
	Kind  error // one of the Err* sentinels
	Err   error // underlying parse error, if any
}

func (e *ConversionError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", msg, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q", msg, e.Value)
}

func (e *ConversionError) Unwrap() error {
	return e.Kind
}

// withField returns err with its field set when it is a ConversionError.
func withField(err error, field string) error {
	var convErr *ConversionError
	if errors.As(err, &convErr) && convErr.Field == "" {
		c := *convErr
		c.Field = field
		return &c
	}
	return err
}
