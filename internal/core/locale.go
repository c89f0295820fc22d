package core

import (
	"golang.org/x/text/language"
)

// ValidateLocale checks that locale is a well-formed BCP 47 language tag.
// Release notes accept any locale string; this is an opt-in strictness check.
func ValidateLocale(locale string) error {
	if _, err := language.Parse(locale); err != nil {
		return &ConversionError{Field: "locale", Value: locale, Kind: ErrInvalidLocale, Err: err}
	}
	return nil
}
