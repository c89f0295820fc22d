package core

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"
)

// IRI is an internationalized resource identifier reference (RFC 3987).
// Values obtained from ParseIRI or UnmarshalText are always syntactically valid.
type IRI string

// ParseIRI validates s against the RFC 3987 IRI-reference grammar.
// Both absolute IRIs and relative references are accepted.
func ParseIRI(s string) (IRI, error) {
	if err := validateIRIReference(s); err != nil {
		return "", &ConversionError{Value: s, Kind: ErrInvalidIRI, Err: err}
	}
	return IRI(s), nil
}

func (i IRI) String() string {
	return string(i)
}

func (i IRI) MarshalText() ([]byte, error) {
	if err := validateIRIReference(string(i)); err != nil {
		return nil, &ConversionError{Value: string(i), Kind: ErrInvalidIRI, Err: err}
	}
	return []byte(i), nil
}

func (i *IRI) UnmarshalText(text []byte) error {
	v, err := ParseIRI(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

func validateIRIReference(s string) error {
	if !utf8.ValidString(s) {
		return errors.New("not valid UTF-8")
	}

	rest := s
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		if err := checkChars(rest[i+1:], isFragmentRune); err != nil {
			return fmt.Errorf("fragment: %w", err)
		}
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		if err := checkChars(rest[i+1:], isQueryRune); err != nil {
			return fmt.Errorf("query: %w", err)
		}
		rest = rest[:i]
	}

	// A colon before the first slash can only end a scheme; relative
	// references may not carry one in their first segment.
	if i := strings.IndexAny(rest, ":/"); i >= 0 && rest[i] == ':' {
		if !validScheme(rest[:i]) {
			return fmt.Errorf("invalid scheme %q", rest[:i])
		}
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		authority := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			authority, rest = rest[:i], rest[i:]
		} else {
			rest = ""
		}
		if err := validateAuthority(authority); err != nil {
			return fmt.Errorf("authority: %w", err)
		}
	}

	if err := checkChars(rest, isPathRune); err != nil {
		return fmt.Errorf("path: %w", err)
	}
	return nil
}

func validScheme(s string) bool {
	if s == "" || !isAlpha(rune(s[0])) {
		return false
	}
	for _, r := range s[1:] {
		if !isAlpha(r) && !isDigit(r) && r != '+' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

func validateAuthority(s string) error {
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		if err := checkChars(s[:i], isUserinfoRune); err != nil {
			return fmt.Errorf("userinfo: %w", err)
		}
		s = s[i+1:]
	}

	host, port := s, ""
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return errors.New("unterminated IP literal")
		}
		if err := validateIPLiteral(s[1:end]); err != nil {
			return err
		}
		host, port = "", s[end+1:]
		if port != "" {
			if port[0] != ':' {
				return fmt.Errorf("unexpected %q after IP literal", port)
			}
			port = port[1:]
		}
	} else if i := strings.LastIndexByte(s, ':'); i >= 0 {
		host, port = s[:i], s[i+1:]
	}

	for _, r := range port {
		if !isDigit(r) {
			return fmt.Errorf("invalid port %q", port)
		}
	}
	if err := checkChars(host, isRegNameRune); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	return nil
}

func validateIPLiteral(s string) error {
	if strings.HasPrefix(s, "v") || strings.HasPrefix(s, "V") {
		dot := strings.IndexByte(s, '.')
		if dot < 2 || dot == len(s)-1 {
			return fmt.Errorf("invalid IPvFuture %q", s)
		}
		for _, r := range s[1:dot] {
			if !isHex(r) {
				return fmt.Errorf("invalid IPvFuture %q", s)
			}
		}
		for _, r := range s[dot+1:] {
			if !isUnreserved(r) && !isSubDelim(r) && r != ':' {
				return fmt.Errorf("invalid IPvFuture %q", s)
			}
		}
		return nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is6() || addr.Zone() != "" {
		return fmt.Errorf("invalid IPv6 literal %q", s)
	}
	return nil
}

// checkChars walks s, accepting percent-encoded octets and runes allowed by ok.
func checkChars(s string, ok func(rune) bool) error {
	for i := 0; i < len(s); {
		if s[i] == '%' {
			if i+2 >= len(s) || !isHex(rune(s[i+1])) || !isHex(rune(s[i+2])) {
				return fmt.Errorf("malformed percent-encoding at offset %d", i)
			}
			i += 3
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if !ok(r) {
			return fmt.Errorf("invalid character %q at offset %d", r, i)
		}
		i += size
	}
	return nil
}

func isAlpha(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isHex(r rune) bool   { return isDigit(r) || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F' }

func isSubDelim(r rune) bool {
	return strings.ContainsRune("!$&'()*+,;=", r)
}

func isUnreserved(r rune) bool {
	return isAlpha(r) || isDigit(r) || r == '-' || r == '.' || r == '_' || r == '~'
}

func isUCSChar(r rune) bool {
	switch {
	case r >= 0xA0 && r <= 0xD7FF, r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFEF:
		return true
	case r >= 0xE0000 && r < 0xE1000:
		return false
	case r >= 0x10000 && r <= 0xEFFFD:
		// planes 1 to 14, excluding the last two code points of each
		return r&0xFFFF <= 0xFFFD
	}
	return false
}

func isIPrivate(r rune) bool {
	return r >= 0xE000 && r <= 0xF8FF || r >= 0xF0000 && r <= 0xFFFFD || r >= 0x100000 && r <= 0x10FFFD
}

func isIUnreserved(r rune) bool { return isUnreserved(r) || isUCSChar(r) }

func isPChar(r rune) bool {
	return isIUnreserved(r) || isSubDelim(r) || r == ':' || r == '@'
}

func isPathRune(r rune) bool     { return isPChar(r) || r == '/' }
func isQueryRune(r rune) bool    { return isPChar(r) || r == '/' || r == '?' || isIPrivate(r) }
func isFragmentRune(r rune) bool { return isPChar(r) || r == '/' || r == '?' }
func isUserinfoRune(r rune) bool { return isIUnreserved(r) || isSubDelim(r) || r == ':' }
func isRegNameRune(r rune) bool  { return isIUnreserved(r) || isSubDelim(r) }
