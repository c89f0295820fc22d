package core

import "strconv"

// ReleaseType classifies how significant a release is.
// The zero value is Minor, which is also the default.
type ReleaseType int

const (
	Minor ReleaseType = iota
	Major
	Patch
	PreRelease
	Internal
)

// releaseTypeTokens is the single mapping between variants and wire tokens.
var releaseTypeTokens = [...]string{
	Major:      "major",
	Minor:      "minor",
	Patch:      "patch",
	PreRelease: "pre-release",
	Internal:   "internal",
}

var releaseTypesByToken = func() map[string]ReleaseType {
	m := make(map[string]ReleaseType, len(releaseTypeTokens))
	for rt, tok := range releaseTypeTokens {
		m[tok] = ReleaseType(rt)
	}
	return m
}()

// DefaultReleaseType returns the release type used when none is given.
func DefaultReleaseType() ReleaseType {
	return Minor
}

// ReleaseTypes returns every release type in declaration order.
func ReleaseTypes() []ReleaseType {
	return []ReleaseType{Major, Minor, Patch, PreRelease, Internal}
}

// ParseReleaseType converts a wire token into a ReleaseType.
// Matching is exact: no case folding, trimming, or alternate spellings.
func ParseReleaseType(s string) (ReleaseType, error) {
	rt, ok := releaseTypesByToken[s]
	if !ok {
		return Minor, &ConversionError{Value: s, Kind: ErrInvalidReleaseType}
	}
	return rt, nil
}

// Valid reports whether rt is one of the defined release types.
func (rt ReleaseType) Valid() bool {
	return rt >= 0 && int(rt) < len(releaseTypeTokens)
}

// String returns the wire token for rt.
func (rt ReleaseType) String() string {
	if !rt.Valid() {
		return "ReleaseType(" + strconv.Itoa(int(rt)) + ")"
	}
	return releaseTypeTokens[rt]
}

func (rt ReleaseType) MarshalText() ([]byte, error) {
	if !rt.Valid() {
		return nil, &ConversionError{Value: rt.String(), Kind: ErrInvalidReleaseType}
	}
	return []byte(releaseTypeTokens[rt]), nil
}

func (rt *ReleaseType) UnmarshalText(text []byte) error {
	v, err := ParseReleaseType(string(text))
	if err != nil {
		return err
	}
	*rt = v
	return nil
}
