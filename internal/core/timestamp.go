package core

import (
	"strings"
	"time"
)

// Timestamp is an RFC 3339 date-time that keeps the UTC offset it was written with.
// The zero Timestamp is unset and is rejected by Validate and MarshalText.
type Timestamp struct {
	t     time.Time
	valid bool

	// utcSuffix is the literal zero offset ("Z", "+00:00" or "-00:00") from the input.
	utcSuffix string
}

// ParseTimestamp parses an RFC 3339 date-time. The offset is mandatory and is kept
// as given, including the spelling of a zero offset; fractional seconds are accepted.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, &ConversionError{Value: s, Kind: ErrInvalidTimestamp, Err: err}
	}
	ts := NewTimestamp(t)
	if ts.Offset() == 0 {
		if strings.HasSuffix(s, "Z") {
			ts.utcSuffix = "Z"
		} else {
			ts.utcSuffix = s[len(s)-len("+00:00"):]
		}
	}
	return ts, nil
}

// NewTimestamp wraps t, pinning its current offset as a fixed zone.
// A zero offset is written as "Z".
func NewTimestamp(t time.Time) Timestamp {
	_, offset := t.Zone()
	return Timestamp{t: t.In(time.FixedZone("", offset)), valid: true}
}

// Time returns the timestamp in its original offset.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// Offset returns the UTC offset in seconds east of UTC.
func (ts Timestamp) Offset() int {
	_, offset := ts.t.Zone()
	return offset
}

// IsZero reports whether ts is unset. 0001-01-01T00:00:00Z is a set timestamp.
func (ts Timestamp) IsZero() bool {
	return !ts.valid
}

// Equal reports whether both timestamps denote the same instant with the same offset.
// "Z" and "+00:00" are the same offset.
func (ts Timestamp) Equal(other Timestamp) bool {
	if ts.valid != other.valid {
		return false
	}
	return ts.t.Equal(other.t) && ts.Offset() == other.Offset()
}

// String formats the timestamp as RFC 3339 in its original offset.
func (ts Timestamp) String() string {
	s := ts.t.Format(time.RFC3339Nano)
	if ts.utcSuffix != "" && ts.utcSuffix != "Z" {
		s = strings.TrimSuffix(s, "Z") + ts.utcSuffix
	}
	return s
}

func (ts Timestamp) MarshalText() ([]byte, error) {
	if !ts.valid {
		return nil, &ConversionError{Kind: ErrInvalidTimestamp}
	}
	return []byte(ts.String()), nil
}

func (ts *Timestamp) UnmarshalText(text []byte) error {
	v, err := ParseTimestamp(string(text))
	if err != nil {
		return err
	}
	*ts = v
	return nil
}
