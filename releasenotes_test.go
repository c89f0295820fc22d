package releasenotes_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/git-pkgs/releasenotes"
	_ "github.com/git-pkgs/releasenotes/all"
)

func TestSupportedFormats(t *testing.T) {
	got := releasenotes.SupportedFormats()
	want := []string{"json", "toml", "xml", "yaml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedFormats() = %v, want %v", got, want)
	}
}

func TestNewCodec(t *testing.T) {
	for _, format := range releasenotes.SupportedFormats() {
		c, err := releasenotes.NewCodec(format)
		if err != nil {
			t.Fatalf("NewCodec(%q) error = %v", format, err)
		}
		if c.Format() != format {
			t.Errorf("Format() = %q, want %q", c.Format(), format)
		}
		if c.MediaType() == "" {
			t.Errorf("%s: empty media type", format)
		}
	}

	if _, err := releasenotes.NewCodec("csv"); !errors.Is(err, releasenotes.ErrUnknownFormat) {
		t.Errorf("NewCodec(csv) error = %v, want ErrUnknownFormat", err)
	}
}

func TestRoundTripAllFormats(t *testing.T) {
	b := releasenotes.NewBuilder()
	b.SetType(releasenotes.PreRelease)
	b.SetTitle("1.0.0-rc.2")
	if err := b.SetFeaturedImage("https://example.com/img.png"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetTimestamp("1969-06-28T01:20:00.00-04:00"); err != nil {
		t.Fatal(err)
	}
	b.SetAliases()
	b.AddTag("rc")
	_ = b.AddNote("en", "first")
	_ = b.AddNote("en", "second")
	full := b.Build()

	cases := map[string]releasenotes.ReleaseNotes{
		"empty": {},
		"full":  full,
	}

	for _, format := range releasenotes.SupportedFormats() {
		for name, want := range cases {
			t.Run(format+"/"+name, func(t *testing.T) {
				data, err := releasenotes.Marshal(format, &want)
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}
				got, err := releasenotes.Unmarshal(format, data)
				if err != nil {
					t.Fatalf("Unmarshal failed: %v\n%s", err, data)
				}
				if !got.Equal(want) {
					t.Errorf("round trip mismatch\n got: %+v\nwant: %+v\n%s", got, want, data)
				}
				if name == "empty" && (got.Aliases != nil || got.Tags != nil || got.Issues != nil || got.Notes != nil) {
					t.Error("absent collections became present")
				}
				if name == "full" && (got.Aliases == nil || len(*got.Aliases) != 0) {
					t.Errorf("Aliases = %v, want empty but present", got.Aliases)
				}
			})
		}
	}
}

func TestTextFieldsAcrossFormats(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr map[string]bool
	}{
		{"plain", "Release 2.0", nil},
		{"multilingual", "Version 2.0 été 日本 🚀", nil},
		{"tab and newline", "line one\n\tline two", nil},
		{"invalid utf-8", "bad\xffutf8", map[string]bool{"json": true, "xml": true, "yaml": true, "toml": true}},
		{"control character", "a\x01b", map[string]bool{"xml": true}},
	}

	for _, tt := range tests {
		for _, format := range releasenotes.SupportedFormats() {
			t.Run(tt.name+"/"+format, func(t *testing.T) {
				b := releasenotes.NewBuilder()
				b.SetType(releasenotes.Major)
				b.SetTitle(tt.title)
				want := b.Build()

				data, err := releasenotes.Marshal(format, &want)
				if tt.wantErr[format] {
					var convErr *releasenotes.ConversionError
					if !errors.As(err, &convErr) || !errors.Is(err, releasenotes.ErrInvalidText) {
						t.Fatalf("Marshal error = %v, want ErrInvalidText", err)
					}
					if convErr.Field != "title" {
						t.Errorf("Field = %q, want title", convErr.Field)
					}
					return
				}
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}

				got, err := releasenotes.Unmarshal(format, data)
				if err != nil {
					t.Fatalf("Unmarshal failed: %v\n%s", err, data)
				}
				if !got.Equal(want) {
					t.Errorf("Title = %q, want %q", *got.Title, tt.title)
				}
			})
		}
	}
}

func TestEarliestTimestampAcrossFormats(t *testing.T) {
	b := releasenotes.NewBuilder()
	b.SetType(releasenotes.Major)
	if err := b.SetTimestamp("0001-01-01T00:00:00Z"); err != nil {
		t.Fatalf("SetTimestamp error = %v", err)
	}
	want := b.Build()

	for _, format := range releasenotes.SupportedFormats() {
		t.Run(format, func(t *testing.T) {
			data, err := releasenotes.Marshal(format, &want)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			got, err := releasenotes.Unmarshal(format, data)
			if err != nil {
				t.Fatalf("Unmarshal failed: %v\n%s", err, data)
			}
			if got.Timestamp == nil || got.Timestamp.String() != "0001-01-01T00:00:00Z" {
				t.Errorf("Timestamp = %v, want 0001-01-01T00:00:00Z", got.Timestamp)
			}
		})
	}

	rn, err := releasenotes.Unmarshal("json", []byte(`{"type":"major","timestamp":"0001-01-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("Unmarshal json error = %v", err)
	}
	if rn.Timestamp == nil || rn.Timestamp.IsZero() {
		t.Errorf("Timestamp = %v, want set", rn.Timestamp)
	}
}

func TestZeroOffsetSpellingAcrossFormats(t *testing.T) {
	for _, ts := range []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+00:00", "2024-01-15T10:30:00.5-00:00"} {
		for _, format := range releasenotes.SupportedFormats() {
			t.Run(ts+"/"+format, func(t *testing.T) {
				b := releasenotes.NewBuilder()
				if err := b.SetTimestamp(ts); err != nil {
					t.Fatalf("SetTimestamp error = %v", err)
				}
				rn := b.Build()

				data, err := releasenotes.Marshal(format, &rn)
				if err != nil {
					t.Fatalf("Marshal failed: %v", err)
				}
				if !strings.Contains(string(data), ts) {
					t.Errorf("encoded document does not carry %q:\n%s", ts, data)
				}
				got, err := releasenotes.Unmarshal(format, data)
				if err != nil {
					t.Fatalf("Unmarshal failed: %v\n%s", err, data)
				}
				if got.Timestamp.String() != ts {
					t.Errorf("Timestamp = %q, want %q", got.Timestamp.String(), ts)
				}
			})
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if releasenotes.DefaultReleaseType() != releasenotes.Minor {
		t.Error("default release type should be minor")
	}
	if _, err := releasenotes.ParseReleaseType("Major"); !errors.Is(err, releasenotes.ErrInvalidReleaseType) {
		t.Errorf("ParseReleaseType(Major) error = %v", err)
	}
	if _, err := releasenotes.ParseIRI("not a valid iri ??"); !errors.Is(err, releasenotes.ErrInvalidIRI) {
		t.Errorf("ParseIRI error = %v", err)
	}
	ts, err := releasenotes.ParseTimestamp("1969-06-28T01:20:00.00-04:00")
	if err != nil {
		t.Fatalf("ParseTimestamp error = %v", err)
	}
	if ts.String() != "1969-06-28T01:20:00-04:00" {
		t.Errorf("Timestamp = %q", ts)
	}
	if err := releasenotes.ValidateLocale("en-US"); err != nil {
		t.Errorf("ValidateLocale error = %v", err)
	}

	var convErr *releasenotes.ConversionError
	_, err = releasenotes.ParseTimestamp("soon")
	if !errors.As(err, &convErr) || convErr.Value != "soon" {
		t.Errorf("ParseTimestamp error = %v, want ConversionError", err)
	}
}

func TestStrictBuilder(t *testing.T) {
	b := releasenotes.NewBuilder(releasenotes.WithStrictLocales())
	if err := b.AddNote("en!", "x"); !errors.Is(err, releasenotes.ErrInvalidLocale) {
		t.Errorf("AddNote error = %v, want ErrInvalidLocale", err)
	}
}

func TestParsePURL(t *testing.T) {
	p, err := releasenotes.ParsePURL("pkg:npm/lodash@4.17.21")
	if err != nil {
		t.Fatalf("ParsePURL error = %v", err)
	}
	if p == nil {
		t.Fatal("ParsePURL returned nil")
	}
	if _, err := releasenotes.ParsePURL("npm/lodash"); err == nil {
		t.Error("expected error for missing pkg: prefix")
	}
}
