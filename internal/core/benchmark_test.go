package core

import (
	"testing"
)

func BenchmarkParseReleaseType(b *testing.B) {
	tokens := []string{"major", "minor", "patch", "pre-release", "internal", "unknown"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ParseReleaseType(tokens[i%len(tokens)])
	}
}

func BenchmarkParseIRI(b *testing.B) {
	iris := []string{
		"https://example.com/images/featured.png",
		"http://例え.jp/画像/ソーシャル.png",
		"../relative/path?q=1#frag",
		"http://[2001:db8::1]:8080/a",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ParseIRI(iris[i%len(iris)])
	}
}

func BenchmarkParseTimestamp(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ParseTimestamp("1969-06-28T01:20:00.00-04:00")
	}
}

func BenchmarkBuilder(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		bld := NewBuilder()
		bld.SetType(Major)
		bld.SetTitle("Release 2.0")
		_ = bld.SetFeaturedImage("https://example.com/featured.png")
		_ = bld.SetTimestamp("2024-01-15T10:30:00Z")
		bld.AddTag("security")
		_ = bld.AddNote("en-US", "Fixed it")
		_ = bld.Build()
	}
}

func BenchmarkReleaseNotesClone(b *testing.B) {
	bld := NewBuilder()
	bld.SetAliases("v2", "v2.0")
	bld.SetTags("a", "b", "c")
	_ = bld.SetNotes(LocalizedString{"en", "one"}, LocalizedString{"fr", "un"})
	_ = bld.AddIssue(Issue{Type: IssueDefect, ID: "GH-1", References: &[]string{"https://example.com/1"}})
	rn := bld.Build()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = rn.Clone()
	}
}
