package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

func cleanerFor(document string) func(string) string {
	rs := rules.Parse(document)
	return func(u string) string { return rules.CleanAll(u, rs) }
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/?a=1"))
	assert.True(t, IsURL("  https://example.com/\n"))
	assert.True(t, IsURL("mailto:someone@example.com"))
	assert.False(t, IsURL("see https://example.com/"))
	assert.False(t, IsURL("example.com"))
	assert.False(t, IsURL(""))
	assert.False(t, IsURL("   "))
}

func TestExtractURLs(t *testing.T) {
	got := ExtractURLs("a http://x.com/?q=1 b\nhttps://y.org/p\tc ftp://z")
	assert.Equal(t, []string{"http://x.com/?q=1", "https://y.org/p"}, got)
	assert.Empty(t, ExtractURLs("no links here"))
}

func TestCleanText(t *testing.T) {
	clean := cleanerFor("utm_source\nfbclid")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "whole url",
			in:   "https://example.com/?utm_source=x",
			want: "https://example.com/",
		},
		{
			name: "whole url keeps surrounding space",
			in:   "  https://example.com/?utm_source=x\n",
			want: "  https://example.com/\n",
		},
		{
			name: "embedded urls",
			in:   "Read https://a.com/p?id=1&fbclid=2 and https://b.com/?utm_source=3 today",
			want: "Read https://a.com/p?id=1 and https://b.com/ today",
		},
		{
			name: "same url twice",
			in:   "https://a.com/?fbclid=1 https://a.com/?fbclid=1",
			want: "https://a.com/ https://a.com/",
		},
		{
			name: "clean url untouched",
			in:   "see https://a.com/?id=1",
			want: "see https://a.com/?id=1",
		},
		{
			name: "no urls",
			in:   "plain text",
			want: "plain text",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in, clean))
		})
	}
}

func TestCleanTextEmptyResultKeepsOriginal(t *testing.T) {
	got := CleanText("https://a.com/?x=1", func(string) string { return "" })
	assert.Equal(t, "https://a.com/?x=1", got)
}

func TestCleanTextRulesDocument(t *testing.T) {
	// A rules document has no http(s) URLs, so it passes through unchanged.
	clean := cleanerFor(rules.DefaultRules)
	assert.Equal(t, rules.DefaultRules, CleanText(rules.DefaultRules, clean))
}

func TestURLCleanerSkipsExempt(t *testing.T) {
	e := rules.NewEngine()
	e.LoadText("ref")
	clean := URLCleaner(e)

	assert.Equal(t, "https://a.com/", clean("https://a.com/?ref=1"))
	assert.Equal(t, "ftp://a.com/?ref=1", clean("ftp://a.com/?ref=1"))
	assert.Equal(t, "ftp://a.com/?ref=1", CleanText("ftp://a.com/?ref=1", clean))
}
