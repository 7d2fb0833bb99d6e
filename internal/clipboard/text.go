// Package clipboard cleans URLs found in copied text.
package clipboard

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// IsURL reports whether the whole of text, ignoring surrounding space, is one absolute URL.
func IsURL(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.IndexFunc(text, unicode.IsSpace) >= 0 {
		return false
	}
	u, err := url.Parse(text)
	return err == nil && u.Scheme != ""
}

// URLCleaner returns a clean func for CleanText backed by e.
// Exempt URLs are returned as is.
func URLCleaner(e *rules.Engine) func(string) string {
	return func(u string) string {
		if rules.Exempt(u) {
			return u
		}
		return e.Clean(u)
	}
}

// ExtractURLs returns the http(s) URLs embedded in text, in order of appearance.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// CleanText applies clean to text.
// When text is a single URL it is cleaned as a whole and surrounding space is
// kept. Otherwise each embedded http(s) URL is cleaned on its own and
// substituted back at its first remaining occurrence.
func CleanText(text string, clean func(string) string) string {
	if text == "" {
		return text
	}

	if IsURL(text) {
		trimmed := strings.TrimSpace(text)
		cleaned := clean(trimmed)
		if cleaned == "" || cleaned == trimmed {
			return text
		}
		return strings.Replace(text, trimmed, cleaned, 1)
	}

	out := text
	for _, u := range ExtractURLs(text) {
		if cleaned := clean(u); cleaned != "" && cleaned != u {
			out = strings.Replace(out, u, cleaned, 1)
		}
	}
	return out
}
