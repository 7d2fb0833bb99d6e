package rules

import (
	"net/url"
	"strings"
)

// Exempt reports whether rawURL must never be cleaned.
// Only http and https URLs are candidates; browser-internal, file and
// other schemes pass through untouched.
func Exempt(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return false
	}
	return true
}
