package rules

import (
	"regexp"
	"strings"
)

// Pattern is a compiled rule pattern.
// Matching is case-insensitive and anchored at the start of the candidate only,
// so a literal pattern behaves as a prefix match.
type Pattern struct {
	text string
	re   *regexp.Regexp
}

// Compile converts a wildcard pattern into a reusable matcher.
// * matches any sequence of characters (including none).
// All other regex special chars are escaped.
func Compile(pattern string) Pattern {
	var b strings.Builder
	b.WriteString("(?i)^")

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '.', '+', '?', '^', '$', '(', ')', '[', ']', '{', '}', '|', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		// Only invalid UTF-8 gets here; fall back to a literal prefix test.
		return Pattern{text: pattern}
	}
	return Pattern{text: pattern, re: re}
}

// String returns the source text of the pattern.
func (p Pattern) String() string {
	return p.text
}

// Match checks if candidate starts with something matching the pattern.
func (p Pattern) Match(candidate string) bool {
	if p.re == nil {
		return len(candidate) >= len(p.text) && strings.EqualFold(candidate[:len(p.text)], p.text)
	}
	return p.re.MatchString(candidate)
}

// MatchAny reports whether any pattern matches candidate.
func MatchAny(candidate string, patterns []Pattern) bool {
	for _, p := range patterns {
		if p.Match(candidate) {
			return true
		}
	}
	return false
}
