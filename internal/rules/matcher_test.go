package rules

import "testing"

func TestCompileMatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		// literal patterns are prefixes
		{"ref", "ref", true},
		{"ref", "referrer", true},
		{"ref", "xref", false},
		{"ref", "re", false},

		// case-insensitive
		{"utm_source", "UTM_Source", true},
		{"gclid", "GCLID", true},

		// wildcards
		{"utm_*", "utm_medium", true},
		{"utm_*", "utm_", true},
		{"*id", "fbclid", true},
		{"*id", "fbcl", false},
		{"a*c", "abbbc", true},
		{"a*c", "ab", false},

		// metacharacters are literal
		{"a.b", "a.b", true},
		{"a.b", "axb", false},
		{"a+b", "a+b", true},
		{"a+b", "aab", false},
		{"(x)", "(x)y", true},
		{"[x]", "x", false},
		{"a|b", "b", false},
		{`a\b`, `a\b`, true},

		// empty pattern matches everything
		{"", "anything", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got := Compile(tt.pattern).Match(tt.input)
		if got != tt.want {
			t.Errorf("Compile(%q).Match(%q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
		}
	}
}

func TestMatchAny(t *testing.T) {
	patterns := []Pattern{Compile("utm_*"), Compile("fbclid"), Compile("gclid")}

	tests := []struct {
		input string
		want  bool
	}{
		{"utm_campaign", true},
		{"fbclid", true},
		{"GCLID", true},
		{"id", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := MatchAny(tt.input, patterns); got != tt.want {
			t.Errorf("MatchAny(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if MatchAny("utm_source", nil) {
		t.Error("MatchAny with no patterns should be false")
	}
}

func TestPatternString(t *testing.T) {
	if got := Compile("utm_*").String(); got != "utm_*" {
		t.Errorf("String() = %q, want %q", got, "utm_*")
	}
}
