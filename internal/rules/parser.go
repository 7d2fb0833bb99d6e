package rules

import (
	"io"
	"strings"
)

// Rule syntax markers.
const (
	markerNegation = "!"
	markerDomain   = ":"
	markerSingle   = "~"
	commentPrefix  = "//"
	inlineComment  = " //"
)

// Issue describes a rules document line that produced no rule.
type Issue struct {
	Line   int    `json:"line" yaml:"line"` // 1-based
	Text   string `json:"text" yaml:"text"`
	Reason string `json:"reason" yaml:"reason"`
}

// Parse converts a rules document into a RuleSet.
// Parsing never fails: lines that cannot be interpreted are skipped.
//
// Syntax, one rule per line:
//   - "// text" is a comment; " //" after a rule starts an inline comment
//   - "name" removes name and every later query param, or the hash
//   - "name~" removes only the matching param
//   - "?name" and "&name" target query params, "#name" targets the hash
//   - "domain.com:rule" restricts a rule to one domain
//   - "!name" and "!domain.com:name" exempt a param from removal
//   - "!domain.com" exempts a whole domain
//   - "*" in a name matches any run of characters
func Parse(document string) *RuleSet {
	p := parser{rs: newRuleSet()}
	p.run(document)
	return p.rs
}

// ParseReader reads a whole document from r and parses it.
func ParseReader(r io.Reader) (*RuleSet, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	text := string(data)
	return Parse(text), text, nil
}

// Lint reports the lines of document that Parse drops.
func Lint(document string) []Issue {
	var issues []Issue
	p := parser{
		rs: newRuleSet(),
		onDrop: func(line int, text, reason string) {
			issues = append(issues, Issue{Line: line, Text: text, Reason: reason})
		},
	}
	p.run(document)
	return issues
}

type parser struct {
	rs     *RuleSet
	onDrop func(line int, text, reason string)
}

func (p *parser) run(document string) {
	for i, raw := range strings.Split(document, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		if idx := strings.Index(line, inlineComment); idx > 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if reason := p.parseLine(line); reason != "" && p.onDrop != nil {
			p.onDrop(i+1, line, reason)
		}
	}
}

// parseLine files one rule and returns a non-empty reason when it was dropped.
func (p *parser) parseLine(line string) string {
	if rest, ok := strings.CutPrefix(line, markerNegation); ok {
		return p.parseNegation(rest)
	}

	if domain, param, ok := strings.Cut(line, markerDomain); ok {
		domain = NormalizeDomain(domain)
		param = strings.TrimSpace(param)
		if domain == "" {
			return "empty domain"
		}
		if param == "" {
			return "empty parameter"
		}

		name, single := cutSingle(param)
		name, query, hash := cutMarker(name)
		if single {
			file(p.rs.DomainSpecificSingle, domain, name, query, hash)
		} else {
			file(p.rs.DomainSpecific, domain, name, query, hash)
		}
		return ""
	}

	name, single := cutSingle(line)
	name, query, hash := cutMarker(name)
	pat := Compile(name)
	switch {
	case single && query:
		p.rs.GlobalQuerySingle = append(p.rs.GlobalQuerySingle, pat)
	case !single && query:
		p.rs.GlobalQuery = append(p.rs.GlobalQuery, pat)
	}
	switch {
	case single && hash:
		p.rs.GlobalHashSingle = append(p.rs.GlobalHashSingle, pat)
	case !single && hash:
		p.rs.GlobalHash = append(p.rs.GlobalHash, pat)
	}
	return ""
}

// parseNegation handles the remainder of a line that started with "!".
func (p *parser) parseNegation(rest string) string {
	if domain, param, ok := strings.Cut(rest, markerDomain); ok {
		domain = NormalizeDomain(domain)
		param = strings.TrimSpace(param)
		if domain == "" {
			return "empty domain"
		}
		if param == "" {
			return "empty parameter"
		}
		name, query, hash := cutMarker(param)
		file(p.rs.DomainNegations, domain, name, query, hash)
		return ""
	}

	if strings.Contains(rest, ".") {
		p.rs.DomainWhitelist[NormalizeDomain(rest)] = struct{}{}
		return ""
	}

	// One entry serves both sides: it is tested against query names and the hash body.
	name, _, _ := cutMarker(strings.TrimSpace(rest))
	p.rs.GlobalNegations = append(p.rs.GlobalNegations, Compile(name))
	return ""
}

// cutSingle strips the single-parameter suffix.
func cutSingle(param string) (string, bool) {
	return strings.CutSuffix(param, markerSingle)
}

// cutMarker strips a leading target marker and reports which sides the name applies to.
// An unmarked name applies to both.
func cutMarker(param string) (name string, query, hash bool) {
	switch {
	case strings.HasPrefix(param, "?"), strings.HasPrefix(param, "&"):
		return param[1:], true, false
	case strings.HasPrefix(param, "#"):
		return param[1:], false, true
	}
	return param, true, true
}
