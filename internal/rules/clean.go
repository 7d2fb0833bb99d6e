package rules

import (
	"fmt"
	"net/url"
	"strings"
)

// Outcome is the result category of one cleaning pass.
type Outcome uint8

const (
	// OutcomeUnchanged means no rule removed anything.
	OutcomeUnchanged Outcome = iota
	// OutcomeInvalid means the input could not be split into URL components.
	OutcomeInvalid
	// OutcomeWhitelisted means the domain is exempt from cleaning.
	OutcomeWhitelisted
	// OutcomeNegated means a negation kept the hash.
	OutcomeNegated
	// OutcomeSingle means one query param, or the hash, was removed.
	OutcomeSingle
	// OutcomeCascade means a query param and everything after it, or the hash, was removed.
	OutcomeCascade
)

var outcomeNames = [...]string{"unchanged", "invalid", "whitelisted", "negated", "single", "cascade"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", o)
}

// Target is the URL part a decision applies to.
type Target uint8

const (
	TargetNone Target = iota
	TargetQuery
	TargetHash
)

func (t Target) String() string {
	switch t {
	case TargetQuery:
		return "query"
	case TargetHash:
		return "hash"
	}
	return ""
}

// Scope tells whether the deciding rule was domain-specific or global.
type Scope uint8

const (
	ScopeNone Scope = iota
	ScopeDomain
	ScopeGlobal
)

func (s Scope) String() string {
	switch s {
	case ScopeDomain:
		return "domain"
	case ScopeGlobal:
		return "global"
	}
	return ""
}

// Decision explains a single cleaning pass.
type Decision struct {
	Outcome Outcome
	Target  Target
	Scope   Scope
	Domain  string
	// Param is the query token name or the hash body the rule matched.
	Param string
}

// Changed reports whether the pass rewrote the URL.
func (d Decision) Changed() bool {
	return d.Outcome == OutcomeSingle || d.Outcome == OutcomeCascade
}

func (d Decision) String() string {
	if d.Target == TargetNone {
		return d.Outcome.String()
	}
	return fmt.Sprintf("%s %s %s %q", d.Scope, d.Outcome, d.Target, d.Param)
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// Clean runs one cleaning pass over rawURL.
// The original string is returned when it cannot be parsed or no rule fires.
func Clean(rawURL string, rs *RuleSet) string {
	cleaned, _ := Explain(rawURL, rs)
	return cleaned
}

// CleanAll repeats Clean until the URL stops changing.
// One pass removes at most one query decision or the hash, so URLs carrying
// several tracking params need more than one.
func CleanAll(rawURL string, rs *RuleSet) string {
	cleaned, _ := Trace(rawURL, rs)
	return cleaned
}

// Trace is CleanAll that also returns the decision of every pass that changed the URL.
func Trace(rawURL string, rs *RuleSet) (string, []Decision) {
	var decisions []Decision
	cur := rawURL
	// Every changing pass after the first strictly shortens the URL.
	for pass := 0; pass <= len(rawURL)+1; pass++ {
		next, d := Explain(cur, rs)
		if !d.Changed() || next == cur {
			break
		}
		decisions = append(decisions, d)
		cur = next
	}
	return cur, decisions
}

// Explain runs one cleaning pass and reports which rule decided it.
//
// Precedence, per query token from left to right: domain negation, global
// negation, domain single, global single, domain cascade, global cascade.
// The hash is only considered when no query token was removed.
func Explain(rawURL string, rs *RuleSet) (string, Decision) {
	if rs == nil {
		return rawURL, Decision{}
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return rawURL, Decision{Outcome: OutcomeInvalid}
	}

	domain := NormalizeDomain(u.Hostname())
	if rs.Whitelisted(domain) {
		return rawURL, Decision{Outcome: OutcomeWhitelisted, Domain: domain}
	}

	domainRules := rs.DomainSpecific[domain]
	domainSingle := rs.DomainSpecificSingle[domain]
	domainNegs := rs.DomainNegations[domain]

	base := origin(u) + pathname(u)
	hash := ""
	if frag := u.EscapedFragment(); frag != "" {
		hash = "#" + frag
	}

	if u.RawQuery != "" {
		params := strings.Split(u.RawQuery, "&")
		for i, param := range params {
			name, _, _ := strings.Cut(param, "=")

			if MatchAny(name, domainNegs.Query) || MatchAny(name, rs.GlobalNegations) {
				continue
			}

			d := Decision{Target: TargetQuery, Domain: domain, Param: name}
			switch {
			case MatchAny(name, domainSingle.Query):
				d.Outcome, d.Scope = OutcomeSingle, ScopeDomain
			case MatchAny(name, rs.GlobalQuerySingle):
				d.Outcome, d.Scope = OutcomeSingle, ScopeGlobal
			case MatchAny(name, domainRules.Query):
				d.Outcome, d.Scope = OutcomeCascade, ScopeDomain
			case MatchAny(name, rs.GlobalQuery):
				d.Outcome, d.Scope = OutcomeCascade, ScopeGlobal
			default:
				continue
			}

			var kept []string
			if d.Outcome == OutcomeSingle {
				kept = make([]string, 0, len(params)-1)
				kept = append(kept, params[:i]...)
				kept = append(kept, params[i+1:]...)
			} else {
				kept = params[:i]
			}
			if len(kept) > 0 {
				return base + "?" + strings.Join(kept, "&") + hash, d
			}
			return base + hash, d
		}
	}

	if hash == "" {
		return rawURL, Decision{Domain: domain}
	}

	body := hash[1:]
	search := ""
	if u.RawQuery != "" {
		search = "?" + u.RawQuery
	}

	d := Decision{Target: TargetHash, Domain: domain, Param: body}
	switch {
	case MatchAny(body, domainNegs.Hash):
		d.Outcome, d.Scope = OutcomeNegated, ScopeDomain
		return rawURL, d
	case MatchAny(body, rs.GlobalNegations):
		d.Outcome, d.Scope = OutcomeNegated, ScopeGlobal
		return rawURL, d
	case MatchAny(body, domainSingle.Hash):
		d.Outcome, d.Scope = OutcomeSingle, ScopeDomain
	case MatchAny(body, rs.GlobalHashSingle):
		d.Outcome, d.Scope = OutcomeSingle, ScopeGlobal
	case MatchAny(body, domainRules.Hash):
		d.Outcome, d.Scope = OutcomeCascade, ScopeDomain
	case MatchAny(body, rs.GlobalHash):
		d.Outcome, d.Scope = OutcomeCascade, ScopeGlobal
	default:
		return rawURL, Decision{Domain: domain}
	}
	return base + search, d
}

// origin returns scheme://host[:port] with the default port elided.
// User info is not part of the origin and is dropped.
func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host += ":" + port
	}
	return scheme + "://" + host
}

func pathname(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}
