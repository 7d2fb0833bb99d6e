// Package rules parses the URL cleaning rule language and applies it to URLs.
package rules

import "strings"

// Scoped holds the query and hash patterns filed under one domain.
type Scoped struct {
	Query []Pattern
	Hash  []Pattern
}

// RuleSet is the parsed form of a rules document.
// It is never mutated after Parse returns; reparsing builds a new value.
type RuleSet struct {
	GlobalQuery       []Pattern // remove param and everything after
	GlobalHash        []Pattern
	GlobalQuerySingle []Pattern // remove only the matching param
	GlobalHashSingle  []Pattern
	GlobalNegations   []Pattern // checked against query names and the hash body

	DomainWhitelist      map[string]struct{}
	DomainSpecific       map[string]Scoped
	DomainSpecificSingle map[string]Scoped
	DomainNegations      map[string]Scoped
}

// Stats summarizes the size of a RuleSet.
type Stats struct {
	GlobalQuery       int `json:"global_query" yaml:"global_query"`
	GlobalHash        int `json:"global_hash" yaml:"global_hash"`
	GlobalQuerySingle int `json:"global_query_single" yaml:"global_query_single"`
	GlobalHashSingle  int `json:"global_hash_single" yaml:"global_hash_single"`
	GlobalNegations   int `json:"global_negations" yaml:"global_negations"`
	Whitelisted       int `json:"whitelisted" yaml:"whitelisted"`
	Domains           int `json:"domains" yaml:"domains"`
	DomainPatterns    int `json:"domain_patterns" yaml:"domain_patterns"`
}

// Total returns the number of patterns plus whitelisted domains.
func (s Stats) Total() int {
	return s.GlobalQuery + s.GlobalHash + s.GlobalQuerySingle + s.GlobalHashSingle +
		s.GlobalNegations + s.Whitelisted + s.DomainPatterns
}

func newRuleSet() *RuleSet {
	return &RuleSet{
		DomainWhitelist:      make(map[string]struct{}),
		DomainSpecific:       make(map[string]Scoped),
		DomainSpecificSingle: make(map[string]Scoped),
		DomainNegations:      make(map[string]Scoped),
	}
}

// Empty reports whether the RuleSet would leave every URL unchanged.
func (rs *RuleSet) Empty() bool {
	return rs == nil || rs.Stats().Total() == 0
}

// Whitelisted reports whether domain is exempt from all cleaning.
// domain must already be normalized.
func (rs *RuleSet) Whitelisted(domain string) bool {
	_, ok := rs.DomainWhitelist[domain]
	return ok
}

// Stats counts the patterns held by the RuleSet.
func (rs *RuleSet) Stats() Stats {
	if rs == nil {
		return Stats{}
	}
	s := Stats{
		GlobalQuery:       len(rs.GlobalQuery),
		GlobalHash:        len(rs.GlobalHash),
		GlobalQuerySingle: len(rs.GlobalQuerySingle),
		GlobalHashSingle:  len(rs.GlobalHashSingle),
		GlobalNegations:   len(rs.GlobalNegations),
		Whitelisted:       len(rs.DomainWhitelist),
	}

	domains := make(map[string]struct{})
	for _, m := range []map[string]Scoped{rs.DomainSpecific, rs.DomainSpecificSingle, rs.DomainNegations} {
		for d, sc := range m {
			domains[d] = struct{}{}
			s.DomainPatterns += len(sc.Query) + len(sc.Hash)
		}
	}
	s.Domains = len(domains)
	return s
}

// NormalizeDomain lower-cases a hostname and strips a leading "www.".
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

// file appends name to the query and/or hash list of domain in m.
func file(m map[string]Scoped, domain, name string, query, hash bool) {
	sc := m[domain]
	p := Compile(name)
	if query {
		sc.Query = append(sc.Query, p)
	}
	if hash {
		sc.Hash = append(sc.Hash, p)
	}
	m[domain] = sc
}
