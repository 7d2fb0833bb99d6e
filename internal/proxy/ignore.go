package proxy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AdguardTeam/urlfilter"
	"github.com/AdguardTeam/urlfilter/filterlist"
)

// IgnoreList matches hostnames whose navigations are never rewritten.
// Entries use adblock syntax, e.g. "||bank.example^".
type IgnoreList struct {
	engine  *urlfilter.DNSEngine
	entries []string
}

// NewIgnoreList compiles entries. An empty list matches nothing.
func NewIgnoreList(entries []string) (*IgnoreList, error) {
	if len(entries) == 0 {
		return &IgnoreList{}, nil
	}

	storage, err := filterlist.NewRuleStorage([]filterlist.Interface{
		filterlist.NewString(&filterlist.StringConfig{
			RulesText:      strings.ToLower(strings.Join(entries, "\n")),
			ID:             1,
			IgnoreCosmetic: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("ignore list: %w", err)
	}

	return &IgnoreList{
		engine:  urlfilter.NewDNSEngine(storage),
		entries: slices.Clone(entries),
	}, nil
}

// Has reports whether host is on the list.
func (l *IgnoreList) Has(host string) bool {
	if l == nil || l.engine == nil || host == "" {
		return false
	}
	_, ok := l.engine.Match(strings.ToLower(host))
	return ok
}

// Len returns the number of configured entries.
func (l *IgnoreList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}
