// Package autocomplete provides the suggestion sources the filter widget
// draws from: fixed lists, enums, numeric and date helpers, debounced async
// lookups, plus combining and caching wrappers. Every source implements
// filter.Autocompleter; some add value parsing, formatting, or validation on
// top.
package autocomplete

import (
	"sort"
	"strings"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// Suggestion and Request alias the filter package types so hosts wiring
// autocompleters rarely need to import both packages.
type (
	Suggestion = filter.Suggestion
	Request    = filter.SuggestRequest
)

// MatchMode selects how typed input is matched against candidates.
type MatchMode int

const (
	// MatchPrefix accepts candidates starting with the input.
	MatchPrefix MatchMode = iota
	// MatchSubstring accepts candidates containing the input anywhere.
	MatchSubstring
	// MatchFuzzy accepts candidates containing the input's characters in
	// order, gaps allowed.
	MatchFuzzy
)

// Score tiers, highest first. Within a tier, longer inputs matching more of
// the candidate score higher; ties break alphabetically.
const (
	scoreExact     = 200
	scorePrefix    = 100
	scoreSubstring = 50
	scoreFuzzy     = 25
)

// matchScore rates candidate against input under the given mode. Returns 0
// for no match. An empty input matches everything at the base tier.
func matchScore(candidate, input string, mode MatchMode, caseSensitive bool) int {
	if input == "" {
		return scoreFuzzy
	}
	c, q := candidate, input
	if !caseSensitive {
		c = strings.ToLower(c)
		q = strings.ToLower(q)
	}

	if c == q {
		return scoreExact
	}
	if strings.HasPrefix(c, q) {
		return scorePrefix + len(q)
	}
	if mode == MatchPrefix {
		return 0
	}
	if strings.Contains(c, q) {
		return scoreSubstring + len(q)
	}
	if mode == MatchSubstring {
		return 0
	}
	if fuzzyMatch(c, q) {
		return scoreFuzzy + len(q)
	}
	return 0
}

// fuzzyMatch reports whether all of q's characters appear in c in order.
func fuzzyMatch(c, q string) bool {
	pos := 0
	for _, r := range q {
		i := strings.IndexRune(c[pos:], r)
		if i < 0 {
			return false
		}
		pos += i + 1
	}
	return true
}

type scored struct {
	item  Suggestion
	score int
}

// rank sorts matches by score descending, then label, and truncates to max
// (0 = unlimited).
func rank(matches []scored, max int) []Suggestion {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].item.DisplayLabel() < matches[j].item.DisplayLabel()
	})
	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.item)
	}
	return truncate(out, max)
}

func truncate(items []Suggestion, max int) []Suggestion {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}
