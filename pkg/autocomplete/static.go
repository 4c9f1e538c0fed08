package autocomplete

import (
	"context"
)

// Static serves suggestions from a fixed in-memory list. Matching defaults to
// prefix mode against the suggestion label; substring and fuzzy modes widen
// the net, and descriptions can be searched too.
type Static struct {
	items              []Suggestion
	mode               MatchMode
	maxResults         int
	caseSensitive      bool
	searchDescriptions bool
}

// StaticOption adjusts a Static autocompleter during construction.
type StaticOption func(*Static)

// WithMatchMode sets how input is matched against candidates.
func WithMatchMode(mode MatchMode) StaticOption {
	return func(s *Static) {
		s.mode = mode
	}
}

// WithMaxResults caps how many suggestions are returned. Zero means
// unlimited.
func WithMaxResults(max int) StaticOption {
	return func(s *Static) {
		s.maxResults = max
	}
}

// WithCaseSensitive makes matching honor character case.
func WithCaseSensitive() StaticOption {
	return func(s *Static) {
		s.caseSensitive = true
	}
}

// WithDescriptions includes suggestion descriptions in the matched text.
func WithDescriptions() StaticOption {
	return func(s *Static) {
		s.searchDescriptions = true
	}
}

// NewStatic builds an autocompleter over a fixed list of suggestions. The
// list is copied, so later mutation by the caller has no effect.
func NewStatic(items []Suggestion, opts ...StaticOption) *Static {
	s := &Static{items: append([]Suggestion(nil), items...)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEnum builds an autocompleter for a closed set of labeled values, such as
// a status or category field. Enums match on substrings and search
// descriptions, since users often recall a fragment rather than the start of
// the label.
func NewEnum(items []Suggestion, opts ...StaticOption) *Static {
	base := []StaticOption{WithMatchMode(MatchSubstring), WithDescriptions()}
	return NewStatic(items, append(base, opts...)...)
}

// Suggestions returns the items matching the typed input, ranked best first.
func (s *Static) Suggestions(_ context.Context, req Request) ([]Suggestion, error) {
	matches := make([]scored, 0, len(s.items))
	for _, item := range s.items {
		score := matchScore(item.DisplayLabel(), req.Input, s.mode, s.caseSensitive)
		if score == 0 && s.searchDescriptions && item.Description != "" {
			if d := matchScore(item.Description, req.Input, s.mode, s.caseSensitive); d > 0 {
				// Description hits rank below label hits of the same tier.
				score = d / 2
			}
		}
		if score > 0 {
			matches = append(matches, scored{item: item, score: score})
		}
	}
	return rank(matches, s.maxResults), nil
}
