package autocomplete

import (
	"context"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// Combined queries several sources in order and merges their results. A
// failing source contributes nothing; the rest still answer. Each source can
// carry a group name stamped onto suggestions that do not already set one,
// which the dropdown renders as section headers.
type Combined struct {
	sources    []Source
	maxResults int
}

// Source pairs an autocompleter with the group its suggestions belong to.
// An empty group leaves suggestions ungrouped.
type Source struct {
	Group     string
	Completer filter.Autocompleter
}

// CombinedOption adjusts a Combined autocompleter during construction.
type CombinedOption func(*Combined)

// WithCombinedMaxResults caps how many merged suggestions are returned. Zero
// means unlimited.
func WithCombinedMaxResults(max int) CombinedOption {
	return func(c *Combined) {
		c.maxResults = max
	}
}

// NewCombined merges the given sources, in order, without group labels.
func NewCombined(completers ...filter.Autocompleter) *Combined {
	sources := make([]Source, 0, len(completers))
	for _, completer := range completers {
		sources = append(sources, Source{Completer: completer})
	}
	return NewCombinedSources(sources)
}

// NewCombinedSources merges named sources in slice order, so earlier groups
// stay ahead of later ones in the dropdown.
func NewCombinedSources(sources []Source, opts ...CombinedOption) *Combined {
	c := &Combined{sources: append([]Source(nil), sources...)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggestions merges results from every source that answers.
func (c *Combined) Suggestions(ctx context.Context, req Request) ([]Suggestion, error) {
	var out []Suggestion
	for _, source := range c.sources {
		if source.Completer == nil {
			continue
		}
		items, err := source.Completer.Suggestions(ctx, req)
		if err != nil {
			continue
		}
		for _, item := range items {
			if item.Group == "" {
				item.Group = source.Group
			}
			out = append(out, item)
		}
	}
	return truncate(out, c.maxResults), nil
}
