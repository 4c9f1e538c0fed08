package autocomplete

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// FetchFunc loads suggestions for a query from a remote or otherwise slow
// source.
type FetchFunc func(ctx context.Context, query string) ([]Suggestion, error)

// Async wraps a slow fetch function with the behavior interactive input
// needs: a debounce pause before fetching, a minimum input length, and
// last-request-wins sequencing so stale responses never surface. Lookup
// failures degrade to an empty list rather than an error; typing is not the
// place to report a backend outage.
type Async struct {
	fetch      FetchFunc
	debounce   time.Duration
	minChars   int
	maxResults int
	seq        atomic.Uint64
}

// AsyncOption adjusts an Async autocompleter during construction.
type AsyncOption func(*Async)

// WithDebounce sets how long input must be quiet before the fetch runs.
func WithDebounce(d time.Duration) AsyncOption {
	return func(a *Async) {
		a.debounce = d
	}
}

// WithMinChars suppresses fetching until the input reaches n runes.
func WithMinChars(n int) AsyncOption {
	return func(a *Async) {
		a.minChars = n
	}
}

// WithAsyncMaxResults caps how many suggestions are returned. Zero means
// unlimited.
func WithAsyncMaxResults(max int) AsyncOption {
	return func(a *Async) {
		a.maxResults = max
	}
}

// DefaultDebounce is the pause applied before fetching when no override is
// given.
const DefaultDebounce = 200 * time.Millisecond

// NewAsync builds an autocompleter around fetch.
func NewAsync(fetch FetchFunc, opts ...AsyncOption) *Async {
	a := &Async{fetch: fetch, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Suggestions debounces, then fetches suggestions for the typed input. Calls
// that are superseded by a newer call, cancelled, or that fail return an
// empty list with a nil error.
func (a *Async) Suggestions(ctx context.Context, req Request) ([]Suggestion, error) {
	query := strings.TrimSpace(req.Input)
	if a.minChars > 0 && utf8.RuneCountInString(query) < a.minChars {
		return nil, nil
	}

	id := a.seq.Add(1)
	if a.debounce > 0 {
		timer := time.NewTimer(a.debounce)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, nil
		case <-timer.C:
		}
	}
	if id != a.seq.Load() {
		// A newer keystroke arrived while we slept.
		return nil, nil
	}

	items, err := a.fetch(ctx, query)
	if err != nil || ctx.Err() != nil {
		return nil, nil
	}
	if id != a.seq.Load() {
		return nil, nil
	}
	return truncate(items, a.maxResults), nil
}
