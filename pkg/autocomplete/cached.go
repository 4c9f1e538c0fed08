package autocomplete

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// DefaultCacheTTL is how long cached results stay fresh when no override is
// given.
const DefaultCacheTTL = time.Minute

// Cached memoizes another autocompleter's results per normalized input, so
// retyping the same prefix does not hit a slow source twice. Entries expire
// lazily after the TTL. Value parsing, formatting, and validation pass
// through to the wrapped source when it supports them.
type Cached struct {
	source filter.Autocompleter
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	items   []Suggestion
	expires time.Time
}

// CachedOption adjusts a Cached autocompleter during construction.
type CachedOption func(*Cached)

// WithTTL sets how long cached results stay fresh.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		c.ttl = ttl
	}
}

// WithCacheClock overrides the clock used for expiry.
func WithCacheClock(now func() time.Time) CachedOption {
	return func(c *Cached) {
		c.now = now
	}
}

// NewCached wraps source with a per-input result cache.
func NewCached(source filter.Autocompleter, opts ...CachedOption) *Cached {
	c := &Cached{
		source:  source,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Suggestions answers from the cache when it can, otherwise asks the wrapped
// source and remembers the result. Failed lookups are not cached, so the
// next keystroke retries.
func (c *Cached) Suggestions(ctx context.Context, req Request) ([]Suggestion, error) {
	key := cacheKey(req)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Before(entry.expires) {
		items := append([]Suggestion(nil), entry.items...)
		c.mu.Unlock()
		return items, nil
	}
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	items, err := c.source.Suggestions(ctx, req)
	if err != nil {
		return items, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		items:   append([]Suggestion(nil), items...),
		expires: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
	return items, nil
}

// Invalidate drops every cached entry.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// cacheKey normalizes the input and scopes it to the field and operator, so
// the same text typed for different fields does not collide.
func cacheKey(req Request) string {
	var field, op string
	if req.Field != nil {
		field = req.Field.Key
	}
	if req.Operator != nil {
		op = req.Operator.Key
	}
	return field + "\x00" + op + "\x00" + strings.ToLower(strings.TrimSpace(req.Input))
}

// FormatValue delegates to the wrapped source when it formats values.
func (c *Cached) FormatValue(raw any) string {
	if f, ok := c.source.(filter.ValueFormatter); ok {
		return f.FormatValue(raw)
	}
	return filter.Stringify(raw)
}

// ParseValue delegates to the wrapped source when it parses input.
func (c *Cached) ParseValue(input string) (any, error) {
	if p, ok := c.source.(filter.ValueParser); ok {
		return p.ParseValue(input)
	}
	return nil, errNoParser
}

// ValidateValue delegates to the wrapped source when it validates values.
func (c *Cached) ValidateValue(raw any) error {
	if v, ok := c.source.(filter.ValueValidator); ok {
		return v.ValidateValue(raw)
	}
	return nil
}

var errNoParser = errors.New("wrapped source does not parse values")
