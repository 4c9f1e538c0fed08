package autocomplete

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFetch remembers every query it served.
type recordingFetch struct {
	mu      sync.Mutex
	queries []string
	items   []Suggestion
	err     error
}

func (r *recordingFetch) fetch(_ context.Context, query string) ([]Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	return r.items, r.err
}

func (r *recordingFetch) served() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func TestAsyncFetches(t *testing.T) {
	rec := &recordingFetch{items: []Suggestion{{Key: "remote"}}}
	a := NewAsync(rec.fetch, WithDebounce(0))

	got, err := a.Suggestions(context.Background(), Request{Input: "  widget  "})

	require.NoError(t, err)
	assert.Equal(t, []string{"remote"}, keysOf(got))
	assert.Equal(t, []string{"widget"}, rec.served(), "input should be trimmed before fetching")
}

func TestAsyncMinChars(t *testing.T) {
	rec := &recordingFetch{items: []Suggestion{{Key: "remote"}}}
	a := NewAsync(rec.fetch, WithDebounce(0), WithMinChars(3))

	got, err := a.Suggestions(context.Background(), Request{Input: "ab"})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, rec.served(), "short input should not reach the fetch")
}

func TestAsyncErrorDegradesToEmpty(t *testing.T) {
	rec := &recordingFetch{err: errors.New("backend down")}
	a := NewAsync(rec.fetch, WithDebounce(0))

	got, err := a.Suggestions(context.Background(), Request{Input: "widget"})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAsyncNewerCallWinsDuringDebounce(t *testing.T) {
	rec := &recordingFetch{items: []Suggestion{{Key: "remote"}}}
	a := NewAsync(rec.fetch, WithDebounce(60*time.Millisecond))

	older := make(chan []Suggestion, 1)
	go func() {
		items, _ := a.Suggestions(context.Background(), Request{Input: "wid"})
		older <- items
	}()
	time.Sleep(15 * time.Millisecond)

	newer, err := a.Suggestions(context.Background(), Request{Input: "widget"})

	require.NoError(t, err)
	assert.Equal(t, []string{"remote"}, keysOf(newer))
	assert.Empty(t, <-older, "the superseded call should return nothing")
	assert.Equal(t, []string{"widget"}, rec.served(), "only the newest query should fetch")
}

func TestAsyncCancelAbortsDebounce(t *testing.T) {
	rec := &recordingFetch{items: []Suggestion{{Key: "remote"}}}
	a := NewAsync(rec.fetch, WithDebounce(5*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	got, err := a.Suggestions(ctx, Request{Input: "widget"})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, rec.served())
	assert.Less(t, time.Since(start), time.Second, "cancellation should cut the debounce short")
}

func TestAsyncMaxResults(t *testing.T) {
	rec := &recordingFetch{items: []Suggestion{{Key: "a"}, {Key: "b"}, {Key: "c"}}}
	a := NewAsync(rec.fetch, WithDebounce(0), WithAsyncMaxResults(2))

	got, err := a.Suggestions(context.Background(), Request{Input: "x"})

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
