package autocomplete

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusItems() []Suggestion {
	return []Suggestion{
		{Key: "active", Label: "Active", Raw: "active"},
		{Key: "archived", Label: "Archived", Raw: "archived"},
		{Key: "pending", Label: "Pending review", Raw: "pending", Description: "awaiting approval"},
	}
}

func TestStaticPrefixMatch(t *testing.T) {
	s := NewStatic(statusItems())

	got, err := s.Suggestions(context.Background(), Request{Input: "a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"active", "archived"}, keysOf(got))
}

func TestStaticEmptyInputReturnsAll(t *testing.T) {
	s := NewStatic(statusItems())

	got, err := s.Suggestions(context.Background(), Request{})

	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestStaticSubstringMode(t *testing.T) {
	s := NewStatic(statusItems(), WithMatchMode(MatchSubstring))

	got, err := s.Suggestions(context.Background(), Request{Input: "chiv"})

	require.NoError(t, err)
	assert.Equal(t, []string{"archived"}, keysOf(got))
}

func TestStaticMaxResults(t *testing.T) {
	s := NewStatic(statusItems(), WithMaxResults(1))

	got, err := s.Suggestions(context.Background(), Request{Input: "a"})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "active", got[0].Key)
}

func TestStaticCaseSensitive(t *testing.T) {
	s := NewStatic(statusItems(), WithCaseSensitive())

	got, err := s.Suggestions(context.Background(), Request{Input: "act"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Suggestions(context.Background(), Request{Input: "Act"})
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, keysOf(got))
}

func TestStaticCopiesInput(t *testing.T) {
	items := statusItems()
	s := NewStatic(items)
	items[0].Key = "mutated"

	got, err := s.Suggestions(context.Background(), Request{Input: "active"})

	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "active", got[0].Key)
}

func TestEnumSearchesDescriptions(t *testing.T) {
	e := NewEnum(statusItems())

	got, err := e.Suggestions(context.Background(), Request{Input: "approval"})

	require.NoError(t, err)
	assert.Equal(t, []string{"pending"}, keysOf(got))
}

func TestEnumLabelHitOutranksDescriptionHit(t *testing.T) {
	e := NewEnum([]Suggestion{
		{Key: "desc", Label: "Zeta", Description: "pending things"},
		{Key: "label", Label: "Pending"},
	})

	got, err := e.Suggestions(context.Background(), Request{Input: "pending"})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "label", got[0].Key)
}
