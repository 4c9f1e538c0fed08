package autocomplete

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		input     string
		mode      MatchMode
		wantZero  bool
	}{
		{name: "empty input matches", candidate: "Active", input: "", mode: MatchPrefix},
		{name: "exact", candidate: "Active", input: "active", mode: MatchPrefix},
		{name: "prefix", candidate: "Active", input: "act", mode: MatchPrefix},
		{name: "substring rejected in prefix mode", candidate: "Active", input: "tiv", mode: MatchPrefix, wantZero: true},
		{name: "substring", candidate: "Active", input: "tiv", mode: MatchSubstring},
		{name: "fuzzy rejected in substring mode", candidate: "Active", input: "atv", mode: MatchSubstring, wantZero: true},
		{name: "fuzzy", candidate: "Active", input: "atv", mode: MatchFuzzy},
		{name: "fuzzy out of order", candidate: "Active", input: "vca", mode: MatchFuzzy, wantZero: true},
		{name: "no match", candidate: "Active", input: "xyz", mode: MatchFuzzy, wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := matchScore(tt.candidate, tt.input, tt.mode, false)
			if tt.wantZero {
				assert.Zero(t, score)
			} else {
				assert.Positive(t, score)
			}
		})
	}
}

func TestMatchScoreTiers(t *testing.T) {
	exact := matchScore("active", "active", MatchFuzzy, false)
	prefix := matchScore("activated", "active", MatchFuzzy, false)
	substring := matchScore("inactive", "active", MatchFuzzy, false)
	fuzzy := matchScore("a_c_t_i_v_e", "active", MatchFuzzy, false)

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, substring)
	assert.Greater(t, substring, fuzzy)
	assert.Positive(t, fuzzy)
}

func TestMatchScoreLongerPrefixScoresHigher(t *testing.T) {
	short := matchScore("production", "pr", MatchPrefix, false)
	long := matchScore("production", "produc", MatchPrefix, false)
	assert.Greater(t, long, short)
}

func TestMatchScoreCaseSensitive(t *testing.T) {
	assert.Zero(t, matchScore("Active", "active", MatchPrefix, true))
	assert.Positive(t, matchScore("Active", "Act", MatchPrefix, true))
}

func TestRankOrdersByScoreThenLabel(t *testing.T) {
	matches := []scored{
		{item: Suggestion{Key: "b", Label: "Beta"}, score: 50},
		{item: Suggestion{Key: "a", Label: "Alpha"}, score: 50},
		{item: Suggestion{Key: "z", Label: "Zulu"}, score: 200},
	}

	got := rank(matches, 0)

	assert.Equal(t, []string{"z", "a", "b"}, keysOf(got))
}

func TestRankTruncates(t *testing.T) {
	matches := []scored{
		{item: Suggestion{Key: "a"}, score: 3},
		{item: Suggestion{Key: "b"}, score: 2},
		{item: Suggestion{Key: "c"}, score: 1},
	}

	got := rank(matches, 2)

	assert.Equal(t, []string{"a", "b"}, keysOf(got))
}

func keysOf(items []Suggestion) []string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	return keys
}
