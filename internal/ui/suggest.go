package ui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

// SuggestDebounceMsg is sent after the debounce delay to trigger a value
// suggestion fetch. Seq is compared against the widget's latest sequence so
// a tick queued before a newer keystroke (or a step change) is a no-op.
type SuggestDebounceMsg struct {
	Seq   int
	Input string
}

// SuggestResultMsg carries fetched value suggestions back into Update. A
// result whose Seq is stale is dropped on arrival, whatever order results
// return in.
type SuggestResultMsg struct {
	Seq   int
	Items []filter.Suggestion
}

// suggestDebounce waits out the debounce delay then emits the tick.
func suggestDebounce(seq int, input string, delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		if delay > 0 {
			time.Sleep(delay)
		}
		return SuggestDebounceMsg{Seq: seq, Input: input}
	}
}

// fetchSuggestions runs the completer in a goroutine. Errors degrade to an
// empty list; the completer layer already treats failures as no suggestions.
func fetchSuggestions(ctx context.Context, src filter.Autocompleter, req filter.SuggestRequest, seq int) tea.Cmd {
	return func() tea.Msg {
		items, err := src.Suggestions(ctx, req)
		if err != nil {
			items = nil
		}
		return SuggestResultMsg{Seq: seq, Items: items}
	}
}

// refreshSuggestions recomputes the dropdown for the current step and input.
// Field, operator, and connector candidates come synchronously from the
// machine; the value step goes through the debounce/fetch pipeline and
// returns a command.
func (m *Model) refreshSuggestions() tea.Cmd {
	if !m.focused || m.editor != nil || m.custom != nil {
		return nil
	}
	input := m.input.Value()
	switch m.machine.Step() {
	case machine.StepField:
		m.setSuggestions(m.machine.FieldSuggestions(input), 0)
	case machine.StepOperator:
		m.setSuggestions(m.machine.OperatorSuggestions(input), 0)
	case machine.StepConnector:
		m.setSuggestions(m.machine.ConnectorSuggestions(input), 0)
	case machine.StepValue:
		return m.queueFetch(input)
	default:
		m.clearSuggestions()
	}
	return nil
}

// queueFetch advances the sequence and schedules a debounce tick for the
// value step. Fields without a suggestion source keep the dropdown closed.
func (m *Model) queueFetch(input string) tea.Cmd {
	m.seq++
	if m.valueSource == nil {
		m.clearSuggestions()
		return nil
	}
	return suggestDebounce(m.seq, input, m.debounce)
}

// handleDebounce starts the real fetch when the tick is still current.
func (m *Model) handleDebounce(msg SuggestDebounceMsg) tea.Cmd {
	if msg.Seq != m.seq || m.valueSource == nil || m.machine.Step() != machine.StepValue {
		return nil
	}
	m.cancelFetch()
	ctx, cancel := context.WithCancel(context.Background())
	m.fetchCancel = cancel
	return fetchSuggestions(ctx, m.valueSource, m.machine.SuggestRequest(msg.Input), msg.Seq)
}

// handleResult installs fetched suggestions when they are still current.
func (m *Model) handleResult(msg SuggestResultMsg) {
	if msg.Seq != m.seq || m.machine.Step() != machine.StepValue {
		return
	}
	// -1 keeps the typed text active; Down moves into the list.
	m.setSuggestions(msg.Items, -1)
}

// setSuggestions swaps the dropdown contents. The highlight resets to its
// step-initial position only when the list actually changed, so repainting
// the same candidates keeps the user's place.
func (m *Model) setSuggestions(items []filter.Suggestion, initial int) {
	if suggestionsEqual(m.suggestions, items) {
		return
	}
	m.suggestions = items
	m.highlight = initial
	if len(items) == 0 {
		m.highlight = -1
	}
	m.dropStart = clampWindow(0, len(items), m.maxVisible, m.highlight)
}

func (m *Model) clearSuggestions() {
	m.suggestions = nil
	m.highlight = -1
	m.dropStart = 0
}

// moveHighlight shifts the dropdown highlight by delta, clamping at both
// ends. On the value step the highlight may retreat to -1, which hands Enter
// back to the typed text.
func (m *Model) moveHighlight(delta int) {
	if len(m.suggestions) == 0 {
		return
	}
	floor := 0
	if m.machine.Step() == machine.StepValue {
		floor = -1
	}
	h := m.highlight + delta
	if h < floor {
		h = floor
	}
	if h > len(m.suggestions)-1 {
		h = len(m.suggestions) - 1
	}
	m.highlight = h
	m.dropStart = clampWindow(m.dropStart, len(m.suggestions), m.maxVisible, m.highlight)
}

func (m *Model) highlighted() (filter.Suggestion, bool) {
	if m.highlight < 0 || m.highlight >= len(m.suggestions) {
		return filter.Suggestion{}, false
	}
	return m.suggestions[m.highlight], true
}

func suggestionsEqual(a, b []filter.Suggestion) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return a == nil && b == nil
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Label != b[i].Label || a[i].Group != b[i].Group {
			return false
		}
	}
	return true
}
