package ui

import (
	"fmt"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

// The token layer lives beside build state: at most one of actively
// building, token selected, or token editing holds at any time. Selecting a
// token cancels the draft; typing clears the selection.

func (m *Model) tokens() []Token {
	return tokensFor(m.machine.Expressions(), m.machine.Schema())
}

// atRest reports whether arrow keys may move into the token row: nothing
// typed and no field or value half-chosen. Field entry and the connector
// step count as rest because cancelling them loses nothing the user typed.
func (m *Model) atRest() bool {
	if m.input.Value() != "" {
		return false
	}
	switch m.machine.Step() {
	case machine.StepIdle, machine.StepField, machine.StepConnector:
		return true
	default:
		return false
	}
}

// selectToken sets the cursor on one token, cancelling any draft so the
// one-of-three invariant holds.
func (m *Model) selectToken(c cursor) {
	m.cancelDraft()
	m.selectAll = false
	m.selected = &c
}

// clearSelection drops selection and select-all and resumes field entry.
func (m *Model) clearSelection() {
	m.selected = nil
	m.selectAll = false
	m.resumeBuild()
}

// cancelDraft discards in-progress build state (draft condition, pending
// connector, dropdown). The committed list is untouched.
func (m *Model) cancelDraft() {
	m.machine.Cancel()
	m.valueSource = nil
	m.custom = nil
	m.cancelFetch()
	m.input.SetValue("")
	m.clearSuggestions()
}

// resumeBuild re-enters field entry after the token layer releases control.
func (m *Model) resumeBuild() {
	if !m.focused {
		return
	}
	if m.machine.Step() == machine.StepIdle {
		m.machine.Focus()
	}
	m.refreshSuggestions()
}

// selectPrev moves the selection left, entering the token row from the
// input on the last token. Movement clamps at the first token.
func (m *Model) selectPrev() {
	toks := m.tokens()
	if len(toks) == 0 {
		return
	}
	m.selectAll = false
	if m.selected == nil {
		last := toks[len(toks)-1]
		m.selectToken(cursor{Expr: last.Expr, Kind: last.Kind})
		return
	}
	i := tokenIndexOf(toks, *m.selected)
	if i > 0 {
		m.selected = &cursor{Expr: toks[i-1].Expr, Kind: toks[i-1].Kind}
	}
}

// selectNext moves the selection right; past the last token it returns
// control to the text input.
func (m *Model) selectNext() {
	toks := m.tokens()
	if m.selected == nil || len(toks) == 0 {
		return
	}
	i := tokenIndexOf(toks, *m.selected)
	if i < 0 || i == len(toks)-1 {
		m.clearSelection()
		return
	}
	m.selected = &cursor{Expr: toks[i+1].Expr, Kind: toks[i+1].Kind}
}

// deleteSelected removes the selected token's whole expression, or the whole
// list under select-all. Connectors renormalize: the predecessor keeps its
// connector, now joining to the new neighbor, and a trailing expression
// keeps none.
func (m *Model) deleteSelected() {
	list := m.machine.Expressions()
	switch {
	case m.selectAll:
		if len(list) == 0 {
			return
		}
		m.machine.SetExpressions(nil)
		m.selectAll = false
		m.selected = nil
		m.resumeBuild()
		m.notifyChange(m.machine.Expressions(), "cleared all filters")
	case m.selected != nil:
		c := *m.selected
		if c.Expr < 0 || c.Expr >= len(list) {
			m.selected = nil
			return
		}
		removed := list[c.Expr]
		m.machine.SetExpressions(filter.RemoveAt(list, c.Expr))
		m.selected = nil
		m.resumeBuild()
		m.notifyChange(m.machine.Expressions(), fmt.Sprintf("removed %s filter", fieldText(removed.Condition.Field)))
	}
}
