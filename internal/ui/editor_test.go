package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

func TestEditor_OperatorEditKeepsValue(t *testing.T) {
	m, log := newTestModel(t, testSchema())
	m = buildExpression(t, m, "name", "contains", "test")

	m = pressN(m, tea.KeyLeft, 2)
	if m.selected == nil || m.selected.Kind != TokenOperator {
		t.Fatalf("expected operator token selected, got %+v", m.selected)
	}
	m = press(m, tea.KeyEnter)
	if m.editor == nil || len(m.editor.options) != 3 {
		t.Fatalf("expected operator options, got %+v", m.editor)
	}
	if m.editor.highlight != 0 {
		t.Fatalf("expected current operator highlighted, got %d", m.editor.highlight)
	}
	if v := m.View(); !strings.Contains(v, "❯ contains") {
		t.Fatalf("expected options dropdown in view, got %q", v)
	}

	m = press(m, tea.KeyDown) // equals
	m = press(m, tea.KeyEnter)

	if len(log.lists) != 2 {
		t.Fatalf("expected one change from the edit, got %d total", len(log.lists))
	}
	cond := log.last()[0].Condition
	if cond.Operator.Key != filter.OpEquals || cond.Operator.Symbol != "=" {
		t.Fatalf("expected operator swapped to equals, got %+v", cond.Operator)
	}
	if cond.Value.Raw != "test" {
		t.Fatalf("value must survive an operator edit, got %+v", cond.Value)
	}
	if m.editor != nil || m.selected != nil {
		t.Fatalf("expected editor closed and selection released")
	}
	if m.Step() != machine.StepField {
		t.Fatalf("expected build flow resumed, got %v", m.Step())
	}
}

func TestEditor_OperatorOptionsClamp(t *testing.T) {
	m, _ := newTestModel(t, testSchema())
	m = buildExpression(t, m, "name", "contains", "test")

	m = pressN(m, tea.KeyLeft, 2)
	m = press(m, tea.KeyEnter)

	m = press(m, tea.KeyUp)
	if m.editor.highlight != 0 {
		t.Fatalf("expected highlight clamped at top, got %d", m.editor.highlight)
	}
	m = pressN(m, tea.KeyDown, 5)
	if m.editor.highlight != 2 {
		t.Fatalf("expected highlight clamped at bottom, got %d", m.editor.highlight)
	}
}

func TestEditor_ValueEditPrefillsAndCommits(t *testing.T) {
	m, log := newTestModel(t, testSchema())
	m = buildExpression(t, m, "name", "contains", "test")

	m = press(m, tea.KeyLeft)
	m = press(m, tea.KeyEnter)
	if m.editor == nil || m.editor.target.Kind != TokenValue {
		t.Fatalf("expected value editor, got %+v", m.editor)
	}
	if got := m.editor.input.Value(); got != "test" {
		t.Fatalf("expected prefilled editor, got %q", got)
	}

	m = pressN(m, tea.KeyBackspace, 4)
	m = typeText(m, "fresh")
	m = press(m, tea.KeyEnter)

	if len(log.lists) != 2 {
		t.Fatalf("expected one change from the edit, got %d total", len(log.lists))
	}
	cond := log.last()[0].Condition
	if cond.Value.Raw != "fresh" {
		t.Fatalf("expected edited value, got %+v", cond.Value)
	}
	if cond.Operator.Key != filter.OpContains {
		t.Fatalf("operator must survive a value edit, got %+v", cond.Operator)
	}
	if m.editor != nil {
		t.Fatalf("expected editor closed")
	}
}

func TestEditor_EscapeCancelsAndReselects(t *testing.T) {
	m, log := newTestModel(t, testSchema())
	m = buildExpression(t, m, "name", "contains", "test")

	m = press(m, tea.KeyLeft)
	m = press(m, tea.KeyEnter)
	m = typeText(m, "garbage")
	m = press(m, tea.KeyEsc)

	if len(log.lists) != 1 {
		t.Fatalf("escape must not fire OnChange, got %d", len(log.lists))
	}
	if got := m.Value()[0].Condition.Value.Raw; got != "test" {
		t.Fatalf("expected value untouched, got %v", got)
	}
	if m.editor != nil {
		t.Fatalf("expected editor closed")
	}
	if m.selected == nil || m.selected.Kind != TokenValue {
		t.Fatalf("expected selection back on the edited token, got %+v", m.selected)
	}
}

func TestEditor_EmptyRequiredValueRefused(t *testing.T) {
	m, log := newTestModel(t, testSchema())
	m = buildExpression(t, m, "name", "contains", "test")

	m = press(m, tea.KeyLeft)
	m = press(m, tea.KeyEnter)
	m = pressN(m, tea.KeyBackspace, 4)
	m = press(m, tea.KeyEnter)

	if m.editor == nil {
		t.Fatalf("expected editor kept open on empty required value")
	}
	if !m.statusErr || !strings.Contains(m.statusMsg, "requires a value") {
		t.Fatalf("expected error status, got %q", m.statusMsg)
	}
	if len(log.lists) != 1 {
		t.Fatalf("refused edit must not fire OnChange, got %d", len(log.lists))
	}

	m = typeText(m, "x")
	m = press(m, tea.KeyEnter)
	if m.editor != nil || log.last()[0].Condition.Value.Raw != "x" {
		t.Fatalf("expected edit to commit once text is present, got %+v", log.last())
	}
}

func TestEditor_ConnectorToggle(t *testing.T) {
	m, log := seededModel(t)

	// "Name contains a AND ..." puts the connector at columns 16-18.
	m = clickAt(m, 17, 0)
	if m.selected == nil || m.selected.Kind != TokenConnector {
		t.Fatalf("expected connector token, got %+v", m.selected)
	}
	m = press(m, tea.KeyEnter)
	if m.editor == nil || len(m.editor.options) != 2 || m.editor.highlight != 0 {
		t.Fatalf("expected AND/OR options with AND current, got %+v", m.editor)
	}

	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyEnter)

	if len(log.lists) != 1 {
		t.Fatalf("expected one change, got %d", len(log.lists))
	}
	list := log.last()
	if list[0].Connector != filter.ConnectorOr {
		t.Fatalf("expected OR on first expression, got %q", list[0].Connector)
	}
	if list[1].Connector != filter.ConnectorOr {
		t.Fatalf("other connectors must be untouched, got %q", list[1].Connector)
	}
}

func TestEditor_MultiValueEditSplitsOnSeparator(t *testing.T) {
	m, log := newTestModel(t, testSchema())

	m = typeText(m, "age")
	m = press(m, tea.KeyEnter)
	m = typeText(m, "between")
	m = press(m, tea.KeyEnter)
	m = typeText(m, "1")
	m = press(m, tea.KeyEnter)
	m = typeText(m, "5")
	m = press(m, tea.KeyEnter)

	m = press(m, tea.KeyLeft)
	m = press(m, tea.KeyEnter)
	if m.editor == nil || m.editor.input.Value() != "1,5" {
		t.Fatalf("expected joined slots in the editor, got %+v", m.editor)
	}

	m = pressN(m, tea.KeyBackspace, 3)
	m = typeText(m, "10, 20")
	m = press(m, tea.KeyEnter)

	v := log.last()[0].Condition.Value
	raws, ok := v.Raw.([]any)
	if !ok || len(raws) != 2 || raws[0] != float64(10) || raws[1] != float64(20) {
		t.Fatalf("expected re-split slots, got %#v", v.Raw)
	}
	if v.Display != "10,20" {
		t.Fatalf("unexpected display: %q", v.Display)
	}
}
