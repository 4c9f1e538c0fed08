package ui

import (
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

// testOps resolves builtin operator keys, failing loudly on a typo.
func testOps(keys ...string) []filter.OperatorConfig {
	ops, ok := filter.BuiltinOperators(keys...)
	if !ok {
		panic("unknown builtin operator key in test schema")
	}
	return ops
}

// testSchema covers the common field shapes: plain string, enum with fixed
// options, and number with single- and multi-value operators.
func testSchema() *filter.Schema {
	return &filter.Schema{
		Fields: []filter.FieldConfig{
			{
				Key:         "name",
				Label:       "Name",
				Type:        filter.FieldString,
				Description: "display name",
				Operators:   testOps(filter.OpContains, filter.OpEquals, filter.OpIsSet),
			},
			{
				Key:       "status",
				Label:     "Status",
				Type:      filter.FieldEnum,
				Group:     "meta",
				Options:   []filter.Suggestion{{Key: "active", Label: "Active"}, {Key: "archived", Label: "Archived"}},
				Operators: testOps(filter.OpEquals, filter.OpIn),
			},
			{
				Key:       "age",
				Label:     "Age",
				Type:      filter.FieldNumber,
				Operators: testOps(filter.OpGreaterThan, filter.OpBetween),
			},
		},
	}
}

func freeformSchema() *filter.Schema {
	s := testSchema()
	s.Freeform = &filter.FreeformConfig{Allow: true}
	return s
}

// wideSchema builds n string fields f0..f(n-1), for dropdown windowing.
func wideSchema(n int) *filter.Schema {
	s := &filter.Schema{}
	for i := 0; i < n; i++ {
		s.Fields = append(s.Fields, filter.FieldConfig{
			Key:       fmt.Sprintf("f%d", i),
			Type:      filter.FieldString,
			Operators: testOps(filter.OpEquals),
		})
	}
	return s
}

// changeLog records every OnChange delivery.
type changeLog struct {
	lists [][]filter.Expression
}

func (c *changeLog) record(list []filter.Expression) {
	c.lists = append(c.lists, list)
}

func (c *changeLog) last() []filter.Expression {
	if len(c.lists) == 0 {
		return nil
	}
	return c.lists[len(c.lists)-1]
}

// newTestModel builds a focused widget over the schema with changes
// recorded. Commands are dropped; tests drive async paths explicitly.
func newTestModel(t *testing.T, s *filter.Schema, opts ...Option) (Model, *changeLog) {
	t.Helper()
	log := &changeLog{}
	opts = append([]Option{WithOnChange(log.record), WithNoColor()}, opts...)
	m := New(s, opts...)
	m.Focus()
	return m, log
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return m
}

func press(m Model, code rune) Model {
	m, _ = m.Update(tea.KeyPressMsg{Code: code})
	return m
}

func pressN(m Model, code rune, n int) Model {
	for i := 0; i < n; i++ {
		m = press(m, code)
	}
	return m
}

// deliverSuggestions runs the value-step debounce tick and fetch to
// completion, as the program loop would.
func deliverSuggestions(t *testing.T, m Model) Model {
	t.Helper()
	m2, cmd := m.Update(SuggestDebounceMsg{Seq: m.seq, Input: m.input.Value()})
	if cmd == nil {
		return m2
	}
	msg := cmd()
	m3, _ := m2.Update(msg)
	return m3
}

// buildExpression walks one full field/operator/value flow with typed text.
func buildExpression(t *testing.T, m Model, field, operator, value string) Model {
	t.Helper()
	m = typeText(m, field)
	m = press(m, tea.KeyEnter)
	if m.Step() != machine.StepOperator {
		t.Fatalf("after field %q expected operator step, got %v", field, m.Step())
	}
	m = typeText(m, operator)
	m = press(m, tea.KeyEnter)
	if m.Step() != machine.StepValue {
		t.Fatalf("after operator %q expected value step, got %v", operator, m.Step())
	}
	m = typeText(m, value)
	m = press(m, tea.KeyEnter)
	return m
}

// clickAt sends a left click on widget-local coordinates.
func clickAt(m Model, x, y int) Model {
	m, _ = m.Update(tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft})
	return m
}

// fixedClock returns a controllable now() for double-click tests.
func fixedClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	return func() time.Time { return current }, func(d time.Duration) { current = current.Add(d) }
}