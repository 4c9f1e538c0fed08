// Package machine implements the expression build state machine: the
// headless field -> operator -> value -> connector flow behind the widget.
// It holds a snapshot of the committed list plus the in-progress draft; every
// commit produces a fresh list and the draft never leaks into the committed
// list before the single atomic commit point.
package machine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// Step is where the build flow currently stands.
type Step int

const (
	// StepIdle means nothing is being built.
	StepIdle Step = iota
	// StepField means a field is being chosen.
	StepField
	// StepOperator means an operator is being chosen for the drafted field.
	StepOperator
	// StepValue means a value (or value slot) is being entered.
	StepValue
	// StepConnector means a connector to the next expression is being chosen.
	StepConnector
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepField:
		return "field"
	case StepOperator:
		return "operator"
	case StepValue:
		return "value"
	case StepConnector:
		return "connector"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	// ErrNoSchema is returned when the machine has no schema to build
	// against.
	ErrNoSchema = errors.New("no schema configured")
	// ErrWrongStep is returned when an operation does not apply to the
	// current step.
	ErrWrongStep = errors.New("operation does not apply to the current step")
)

// draft is the in-progress expression. The field config is a copy, so a
// schema edit mid-build cannot rewrite the draft.
type draft struct {
	field    *filter.FieldConfig
	operator *filter.OperatorConfig
	slots    []filter.Value
}

// Machine drives one build flow over a schema and a committed list snapshot.
// Not safe for concurrent use; the widget runs it inside the event loop.
type Machine struct {
	schema  *filter.Schema
	exprs   []filter.Expression
	step    Step
	draft   draft
	pending filter.Connector
}

// New builds a machine over the given schema with an empty list.
func New(s *filter.Schema) *Machine {
	return &Machine{schema: s}
}

// SetSchema replaces the schema and cancels any in-progress build.
func (m *Machine) SetSchema(s *filter.Schema) {
	m.schema = s
	m.Cancel()
}

// Schema returns the schema the machine builds against.
func (m *Machine) Schema() *filter.Schema {
	return m.schema
}

// SetExpressions replaces the committed list snapshot. The build state is
// left alone so a host-driven list update does not interrupt typing.
func (m *Machine) SetExpressions(list []filter.Expression) {
	m.exprs = filter.Normalize(list)
}

// Expressions returns the committed list snapshot.
func (m *Machine) Expressions() []filter.Expression {
	return m.exprs
}

// Step returns the current build step.
func (m *Machine) Step() Step {
	return m.step
}

// Focus starts a build flow. Focusing an already-active machine is a no-op.
func (m *Machine) Focus() {
	if m.step == StepIdle {
		m.step = StepField
	}
}

// Cancel abandons the in-progress draft and any pending connector without
// touching the committed list.
func (m *Machine) Cancel() {
	m.step = StepIdle
	m.draft = draft{}
	m.pending = filter.ConnectorNone
}

// AtCapacity reports whether the committed list has reached the schema's
// expression cap.
func (m *Machine) AtCapacity() bool {
	return m.schema != nil && m.schema.AtCapacity(len(m.exprs))
}

// CandidateFields returns the fields an expression can currently be built
// on: declared fields in schema order, minus single-use fields the list
// already contains.
func (m *Machine) CandidateFields() []filter.FieldConfig {
	if m.schema == nil {
		return nil
	}
	counts := filter.CountByField(m.exprs)
	out := make([]filter.FieldConfig, 0, len(m.schema.Fields))
	for _, f := range m.schema.Fields {
		if counts[f.Key] > 0 && !f.MultipleAllowed() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ChooseField picks the candidate field with the given key. When the key
// names no candidate and the schema allows freeform fields, the key becomes
// a new ad hoc field.
func (m *Machine) ChooseField(key string) error {
	if m.step != StepField {
		return ErrWrongStep
	}
	if m.schema == nil {
		return ErrNoSchema
	}
	for _, f := range m.CandidateFields() {
		if f.Key == key {
			chosen := f
			m.draft.field = &chosen
			m.step = StepOperator
			return nil
		}
	}
	if m.schema.AllowsFreeform() {
		return m.CreateField(key)
	}
	return fmt.Errorf("unknown field %q", key)
}

// CreateField drafts an ad hoc field from the typed name. The schema must
// allow freeform fields and the name must pass the freeform name check.
func (m *Machine) CreateField(name string) error {
	if m.step != StepField {
		return ErrWrongStep
	}
	if !m.schema.AllowsFreeform() {
		return errors.New("schema does not allow creating fields")
	}
	if err := m.schema.Freeform.CheckName(name); err != nil {
		return err
	}
	f := m.schema.Freeform.FieldFor(name)
	m.draft.field = &f
	m.step = StepOperator
	return nil
}

// Field returns the drafted field, or nil before one is chosen.
func (m *Machine) Field() *filter.FieldConfig {
	return m.draft.field
}

// ChooseOperator picks one of the drafted field's operators by key.
func (m *Machine) ChooseOperator(key string) error {
	if m.step != StepOperator {
		return ErrWrongStep
	}
	op := m.draft.field.Operator(key)
	if op == nil {
		return fmt.Errorf("field %q has no operator %q", m.draft.field.Key, key)
	}
	m.draft.operator = op
	m.draft.slots = nil
	m.step = StepValue
	return nil
}

// Operator returns the drafted operator, or nil before one is chosen.
func (m *Machine) Operator() *filter.OperatorConfig {
	return m.draft.operator
}

// RequiresValue reports whether the drafted field/operator pair demands a
// non-empty value before commit.
func (m *Machine) RequiresValue() bool {
	if m.draft.field == nil {
		return true
	}
	return m.draft.field.RequiresValue(m.draft.operator)
}

// MultiValue returns the drafted operator's multi-value configuration, or
// nil for single-value operators.
func (m *Machine) MultiValue() *filter.MultiValueConfig {
	if m.draft.operator == nil {
		return nil
	}
	return m.draft.operator.MultiValue
}

// SlotIndex returns which multi-value slot is being entered.
func (m *Machine) SlotIndex() int {
	return len(m.draft.slots)
}

// SlotLabel returns the prompt label for the slot being entered.
func (m *Machine) SlotLabel() string {
	return m.MultiValue().SlotLabel(m.SlotIndex())
}

// ValueFromInput builds a Value from typed text using the drafted field's
// parsing and coercion rules.
func (m *Machine) ValueFromInput(text string) filter.Value {
	return filter.ValueFromInput(m.draft.field, strings.TrimSpace(text))
}

// SuggestRequest assembles the request the drafted field's autocompleter is
// asked with.
func (m *Machine) SuggestRequest(input string) filter.SuggestRequest {
	return filter.SuggestRequest{
		Input:       input,
		Field:       m.draft.field,
		Operator:    m.draft.operator,
		Expressions: m.exprs,
		Schema:      m.schema,
	}
}

// Commit appends the drafted expression with the given value to the list and
// returns the new list. The pending connector is written to the previous
// expression in the same change, so the host sees one atomic update. After
// commit the machine moves to the connector step, or back to idle when the
// list is at capacity.
func (m *Machine) Commit(v filter.Value) ([]filter.Expression, error) {
	if m.step != StepValue {
		return nil, ErrWrongStep
	}
	if m.MultiValue() != nil {
		return nil, errors.New("multi-value operators commit through slots")
	}
	if isEmpty(v) && m.RequiresValue() {
		return nil, fmt.Errorf("field %q requires a value", m.draft.field.Key)
	}
	return m.commit(v), nil
}

// CommitPrepared appends the draft with an externally assembled value,
// bypassing slot entry. Custom value inputs commit through this path and are
// responsible for producing the complete value, slots included.
func (m *Machine) CommitPrepared(v filter.Value) ([]filter.Expression, error) {
	if m.step != StepValue {
		return nil, ErrWrongStep
	}
	if isEmpty(v) && m.RequiresValue() {
		return nil, fmt.Errorf("field %q requires a value", m.draft.field.Key)
	}
	return m.commit(v), nil
}

// CommitSlot enters one multi-value slot. When the slot count is fixed and
// this was the last slot, the whole expression commits and the new list is
// returned with done = true.
func (m *Machine) CommitSlot(v filter.Value) (list []filter.Expression, done bool, err error) {
	if m.step != StepValue {
		return nil, false, ErrWrongStep
	}
	mv := m.MultiValue()
	if mv == nil {
		return nil, false, errors.New("operator takes a single value")
	}
	if isEmpty(v) {
		return nil, false, fmt.Errorf("slot %d requires a value", m.SlotIndex())
	}
	m.draft.slots = append(m.draft.slots, v)
	if mv.Count > 0 && len(m.draft.slots) == mv.Count {
		return m.commitSlots(), true, nil
	}
	return nil, false, nil
}

// FinishSlots commits an open-ended multi-value draft with the slots entered
// so far. At least one slot must be present.
func (m *Machine) FinishSlots() ([]filter.Expression, error) {
	if m.step != StepValue {
		return nil, ErrWrongStep
	}
	mv := m.MultiValue()
	if mv == nil {
		return nil, errors.New("operator takes a single value")
	}
	if len(m.draft.slots) == 0 {
		return nil, errors.New("enter at least one value")
	}
	if mv.Count > 0 && len(m.draft.slots) != mv.Count {
		return nil, fmt.Errorf("expected %d values, got %d", mv.Count, len(m.draft.slots))
	}
	return m.commitSlots(), nil
}

func (m *Machine) commitSlots() []filter.Expression {
	v := filter.MultiValue(m.draft.slots, m.MultiValue().SeparatorOrDefault())
	return m.commit(v)
}

func (m *Machine) commit(v filter.Value) []filter.Expression {
	list := m.exprs
	if m.pending != filter.ConnectorNone && len(list) > 0 {
		last := list[len(list)-1].WithConnector(m.pending)
		list = filter.ReplaceAt(list, len(list)-1, last)
	}
	list = filter.Append(list, filter.Expression{
		Condition: filter.Condition{
			Field:    m.draft.field.Ref(),
			Operator: m.draft.operator.Ref(),
			Value:    v,
		},
	})

	m.exprs = list
	m.draft = draft{}
	m.pending = filter.ConnectorNone
	if m.AtCapacity() {
		m.step = StepIdle
	} else {
		m.step = StepConnector
	}
	return list
}

// ChooseConnector records the connector joining the last committed
// expression to the next one and returns to the field step. The connector
// stays pending until the next commit writes it.
func (m *Machine) ChooseConnector(c filter.Connector) error {
	if m.step != StepConnector {
		return ErrWrongStep
	}
	if c != filter.ConnectorAnd && c != filter.ConnectorOr {
		return fmt.Errorf("unknown connector %q", string(c))
	}
	m.pending = c
	m.step = StepField
	return nil
}

// PendingConnector returns the connector chosen for the next commit, or
// ConnectorNone.
func (m *Machine) PendingConnector() filter.Connector {
	return m.pending
}

func isEmpty(v filter.Value) bool {
	if v.Raw == nil {
		return v.Display == "" && v.Serialized == ""
	}
	if s, ok := v.Raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
