package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// tokenEditor is the inline edit sub-state for one committed token. Operator
// and connector tokens edit by picking from a short list; value tokens edit
// through a pre-populated text input or the operator's custom editor. Enter
// confirms and fires OnChange with the mutated list; Escape cancels with no
// OnChange.
type tokenEditor struct {
	target    cursor
	input     textinput.Model     // value editing
	options   []filter.Suggestion // operator/connector alternatives
	highlight int
}

// fieldConfigFor resolves the config behind a committed field reference.
// Freeform fields are rebuilt from the freeform config; unknown keys get a
// minimal config so editing still works on lists the schema no longer
// matches.
func (m *Model) fieldConfigFor(ref filter.FieldRef) *filter.FieldConfig {
	s := m.machine.Schema()
	if s != nil {
		if f := s.Field(ref.Key); f != nil {
			return f
		}
		if ref.Freeform && s.Freeform != nil {
			f := s.Freeform.FieldFor(ref.Key)
			return &f
		}
	}
	f := filter.FieldConfig{Key: ref.Key, Label: ref.Label, Type: ref.Type, Freeform: ref.Freeform}
	return &f
}

// openEditor enters the edit sub-state for the token under c. Field tokens
// are never editable. The returned command is the custom input's Init when
// the token's operator routes value entry through one.
func (m *Model) openEditor(c cursor) tea.Cmd {
	if !c.Kind.Editable() {
		return nil
	}
	list := m.machine.Expressions()
	if c.Expr < 0 || c.Expr >= len(list) {
		return nil
	}
	expr := list[c.Expr]
	fieldCfg := m.fieldConfigFor(expr.Condition.Field)

	ed := &tokenEditor{target: c, highlight: -1}
	switch c.Kind {
	case TokenOperator:
		ed.options = operatorOptions(fieldCfg)
		ed.highlight = indexOfKey(ed.options, expr.Condition.Operator.Key)
	case TokenConnector:
		ed.options = connectorOptions(m.machine.Schema())
		ed.highlight = indexOfKey(ed.options, string(expr.Connector))
	case TokenValue:
		opCfg := fieldCfg.Operator(expr.Condition.Operator.Key)
		if opCfg != nil && opCfg.CustomInput != "" {
			if factory, ok := m.customInputs[opCfg.CustomInput]; ok {
				m.cancelDraft()
				m.selected = nil
				m.custom = factory(fieldCfg, opCfg, expr.Condition.Value)
				m.editor = &tokenEditor{target: c}
				m.input.Blur()
				return m.custom.Init()
			}
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = inputCharLimit
		ti.SetWidth(m.width - runewidth.StringWidth(promptMarker))
		ti.SetValue(valueText(expr.Condition.Value))
		ti.SetCursor(len(ti.Value()))
		ti.Focus()
		ed.input = ti
	}
	if ed.highlight < 0 {
		ed.highlight = 0
	}
	m.cancelDraft()
	m.selected = nil
	m.editor = ed
	m.input.Blur()
	return nil
}

// confirmEditor applies the edit and hands the mutated list to the host.
func (m *Model) confirmEditor() {
	ed := m.editor
	if ed == nil {
		return
	}
	list := m.machine.Expressions()
	if ed.target.Expr < 0 || ed.target.Expr >= len(list) {
		m.closeEditor(nil)
		return
	}
	expr := list[ed.target.Expr]
	fieldCfg := m.fieldConfigFor(expr.Condition.Field)

	switch ed.target.Kind {
	case TokenOperator:
		if ed.highlight < 0 || ed.highlight >= len(ed.options) {
			m.closeEditor(nil)
			return
		}
		chosen := ed.options[ed.highlight]
		opCfg := fieldCfg.Operator(chosen.Key)
		if opCfg == nil {
			m.closeEditor(nil)
			return
		}
		expr.Condition.Operator = opCfg.Ref()
		m.commitEdit(ed.target.Expr, expr, fmt.Sprintf("changed operator to %s", operatorText(expr.Condition.Operator)))
	case TokenConnector:
		if ed.highlight < 0 || ed.highlight >= len(ed.options) {
			m.closeEditor(nil)
			return
		}
		c, _ := filter.ParseConnector(ed.options[ed.highlight].Key)
		m.commitEdit(ed.target.Expr, expr.WithConnector(c), fmt.Sprintf("changed connector to %s", c))
	case TokenValue:
		text := ed.input.Value()
		opCfg := fieldCfg.Operator(expr.Condition.Operator.Key)
		if strings.TrimSpace(text) == "" && fieldCfg.RequiresValue(opCfg) {
			m.statusMsg = fmt.Sprintf("%s requires a value", fieldText(expr.Condition.Field))
			m.statusErr = true
			return
		}
		expr.Condition.Value = parseEditedValue(fieldCfg, opCfg, text)
		m.commitEdit(ed.target.Expr, expr, fmt.Sprintf("changed %s to %s", fieldText(expr.Condition.Field), valueText(expr.Condition.Value)))
	}
}

// commitEdit swaps one expression and notifies the host.
func (m *Model) commitEdit(i int, expr filter.Expression, what string) {
	m.machine.SetExpressions(filter.ReplaceAt(m.machine.Expressions(), i, expr))
	m.closeEditor(nil)
	m.notifyChange(m.machine.Expressions(), what)
}

// cancelEditor leaves the edit sub-state with the list untouched and the
// selection back on the edited token.
func (m *Model) cancelEditor() {
	if m.editor == nil {
		return
	}
	target := m.editor.target
	m.closeEditor(&target)
}

// closeEditor tears down the editor. A non-nil reselect restores the token
// selection; nil returns focus to the main input.
func (m *Model) closeEditor(reselect *cursor) {
	m.editor = nil
	m.custom = nil
	m.selected = reselect
	m.input.Focus()
	if reselect == nil {
		m.resumeBuild()
	}
}

// parseEditedValue rebuilds a Value from edited text, splitting multi-value
// input on the operator separator.
func parseEditedValue(f *filter.FieldConfig, op *filter.OperatorConfig, text string) filter.Value {
	if op == nil || op.MultiValue == nil {
		return filter.ValueFromInput(f, strings.TrimSpace(text))
	}
	sep := op.MultiValue.SeparatorOrDefault()
	parts := strings.Split(text, sep)
	slots := make([]filter.Value, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		slots = append(slots, filter.ValueFromInput(f, p))
	}
	return filter.MultiValue(slots, sep)
}

func operatorOptions(f *filter.FieldConfig) []filter.Suggestion {
	out := make([]filter.Suggestion, 0, len(f.Operators))
	for _, op := range f.Operators {
		label := op.Label
		if label == "" {
			label = op.Key
		}
		out = append(out, filter.Suggestion{Key: op.Key, Label: label, Description: op.Symbol})
	}
	return out
}

func connectorOptions(s *filter.Schema) []filter.Suggestion {
	return []filter.Suggestion{
		{Key: string(filter.ConnectorAnd), Label: s.ConnectorLabel(filter.ConnectorAnd)},
		{Key: string(filter.ConnectorOr), Label: s.ConnectorLabel(filter.ConnectorOr)},
	}
}

func indexOfKey(items []filter.Suggestion, key string) int {
	for i, it := range items {
		if it.Key == key {
			return i
		}
	}
	return -1
}

// moveHighlight shifts the option highlight, clamping at both ends.
func (ed *tokenEditor) moveHighlight(delta int) {
	if len(ed.options) == 0 {
		return
	}
	h := ed.highlight + delta
	if h < 0 {
		h = 0
	}
	if h > len(ed.options)-1 {
		h = len(ed.options) - 1
	}
	ed.highlight = h
}
