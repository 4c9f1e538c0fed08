package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

// Update routes one event through the widget. The value receiver and
// returned copy follow the bubbles component convention, so a host embeds
// the widget the same way it embeds a text input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SuggestDebounceMsg:
		return m, m.handleDebounce(msg)
	case SuggestResultMsg:
		m.handleResult(msg)
		return m, nil
	case customDoneMsg:
		return m.finishCustom(msg)
	case tea.MouseClickMsg:
		return m.handleClick(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.forward(msg)
}

// forward hands a message to whichever input is live: the custom value
// widget, the token editor's input, or the main input. Cursor blink ticks
// travel this path.
func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.custom != nil:
		m.custom, cmd = m.custom.Update(msg)
	case m.editor != nil && m.editor.target.Kind == TokenValue:
		m.editor.input, cmd = m.editor.input.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	// A custom value input owns the keyboard until it confirms or cancels.
	if m.custom != nil {
		return m.forward(msg)
	}
	if m.editor != nil {
		return m.handleEditorKey(msg)
	}

	switch msg.String() {
	case "esc":
		switch {
		case m.selected != nil || m.selectAll:
			m.clearSelection()
		case m.machine.Step() != machine.StepIdle:
			m.cancelDraft()
		}
		m.clearStatus()
		return m, nil

	case "enter":
		return m.handleEnter()

	case "up":
		m.moveHighlight(-1)
		return m, nil

	case "down":
		m.moveHighlight(1)
		return m, nil

	case "left":
		if m.selected != nil || m.selectAll {
			m.selectPrev()
			return m, nil
		}
		if m.atRest() && len(m.tokens()) > 0 {
			m.selectPrev()
			return m, nil
		}
		return m.forward(msg)

	case "right":
		if m.selected != nil || m.selectAll {
			m.selectNext()
			return m, nil
		}
		return m.forward(msg)

	case "backspace":
		if m.selected != nil || m.selectAll {
			m.deleteSelected()
			return m, nil
		}
		// On an empty input the first backspace selects the last token,
		// the next one deletes it.
		if m.input.Value() == "" && m.atRest() && len(m.tokens()) > 0 {
			m.selectPrev()
			return m, nil
		}
		return m.forward(msg)

	case "delete":
		if m.selected != nil || m.selectAll {
			m.deleteSelected()
			return m, nil
		}
		return m.forward(msg)

	case "ctrl+a":
		if m.input.Value() == "" && len(m.tokens()) > 0 {
			m.cancelDraft()
			m.selected = nil
			m.selectAll = true
			m.announceText(fmt.Sprintf("selected all %d filters", len(m.machine.Expressions())))
			return m, nil
		}
		return m.forward(msg)

	case "tab":
		return m.adoptHighlighted()
	}

	// Everything else is text entry. Typing clears any token selection and
	// restarts the build flow when the machine is idle.
	if m.selected != nil || m.selectAll {
		m.clearSelection()
	}
	if m.machine.Step() == machine.StepIdle && !m.machine.AtCapacity() {
		m.machine.Focus()
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	if m.machine.Step() == machine.StepIdle && m.machine.AtCapacity() {
		m.setStatusError("filter limit reached")
		return m, cmd
	}
	m.clearStatus()
	return m, tea.Batch(cmd, m.refreshSuggestions())
}

// handleEnter dispatches Enter by the widget's current mode: open an editor
// on a selected token, or advance the build flow one step.
func (m Model) handleEnter() (Model, tea.Cmd) {
	if m.selectAll {
		return m, nil
	}
	if m.selected != nil {
		c := *m.selected
		if !c.Kind.Editable() {
			return m, nil
		}
		return m, m.openEditor(c)
	}
	switch m.machine.Step() {
	case machine.StepField:
		return m.chooseField()
	case machine.StepOperator:
		return m.chooseOperator()
	case machine.StepValue:
		return m.commitValue()
	case machine.StepConnector:
		return m.chooseConnector()
	}
	return m, nil
}

func (m Model) chooseField() (Model, tea.Cmd) {
	s, ok := m.highlighted()
	if !ok {
		return m, nil
	}
	var err error
	if s.Group == machine.CreateGroup {
		err = m.machine.CreateField(strings.TrimSpace(m.input.Value()))
	} else {
		err = m.machine.ChooseField(s.Key)
	}
	if err != nil {
		m.setStatusError(err.Error())
		return m, nil
	}
	m.clearStatus()
	m.input.SetValue("")
	m.announceText(fmt.Sprintf("%s, choose an operator", fieldText(m.machine.Field().Ref())))
	return m, m.refreshSuggestions()
}

func (m Model) chooseOperator() (Model, tea.Cmd) {
	s, ok := m.highlighted()
	if !ok {
		return m, nil
	}
	if err := m.machine.ChooseOperator(s.Key); err != nil {
		m.setStatusError(err.Error())
		return m, nil
	}
	m.clearStatus()
	m.input.SetValue("")

	op := m.machine.Operator()
	if op.CustomInput != "" {
		if factory, ok := m.customInputs[op.CustomInput]; ok {
			m.clearSuggestions()
			m.custom = factory(m.machine.Field(), op, filter.Value{})
			return m, m.custom.Init()
		}
		// An unregistered custom input name falls back to plain text entry.
	}
	m.valueSource = completerFor(m.machine.Field())
	m.announceText(fmt.Sprintf("%s, enter a value", s.Label))
	return m, m.refreshSuggestions()
}

// commitValue handles Enter on the value step. A highlighted suggestion wins
// over typed text; with neither, an empty value commits only when the
// field/operator pair does not require one.
func (m Model) commitValue() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	s, picked := m.highlighted()

	var v filter.Value
	switch {
	case picked:
		v = filter.ValueFromSuggestion(s)
	case text != "":
		v = m.machine.ValueFromInput(text)
	}

	if m.machine.MultiValue() != nil {
		return m.commitSlot(v, picked || text != "")
	}

	list, err := m.machine.Commit(v)
	if err != nil {
		m.setStatusError(err.Error())
		return m, nil
	}
	m.finishCommit(list)
	return m, m.refreshSuggestions()
}

// commitSlot enters one multi-value slot, finishing the expression when the
// slot count is met or the user ends an open-ended list with an empty Enter.
func (m Model) commitSlot(v filter.Value, hasValue bool) (Model, tea.Cmd) {
	mv := m.machine.MultiValue()
	if !hasValue {
		if mv.Count <= 0 && m.machine.SlotIndex() > 0 {
			list, err := m.machine.FinishSlots()
			if err != nil {
				m.setStatusError(err.Error())
				return m, nil
			}
			m.finishCommit(list)
			return m, m.refreshSuggestions()
		}
		m.setStatusError(slotPrompt(mv, m.machine.SlotIndex()))
		return m, nil
	}

	list, done, err := m.machine.CommitSlot(v)
	if err != nil {
		m.setStatusError(err.Error())
		return m, nil
	}
	if done {
		m.finishCommit(list)
		return m, m.refreshSuggestions()
	}
	m.clearStatus()
	m.input.SetValue("")
	return m, m.refreshSuggestions()
}

func slotPrompt(mv *filter.MultiValueConfig, i int) string {
	if label := mv.SlotLabel(i); label != "" {
		return fmt.Sprintf("enter %s", label)
	}
	return fmt.Sprintf("enter value %d", i+1)
}

func (m Model) chooseConnector() (Model, tea.Cmd) {
	s, ok := m.highlighted()
	if !ok {
		return m, nil
	}
	c, valid := filter.ParseConnector(s.Key)
	if !valid {
		return m, nil
	}
	if err := m.machine.ChooseConnector(c); err != nil {
		m.setStatusError(err.Error())
		return m, nil
	}
	m.clearStatus()
	m.input.SetValue("")
	m.announceText(fmt.Sprintf("%s, choose a field", s.Label))
	return m, m.refreshSuggestions()
}

// finishCommit clears the per-draft machinery after the machine accepted a
// commit, and hands the new list to the host as one atomic change.
func (m *Model) finishCommit(list []filter.Expression) {
	m.input.SetValue("")
	m.valueSource = nil
	m.cancelFetch()
	m.clearSuggestions()
	m.clearStatus()
	what := "added filter"
	if len(list) > 0 {
		what = fmt.Sprintf("added %s filter", fieldText(list[len(list)-1].Condition.Field))
	}
	m.notifyChange(list, what)
}

// adoptHighlighted copies the highlighted suggestion's label into the input
// without committing anything.
func (m Model) adoptHighlighted() (Model, tea.Cmd) {
	if m.selected != nil || m.selectAll || len(m.suggestions) == 0 {
		return m, nil
	}
	idx := m.highlight
	if idx < 0 {
		idx = 0
	}
	label := m.suggestions[idx].Label
	if label == "" {
		label = m.suggestions[idx].Key
	}
	m.input.SetValue(label)
	m.input.SetCursor(len(label))
	return m, m.refreshSuggestions()
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.cancelEditor()
		return m, nil
	case "enter":
		m.confirmEditor()
		return m, nil
	case "up":
		m.editor.moveHighlight(-1)
		return m, nil
	case "down":
		m.editor.moveHighlight(1)
		return m, nil
	}
	if m.editor.target.Kind == TokenValue {
		var cmd tea.Cmd
		m.editor.input, cmd = m.editor.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// finishCustom consumes the done signal a custom value input emits through
// ConfirmValue or CancelCustomInput.
func (m Model) finishCustom(msg customDoneMsg) (Model, tea.Cmd) {
	if m.custom == nil {
		return m, nil
	}

	// Editing an existing value token.
	if m.editor != nil {
		ed := m.editor
		if !msg.ok {
			m.cancelEditor()
			return m, nil
		}
		list := m.machine.Expressions()
		if ed.target.Expr < 0 || ed.target.Expr >= len(list) {
			m.closeEditor(nil)
			return m, nil
		}
		expr := list[ed.target.Expr]
		expr.Condition.Value = msg.value
		m.commitEdit(ed.target.Expr, expr, fmt.Sprintf("changed %s to %s", fieldText(expr.Condition.Field), valueText(msg.value)))
		return m, nil
	}

	// Building: the custom input owned the value step.
	m.custom = nil
	if !msg.ok {
		m.cancelDraft()
		m.resumeBuild()
		return m, nil
	}
	list, err := m.machine.CommitPrepared(msg.value)
	if err != nil {
		m.setStatusError(err.Error())
		m.cancelDraft()
		m.resumeBuild()
		return m, nil
	}
	m.finishCommit(list)
	return m, m.refreshSuggestions()
}

// handleClick hit-tests a left click against the token row. Coordinates are
// widget-local; hosts rendering the widget at an offset translate before
// forwarding. A second click on the same token inside the double-click
// window opens the editor for editable kinds.
func (m Model) handleClick(msg tea.MouseClickMsg) (Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || !m.focused {
		return m, nil
	}
	if m.editor != nil || m.custom != nil {
		return m, nil
	}
	toks := m.tokens()
	if len(toks) == 0 || msg.Y != 0 {
		return m, nil
	}
	i := tokenAt(tokenSpans(toks), msg.X)
	if i < 0 {
		return m, nil
	}
	c := cursor{Expr: toks[i].Expr, Kind: toks[i].Kind}

	now := m.now()
	if m.lastClick.set && m.lastClick.tok == c && now.Sub(m.lastClick.at) <= doubleClickWindow {
		m.lastClick = clickState{}
		if !c.Kind.Editable() {
			return m, nil
		}
		m.selectToken(c)
		return m, m.openEditor(c)
	}
	m.lastClick = clickState{at: now, tok: c, set: true}
	m.selectToken(c)
	m.announceText(fmt.Sprintf("selected %s token", c.Kind))
	return m, nil
}

func (m *Model) setStatusError(text string) {
	m.statusMsg = text
	m.statusErr = true
	m.announceText(text)
}

func (m *Model) clearStatus() {
	m.statusMsg = ""
	m.statusErr = false
}