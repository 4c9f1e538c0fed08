package ui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// CustomInput is a bespoke value editor. Operators that name one in their
// CustomInput field hand the value step to it: the widget forwards messages
// and renders its view in place of the text input until the editor finishes
// through ConfirmValue or CancelCustomInput.
type CustomInput interface {
	// Init is called when the editor takes over the value step.
	Init() tea.Cmd

	// Update handles messages while the editor is active.
	Update(msg tea.Msg) (CustomInput, tea.Cmd)

	// View renders the editor in place of the value input line.
	View() string
}

// CustomInputFactory builds a custom editor for one value entry. current is
// the zero Value on first entry and the existing value when editing a
// committed token.
type CustomInputFactory func(field *filter.FieldConfig, op *filter.OperatorConfig, current filter.Value) CustomInput

// customDoneMsg ends the active custom editor.
type customDoneMsg struct {
	value filter.Value
	ok    bool
}

// ConfirmValue returns a command a custom editor issues to commit v as the
// entered value.
func ConfirmValue(v filter.Value) tea.Cmd {
	return func() tea.Msg {
		return customDoneMsg{value: v, ok: true}
	}
}

// CancelCustomInput returns a command a custom editor issues to abandon the
// value step without committing.
func CancelCustomInput() tea.Cmd {
	return func() tea.Msg {
		return customDoneMsg{}
	}
}
