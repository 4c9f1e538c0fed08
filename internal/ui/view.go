package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

// View renders the widget as newline-joined lines: token row (when any
// expression is committed), input line, dropdown rows, status line. The
// token row is always the first line, which keeps mouse hit-testing and
// rendering on the same coordinates.
func (m Model) View() string {
	var lines []string
	if row := m.viewTokens(); row != "" {
		lines = append(lines, row)
	}
	lines = append(lines, m.viewInput())
	lines = append(lines, m.viewDropdown()...)
	if status := m.viewStatus(); status != "" {
		lines = append(lines, status)
	}
	return strings.Join(lines, "\n")
}

// viewTokens renders the committed expressions as styled tokens. The widths
// come from the same span math the click handler uses. A token being edited
// renders its editor in place.
func (m Model) viewTokens() string {
	toks := m.tokens()
	if len(toks) == 0 {
		return ""
	}
	gap := strings.Repeat(" ", tokenGap)
	parts := make([]string, 0, len(toks))
	used := 0
	for i, t := range toks {
		if i > 0 {
			used += tokenGap
		}
		remaining := m.width - used
		if remaining <= 0 {
			break
		}
		if ed := m.editor; ed != nil && ed.target.Expr == t.Expr && ed.target.Kind == t.Kind {
			parts = append(parts, m.viewEditedToken(ed))
			used += runewidth.StringWidth(t.Text)
			continue
		}
		text := t.Text
		w := runewidth.StringWidth(text)
		if w > remaining {
			text = runewidth.Truncate(text, remaining, "…")
			w = runewidth.StringWidth(text)
		}
		parts = append(parts, m.tokenStyle(t).Render(text))
		used += w
	}
	return strings.Join(parts, gap)
}

// tokenStyle picks the theme color for a token kind. Selected tokens render
// inverse video on top of the color so selection survives every theme and
// no-color mode.
func (m Model) tokenStyle(t Token) lipgloss.Style {
	var st lipgloss.Style
	switch t.Kind {
	case TokenField:
		st = fgStyle(m.theme.FieldColor, m.noColor)
	case TokenOperator:
		st = fgStyle(m.theme.OperatorColor, m.noColor)
	case TokenValue:
		st = fgStyle(m.theme.ValueColor, m.noColor)
	case TokenConnector:
		st = fgStyle(m.theme.ConnectorColor, m.noColor)
	}
	if m.selectAll || (m.selected != nil && m.selected.Expr == t.Expr && m.selected.Kind == t.Kind) {
		st = st.Reverse(true)
	}
	return st
}

// viewEditedToken renders the in-place editor for the token under edit:
// a text input for values, the highlighted candidate for operator and
// connector picks.
func (m Model) viewEditedToken(ed *tokenEditor) string {
	if ed.target.Kind == TokenValue {
		return ed.input.View()
	}
	if ed.highlight < 0 || ed.highlight >= len(ed.options) {
		return ""
	}
	label := ed.options[ed.highlight].Label
	var st lipgloss.Style
	if ed.target.Kind == TokenOperator {
		st = fgStyle(m.theme.OperatorColor, m.noColor)
	} else {
		st = fgStyle(m.theme.ConnectorColor, m.noColor)
	}
	return st.Reverse(true).Render(label)
}

// viewInput renders the prompt and the main input, or the custom value
// widget when one owns the value step.
func (m Model) viewInput() string {
	if m.custom != nil {
		return m.custom.View()
	}
	prompt := fgStyle(m.theme.PromptColor, m.noColor).Render(promptMarker)
	return prompt + m.input.View()
}

// viewDropdown renders the suggestion rows, or the option rows of an open
// operator/connector editor.
func (m Model) viewDropdown() []string {
	if ed := m.editor; ed != nil {
		if ed.target.Kind == TokenValue {
			return nil
		}
		return m.viewRows(ed.options, ed.highlight, 0)
	}
	if m.custom != nil || len(m.suggestions) == 0 {
		return nil
	}
	return m.viewRows(m.suggestions, m.highlight, m.dropStart)
}

func (m Model) viewRows(items []filter.Suggestion, highlight, start int) []string {
	lo, hi := windowBounds(start, len(items), m.maxVisible)
	rows := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		rows = append(rows, m.viewRow(items[i], i == highlight))
	}
	return rows
}

// viewRow renders one suggestion line: marker, label, then description and
// group dimmed. The highlighted row renders inverse.
func (m Model) viewRow(s filter.Suggestion, current bool) string {
	prefix := "  "
	if current {
		prefix = "❯ "
	}

	extra := s.Description
	if s.Group != "" && s.Group != machine.CreateGroup {
		if extra != "" {
			extra += " "
		}
		extra += "(" + s.Group + ")"
	}

	budget := m.width - runewidth.StringWidth(prefix)
	if budget <= 0 {
		return strings.TrimRight(prefix, " ")
	}
	label := runewidth.Truncate(s.DisplayLabel(), budget, "…")
	labelW := runewidth.StringWidth(label)

	st := fgStyle(m.theme.SuggestionColor, m.noColor)
	if current {
		st = st.Reverse(true)
	}
	var b strings.Builder
	b.WriteString(st.Render(prefix + label))
	if extra != "" && budget-labelW > len(" - ")+1 {
		extra = runewidth.Truncate(extra, budget-labelW-len(" - "), "…")
		b.WriteString(fgStyle(m.theme.DescriptionColor, m.noColor).Render(" - " + extra))
	}
	return b.String()
}

// viewStatus renders the status line: errors and announcements first, the
// multi-value slot prompt as a fallback hint.
func (m Model) viewStatus() string {
	text := m.statusMsg
	isErr := m.statusErr
	if text == "" && m.editor == nil && m.custom == nil && m.machine.Step() == machine.StepValue {
		if mv := m.machine.MultiValue(); mv != nil {
			text = slotHint(mv, m.machine.SlotIndex())
			isErr = false
		}
	}
	if text == "" {
		return ""
	}
	text = runewidth.Truncate(text, m.width, "…")
	if isErr {
		return fgStyle(m.theme.ErrorColor, m.noColor).Render(text)
	}
	return fgStyle(m.theme.StatusColor, m.noColor).Render(text)
}

// slotHint names the slot being entered during multi-value flow.
func slotHint(mv *filter.MultiValueConfig, i int) string {
	label := mv.SlotLabel(i)
	switch {
	case label != "" && mv.Count > 0:
		return fmt.Sprintf("%s (%d of %d)", label, i+1, mv.Count)
	case label != "":
		return label
	case mv.Count > 0:
		return fmt.Sprintf("value %d of %d", i+1, mv.Count)
	default:
		return fmt.Sprintf("value %d, enter on empty input finishes", i+1)
	}
}