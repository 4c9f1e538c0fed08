// Package ui implements the filter builder widget: a Bubble Tea component
// that walks field, operator, and value entry against a filter.Schema and
// hands every committed change back to the host as a fresh expression list.
//
// The widget follows the controlled-component contract: the host owns the
// expression list, the widget reports mutations through OnChange and accepts
// replacements through SetValue. Build state, token selection, and inline
// token editing are widget-local and never touch the committed list except
// at their single commit point.
package ui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/filtx/internal/machine"
	"github.com/oakwood-commons/filtx/pkg/autocomplete"
	"github.com/oakwood-commons/filtx/pkg/filter"
	"github.com/oakwood-commons/filtx/pkg/validation"
)

const (
	// DefaultWidth is used until the host calls SetWidth.
	DefaultWidth = 80
	// DefaultMaxVisible is the dropdown window height in rows.
	DefaultMaxVisible = 6
	// DefaultPlaceholder prompts for the first keystroke.
	DefaultPlaceholder = "Type to filter..."

	doubleClickWindow = 400 * time.Millisecond
	inputCharLimit    = 256
	promptMarker      = "❯ "
)

// cursor addresses one token in the committed-expression row.
type cursor struct {
	Expr int
	Kind TokenKind
}

type clickState struct {
	at  time.Time
	tok cursor
	set bool
}

// Model is the filter builder widget. Create one with New, embed it in a
// Bubble Tea model, and forward messages to Update.
type Model struct {
	machine *machine.Machine
	input   textinput.Model

	onChange func([]filter.Expression)
	onError  func([]validation.Error)
	announce func(string)

	theme      Theme
	noColor    bool
	width      int
	maxVisible int
	debounce   time.Duration

	focused bool

	// dropdown state
	suggestions []filter.Suggestion
	highlight   int // -1 on the value step means the typed text is active
	dropStart   int

	// suggestion fetch state
	seq         int
	fetchCancel context.CancelFunc
	valueSource filter.Autocompleter

	// token layer
	selected  *cursor
	selectAll bool
	editor    *tokenEditor

	// custom value input
	custom CustomInput

	customInputs map[string]CustomInputFactory

	statusMsg string
	statusErr bool

	now       func() time.Time
	lastClick clickState
}

// Option configures a Model at construction time.
type Option func(*Model)

// WithExpressions seeds the widget with an existing committed list.
func WithExpressions(list []filter.Expression) Option {
	return func(m *Model) { m.machine.SetExpressions(list) }
}

// WithOnChange registers the committed-mutation callback. It receives the
// complete new list on every append, edit confirm, delete, and clear.
func WithOnChange(fn func([]filter.Expression)) Option {
	return func(m *Model) { m.onChange = fn }
}

// WithOnError registers the validation callback. It fires when a committed
// mutation or a SetValue leaves the list invalid.
func WithOnError(fn func([]validation.Error)) Option {
	return func(m *Model) { m.onError = fn }
}

// WithAnnounce registers a screen-reader live-region trigger. The widget
// calls it with short descriptions of committed changes and errors.
func WithAnnounce(fn func(string)) Option {
	return func(m *Model) { m.announce = fn }
}

// WithTheme overrides the default dark theme.
func WithTheme(th Theme) Option {
	return func(m *Model) { m.theme = th }
}

// WithNoColor strips all color styling. Selection keeps inverse video.
func WithNoColor() Option {
	return func(m *Model) { m.noColor = true }
}

// WithPlaceholder overrides the input placeholder text.
func WithPlaceholder(s string) Option {
	return func(m *Model) { m.input.Placeholder = s }
}

// WithWidth sets the initial render width.
func WithWidth(w int) Option {
	return func(m *Model) { m.setWidth(w) }
}

// WithMaxVisible caps the dropdown window height.
func WithMaxVisible(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxVisible = n
		}
	}
}

// WithSuggestDebounce delays value-step suggestion fetches after each
// keystroke. Zero fetches on the next tick. Completers that debounce
// internally (autocomplete.Async) usually want this left at zero.
func WithSuggestDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// WithCustomInput registers a custom value editor under the name operators
// reference in their CustomInput field.
func WithCustomInput(name string, f CustomInputFactory) Option {
	return func(m *Model) { m.customInputs[name] = f }
}

// New builds a widget over the given schema.
func New(schema *filter.Schema, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = DefaultPlaceholder
	ti.CharLimit = inputCharLimit

	m := Model{
		machine:      machine.New(schema),
		input:        ti,
		theme:        DefaultTheme(),
		maxVisible:   DefaultMaxVisible,
		highlight:    -1,
		customInputs: map[string]CustomInputFactory{},
		now:          time.Now,
	}
	m.setWidth(DefaultWidth)
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Value returns the committed expression list.
func (m Model) Value() []filter.Expression {
	return m.machine.Expressions()
}

// SetValue replaces the committed list, normalizing connectors. Build state,
// selection, and any open editor are discarded; OnError fires when the new
// list is invalid. OnChange does not fire for host-initiated replacement.
func (m *Model) SetValue(list []filter.Expression) {
	m.machine.SetExpressions(list)
	m.machine.Cancel()
	m.resetTransient()
	m.resumeBuild()
	res := validation.ValidateExpressions(m.machine.Expressions(), m.machine.Schema())
	m.applyValidation(res)
}

// Schema returns the active schema.
func (m Model) Schema() *filter.Schema {
	return m.machine.Schema()
}

// SetSchema swaps the schema. In-progress build state is discarded; the
// committed list is kept and revalidated against the new schema.
func (m *Model) SetSchema(s *filter.Schema) {
	m.machine.SetSchema(s)
	m.resetTransient()
	m.resumeBuild()
	res := validation.ValidateExpressions(m.machine.Expressions(), m.machine.Schema())
	m.applyValidation(res)
}

// Focus puts the widget into build mode and starts cursor blink.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	m.machine.Focus()
	return tea.Batch(m.input.Focus(), m.refreshSuggestions())
}

// Blur leaves build mode. The in-progress draft and any pending connector
// are discarded; the committed list is untouched.
func (m *Model) Blur() {
	m.focused = false
	m.machine.Cancel()
	m.input.Blur()
	m.input.SetValue("")
	m.resetTransient()
}

// Focused reports whether the widget is accepting input.
func (m Model) Focused() bool {
	return m.focused
}

// SetWidth resizes the widget.
func (m *Model) SetWidth(w int) {
	m.setWidth(w)
}

func (m *Model) setWidth(w int) {
	if w < 20 {
		w = 20
	}
	m.width = w
	m.input.SetWidth(w - runewidth.StringWidth(promptMarker))
}

// SetTheme swaps the color theme.
func (m *Model) SetTheme(th Theme) {
	m.theme = th
}

// Step exposes the build step for status rendering and tests.
func (m Model) Step() machine.Step {
	return m.machine.Step()
}

// Idle reports whether the widget has nothing in flight: no draft, no
// selected token, no open editor, and an empty input. Hosts can use it to
// decide whether Escape should leave the widget entirely.
func (m Model) Idle() bool {
	return m.machine.Step() == machine.StepIdle &&
		m.selected == nil && !m.selectAll &&
		m.editor == nil && m.custom == nil &&
		m.input.Value() == ""
}

// Init satisfies the Bubble Tea component convention.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// resetTransient drops everything that is not the committed list: typed
// text, dropdown, selection, editor, custom input, and any in-flight fetch.
func (m *Model) resetTransient() {
	m.input.SetValue("")
	m.clearSuggestions()
	m.selected = nil
	m.selectAll = false
	m.editor = nil
	m.custom = nil
	m.valueSource = nil
	m.cancelFetch()
	m.statusMsg = ""
	m.statusErr = false
	m.lastClick = clickState{}
}

func (m *Model) cancelFetch() {
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}
}

// notifyChange delivers a committed mutation to the host: OnChange with the
// new list, validation with OnError on failure, and an announcement.
func (m *Model) notifyChange(list []filter.Expression, what string) {
	if m.onChange != nil {
		m.onChange(list)
	}
	if what != "" {
		m.announceText(what)
	}
	res := validation.ValidateExpressions(list, m.machine.Schema())
	m.applyValidation(res)
}

func (m *Model) applyValidation(res validation.Result) {
	if res.Valid {
		m.statusMsg = ""
		m.statusErr = false
		return
	}
	m.statusMsg = res.Errors[0].Message
	m.statusErr = true
	if m.onError != nil {
		m.onError(res.Errors)
	}
	m.announceText("invalid filter: " + res.Errors[0].Message)
}

func (m *Model) announceText(s string) {
	if m.announce != nil && s != "" {
		m.announce(s)
	}
}

// completerFor resolves the suggestion source for a field's value step: the
// field's own Autocompleter when set, else its fixed Options wrapped in an
// enum completer, else nothing.
func completerFor(f *filter.FieldConfig) filter.Autocompleter {
	if f == nil {
		return nil
	}
	if f.Values != nil {
		return f.Values
	}
	if len(f.Options) > 0 {
		return autocomplete.NewEnum(f.Options)
	}
	return nil
}
