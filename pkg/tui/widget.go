package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/filtx/internal/ui"
	"github.com/oakwood-commons/filtx/pkg/filter"
	"github.com/oakwood-commons/filtx/pkg/validation"
)

// Widget is the embeddable filter builder component. It follows the Bubbles
// widget convention: create one with NewWidget, forward messages from your
// Update, render its View, and call Focus/Blur as focus moves.
//
//	w := tui.NewWidget(schema, tui.WithOnChange(apply))
//	w.SetWidth(width)
//	cmd := w.Focus()
type Widget = ui.Model

// Option configures a Widget at construction time.
type Option = ui.Option

// Theme defines the widget colors. See ResolveTheme for presets and files.
type Theme = ui.Theme

// ThemeConfig is the serializable form of a Theme, as stored in theme files.
type ThemeConfig = ui.ThemeConfig

// CustomInput replaces the value step for operators that declare a custom
// input name in the schema (date pickers, rating widgets, and the like).
type CustomInput = ui.CustomInput

// CustomInputFactory builds a CustomInput when the widget reaches the value
// step of a matching operator. current holds the stored value when an
// existing token is being edited, and the zero Value during a fresh build.
type CustomInputFactory = ui.CustomInputFactory

// NewWidget builds a filter widget directly from a schema and options. Use
// New when starting from a Config instead.
func NewWidget(schema *filter.Schema, opts ...Option) Widget {
	return ui.New(schema, opts...)
}

// WithExpressions seeds the widget with an existing committed list.
func WithExpressions(list []filter.Expression) Option {
	return ui.WithExpressions(list)
}

// WithOnChange registers the committed-list callback.
func WithOnChange(fn func([]filter.Expression)) Option {
	return ui.WithOnChange(fn)
}

// WithOnError registers the validation-error callback.
func WithOnError(fn func([]validation.Error)) Option {
	return ui.WithOnError(fn)
}

// WithAnnounce registers the screen-reader announcement callback.
func WithAnnounce(fn func(string)) Option {
	return ui.WithAnnounce(fn)
}

// WithTheme sets the widget colors.
func WithTheme(th Theme) Option {
	return ui.WithTheme(th)
}

// WithNoColor strips all color from the widget. Selection and dropdown
// highlight still render with inverse video.
func WithNoColor() Option {
	return ui.WithNoColor()
}

// WithPlaceholder sets the empty-input placeholder text.
func WithPlaceholder(s string) Option {
	return ui.WithPlaceholder(s)
}

// WithWidth sets the initial widget width in columns.
func WithWidth(w int) Option {
	return ui.WithWidth(w)
}

// WithMaxVisible caps the dropdown at n visible rows.
func WithMaxVisible(n int) Option {
	return ui.WithMaxVisible(n)
}

// WithSuggestDebounce delays async suggestion fetches until the input has
// been quiet for d.
func WithSuggestDebounce(d time.Duration) Option {
	return ui.WithSuggestDebounce(d)
}

// WithCustomInput registers a custom value input factory under the name
// schemas reference in OperatorConfig.CustomInput.
func WithCustomInput(name string, f CustomInputFactory) Option {
	return ui.WithCustomInput(name, f)
}

// ConfirmValue is returned by a CustomInput to commit the chosen value.
func ConfirmValue(v filter.Value) tea.Cmd {
	return ui.ConfirmValue(v)
}

// CancelCustomInput is returned by a CustomInput to abandon the value step.
func CancelCustomInput() tea.Cmd {
	return ui.CancelCustomInput()
}

// ResolveTheme interprets name as a preset name first and a YAML theme file
// path second. An empty name yields the default theme.
func ResolveTheme(name string) (Theme, error) {
	return ui.ResolveTheme(name)
}

// ThemeNames lists the built-in theme presets for help and error text.
func ThemeNames() string {
	return ui.AvailableThemeNames()
}
