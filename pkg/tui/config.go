package tui

import (
	"time"

	"github.com/oakwood-commons/filtx/internal/ui"
	"github.com/oakwood-commons/filtx/pkg/filter"
	"github.com/oakwood-commons/filtx/pkg/validation"
)

// Config holds host-provided settings for building and running the widget.
// Only Schema is required; everything else falls back to widget defaults.
type Config struct {
	// Schema describes the filterable fields. Required.
	Schema *filter.Schema
	// Expressions seeds the widget with an already-committed list.
	Expressions []filter.Expression

	// OnChange receives the full expression list after every committed
	// mutation (append, edit, delete, clear).
	OnChange func([]filter.Expression)
	// OnError receives validation errors for the committed list.
	OnError func([]validation.Error)
	// Announce receives screen-reader announcements (committed filters,
	// deletions, validation problems).
	Announce func(string)

	Theme     ui.Theme
	ThemeName string // Alternative to Theme: a preset name (dark, light, mono) or a YAML theme file path
	NoColor   bool

	Placeholder string
	Width       int // 0 auto-detects the terminal width
	Height      int
	MaxVisible  int           // dropdown rows, 0 for the widget default
	Debounce    time.Duration // async suggestion debounce, 0 for none

	// CustomInputs maps schema custom-input names to widget factories.
	CustomInputs map[string]ui.CustomInputFactory

	HideHelp bool // Hide the key-hint line under the widget (Run only)
}

// DefaultConfig returns a baseline config with the same defaults as the CLI.
func DefaultConfig() Config {
	return Config{
		ThemeName: "dark",
	}
}

// options translates the config into widget options. ThemeName takes
// precedence over Theme if both are set.
func (c Config) options() ([]ui.Option, error) {
	var opts []ui.Option
	if c.ThemeName != "" {
		th, err := ui.ResolveTheme(c.ThemeName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ui.WithTheme(th))
	} else if c.Theme != (ui.Theme{}) {
		opts = append(opts, ui.WithTheme(c.Theme))
	}
	if c.NoColor {
		opts = append(opts, ui.WithNoColor())
	}
	if len(c.Expressions) > 0 {
		opts = append(opts, ui.WithExpressions(c.Expressions))
	}
	if c.OnChange != nil {
		opts = append(opts, ui.WithOnChange(c.OnChange))
	}
	if c.OnError != nil {
		opts = append(opts, ui.WithOnError(c.OnError))
	}
	if c.Announce != nil {
		opts = append(opts, ui.WithAnnounce(c.Announce))
	}
	if c.Placeholder != "" {
		opts = append(opts, ui.WithPlaceholder(c.Placeholder))
	}
	if c.Width > 0 {
		opts = append(opts, ui.WithWidth(c.Width))
	}
	if c.MaxVisible > 0 {
		opts = append(opts, ui.WithMaxVisible(c.MaxVisible))
	}
	if c.Debounce > 0 {
		opts = append(opts, ui.WithSuggestDebounce(c.Debounce))
	}
	for name, f := range c.CustomInputs {
		opts = append(opts, ui.WithCustomInput(name, f))
	}
	return opts, nil
}
