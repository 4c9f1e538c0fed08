package filter

import (
	"context"
)

// Suggestion is one entry in a suggestion dropdown. Key is what gets
// committed, Label what gets shown; Raw optionally carries the typed value the
// suggestion stands for.
type Suggestion struct {
	Key         string
	Label       string
	Description string
	Group       string
	Raw         any
}

// DisplayLabel returns the label, falling back to the key.
func (s Suggestion) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Key
}

// SuggestRequest carries everything an autocompleter may consult: the partial
// input, the field and operator scoping the request, the committed list, and
// the schema.
type SuggestRequest struct {
	Input       string
	Field       *FieldConfig
	Operator    *OperatorConfig
	Expressions []Expression
	Schema      *Schema
}

// Autocompleter produces value suggestions for a partial input. Blocking
// implementations must honor ctx cancellation; the widget cancels requests
// superseded by further typing.
type Autocompleter interface {
	Suggestions(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
}

// ValueValidator is an optional Autocompleter capability: validating a
// committed raw value. The validation engine consults it after the
// field-level Validate hook.
type ValueValidator interface {
	ValidateValue(raw any) error
}

// ValueFormatter is an optional Autocompleter capability: rendering a raw
// value for display, e.g. 4 as "4 stars".
type ValueFormatter interface {
	FormatValue(raw any) string
}

// ValueParser is an optional Autocompleter capability: parsing typed text
// into a raw value, e.g. "$1,500" as 1500.
type ValueParser interface {
	ParseValue(input string) (any, error)
}

// FormatWith renders raw through the field's autocompleter when it formats
// values, else through an Options label match, else plain stringification.
func (f *FieldConfig) FormatWith(raw any) string {
	if f != nil {
		if fm, ok := f.Values.(ValueFormatter); ok {
			return fm.FormatValue(raw)
		}
		if opt := f.Option(raw); opt != nil {
			return opt.DisplayLabel()
		}
	}
	return Stringify(raw)
}

// ValueFromSuggestion builds a Value from a chosen suggestion. The
// suggestion's raw value wins when it carries one, the key otherwise; the
// key stays the serialized face so symbolic values ("today") survive
// round-trips.
func ValueFromSuggestion(s Suggestion) Value {
	raw := s.Raw
	if raw == nil {
		raw = s.Key
	}
	serialized := s.Key
	if serialized == "" {
		serialized = Stringify(raw)
	}
	return Value{Raw: raw, Display: s.DisplayLabel(), Serialized: serialized}
}
