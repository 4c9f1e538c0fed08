// Package filter defines the data model the filter widget operates on: the
// schema describing filterable fields and their operators, and the ordered
// expression list the widget builds from them. The host owns the expression
// list; the widget hands back a fresh list on every committed change and never
// mutates the one it was given.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyFreeformName = errors.New("field name is empty")

// FieldType describes the kind of values a field holds. It drives the default
// operator set, value coercion, and which autocompleter fits the field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldDateTime FieldType = "datetime"
	FieldBoolean  FieldType = "boolean"
	FieldEnum     FieldType = "enum"
	FieldID       FieldType = "id"
	FieldCustom   FieldType = "custom"
)

// ParseFieldType converts a string into a FieldType, reporting whether the
// name is one of the known types.
func ParseFieldType(s string) (FieldType, bool) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case FieldString:
		return FieldString, true
	case FieldNumber:
		return FieldNumber, true
	case FieldDate:
		return FieldDate, true
	case FieldDateTime:
		return FieldDateTime, true
	case FieldBoolean:
		return FieldBoolean, true
	case FieldEnum:
		return FieldEnum, true
	case FieldID:
		return FieldID, true
	case FieldCustom:
		return FieldCustom, true
	}
	return "", false
}

// Connector joins an expression to the one after it. The connector of the
// last expression in a list carries no meaning and is normalized away.
type Connector string

const (
	ConnectorNone Connector = ""
	ConnectorAnd  Connector = "AND"
	ConnectorOr   Connector = "OR"
)

// ParseConnector converts a wire string into a Connector, accepting any case.
func ParseConnector(s string) (Connector, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return ConnectorNone, true
	case "AND":
		return ConnectorAnd, true
	case "OR":
		return ConnectorOr, true
	}
	return ConnectorNone, false
}

// MultiValueConfig marks an operator as taking several value slots, like a
// between range or an in-list.
type MultiValueConfig struct {
	// Count is the exact number of slots, or -1 for one-or-more.
	Count int `json:"count" yaml:"count" toml:"count"`
	// Separator joins slot values in serialized and display form. Empty
	// means ",".
	Separator string `json:"separator,omitempty" yaml:"separator,omitempty" toml:"separator,omitempty"`
	// Labels optionally names each slot prompt, e.g. ["from", "to"].
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty" toml:"labels,omitempty"`
}

// SeparatorOrDefault returns the configured separator, defaulting to ",".
func (m *MultiValueConfig) SeparatorOrDefault() string {
	if m == nil || m.Separator == "" {
		return ","
	}
	return m.Separator
}

// SlotLabel returns the prompt label for slot i, or "" when none is set.
func (m *MultiValueConfig) SlotLabel(i int) string {
	if m == nil || i < 0 || i >= len(m.Labels) {
		return ""
	}
	return m.Labels[i]
}

// OperatorConfig describes one operator a field supports.
type OperatorConfig struct {
	Key    string
	Label  string
	Symbol string
	// MultiValue, when set, turns the value step into per-slot entry.
	MultiValue *MultiValueConfig
	// ValueRequired overrides the field-level setting for this operator.
	// nil inherits.
	ValueRequired *bool
	// CustomInput names a custom value input registered with the widget.
	// Empty uses the standard text input.
	CustomInput string
}

// Ref snapshots the operator into the minimal form stored on conditions.
func (o *OperatorConfig) Ref() OperatorRef {
	return OperatorRef{Key: o.Key, Label: o.Label, Symbol: o.Symbol}
}

// FieldConfig describes one filterable field.
type FieldConfig struct {
	// Key uniquely identifies the field within its schema.
	Key         string
	Label       string
	Type        FieldType
	Description string
	// Group clusters related fields in the suggestion dropdown.
	Group string
	// Operators lists the operators this field supports, in menu order.
	// Must be non-empty for the field to be usable.
	Operators []OperatorConfig
	// AllowMultiple permits several expressions on this field in one list.
	// nil means true.
	AllowMultiple *bool
	// ValueRequired demands a non-empty value before commit. nil means true.
	ValueRequired *bool
	// Options are fixed candidate values. They feed suggestions when Values
	// is nil and membership validation for enum fields.
	Options []Suggestion
	// Values suggests candidate values while the user types. Takes
	// precedence over Options for suggestions.
	Values Autocompleter
	// Validate inspects a committed raw value. nil accepts everything.
	Validate func(raw any) error
	// Serialize overrides how raw values are rendered for the wire.
	Serialize func(raw any) string
	// Deserialize overrides how wire strings are parsed back into raw
	// values.
	Deserialize func(s string) (any, error)
	// Freeform marks fields created ad hoc from user input rather than
	// declared in the schema.
	Freeform bool
}

// Ref snapshots the field into the minimal form stored on conditions.
func (f *FieldConfig) Ref() FieldRef {
	return FieldRef{Key: f.Key, Label: f.Label, Type: f.Type, Freeform: f.Freeform}
}

// Operator returns the field's operator with the given key, or nil.
func (f *FieldConfig) Operator(key string) *OperatorConfig {
	for i := range f.Operators {
		if f.Operators[i].Key == key {
			return &f.Operators[i]
		}
	}
	return nil
}

// MultipleAllowed reports whether the field may appear in more than one
// expression.
func (f *FieldConfig) MultipleAllowed() bool {
	return f.AllowMultiple == nil || *f.AllowMultiple
}

// RequiresValue reports whether a value must be present before an expression
// on this field can commit. The operator-level setting wins over the
// field-level one.
func (f *FieldConfig) RequiresValue(op *OperatorConfig) bool {
	if op != nil && op.ValueRequired != nil {
		return *op.ValueRequired
	}
	if f.ValueRequired != nil {
		return *f.ValueRequired
	}
	return true
}

// Option returns the fixed option matching raw, comparing serialized keys,
// or nil when the field has no such option.
func (f *FieldConfig) Option(raw any) *Suggestion {
	want := Stringify(raw)
	for i := range f.Options {
		if f.Options[i].Key == want {
			return &f.Options[i]
		}
	}
	return nil
}

// ConnectorConfig customizes the display labels of the two connectors.
type ConnectorConfig struct {
	AndLabel string `json:"and,omitempty" yaml:"and,omitempty" toml:"and,omitempty"`
	OrLabel  string `json:"or,omitempty" yaml:"or,omitempty" toml:"or,omitempty"`
}

// FreeformConfig allows expressions on fields the schema does not declare,
// created from whatever the user typed.
type FreeformConfig struct {
	Allow       bool
	Placeholder string
	// CreateLabel is a fmt format for the synthetic create suggestion; it
	// receives the typed name as its single %s/%q argument. Empty uses
	// `Create field "%s"`.
	CreateLabel string
	// Operators for created fields. Empty uses DefaultFreeformOperators.
	Operators []OperatorConfig
	// ValidateName rejects candidate field names. nil accepts any
	// non-empty trimmed name.
	ValidateName func(name string) error
	// DefaultType for created fields. Empty means FieldString.
	DefaultType FieldType
}

// CheckName reports whether name is acceptable for a freeform field.
// Whitespace-only names are always rejected.
func (fc *FreeformConfig) CheckName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errEmptyFreeformName
	}
	if fc != nil && fc.ValidateName != nil {
		return fc.ValidateName(trimmed)
	}
	return nil
}

// FieldFor builds the ad hoc field config for a freeform name. The trimmed
// name serves as both key and label.
func (fc *FreeformConfig) FieldFor(name string) FieldConfig {
	trimmed := strings.TrimSpace(name)
	t := FieldString
	ops := DefaultFreeformOperators()
	if fc != nil {
		if fc.DefaultType != "" {
			t = fc.DefaultType
		}
		if len(fc.Operators) > 0 {
			ops = append([]OperatorConfig(nil), fc.Operators...)
		}
	}
	return FieldConfig{
		Key:       trimmed,
		Label:     trimmed,
		Type:      t,
		Operators: ops,
		Freeform:  true,
	}
}

// CreateSuggestionLabel renders the label of the synthetic create-field
// suggestion for name.
func (fc *FreeformConfig) CreateSuggestionLabel(name string) string {
	format := `Create field "%s"`
	if fc != nil && fc.CreateLabel != "" {
		format = fc.CreateLabel
	}
	if !strings.Contains(format, "%") {
		return format + " " + name
	}
	return fmt.Sprintf(format, name)
}

// Schema is the complete description of what can be filtered.
type Schema struct {
	// Fields in suggestion menu order. Keys must be unique.
	Fields []FieldConfig
	// Connectors customizes connector display labels.
	Connectors *ConnectorConfig
	// MaxExpressions caps the list length. 0 means unlimited.
	MaxExpressions int
	// Freeform permits ad hoc fields when set and allowed.
	Freeform *FreeformConfig
	// Validate runs over the whole list after per-expression checks.
	// Returned errors may be validation taxonomy errors or plain errors.
	Validate func(exprs []Expression) []error
	// Serialize overrides list serialization wholesale.
	Serialize func(exprs []Expression) []Serialized
	// Deserialize overrides list deserialization wholesale.
	Deserialize func(recs []Serialized) ([]Expression, error)
}

// Field returns the declared field with the given key, or nil.
func (s *Schema) Field(key string) *FieldConfig {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i]
		}
	}
	return nil
}

// AllowsFreeform reports whether ad hoc fields are permitted.
func (s *Schema) AllowsFreeform() bool {
	return s != nil && s.Freeform != nil && s.Freeform.Allow
}

// AtCapacity reports whether a list of n expressions has reached the
// MaxExpressions cap.
func (s *Schema) AtCapacity(n int) bool {
	return s.MaxExpressions > 0 && n >= s.MaxExpressions
}

// ConnectorLabel returns the display label for a connector, honoring custom
// labels.
func (s *Schema) ConnectorLabel(c Connector) string {
	switch c {
	case ConnectorAnd:
		if s != nil && s.Connectors != nil && s.Connectors.AndLabel != "" {
			return s.Connectors.AndLabel
		}
		return "AND"
	case ConnectorOr:
		if s != nil && s.Connectors != nil && s.Connectors.OrLabel != "" {
			return s.Connectors.OrLabel
		}
		return "OR"
	default:
		return ""
	}
}
