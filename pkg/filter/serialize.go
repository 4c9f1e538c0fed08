package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialized is the wire form of one expression. Connector is empty on the
// last record of a list.
type Serialized struct {
	Field     string `json:"field" yaml:"field" toml:"field"`
	Operator  string `json:"operator" yaml:"operator" toml:"operator"`
	Value     string `json:"value" yaml:"value" toml:"value"`
	Connector string `json:"connector,omitempty" yaml:"connector,omitempty" toml:"connector,omitempty"`
}

// Serialize renders the list into wire records. The schema-level override
// wins wholesale; otherwise each value goes through the field-level Serialize
// override when one exists, else its stored serialized face. A nil schema
// serializes stored faces as-is.
func Serialize(list []Expression, s *Schema) []Serialized {
	if s != nil && s.Serialize != nil {
		return s.Serialize(list)
	}
	out := make([]Serialized, len(list))
	for i, e := range list {
		val := e.Condition.Value.Serialized
		if s != nil {
			if f := s.Field(e.Condition.Field.Key); f != nil && f.Serialize != nil {
				val = f.Serialize(e.Condition.Value.Raw)
			}
		}
		conn := ""
		if i < len(list)-1 {
			conn = string(e.Connector)
		}
		out[i] = Serialized{
			Field:     e.Condition.Field.Key,
			Operator:  e.Condition.Operator.Key,
			Value:     val,
			Connector: conn,
		}
	}
	return out
}

// Deserialize rebuilds an expression list from wire records. Unlike
// validation, which collects, this returns a hard error on the first
// unknown field, unknown operator, or bad connector: records that do not
// match the schema are a data contract breach, not user input. Freeform
// fields round-trip when the schema allows them.
func Deserialize(recs []Serialized, s *Schema) ([]Expression, error) {
	if s == nil {
		return nil, fmt.Errorf("deserialize: nil schema")
	}
	if s.Deserialize != nil {
		return s.Deserialize(recs)
	}
	out := make([]Expression, 0, len(recs))
	for i, rec := range recs {
		f := s.Field(rec.Field)
		if f == nil {
			if !s.AllowsFreeform() {
				return nil, fmt.Errorf("record %d: unknown field %q", i, rec.Field)
			}
			if err := s.Freeform.CheckName(rec.Field); err != nil {
				return nil, fmt.Errorf("record %d: freeform field %q: %w", i, rec.Field, err)
			}
			ff := s.Freeform.FieldFor(rec.Field)
			f = &ff
		}
		op := f.Operator(rec.Operator)
		if op == nil {
			return nil, fmt.Errorf("record %d: field %q has no operator %q", i, rec.Field, rec.Operator)
		}
		conn, ok := ParseConnector(rec.Connector)
		if !ok {
			return nil, fmt.Errorf("record %d: unknown connector %q", i, rec.Connector)
		}
		val, err := ValueFromString(f, op, rec.Value)
		if err != nil {
			return nil, fmt.Errorf("record %d: field %q: %w", i, rec.Field, err)
		}
		out = append(out, Expression{
			Condition: Condition{Field: f.Ref(), Operator: op.Ref(), Value: val},
			Connector: conn,
		})
	}
	return Normalize(out), nil
}

// ValueFromString parses a wire string into a Value for the given field and
// operator. Multi-value operators split on the operator separator, one slot
// per part. The serialized face keeps the original string so round-trips
// preserve bytes. Coercion failures fall back to the plain string; only a
// field-level Deserialize override can reject a value outright.
func ValueFromString(f *FieldConfig, op *OperatorConfig, s string) (Value, error) {
	if op != nil && op.MultiValue != nil {
		sep := op.MultiValue.SeparatorOrDefault()
		parts := strings.Split(s, sep)
		raws := make([]any, len(parts))
		displays := make([]string, len(parts))
		for i, part := range parts {
			raw, display, err := parseSingle(f, strings.TrimSpace(part))
			if err != nil {
				return Value{}, fmt.Errorf("slot %d: %w", i, err)
			}
			raws[i] = raw
			displays[i] = display
		}
		return Value{Raw: raws, Display: strings.Join(displays, sep), Serialized: s}, nil
	}

	raw, display, err := parseSingle(f, s)
	if err != nil {
		return Value{}, err
	}
	return Value{Raw: raw, Display: display, Serialized: s}, nil
}

// ValueFromInput builds a Value from text the user typed for the given
// field. Typed input never goes through the wire Deserialize override; a
// parsing autocompleter gets first try and plain coercion covers the rest.
// When the parser converts the text (say "$1,500" to 1500), the serialized
// face is the parsed value's plain form, not the decorated input.
func ValueFromInput(f *FieldConfig, text string) Value {
	if f != nil {
		if p, ok := f.Values.(ValueParser); ok {
			if raw, err := p.ParseValue(text); err == nil {
				return Value{Raw: raw, Display: f.FormatWith(raw), Serialized: Stringify(raw)}
			}
		}
	}
	var t FieldType
	if f != nil {
		t = f.Type
	}
	raw := coerceRaw(t, text)
	display := text
	if f != nil {
		if opt := f.Option(raw); opt != nil {
			display = opt.DisplayLabel()
		}
	}
	return Value{Raw: raw, Display: display, Serialized: text}
}

// parseSingle parses one slot's text into raw and display forms. Precedence:
// the field's Deserialize override, then a parsing autocompleter, then plain
// coercion by field type.
func parseSingle(f *FieldConfig, s string) (any, string, error) {
	if f != nil && f.Deserialize != nil {
		raw, err := f.Deserialize(s)
		if err != nil {
			return nil, "", err
		}
		return raw, f.FormatWith(raw), nil
	}
	if f != nil {
		if p, ok := f.Values.(ValueParser); ok {
			if raw, err := p.ParseValue(s); err == nil {
				return raw, f.FormatWith(raw), nil
			}
			// Parser rejected the wire text; fall through to coercion.
		}
	}

	var t FieldType
	if f != nil {
		t = f.Type
	}
	raw := coerceRaw(t, s)
	display := s
	if f != nil {
		if opt := f.Option(raw); opt != nil {
			display = opt.DisplayLabel()
		}
	}
	return raw, display, nil
}

// coerceRaw converts wire text into the natural Go type for the field type,
// keeping the string when it does not parse.
func coerceRaw(t FieldType, s string) any {
	switch t {
	case FieldNumber:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	case FieldBoolean:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}
