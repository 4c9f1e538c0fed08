package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the three-faced form a condition's value travels in. Raw is what
// validators see, Display is what the token shows, Serialized is what goes on
// the wire. All three describe the same logical value.
type Value struct {
	Raw        any
	Display    string
	Serialized string
}

// IsZero reports whether the value is entirely unset.
func (v Value) IsZero() bool {
	return v.Raw == nil && v.Display == "" && v.Serialized == ""
}

// NewValue builds a Value whose display and serialized forms are the default
// stringification of raw.
func NewValue(raw any) Value {
	s := Stringify(raw)
	return Value{Raw: raw, Display: s, Serialized: s}
}

// StringValue builds a Value from literal text, keeping all three faces equal
// to it.
func StringValue(s string) Value {
	return Value{Raw: s, Display: s, Serialized: s}
}

// MultiValue assembles a Value from per-slot values, joining both faces with
// the separator. Raw becomes the slice of slot raws.
func MultiValue(slots []Value, separator string) Value {
	if separator == "" {
		separator = ","
	}
	raws := make([]any, len(slots))
	displays := make([]string, len(slots))
	serials := make([]string, len(slots))
	for i, s := range slots {
		raws[i] = s.Raw
		displays[i] = s.Display
		serials[i] = s.Serialized
	}
	return Value{
		Raw:        raws,
		Display:    strings.Join(displays, separator),
		Serialized: strings.Join(serials, separator),
	}
}

// Stringify renders a raw value in its plain text form. Floats drop
// insignificant trailing zeros so 4.0 reads "4".
func Stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FieldRef is the snapshot of a field stored on a committed condition. It is
// copied from the schema at selection time, so later schema edits do not
// rewrite history.
type FieldRef struct {
	Key      string
	Label    string
	Type     FieldType
	Freeform bool
}

// OperatorRef is the snapshot of an operator stored on a committed condition.
type OperatorRef struct {
	Key    string
	Label  string
	Symbol string
}

// Condition is one field-operator-value triple.
type Condition struct {
	Field    FieldRef
	Operator OperatorRef
	Value    Value
}

// Expression is one committed condition plus the connector joining it to the
// next expression in the list. The last expression's connector is ignored.
type Expression struct {
	Condition Condition
	Connector Connector
}

// WithConnector returns a copy of the expression with its connector replaced.
func (e Expression) WithConnector(c Connector) Expression {
	e.Connector = c
	return e
}
