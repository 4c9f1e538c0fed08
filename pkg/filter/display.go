package filter

import (
	"strings"
)

// Formatters customizes how ToDisplayString renders each part. Any nil
// member falls back to the default rendering; Expression, when set, replaces
// the whole field-operator-value triple.
type Formatters struct {
	Field      func(FieldRef) string
	Operator   func(OperatorRef) string
	Value      func(Value) string
	Connector  func(Connector) string
	Expression func(Condition) string
}

// ToDisplayString renders the list as one human-readable line, e.g.
//
//	Name contains "test" AND Price >= 100
//
// The schema supplies custom connector labels when present; fmts may be nil.
func ToDisplayString(list []Expression, s *Schema, fmts *Formatters) string {
	var b strings.Builder
	for i, e := range list {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(displayCondition(e.Condition, fmts))
		if i < len(list)-1 && e.Connector != ConnectorNone {
			b.WriteString(" ")
			b.WriteString(displayConnector(e.Connector, s, fmts))
		}
	}
	return b.String()
}

func displayCondition(c Condition, fmts *Formatters) string {
	if fmts != nil && fmts.Expression != nil {
		return fmts.Expression(c)
	}
	parts := make([]string, 0, 3)
	parts = append(parts, displayField(c.Field, fmts))
	parts = append(parts, displayOperator(c.Operator, fmts))
	if v := displayValue(c.Value, fmts); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

func displayField(f FieldRef, fmts *Formatters) string {
	if fmts != nil && fmts.Field != nil {
		return fmts.Field(f)
	}
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

func displayOperator(o OperatorRef, fmts *Formatters) string {
	if fmts != nil && fmts.Operator != nil {
		return fmts.Operator(o)
	}
	if o.Symbol != "" {
		return o.Symbol
	}
	if o.Label != "" {
		return o.Label
	}
	return o.Key
}

func displayValue(v Value, fmts *Formatters) string {
	if fmts != nil && fmts.Value != nil {
		return fmts.Value(v)
	}
	d := v.Display
	// Quote displays with spaces so boundaries stay readable.
	if strings.ContainsAny(d, " \t") {
		return `"` + d + `"`
	}
	return d
}

func displayConnector(c Connector, s *Schema, fmts *Formatters) string {
	if fmts != nil && fmts.Connector != nil {
		return fmts.Connector(c)
	}
	return s.ConnectorLabel(c)
}
