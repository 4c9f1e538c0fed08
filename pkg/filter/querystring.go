package filter

import (
	"fmt"
	"net/url"
	"strings"
)

// ToQueryString renders the list as a percent-encoded query string, one
// key=value pair per expression. This form is deliberately lossy: operators
// and connectors are dropped, a repeated field keeps only its last value, and
// encoding orders keys alphabetically. Use Serialize for a faithful wire
// form.
func ToQueryString(list []Expression) string {
	vals := url.Values{}
	for _, e := range list {
		vals.Set(e.Condition.Field.Key, e.Condition.Value.Serialized)
	}
	return vals.Encode()
}

// FromQueryString parses a query string back into expressions, pairing each
// known field key with that field's first declared operator and joining
// everything with AND. Unknown keys are skipped silently, repeated keys keep
// their first value, and expressions come out in schema declaration order.
// Combined with ToQueryString this is not round-trip safe; it exists for URL
// and form interop.
func FromQueryString(qs string, s *Schema) ([]Expression, error) {
	if s == nil {
		return nil, fmt.Errorf("from query string: nil schema")
	}
	qs = strings.TrimPrefix(strings.TrimSpace(qs), "?")
	if qs == "" {
		return nil, nil
	}
	vals, err := url.ParseQuery(qs)
	if err != nil {
		return nil, fmt.Errorf("from query string: %w", err)
	}

	var out []Expression
	for i := range s.Fields {
		f := &s.Fields[i]
		vs, ok := vals[f.Key]
		if !ok || len(vs) == 0 || len(f.Operators) == 0 {
			continue
		}
		op := &f.Operators[0]
		val, err := ValueFromString(f, op, vs[0])
		if err != nil {
			return nil, fmt.Errorf("from query string: field %q: %w", f.Key, err)
		}
		out = append(out, Expression{
			Condition: Condition{Field: f.Ref(), Operator: op.Ref(), Value: val},
			Connector: ConnectorAnd,
		})
	}
	return Normalize(out), nil
}
