package filter

import (
	"reflect"
)

// List operations are copy-on-write: the input slice is never mutated, so
// hosts can hold the previous list for undo or comparison.

// Append returns a new list with expr added at the end.
func Append(list []Expression, expr Expression) []Expression {
	out := make([]Expression, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, expr)
	return out
}

// ReplaceAt returns a new list with the expression at i swapped for expr.
// An out-of-range index returns the list unchanged.
func ReplaceAt(list []Expression, i int, expr Expression) []Expression {
	if i < 0 || i >= len(list) {
		return list
	}
	out := append([]Expression(nil), list...)
	out[i] = expr
	return out
}

// RemoveAt returns a new list without the expression at i. The removed
// expression's connector disappears with it; its predecessor keeps its own
// connector, now joining to the new neighbor; the trailing expression's
// connector is cleared. An out-of-range index returns the list unchanged.
func RemoveAt(list []Expression, i int) []Expression {
	if i < 0 || i >= len(list) {
		return list
	}
	out := make([]Expression, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	if n := len(out); n > 0 {
		out[n-1].Connector = ConnectorNone
	}
	return out
}

// Normalize returns the list with the trailing connector cleared. Lists built
// through Append/RemoveAt are already normalized; this covers lists arriving
// from hosts or the wire.
func Normalize(list []Expression) []Expression {
	n := len(list)
	if n == 0 || list[n-1].Connector == ConnectorNone {
		return list
	}
	out := append([]Expression(nil), list...)
	out[n-1].Connector = ConnectorNone
	return out
}

// Equal reports whether two lists hold the same expressions in the same
// order, comparing raw values deeply.
func Equal(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Connector != b[i].Connector {
			return false
		}
		ac, bc := a[i].Condition, b[i].Condition
		if ac.Field != bc.Field || ac.Operator != bc.Operator {
			return false
		}
		if ac.Value.Display != bc.Value.Display || ac.Value.Serialized != bc.Value.Serialized {
			return false
		}
		if !reflect.DeepEqual(ac.Value.Raw, bc.Value.Raw) {
			return false
		}
	}
	return true
}

// CountByField tallies how many expressions reference each field key.
func CountByField(list []Expression) map[string]int {
	counts := make(map[string]int, len(list))
	for _, e := range list {
		counts[e.Condition.Field.Key]++
	}
	return counts
}
