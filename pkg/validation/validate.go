package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// ValidateExpression checks one expression against the schema. idx is the
// expression's position in its list and is stamped onto every finding. An
// unknown field is fatal for the expression: nothing else can be judged
// without its config, so that single finding is returned alone. All other
// findings accumulate.
func ValidateExpression(expr filter.Expression, s *filter.Schema, idx int) []Error {
	if s == nil {
		return []Error{{
			Type:            ErrSchema,
			Message:         "no schema configured",
			ExpressionIndex: idx,
		}}
	}

	fieldKey := expr.Condition.Field.Key
	f := s.Field(fieldKey)
	if f == nil {
		// Freeform refs are judged against the freeform policy instead of
		// the declared field list.
		if !s.AllowsFreeform() {
			return []Error{{
				Type:            ErrField,
				Message:         fmt.Sprintf("unknown field %q", fieldKey),
				Field:           fieldKey,
				ExpressionIndex: idx,
			}}
		}
		if err := s.Freeform.CheckName(fieldKey); err != nil {
			return []Error{{
				Type:            ErrField,
				Message:         fmt.Sprintf("field name %q not allowed: %v", fieldKey, err),
				Field:           fieldKey,
				ExpressionIndex: idx,
			}}
		}
		ff := s.Freeform.FieldFor(fieldKey)
		f = &ff
	}

	var errs []Error

	opKey := expr.Condition.Operator.Key
	op := f.Operator(opKey)
	if op == nil {
		errs = append(errs, Error{
			Type:            ErrOperator,
			Message:         fmt.Sprintf("field %q does not support operator %q", fieldKey, opKey),
			Field:           fieldKey,
			ExpressionIndex: idx,
		})
		// Value checks continue against field-level settings: a bad
		// operator should not mask a missing value.
	}

	errs = append(errs, checkValue(expr.Condition.Value, f, op, idx)...)
	return errs
}

// checkValue applies the multi-value shape check or the plain presence
// check, then the field-level and autocompleter-level value hooks.
func checkValue(v filter.Value, f *filter.FieldConfig, op *filter.OperatorConfig, idx int) []Error {
	var errs []Error

	if op != nil && op.MultiValue != nil {
		if err := checkMultiValue(v, op.MultiValue); err != "" {
			errs = append(errs, Error{
				Type:            ErrValue,
				Message:         err,
				Field:           f.Key,
				ExpressionIndex: idx,
			})
		}
	} else if f.RequiresValue(op) && isEmptyValue(v) {
		errs = append(errs, Error{
			Type:            ErrValue,
			Message:         fmt.Sprintf("field %q requires a value", f.Key),
			Field:           f.Key,
			ExpressionIndex: idx,
		})
	}

	if isEmptyValue(v) {
		return errs
	}

	if f.Validate != nil {
		if err := f.Validate(v.Raw); err != nil {
			errs = append(errs, Error{
				Type:            ErrValue,
				Message:         err.Error(),
				Field:           f.Key,
				ExpressionIndex: idx,
			})
		}
	}
	if vv, ok := f.Values.(filter.ValueValidator); ok {
		if err := vv.ValidateValue(v.Raw); err != nil {
			errs = append(errs, Error{
				Type:            ErrValue,
				Message:         err.Error(),
				Field:           f.Key,
				ExpressionIndex: idx,
			})
		}
	}
	return errs
}

// checkMultiValue verifies the raw slice shape against the slot config.
// Returns a message, or "" when the shape fits.
func checkMultiValue(v filter.Value, mv *filter.MultiValueConfig) string {
	rv := reflect.ValueOf(v.Raw)
	if v.Raw == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		if mv.Count == -1 {
			return "expected at least one value"
		}
		return fmt.Sprintf("expected %d values", mv.Count)
	}

	n := rv.Len()
	if mv.Count == -1 {
		if n < 1 {
			return "expected at least one value"
		}
		return ""
	}
	if n != mv.Count {
		return fmt.Sprintf("expected %d values, got %d", mv.Count, n)
	}
	return ""
}

// isEmptyValue reports whether the value carries no content on any face.
// A false boolean or a zero number is content; an empty or blank string is
// not.
func isEmptyValue(v filter.Value) bool {
	switch raw := v.Raw.(type) {
	case nil:
		return strings.TrimSpace(v.Serialized) == "" && strings.TrimSpace(v.Display) == ""
	case string:
		return strings.TrimSpace(raw) == ""
	default:
		return false
	}
}

// ValidateExpressions checks a whole list: per-expression findings, the
// MaxExpressions cap, single-use field repeats, and finally the schema-level
// hook. Findings accumulate across expressions; nothing short-circuits.
func ValidateExpressions(list []filter.Expression, s *filter.Schema) Result {
	if s == nil {
		return resultOf([]Error{{
			Type:            ErrSchema,
			Message:         "no schema configured",
			ExpressionIndex: NoIndex,
		}})
	}

	var errs []Error
	for i, expr := range list {
		errs = append(errs, ValidateExpression(expr, s, i)...)
	}

	if s.MaxExpressions > 0 && len(list) > s.MaxExpressions {
		errs = append(errs, Error{
			Type:            ErrSchema,
			Message:         fmt.Sprintf("at most %d expressions allowed, got %d", s.MaxExpressions, len(list)),
			ExpressionIndex: NoIndex,
		})
	}

	errs = append(errs, checkSingleUse(list, s)...)

	if s.Validate != nil {
		for _, err := range s.Validate(list) {
			if err == nil {
				continue
			}
			errs = append(errs, asError(err))
		}
	}

	return resultOf(errs)
}

// checkSingleUse flags repeats of AllowMultiple=false fields. The finding
// lands on the second and every later occurrence, never the first.
func checkSingleUse(list []filter.Expression, s *filter.Schema) []Error {
	var errs []Error
	seen := make(map[string]bool, len(list))
	for i, expr := range list {
		key := expr.Condition.Field.Key
		f := s.Field(key)
		if f == nil || f.MultipleAllowed() {
			continue
		}
		if seen[key] {
			errs = append(errs, Error{
				Type:            ErrField,
				Message:         fmt.Sprintf("field %q allows only one filter", key),
				Field:           key,
				ExpressionIndex: i,
			})
			continue
		}
		seen[key] = true
	}
	return errs
}

// asError passes taxonomy errors through and wraps plain errors as
// list-level expression findings.
func asError(err error) Error {
	var typed Error
	if errors.As(err, &typed) {
		if typed.Type == "" {
			typed.Type = ErrExpression
		}
		return typed
	}
	return Error{
		Type:            ErrExpression,
		Message:         err.Error(),
		ExpressionIndex: NoIndex,
	}
}

// ValidateSchema checks the schema itself for misconfiguration: an empty
// field list, duplicate keys, fields without operators, and a negative
// expression cap. Intended for host startup and the check subcommand.
func ValidateSchema(s *filter.Schema) Result {
	if s == nil || len(s.Fields) == 0 {
		return resultOf([]Error{{
			Type:            ErrSchema,
			Message:         "schema declares no fields",
			ExpressionIndex: NoIndex,
		}})
	}

	var errs []Error
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Key == "" {
			errs = append(errs, Error{
				Type:            ErrSchema,
				Message:         "field with empty key",
				ExpressionIndex: NoIndex,
			})
			continue
		}
		if seen[f.Key] {
			errs = append(errs, Error{
				Type:            ErrSchema,
				Message:         fmt.Sprintf("duplicate field key %q", f.Key),
				Field:           f.Key,
				ExpressionIndex: NoIndex,
			})
		}
		seen[f.Key] = true

		if len(f.Operators) == 0 {
			errs = append(errs, Error{
				Type:            ErrSchema,
				Message:         fmt.Sprintf("field %q declares no operators", f.Key),
				Field:           f.Key,
				ExpressionIndex: NoIndex,
			})
		}
	}

	if s.MaxExpressions < 0 {
		errs = append(errs, Error{
			Type:            ErrSchema,
			Message:         fmt.Sprintf("maxExpressions must not be negative, got %d", s.MaxExpressions),
			ExpressionIndex: NoIndex,
		})
	}

	return resultOf(errs)
}
