package validation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

func boolPtr(b bool) *bool { return &b }

func mustOps(t *testing.T, keys ...string) []filter.OperatorConfig {
	t.Helper()
	ops, ok := filter.BuiltinOperators(keys...)
	require.True(t, ok)
	return ops
}

func testSchema(t *testing.T) *filter.Schema {
	t.Helper()
	return &filter.Schema{
		Fields: []filter.FieldConfig{
			{
				Key:       "name",
				Label:     "Name",
				Type:      filter.FieldString,
				Operators: mustOps(t, filter.OpEquals, filter.OpContains, filter.OpIsSet),
			},
			{
				Key:           "status",
				Label:         "Status",
				Type:          filter.FieldEnum,
				AllowMultiple: boolPtr(false),
				Operators:     mustOps(t, filter.OpEquals, filter.OpIn),
				Options: []filter.Suggestion{
					{Key: "active", Label: "Active", Raw: "active"},
					{Key: "archived", Label: "Archived", Raw: "archived"},
				},
			},
			{
				Key:       "price",
				Label:     "Price",
				Type:      filter.FieldNumber,
				Operators: mustOps(t, filter.OpGreaterThan, filter.OpBetween),
			},
		},
	}
}

func mkExpr(s *filter.Schema, fieldKey, opKey string, v filter.Value, conn filter.Connector) filter.Expression {
	f := s.Field(fieldKey)
	var fieldRef filter.FieldRef
	var opRef filter.OperatorRef
	if f != nil {
		fieldRef = f.Ref()
		if op := f.Operator(opKey); op != nil {
			opRef = op.Ref()
		} else {
			opRef = filter.OperatorRef{Key: opKey}
		}
	} else {
		fieldRef = filter.FieldRef{Key: fieldKey, Label: fieldKey, Type: filter.FieldString}
		opRef = filter.OperatorRef{Key: opKey}
	}
	return filter.Expression{
		Condition: filter.Condition{Field: fieldRef, Operator: opRef, Value: v},
		Connector: conn,
	}
}

func TestValidateExpressionHappyPath(t *testing.T) {
	s := testSchema(t)
	e := mkExpr(s, "name", filter.OpContains, filter.StringValue("test"), filter.ConnectorNone)
	assert.Empty(t, ValidateExpression(e, s, 0))
}

func TestValidateExpressionUnknownFieldIsFatal(t *testing.T) {
	s := testSchema(t)
	e := mkExpr(s, "ghost", filter.OpEquals, filter.Value{}, filter.ConnectorNone)

	errs := ValidateExpression(e, s, 3)
	require.Len(t, errs, 1, "unknown field reports exactly one finding, value checks are skipped")
	assert.Equal(t, ErrField, errs[0].Type)
	assert.Equal(t, "ghost", errs[0].Field)
	assert.Equal(t, 3, errs[0].ExpressionIndex)
}

func TestValidateExpressionUnknownOperatorStillChecksValue(t *testing.T) {
	s := testSchema(t)
	e := mkExpr(s, "name", filter.OpBetween, filter.Value{}, filter.ConnectorNone)

	errs := ValidateExpression(e, s, 0)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrOperator, errs[0].Type)
	assert.Equal(t, ErrValue, errs[1].Type, "missing value reported alongside the operator finding")
}

func TestValidateExpressionMissingValue(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name  string
		value filter.Value
		bad   bool
	}{
		{"empty value", filter.Value{}, true},
		{"whitespace only", filter.StringValue("   "), true},
		{"present", filter.StringValue("x"), false},
		{"zero number is content", filter.NewValue(0.0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mkExpr(s, "name", filter.OpEquals, tt.value, filter.ConnectorNone)
			errs := ValidateExpression(e, s, 0)
			if tt.bad {
				require.Len(t, errs, 1)
				assert.Equal(t, ErrValue, errs[0].Type)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateExpressionValueNotRequired(t *testing.T) {
	s := testSchema(t)
	e := mkExpr(s, "name", filter.OpIsSet, filter.Value{}, filter.ConnectorNone)
	assert.Empty(t, ValidateExpression(e, s, 0), "is-set carries ValueRequired=false")
}

func TestValidateExpressionMultiValueShape(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name    string
		value   filter.Value
		wantMsg string
	}{
		{
			name:  "exact count ok",
			value: filter.Value{Raw: []any{100.0, 500.0}, Display: "100,500", Serialized: "100,500"},
		},
		{
			name:    "wrong count",
			value:   filter.Value{Raw: []any{100.0}, Display: "100", Serialized: "100"},
			wantMsg: "expected 2 values, got 1",
		},
		{
			name:    "not a slice",
			value:   filter.NewValue(100.0),
			wantMsg: "expected 2 values",
		},
		{
			name:    "nil raw",
			value:   filter.Value{},
			wantMsg: "expected 2 values",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mkExpr(s, "price", filter.OpBetween, tt.value, filter.ConnectorNone)
			errs := ValidateExpression(e, s, 0)
			if tt.wantMsg == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, ErrValue, errs[0].Type)
			assert.Contains(t, errs[0].Message, tt.wantMsg)
		})
	}
}

func TestValidateExpressionUnboundedMultiValue(t *testing.T) {
	s := testSchema(t)

	ok := mkExpr(s, "status", filter.OpIn, filter.Value{
		Raw: []any{"active"}, Display: "active", Serialized: "active",
	}, filter.ConnectorNone)
	assert.Empty(t, ValidateExpression(ok, s, 0))

	bad := mkExpr(s, "status", filter.OpIn, filter.NewValue("active"), filter.ConnectorNone)
	errs := ValidateExpression(bad, s, 0)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "at least one")
}

func TestValidateExpressionCustomFieldHook(t *testing.T) {
	s := testSchema(t)
	s.Field("price").Validate = func(raw any) error {
		if n, ok := raw.(float64); ok && n < 0 {
			return fmt.Errorf("price cannot be negative")
		}
		return nil
	}

	good := mkExpr(s, "price", filter.OpGreaterThan, filter.NewValue(10.0), filter.ConnectorNone)
	assert.Empty(t, ValidateExpression(good, s, 0))

	bad := mkExpr(s, "price", filter.OpGreaterThan, filter.NewValue(-5.0), filter.ConnectorNone)
	errs := ValidateExpression(bad, s, 0)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrValue, errs[0].Type)
	assert.Equal(t, "price cannot be negative", errs[0].Message)
}

type rejectingCompleter struct{ reject string }

func (rejectingCompleter) Suggestions(_ context.Context, _ filter.SuggestRequest) ([]filter.Suggestion, error) {
	return nil, nil
}

func (r rejectingCompleter) ValidateValue(raw any) error {
	if raw == r.reject {
		return fmt.Errorf("%v is not selectable", raw)
	}
	return nil
}

func TestValidateExpressionAutocompleterValidator(t *testing.T) {
	s := testSchema(t)
	s.Field("status").Values = rejectingCompleter{reject: "draft"}

	bad := mkExpr(s, "status", filter.OpEquals, filter.StringValue("draft"), filter.ConnectorNone)
	errs := ValidateExpression(bad, s, 0)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "not selectable")

	good := mkExpr(s, "status", filter.OpEquals, filter.StringValue("active"), filter.ConnectorNone)
	assert.Empty(t, ValidateExpression(good, s, 0))
}

func TestValidateExpressionFreeform(t *testing.T) {
	s := testSchema(t)

	e := mkExpr(s, "env", filter.OpEquals, filter.StringValue("prod"), filter.ConnectorNone)
	e.Condition.Field.Freeform = true

	t.Run("rejected without freeform config", func(t *testing.T) {
		errs := ValidateExpression(e, s, 0)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrField, errs[0].Type)
	})

	t.Run("accepted with freeform config", func(t *testing.T) {
		s.Freeform = &filter.FreeformConfig{Allow: true}
		assert.Empty(t, ValidateExpression(e, s, 0))
	})

	t.Run("name validator consulted", func(t *testing.T) {
		s.Freeform = &filter.FreeformConfig{
			Allow:        true,
			ValidateName: func(string) error { return fmt.Errorf("nope") },
		}
		errs := ValidateExpression(e, s, 0)
		require.Len(t, errs, 1)
		assert.Equal(t, ErrField, errs[0].Type)
	})

	t.Run("operator outside freeform set", func(t *testing.T) {
		s.Freeform = &filter.FreeformConfig{Allow: true}
		bad := e
		bad.Condition.Operator = filter.OperatorRef{Key: filter.OpBetween}
		errs := ValidateExpression(bad, s, 0)
		require.NotEmpty(t, errs)
		assert.Equal(t, ErrOperator, errs[0].Type)
	})
}

func TestValidateExpressionsCollectsAcrossList(t *testing.T) {
	s := testSchema(t)
	list := []filter.Expression{
		mkExpr(s, "ghost", filter.OpEquals, filter.StringValue("x"), filter.ConnectorAnd),
		mkExpr(s, "name", filter.OpEquals, filter.Value{}, filter.ConnectorNone),
	}

	res := ValidateExpressions(list, s)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 2, "findings accumulate, nothing short-circuits")
	assert.Equal(t, 0, res.Errors[0].ExpressionIndex)
	assert.Equal(t, 1, res.Errors[1].ExpressionIndex)
}

func TestValidateExpressionsMaxBoundary(t *testing.T) {
	s := testSchema(t)
	s.MaxExpressions = 2

	mk := func(n int) []filter.Expression {
		var list []filter.Expression
		for i := 0; i < n; i++ {
			conn := filter.ConnectorAnd
			if i == n-1 {
				conn = filter.ConnectorNone
			}
			list = append(list, mkExpr(s, "name", filter.OpContains, filter.StringValue(fmt.Sprintf("v%d", i)), conn))
		}
		return list
	}

	assert.True(t, ValidateExpressions(mk(2), s).Valid, "exactly the cap passes")

	res := ValidateExpressions(mk(3), s)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrSchema, res.Errors[0].Type)
	assert.Equal(t, NoIndex, res.Errors[0].ExpressionIndex)
}

func TestValidateExpressionsSingleUseField(t *testing.T) {
	s := testSchema(t)
	list := []filter.Expression{
		mkExpr(s, "status", filter.OpEquals, filter.StringValue("active"), filter.ConnectorAnd),
		mkExpr(s, "name", filter.OpContains, filter.StringValue("x"), filter.ConnectorAnd),
		mkExpr(s, "status", filter.OpEquals, filter.StringValue("archived"), filter.ConnectorNone),
	}

	res := ValidateExpressions(list, s)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrField, res.Errors[0].Type)
	assert.Equal(t, "status", res.Errors[0].Field)
	assert.Equal(t, 2, res.Errors[0].ExpressionIndex, "the repeat is flagged, not the first use")

	assert.Empty(t, res.ForExpression(0))
	assert.Len(t, res.ForExpression(2), 1)
}

func TestValidateExpressionsRepeatableFieldAllowed(t *testing.T) {
	s := testSchema(t)
	list := []filter.Expression{
		mkExpr(s, "name", filter.OpContains, filter.StringValue("a"), filter.ConnectorAnd),
		mkExpr(s, "name", filter.OpContains, filter.StringValue("b"), filter.ConnectorNone),
	}
	assert.True(t, ValidateExpressions(list, s).Valid)
}

func TestValidateExpressionsSchemaHook(t *testing.T) {
	s := testSchema(t)
	s.Validate = func(exprs []filter.Expression) []error {
		return []error{
			fmt.Errorf("plain failure"),
			Error{Type: ErrValue, Message: "typed failure", Field: "price", ExpressionIndex: 0},
			nil,
		}
	}

	res := ValidateExpressions(nil, s)
	require.Len(t, res.Errors, 2, "nil hook results are dropped")

	assert.Equal(t, ErrExpression, res.Errors[0].Type, "plain errors wrap as expression findings")
	assert.Equal(t, NoIndex, res.Errors[0].ExpressionIndex)
	assert.Equal(t, "plain failure", res.Errors[0].Message)

	assert.Equal(t, ErrValue, res.Errors[1].Type, "taxonomy errors pass through untouched")
	assert.Equal(t, 0, res.Errors[1].ExpressionIndex)
}

func TestValidateExpressionsEmptyListIsValid(t *testing.T) {
	s := testSchema(t)
	res := ValidateExpressions(nil, s)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateExpressionsNilSchema(t *testing.T) {
	res := ValidateExpressions(nil, nil)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrSchema, res.Errors[0].Type)
}

func TestValidateIsIdempotent(t *testing.T) {
	s := testSchema(t)
	list := []filter.Expression{
		mkExpr(s, "ghost", filter.OpEquals, filter.StringValue("x"), filter.ConnectorAnd),
		mkExpr(s, "status", filter.OpEquals, filter.StringValue("active"), filter.ConnectorAnd),
		mkExpr(s, "status", filter.OpEquals, filter.StringValue("archived"), filter.ConnectorNone),
	}

	first := ValidateExpressions(list, s)
	second := ValidateExpressions(list, s)
	assert.Equal(t, first, second, "same input, same findings, same order")
}

func TestValidateSchema(t *testing.T) {
	t.Run("valid schema", func(t *testing.T) {
		res := ValidateSchema(testSchema(t))
		assert.True(t, res.Valid)
	})

	t.Run("nil schema", func(t *testing.T) {
		res := ValidateSchema(nil)
		assert.False(t, res.Valid)
	})

	t.Run("no fields", func(t *testing.T) {
		res := ValidateSchema(&filter.Schema{})
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors[0].Message, "no fields")
	})

	t.Run("duplicate keys", func(t *testing.T) {
		s := testSchema(t)
		s.Fields = append(s.Fields, s.Fields[0])
		res := ValidateSchema(s)
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0].Message, "duplicate field key")
	})

	t.Run("field without operators", func(t *testing.T) {
		s := testSchema(t)
		s.Fields = append(s.Fields, filter.FieldConfig{Key: "empty"})
		res := ValidateSchema(s)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors[0].Message, "no operators")
	})

	t.Run("negative cap", func(t *testing.T) {
		s := testSchema(t)
		s.MaxExpressions = -1
		res := ValidateSchema(s)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors[0].Message, "negative")
	})

	t.Run("empty key", func(t *testing.T) {
		s := testSchema(t)
		s.Fields = append(s.Fields, filter.FieldConfig{Operators: mustOps(t, filter.OpEquals)})
		res := ValidateSchema(s)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors[0].Message, "empty key")
	})
}
