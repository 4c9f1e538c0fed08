package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func displayList(s *Schema) []Expression {
	return []Expression{
		{
			Condition: Condition{
				Field:    s.Field("name").Ref(),
				Operator: s.Field("name").Operator(OpContains).Ref(),
				Value:    StringValue("test widget"),
			},
			Connector: ConnectorAnd,
		},
		{
			Condition: Condition{
				Field:    s.Field("price").Ref(),
				Operator: s.Field("price").Operator(OpGreaterThan).Ref(),
				Value:    NewValue(100.0),
			},
		},
	}
}

func TestToDisplayStringDefaults(t *testing.T) {
	s := testSchema()
	got := ToDisplayString(displayList(s), s, nil)
	assert.Equal(t, `Name ~ "test widget" AND Price > 100`, got)
}

func TestToDisplayStringCustomConnectorLabels(t *testing.T) {
	s := testSchema()
	s.Connectors = &ConnectorConfig{AndLabel: "&&"}
	got := ToDisplayString(displayList(s), s, nil)
	assert.Contains(t, got, " && ")
}

func TestToDisplayStringOperatorFallsBackToLabel(t *testing.T) {
	s := testSchema()
	list := []Expression{
		{
			Condition: Condition{
				Field:    s.Field("name").Ref(),
				Operator: OperatorRef{Key: OpIsSet, Label: "is set"},
				Value:    Value{},
			},
		},
	}
	assert.Equal(t, "Name is set", ToDisplayString(list, s, nil))
}

func TestToDisplayStringFormatters(t *testing.T) {
	s := testSchema()
	fmts := &Formatters{
		Field:    func(f FieldRef) string { return strings.ToUpper(f.Key) },
		Value:    func(v Value) string { return "<" + v.Display + ">" },
		Operator: func(o OperatorRef) string { return o.Key },
	}

	got := ToDisplayString(displayList(s), s, fmts)
	assert.Equal(t, "NAME contains <test widget> AND PRICE gt <100>", got)
}

func TestToDisplayStringExpressionFormatterWins(t *testing.T) {
	s := testSchema()
	fmts := &Formatters{
		Expression: func(c Condition) string { return c.Field.Key + "!" },
	}

	got := ToDisplayString(displayList(s), s, fmts)
	assert.Equal(t, "name! AND price!", got)
}

func TestToDisplayStringEmptyList(t *testing.T) {
	assert.Equal(t, "", ToDisplayString(nil, testSchema(), nil))
}
