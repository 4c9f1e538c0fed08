package filter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeBasic(t *testing.T) {
	s := testSchema()
	list := []Expression{
		{
			Condition: Condition{
				Field:    s.Field("name").Ref(),
				Operator: s.Field("name").Operator(OpContains).Ref(),
				Value:    StringValue("test"),
			},
			Connector: ConnectorAnd,
		},
		{
			Condition: Condition{
				Field:    s.Field("price").Ref(),
				Operator: s.Field("price").Operator(OpGreaterThan).Ref(),
				Value:    NewValue(100.0),
			},
			Connector: ConnectorNone,
		},
	}

	recs := Serialize(list, s)
	require.Len(t, recs, 2)
	assert.Equal(t, Serialized{Field: "name", Operator: OpContains, Value: "test", Connector: "AND"}, recs[0])
	assert.Equal(t, Serialized{Field: "price", Operator: OpGreaterThan, Value: "100", Connector: ""}, recs[1])
}

func TestSerializeDropsTrailingConnector(t *testing.T) {
	s := testSchema()
	list := []Expression{
		{
			Condition: Condition{
				Field:    s.Field("name").Ref(),
				Operator: s.Field("name").Operator(OpEquals).Ref(),
				Value:    StringValue("x"),
			},
			// A stray trailing connector must not reach the wire.
			Connector: ConnectorOr,
		},
	}

	recs := Serialize(list, s)
	require.Len(t, recs, 1)
	assert.Equal(t, "", recs[0].Connector)
}

func TestSerializeFieldOverride(t *testing.T) {
	s := testSchema()
	s.Field("price").Serialize = func(raw any) string {
		return fmt.Sprintf("num:%v", raw)
	}

	list := []Expression{
		{
			Condition: Condition{
				Field:    s.Field("price").Ref(),
				Operator: s.Field("price").Operator(OpGreaterThan).Ref(),
				Value:    NewValue(100.0),
			},
		},
	}

	recs := Serialize(list, s)
	require.Len(t, recs, 1)
	assert.Equal(t, "num:100", recs[0].Value)
}

func TestSerializeSchemaOverride(t *testing.T) {
	s := testSchema()
	s.Serialize = func(exprs []Expression) []Serialized {
		return []Serialized{{Field: "custom", Operator: "custom", Value: "custom"}}
	}

	recs := Serialize([]Expression{expr("name", OpEquals, "x", ConnectorNone)}, s)
	require.Len(t, recs, 1)
	assert.Equal(t, "custom", recs[0].Field)
}

func TestRoundTripPreservesKeysAndValueStrings(t *testing.T) {
	s := testSchema()
	recs := []Serialized{
		{Field: "name", Operator: OpContains, Value: "test widget", Connector: "AND"},
		{Field: "status", Operator: OpEquals, Value: "active", Connector: "OR"},
		{Field: "price", Operator: OpBetween, Value: "100,500", Connector: ""},
	}

	list, err := Deserialize(recs, s)
	require.NoError(t, err)
	require.Len(t, list, 3)

	back := Serialize(list, s)
	assert.Equal(t, recs, back, "field keys, operator keys, value strings, and connectors survive the round trip")
}

func TestDeserializeRebuildsValues(t *testing.T) {
	s := testSchema()
	recs := []Serialized{
		{Field: "price", Operator: OpGreaterThan, Value: "100", Connector: "AND"},
		{Field: "status", Operator: OpEquals, Value: "active"},
	}

	list, err := Deserialize(recs, s)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, 100.0, list[0].Condition.Value.Raw, "number fields coerce to float64")
	assert.Equal(t, ConnectorAnd, list[0].Connector)
	assert.Equal(t, "active", list[1].Condition.Value.Raw)
	assert.Equal(t, "Active", list[1].Condition.Value.Display, "enum display restored from option label")
}

func TestDeserializeMultiValue(t *testing.T) {
	s := testSchema()
	recs := []Serialized{{Field: "price", Operator: OpBetween, Value: "100,500"}}

	list, err := Deserialize(recs, s)
	require.NoError(t, err)
	require.Len(t, list, 1)

	raw, ok := list[0].Condition.Value.Raw.([]any)
	require.True(t, ok, "multi-value raw is a slice, got %T", list[0].Condition.Value.Raw)
	assert.Equal(t, []any{100.0, 500.0}, raw)
	assert.Equal(t, "100,500", list[0].Condition.Value.Serialized)
}

func TestDeserializeUnknownFieldFails(t *testing.T) {
	s := testSchema()
	_, err := Deserialize([]Serialized{{Field: "ghost", Operator: OpEquals, Value: "x"}}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "ghost"`)
	assert.Contains(t, err.Error(), "record 0")
}

func TestDeserializeUnknownOperatorFails(t *testing.T) {
	s := testSchema()
	_, err := Deserialize([]Serialized{{Field: "name", Operator: OpBetween, Value: "x"}}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no operator "between"`)
}

func TestDeserializeBadConnectorFails(t *testing.T) {
	s := testSchema()
	recs := []Serialized{
		{Field: "name", Operator: OpEquals, Value: "a", Connector: "XOR"},
		{Field: "name", Operator: OpEquals, Value: "b"},
	}
	_, err := Deserialize(recs, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown connector "XOR"`)
}

func TestDeserializeFreeformRoundTrip(t *testing.T) {
	s := testSchema()
	s.Freeform = &FreeformConfig{Allow: true}

	recs := []Serialized{{Field: "env", Operator: OpEquals, Value: "prod"}}
	list, err := Deserialize(recs, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Condition.Field.Freeform)
	assert.Equal(t, "env", list[0].Condition.Field.Key)

	assert.Equal(t, recs, Serialize(list, s))
}

func TestDeserializeFreeformRespectsNameValidator(t *testing.T) {
	s := testSchema()
	s.Freeform = &FreeformConfig{
		Allow: true,
		ValidateName: func(name string) error {
			return fmt.Errorf("names must be lowercase")
		},
	}

	_, err := Deserialize([]Serialized{{Field: "Env", Operator: OpEquals, Value: "x"}}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lowercase")
}

func TestDeserializeFieldOverrideError(t *testing.T) {
	s := testSchema()
	s.Field("created").Deserialize = func(raw string) (any, error) {
		return nil, fmt.Errorf("bad date %q", raw)
	}

	_, err := Deserialize([]Serialized{{Field: "created", Operator: OpBefore, Value: "not-a-date"}}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad date")
}

func TestDeserializeNormalizesTrailingConnector(t *testing.T) {
	s := testSchema()
	recs := []Serialized{{Field: "name", Operator: OpEquals, Value: "x", Connector: "AND"}}

	list, err := Deserialize(recs, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ConnectorNone, list[0].Connector)
}

func TestValueFromStringKeepsOriginalBytes(t *testing.T) {
	s := testSchema()
	f := s.Field("price")

	v, err := ValueFromString(f, f.Operator(OpBetween), "100 , 500")
	require.NoError(t, err)
	assert.Equal(t, "100 , 500", v.Serialized, "serialized face keeps original spacing")

	raw, ok := v.Raw.([]any)
	require.True(t, ok)
	assert.Equal(t, []any{100.0, 500.0}, raw, "slot parsing trims spacing")
}

type parsingCompleter struct{}

func (parsingCompleter) Suggestions(_ context.Context, _ SuggestRequest) ([]Suggestion, error) {
	return nil, nil
}

func (parsingCompleter) ParseValue(input string) (any, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(input, "$"))
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (parsingCompleter) FormatValue(raw any) string {
	return fmt.Sprintf("$%v", raw)
}

func TestValueFromStringUsesParsingCompleter(t *testing.T) {
	f := &FieldConfig{Key: "budget", Type: FieldNumber, Values: parsingCompleter{}}

	v, err := ValueFromString(f, nil, "$1500")
	require.NoError(t, err)
	assert.Equal(t, 1500, v.Raw)
	assert.Equal(t, "$1500", v.Display)
	assert.Equal(t, "$1500", v.Serialized)
}
