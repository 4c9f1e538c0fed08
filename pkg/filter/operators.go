package filter

// Catalog keys for the built-in operators. Schema files may reference these
// by key instead of spelling out full operator configs.
const (
	OpEquals         = "eq"
	OpNotEquals      = "neq"
	OpContains       = "contains"
	OpNotContains    = "not-contains"
	OpStartsWith     = "starts-with"
	OpEndsWith       = "ends-with"
	OpGreaterThan    = "gt"
	OpGreaterOrEqual = "gte"
	OpLessThan       = "lt"
	OpLessOrEqual    = "lte"
	OpBetween        = "between"
	OpIn             = "in"
	OpBefore         = "before"
	OpAfter          = "after"
	OpIsSet          = "is-set"
	OpNotSet         = "not-set"
)

func boolPtr(b bool) *bool { return &b }

// builtinOperators is the catalog behind BuiltinOperator. Configs are copied
// out on lookup so callers can tweak them freely.
var builtinOperators = map[string]OperatorConfig{
	OpEquals:         {Key: OpEquals, Label: "equals", Symbol: "="},
	OpNotEquals:      {Key: OpNotEquals, Label: "not equals", Symbol: "!="},
	OpContains:       {Key: OpContains, Label: "contains", Symbol: "~"},
	OpNotContains:    {Key: OpNotContains, Label: "does not contain", Symbol: "!~"},
	OpStartsWith:     {Key: OpStartsWith, Label: "starts with", Symbol: "^"},
	OpEndsWith:       {Key: OpEndsWith, Label: "ends with", Symbol: "$"},
	OpGreaterThan:    {Key: OpGreaterThan, Label: "greater than", Symbol: ">"},
	OpGreaterOrEqual: {Key: OpGreaterOrEqual, Label: "at least", Symbol: ">="},
	OpLessThan:       {Key: OpLessThan, Label: "less than", Symbol: "<"},
	OpLessOrEqual:    {Key: OpLessOrEqual, Label: "at most", Symbol: "<="},
	OpBefore:         {Key: OpBefore, Label: "before", Symbol: "<"},
	OpAfter:          {Key: OpAfter, Label: "after", Symbol: ">"},
	OpBetween: {
		Key:        OpBetween,
		Label:      "between",
		MultiValue: &MultiValueConfig{Count: 2, Separator: ",", Labels: []string{"from", "to"}},
	},
	OpIn: {
		Key:        OpIn,
		Label:      "is one of",
		MultiValue: &MultiValueConfig{Count: -1, Separator: ","},
	},
	OpIsSet:  {Key: OpIsSet, Label: "is set", ValueRequired: boolPtr(false)},
	OpNotSet: {Key: OpNotSet, Label: "is not set", ValueRequired: boolPtr(false)},
}

// BuiltinOperator returns a copy of the catalog operator with the given key.
func BuiltinOperator(key string) (OperatorConfig, bool) {
	op, ok := builtinOperators[key]
	if !ok {
		return OperatorConfig{}, false
	}
	if op.MultiValue != nil {
		mv := *op.MultiValue
		mv.Labels = append([]string(nil), op.MultiValue.Labels...)
		op.MultiValue = &mv
	}
	if op.ValueRequired != nil {
		op.ValueRequired = boolPtr(*op.ValueRequired)
	}
	return op, true
}

// BuiltinOperators resolves a list of catalog keys into operator configs,
// skipping nothing: an unknown key is the caller's bug and reported via ok.
func BuiltinOperators(keys ...string) ([]OperatorConfig, bool) {
	out := make([]OperatorConfig, 0, len(keys))
	for _, k := range keys {
		op, ok := BuiltinOperator(k)
		if !ok {
			return nil, false
		}
		out = append(out, op)
	}
	return out, true
}

func mustBuiltins(keys ...string) []OperatorConfig {
	ops, ok := BuiltinOperators(keys...)
	if !ok {
		panic("unknown builtin operator key")
	}
	return ops
}

// DefaultOperatorsFor returns the conventional operator set for a field type.
// Used by schema files that declare no operators for a field.
func DefaultOperatorsFor(t FieldType) []OperatorConfig {
	switch t {
	case FieldNumber:
		return mustBuiltins(OpEquals, OpNotEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual, OpBetween)
	case FieldDate, FieldDateTime:
		return mustBuiltins(OpEquals, OpBefore, OpAfter, OpBetween)
	case FieldBoolean:
		return mustBuiltins(OpEquals, OpNotEquals)
	case FieldEnum, FieldID:
		return mustBuiltins(OpEquals, OpNotEquals, OpIn)
	case FieldString, FieldCustom:
		return mustBuiltins(OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpIsSet, OpNotSet)
	default:
		return mustBuiltins(OpEquals, OpNotEquals)
	}
}

// DefaultFreeformOperators returns the operator set for ad hoc fields.
func DefaultFreeformOperators() []OperatorConfig {
	return mustBuiltins(OpEquals, OpNotEquals, OpContains)
}
