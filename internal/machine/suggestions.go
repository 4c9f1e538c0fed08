package machine

import (
	"strings"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// CreateGroup marks the synthetic create-field suggestion appended for
// freeform input, so the dropdown can render it apart from declared fields.
const CreateGroup = "create"

// FieldSuggestions returns the candidate fields matching the typed input by
// case-insensitive prefix on label or key, in schema order. When the schema
// allows freeform fields and the trimmed input names no declared field
// exactly, a synthetic create suggestion is appended; choosing it (by key)
// creates the field.
func (m *Machine) FieldSuggestions(input string) []filter.Suggestion {
	trimmed := strings.TrimSpace(input)
	lowered := strings.ToLower(trimmed)

	var out []filter.Suggestion
	exact := false
	for _, f := range m.CandidateFields() {
		label := f.Label
		if label == "" {
			label = f.Key
		}
		if strings.EqualFold(label, trimmed) || strings.EqualFold(f.Key, trimmed) {
			exact = true
		}
		if lowered != "" &&
			!strings.HasPrefix(strings.ToLower(label), lowered) &&
			!strings.HasPrefix(strings.ToLower(f.Key), lowered) {
			continue
		}
		out = append(out, filter.Suggestion{
			Key:         f.Key,
			Label:       label,
			Description: f.Description,
			Group:       f.Group,
		})
	}

	if m.schema.AllowsFreeform() && trimmed != "" && !exact {
		if err := m.schema.Freeform.CheckName(trimmed); err == nil {
			out = append(out, filter.Suggestion{
				Key:   trimmed,
				Label: m.schema.Freeform.CreateSuggestionLabel(trimmed),
				Group: CreateGroup,
			})
		}
	}
	return out
}

// OperatorSuggestions returns the drafted field's operators matching the
// typed input, in declaration order. Input matches by case-insensitive
// prefix on label or key, or exactly on the symbol, so typing ">" finds
// greater-than.
func (m *Machine) OperatorSuggestions(input string) []filter.Suggestion {
	if m.draft.field == nil {
		return nil
	}
	trimmed := strings.TrimSpace(input)
	lowered := strings.ToLower(trimmed)

	var out []filter.Suggestion
	for _, op := range m.draft.field.Operators {
		label := op.Label
		if label == "" {
			label = op.Key
		}
		if lowered != "" &&
			!strings.HasPrefix(strings.ToLower(label), lowered) &&
			!strings.HasPrefix(strings.ToLower(op.Key), lowered) &&
			trimmed != op.Symbol {
			continue
		}
		out = append(out, filter.Suggestion{
			Key:         op.Key,
			Label:       label,
			Description: op.Symbol,
		})
	}
	return out
}

// ConnectorSuggestions returns the two connectors with their schema labels.
func (m *Machine) ConnectorSuggestions(input string) []filter.Suggestion {
	lowered := strings.ToLower(strings.TrimSpace(input))

	var out []filter.Suggestion
	for _, c := range []filter.Connector{filter.ConnectorAnd, filter.ConnectorOr} {
		label := m.schema.ConnectorLabel(c)
		if lowered != "" &&
			!strings.HasPrefix(strings.ToLower(label), lowered) &&
			!strings.HasPrefix(strings.ToLower(string(c)), lowered) {
			continue
		}
		out = append(out, filter.Suggestion{Key: string(c), Label: label})
	}
	return out
}
