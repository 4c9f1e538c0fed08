package filter

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/filtx/pkg/loader"
)

// SchemaFile is the declarative, serializable form of a Schema. Hosts ship it
// as JSON, YAML, or TOML config; Schema() resolves it against the builtin
// operator catalog. Hooks that need code (custom validators, autocompleters,
// serializers) cannot be declared here and are attached to the resolved
// Schema afterwards.
type SchemaFile struct {
	Title          string           `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Fields         []FieldDecl      `json:"fields" yaml:"fields" toml:"fields"`
	Connectors     *ConnectorConfig `json:"connectors,omitempty" yaml:"connectors,omitempty" toml:"connectors,omitempty"`
	MaxExpressions int              `json:"maxExpressions,omitempty" yaml:"maxExpressions,omitempty" toml:"maxExpressions,omitempty"`
	Freeform       *FreeformDecl    `json:"freeform,omitempty" yaml:"freeform,omitempty" toml:"freeform,omitempty"`
	// Rules are CEL expressions over the serialized expression list. They
	// are not resolved here; compile them with pkg/rules and attach the
	// result to Schema.Validate.
	Rules []RuleDecl `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
}

// FieldDecl declares one field. Operators name builtin catalog entries;
// ExtraOperators spell out custom ones in full. A field declaring neither
// gets the default operator set for its type.
type FieldDecl struct {
	Key            string         `json:"key" yaml:"key" toml:"key"`
	Label          string         `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Type           string         `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Group          string         `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
	Operators      []string       `json:"operators,omitempty" yaml:"operators,omitempty" toml:"operators,omitempty"`
	ExtraOperators []OperatorDecl `json:"extraOperators,omitempty" yaml:"extraOperators,omitempty" toml:"extraOperators,omitempty"`
	AllowMultiple  *bool          `json:"allowMultiple,omitempty" yaml:"allowMultiple,omitempty" toml:"allowMultiple,omitempty"`
	ValueRequired  *bool          `json:"valueRequired,omitempty" yaml:"valueRequired,omitempty" toml:"valueRequired,omitempty"`
	Options        []OptionDecl   `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
}

// OperatorDecl declares a custom operator in full.
type OperatorDecl struct {
	Key           string            `json:"key" yaml:"key" toml:"key"`
	Label         string            `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Symbol        string            `json:"symbol,omitempty" yaml:"symbol,omitempty" toml:"symbol,omitempty"`
	ValueRequired *bool             `json:"valueRequired,omitempty" yaml:"valueRequired,omitempty" toml:"valueRequired,omitempty"`
	CustomInput   string            `json:"customInput,omitempty" yaml:"customInput,omitempty" toml:"customInput,omitempty"`
	MultiValue    *MultiValueConfig `json:"multiValue,omitempty" yaml:"multiValue,omitempty" toml:"multiValue,omitempty"`
}

// OptionDecl declares one fixed candidate value.
type OptionDecl struct {
	Key         string `json:"key" yaml:"key" toml:"key"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Group       string `json:"group,omitempty" yaml:"group,omitempty" toml:"group,omitempty"`
}

// FreeformDecl declares the freeform-field policy.
type FreeformDecl struct {
	Allow       bool     `json:"allow" yaml:"allow" toml:"allow"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty" toml:"placeholder,omitempty"`
	CreateLabel string   `json:"createLabel,omitempty" yaml:"createLabel,omitempty" toml:"createLabel,omitempty"`
	Operators   []string `json:"operators,omitempty" yaml:"operators,omitempty" toml:"operators,omitempty"`
	DefaultType string   `json:"defaultType,omitempty" yaml:"defaultType,omitempty" toml:"defaultType,omitempty"`
}

// RuleDecl is one CEL rule over the serialized expression list.
type RuleDecl struct {
	Expr    string `json:"expr" yaml:"expr" toml:"expr"`
	Message string `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
}

// LoadSchemaFile reads and decodes a schema file, dispatching on its
// extension and sniffing the content when the extension is unknown.
func LoadSchemaFile(path string) (*SchemaFile, error) {
	return LoadSchemaFileWithLogger(path, logr.Discard())
}

// LoadSchemaFileWithLogger is like LoadSchemaFile with format dispatch
// recorded on the logger.
func LoadSchemaFileWithLogger(path string, lgr logr.Logger) (*SchemaFile, error) {
	var sf SchemaFile
	if err := loader.DecodeFileWithLogger(path, &sf, lgr); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return &sf, nil
}

// Schema resolves the declaration into a usable Schema. Unknown field types
// and unknown catalog operator keys are errors; validation beyond resolution
// (duplicate keys, empty field list) is the validation package's job.
func (sf *SchemaFile) Schema() (*Schema, error) {
	s := &Schema{
		Connectors:     sf.Connectors,
		MaxExpressions: sf.MaxExpressions,
	}

	for i, fd := range sf.Fields {
		f, err := fd.field()
		if err != nil {
			return nil, fmt.Errorf("field %d (%q): %w", i, fd.Key, err)
		}
		s.Fields = append(s.Fields, f)
	}

	if sf.Freeform != nil {
		ff, err := sf.Freeform.config()
		if err != nil {
			return nil, fmt.Errorf("freeform: %w", err)
		}
		s.Freeform = ff
	}
	return s, nil
}

func (fd *FieldDecl) field() (FieldConfig, error) {
	t := FieldString
	if fd.Type != "" {
		parsed, ok := ParseFieldType(fd.Type)
		if !ok {
			return FieldConfig{}, fmt.Errorf("unknown field type %q", fd.Type)
		}
		t = parsed
	}

	label := fd.Label
	if label == "" {
		label = fd.Key
	}

	var ops []OperatorConfig
	for _, key := range fd.Operators {
		op, ok := BuiltinOperator(key)
		if !ok {
			return FieldConfig{}, fmt.Errorf("unknown operator %q", key)
		}
		ops = append(ops, op)
	}
	for _, od := range fd.ExtraOperators {
		ops = append(ops, od.operator())
	}
	if len(ops) == 0 {
		ops = DefaultOperatorsFor(t)
	}

	var options []Suggestion
	for _, od := range fd.Options {
		options = append(options, Suggestion{
			Key:         od.Key,
			Label:       od.Label,
			Description: od.Description,
			Group:       od.Group,
			Raw:         od.Key,
		})
	}

	return FieldConfig{
		Key:           fd.Key,
		Label:         label,
		Type:          t,
		Description:   fd.Description,
		Group:         fd.Group,
		Operators:     ops,
		AllowMultiple: fd.AllowMultiple,
		ValueRequired: fd.ValueRequired,
		Options:       options,
	}, nil
}

func (od *OperatorDecl) operator() OperatorConfig {
	label := od.Label
	if label == "" {
		label = od.Key
	}
	return OperatorConfig{
		Key:           od.Key,
		Label:         label,
		Symbol:        od.Symbol,
		ValueRequired: od.ValueRequired,
		CustomInput:   od.CustomInput,
		MultiValue:    od.MultiValue,
	}
}

func (fd *FreeformDecl) config() (*FreeformConfig, error) {
	var ops []OperatorConfig
	for _, key := range fd.Operators {
		op, ok := BuiltinOperator(key)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", key)
		}
		ops = append(ops, op)
	}

	var t FieldType
	if fd.DefaultType != "" {
		parsed, ok := ParseFieldType(fd.DefaultType)
		if !ok {
			return nil, fmt.Errorf("unknown field type %q", fd.DefaultType)
		}
		t = parsed
	}

	return &FreeformConfig{
		Allow:       fd.Allow,
		Placeholder: fd.Placeholder,
		CreateLabel: fd.CreateLabel,
		Operators:   ops,
		DefaultType: t,
	}, nil
}
