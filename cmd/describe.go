package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/oakwood-commons/filtx/pkg/filter"
	"github.com/oakwood-commons/filtx/pkg/logger"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print what a schema file declares as a tree",
	Long: `describe loads the schema file and prints its declarations: each field
with its type, operators, and candidate values, plus the freeform policy,
expression cap, and CEL rules. Review a schema without starting the
interactive prompt.`,
	Example: "\n  filtx describe --schema schema.yaml\n",
	Args:    cobra.NoArgs,
	RunE:    runDescribe,
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(schemaPath) == "" {
		return errors.New("describe requires --schema")
	}

	lgr := logger.FromContext(rootCtx)
	sf, err := filter.LoadSchemaFileWithLogger(schemaPath, *lgr)
	if err != nil {
		return err
	}
	s, err := sf.Schema()
	if err != nil {
		return fmt.Errorf("schema %s: %w", schemaPath, err)
	}

	out := cmd.OutOrStdout()
	title := sf.Title
	if title == "" {
		title = schemaPath
	}
	fmt.Fprintf(out, "%s: %d field(s)\n", title, len(s.Fields))
	fmt.Fprint(out, describeSchema(sf, s))
	return nil
}

// describeSchema renders the resolved schema as an ASCII tree: one branch per
// field, then freeform, cap, and rule entries.
func describeSchema(sf *filter.SchemaFile, s *filter.Schema) string {
	tree := treeprint.New()

	for i := range s.Fields {
		f := &s.Fields[i]
		branch := tree.AddBranch(fieldHeading(f))
		if f.Description != "" {
			branch.AddNode(f.Description)
		}
		branch.AddNode("operators: " + strings.Join(operatorKeys(f.Operators), ", "))
		if len(f.Options) > 0 {
			branch.AddNode("options: [" + strings.Join(optionLabels(f.Options), ", ") + "]")
		}
		if !f.MultipleAllowed() {
			branch.AddNode("single use")
		}
	}

	if s.AllowsFreeform() {
		t := s.Freeform.DefaultType
		if t == "" {
			t = filter.FieldString
		}
		tree.AddNode(fmt.Sprintf("freeform fields allowed (default type %s)", t))
	}
	if s.MaxExpressions > 0 {
		tree.AddNode(fmt.Sprintf("max expressions: %d", s.MaxExpressions))
	}
	if len(sf.Rules) > 0 {
		branch := tree.AddBranch(fmt.Sprintf("rules (%d)", len(sf.Rules)))
		for _, r := range sf.Rules {
			if r.Message != "" {
				branch.AddNode(fmt.Sprintf("%s (%s)", r.Expr, r.Message))
				continue
			}
			branch.AddNode(r.Expr)
		}
	}

	return tree.String()
}

func fieldHeading(f *filter.FieldConfig) string {
	if f.Label != "" && f.Label != f.Key {
		return fmt.Sprintf("%s [%s] %s", f.Label, f.Key, f.Type)
	}
	return fmt.Sprintf("%s %s", f.Key, f.Type)
}

func operatorKeys(ops []filter.OperatorConfig) []string {
	keys := make([]string, len(ops))
	for i, op := range ops {
		keys[i] = op.Key
	}
	return keys
}

func optionLabels(opts []filter.Suggestion) []string {
	labels := make([]string, len(opts))
	for i, o := range opts {
		labels[i] = o.DisplayLabel()
	}
	return labels
}
