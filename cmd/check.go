package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/filtx/pkg/validation"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a schema file and optional saved filters offline",
	Long: `check loads the schema file, resolves its fields and operators, compiles
its CEL rules, and reports every problem it finds. With --filters it also
validates the saved list against the schema, including rule evaluation.`,
	Example: "\n  filtx check --schema schema.yaml\n  filtx check --schema schema.yaml --filters saved.json\n",
	Args:    cobra.NoArgs,
	RunE:    runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(schemaPath) == "" {
		return errors.New("check requires --schema")
	}

	schema, err := loadSchema(rootCtx, schemaPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := 0

	if res := validation.ValidateSchema(schema); !res.Valid {
		problems += len(res.Errors)
		printFindings(out, "schema", res.Errors)
	} else {
		fmt.Fprintf(out, "schema OK (%d fields)\n", len(schema.Fields))
	}

	if strings.TrimSpace(filtersPath) != "" {
		list, err := loadFilters(rootCtx, filtersPath, schema)
		if err != nil {
			return err
		}
		if res := validation.ValidateExpressions(list, schema); !res.Valid {
			problems += len(res.Errors)
			printFindings(out, "filters", res.Errors)
		} else {
			fmt.Fprintf(out, "filters OK (%d expressions)\n", len(list))
		}
	}

	if problems > 0 {
		return fmt.Errorf("found %d problem(s)", problems)
	}
	return nil
}

func printFindings(w io.Writer, subject string, errs []validation.Error) {
	for _, e := range errs {
		if e.ExpressionIndex != validation.NoIndex {
			fmt.Fprintf(w, "%s: expression %d: %s: %s\n", subject, e.ExpressionIndex, e.Type, e.Message)
			continue
		}
		fmt.Fprintf(w, "%s: %s: %s\n", subject, e.Type, e.Message)
	}
}
