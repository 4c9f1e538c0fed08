// Package rules compiles schema-level validation rules written in CEL and
// evaluates them against the committed expression list. A rule sees the list
// as the variable `_`, each element a map with field, operator, value, and
// connector keys:
//
//	_.filter(e, e.field == "discount").size() <= 1
//	!_.exists(e, e.field == "price" && e.operator == "lt" && e.value < 0)
//
// A rule that evaluates to false fails validation with its declared message.
package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/filtx/pkg/filter"
	"github.com/oakwood-commons/filtx/pkg/validation"
)

// Engine holds compiled rules ready for evaluation.
type Engine struct {
	env   *cel.Env
	rules []compiledRule
}

type compiledRule struct {
	decl    filter.RuleDecl
	program cel.Program
	fields  []string
}

// newEnv builds the CEL environment rules compile against: the expression
// list bound to `_`, plus the common extension libraries.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
}

// NewEngine compiles the given rule declarations. Compilation errors name
// the failing rule by index and expression.
func NewEngine(decls []filter.RuleDecl) (*Engine, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	e := &Engine{env: env}
	for i, decl := range decls {
		ast, issues := env.Compile(decl.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, decl.Expr, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, decl.Expr, err)
		}
		e.rules = append(e.rules, compiledRule{
			decl:    decl,
			program: program,
			fields:  referencedFieldKeys(ast),
		})
	}
	return e, nil
}

// Len returns how many rules the engine holds.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Validate evaluates every rule against the expression list and returns one
// error per failed rule. The signature matches filter.Schema.Validate, so an
// engine binds directly:
//
//	schema.Validate = engine.Validate
func (e *Engine) Validate(exprs []filter.Expression) []error {
	if len(e.rules) == 0 {
		return nil
	}
	data := listData(exprs)

	var errs []error
	for i, rule := range e.rules {
		out, _, err := rule.program.Eval(map[string]any{"_": data})
		if err != nil {
			errs = append(errs, validation.Error{
				Type:            validation.ErrExpression,
				Message:         fmt.Sprintf("rule %d failed to evaluate: %v", i, err),
				ExpressionIndex: validation.NoIndex,
			})
			continue
		}
		if out == types.True {
			continue
		}
		if _, ok := out.Value().(bool); !ok {
			errs = append(errs, validation.Error{
				Type:            validation.ErrExpression,
				Message:         fmt.Sprintf("rule %d must evaluate to a boolean, got %v", i, out.Value()),
				ExpressionIndex: validation.NoIndex,
			})
			continue
		}
		errs = append(errs, failure(rule))
	}
	return errs
}

// failure builds the finding for a rule that evaluated to false. Rules that
// reference exactly one field get attributed to it, so the widget can
// highlight the offending tokens.
func failure(rule compiledRule) validation.Error {
	message := rule.decl.Message
	if message == "" {
		message = fmt.Sprintf("rule %q not satisfied", rule.decl.Expr)
	}
	err := validation.Error{
		Type:            validation.ErrExpression,
		Message:         message,
		ExpressionIndex: validation.NoIndex,
	}
	if len(rule.fields) == 1 {
		err.Field = rule.fields[0]
	}
	return err
}

// ReferencedFields returns the union of schema field keys named across all
// rules, sorted.
func (e *Engine) ReferencedFields() []string {
	seen := map[string]bool{}
	for _, rule := range e.rules {
		for _, key := range rule.fields {
			seen[key] = true
		}
	}
	return sortedKeys(seen)
}

// UnknownFields returns the field keys rules reference that the schema does
// not declare. Freeform schemas accept any key, so they report none.
func (e *Engine) UnknownFields(s *filter.Schema) []string {
	if s == nil {
		return e.ReferencedFields()
	}
	if s.AllowsFreeform() {
		return nil
	}
	var unknown []string
	for _, key := range e.ReferencedFields() {
		if s.Field(key) == nil {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

// listData converts the expression list into the plain maps rules evaluate
// over. Values surface as their raw form; the final connector is empty.
func listData(exprs []filter.Expression) []any {
	data := make([]any, 0, len(exprs))
	for _, expr := range exprs {
		data = append(data, map[string]any{
			"field":     expr.Condition.Field.Key,
			"operator":  expr.Condition.Operator.Key,
			"value":     expr.Condition.Value.Raw,
			"connector": string(expr.Connector),
		})
	}
	return data
}
