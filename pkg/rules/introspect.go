package rules

import (
	"sort"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// referencedFieldKeys walks a compiled rule's AST and collects the schema
// field keys it names. A key is counted when a string literal is compared
// against an element's .field attribute, covering the shapes rules actually
// take:
//
//	e.field == "price"
//	e.field != "status"
//	e.field in ["price", "discount"]
func referencedFieldKeys(ast *cel.Ast) []string {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	collectFieldKeys(parsed.GetExpr(), seen)
	return sortedKeys(seen)
}

// comparisonOps are the operators whose operands can pair .field with a
// literal key.
var comparisonOps = map[string]bool{
	"_==_": true,
	"_!=_": true,
	"_in_": true,
	"@in":  true,
}

func collectFieldKeys(expr *exprpb.Expr, seen map[string]bool) {
	if expr == nil {
		return
	}

	switch expr.ExprKind.(type) {
	case *exprpb.Expr_CallExpr:
		call := expr.GetCallExpr()
		if call == nil {
			return
		}
		if comparisonOps[call.Function] {
			collectFromComparison(call.Args, seen)
		}
		collectFieldKeys(call.Target, seen)
		for _, arg := range call.Args {
			collectFieldKeys(arg, seen)
		}

	case *exprpb.Expr_SelectExpr:
		collectFieldKeys(expr.GetSelectExpr().GetOperand(), seen)

	case *exprpb.Expr_ComprehensionExpr:
		comp := expr.GetComprehensionExpr()
		collectFieldKeys(comp.GetIterRange(), seen)
		collectFieldKeys(comp.GetAccuInit(), seen)
		collectFieldKeys(comp.GetLoopCondition(), seen)
		collectFieldKeys(comp.GetLoopStep(), seen)
		collectFieldKeys(comp.GetResult(), seen)

	case *exprpb.Expr_ListExpr:
		for _, elem := range expr.GetListExpr().GetElements() {
			collectFieldKeys(elem, seen)
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range expr.GetStructExpr().GetEntries() {
			collectFieldKeys(entry.GetMapKey(), seen)
			collectFieldKeys(entry.GetValue(), seen)
		}
	}
}

// collectFromComparison records string literals paired with a .field select
// in a comparison's arguments, in either operand order. Membership tests
// against list literals record every string element.
func collectFromComparison(args []*exprpb.Expr, seen map[string]bool) {
	var hasFieldSelect bool
	for _, arg := range args {
		if isFieldSelect(arg) {
			hasFieldSelect = true
			break
		}
	}
	if !hasFieldSelect {
		return
	}
	for _, arg := range args {
		if key, ok := stringConst(arg); ok {
			seen[key] = true
			continue
		}
		if list := arg.GetListExpr(); list != nil {
			for _, elem := range list.GetElements() {
				if key, ok := stringConst(elem); ok {
					seen[key] = true
				}
			}
		}
	}
}

// isFieldSelect reports whether expr selects the .field attribute off some
// operand, as in e.field.
func isFieldSelect(expr *exprpb.Expr) bool {
	sel := expr.GetSelectExpr()
	return sel != nil && sel.GetField() == "field"
}

func stringConst(expr *exprpb.Expr) (string, bool) {
	c := expr.GetConstExpr()
	if c == nil {
		return "", false
	}
	if _, ok := c.ConstantKind.(*exprpb.Constant_StringValue); !ok {
		return "", false
	}
	return c.GetStringValue(), true
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
