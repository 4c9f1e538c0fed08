// Package validation checks filter expressions and whole expression lists
// against their schema. Findings are collected into error values, never
// panics: an invalid list is ordinary data, reported with enough structure
// for a host to attach messages to the right token.
package validation

import (
	"fmt"
)

// ErrorType classifies what part of an expression a finding concerns.
type ErrorType string

const (
	// ErrField: the field is unknown or may not be used again.
	ErrField ErrorType = "field"
	// ErrOperator: the operator is not available on the field.
	ErrOperator ErrorType = "operator"
	// ErrValue: the value is missing, malformed, or rejected by a hook.
	ErrValue ErrorType = "value"
	// ErrExpression: the expression as a whole breaks a list-level rule.
	ErrExpression ErrorType = "expression"
	// ErrSchema: the schema itself is misconfigured or its limits are hit.
	ErrSchema ErrorType = "schema"
)

// NoIndex marks errors not tied to a single expression.
const NoIndex = -1

// Error is one validation finding. It implements error so schema-level hooks
// can return it through a plain []error.
type Error struct {
	Type    ErrorType
	Message string
	// Field is the key of the field concerned, when one is.
	Field string
	// ExpressionIndex locates the offending expression in the list, or
	// NoIndex for list-level findings.
	ExpressionIndex int
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Result is the outcome of validating a list.
type Result struct {
	Valid  bool
	Errors []Error
}

// ForExpression returns the findings tied to expression index i.
func (r Result) ForExpression(i int) []Error {
	var out []Error
	for _, e := range r.Errors {
		if e.ExpressionIndex == i {
			out = append(out, e)
		}
	}
	return out
}

// resultOf wraps findings into a Result.
func resultOf(errs []Error) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}
