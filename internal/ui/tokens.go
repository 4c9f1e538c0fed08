package ui

import (
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// TokenKind identifies which part of a committed expression a token renders.
type TokenKind int

const (
	TokenField TokenKind = iota
	TokenOperator
	TokenValue
	TokenConnector
)

func (k TokenKind) String() string {
	switch k {
	case TokenField:
		return "field"
	case TokenOperator:
		return "operator"
	case TokenValue:
		return "value"
	case TokenConnector:
		return "connector"
	default:
		return "unknown"
	}
}

// Editable reports whether tokens of this kind can enter the inline editor.
// Field tokens cannot: changing the field invalidates operator and value, so
// the expression is deleted and rebuilt instead.
func (k TokenKind) Editable() bool {
	return k == TokenOperator || k == TokenValue || k == TokenConnector
}

// Token is one clickable, selectable unit in the committed-expression row.
type Token struct {
	Expr int // index into the expression list
	Kind TokenKind
	Text string // display text, unstyled
}

const tokenGap = 1 // columns between adjacent tokens

// tokensFor flattens the expression list into the token row. Every
// expression contributes field, operator, and value tokens (the value token
// is omitted for operators that take no value) plus a connector token when a
// connector joins it to the next expression.
func tokensFor(list []filter.Expression, s *filter.Schema) []Token {
	toks := make([]Token, 0, len(list)*4)
	for i, expr := range list {
		cond := expr.Condition
		toks = append(toks, Token{Expr: i, Kind: TokenField, Text: fieldText(cond.Field)})
		toks = append(toks, Token{Expr: i, Kind: TokenOperator, Text: operatorText(cond.Operator)})
		if vt := valueText(cond.Value); vt != "" {
			toks = append(toks, Token{Expr: i, Kind: TokenValue, Text: vt})
		}
		if i < len(list)-1 && expr.Connector != filter.ConnectorNone {
			toks = append(toks, Token{Expr: i, Kind: TokenConnector, Text: connectorText(expr.Connector, s)})
		}
	}
	return toks
}

func fieldText(ref filter.FieldRef) string {
	if ref.Label != "" {
		return ref.Label
	}
	return ref.Key
}

func operatorText(ref filter.OperatorRef) string {
	if ref.Label != "" {
		return ref.Label
	}
	if ref.Symbol != "" {
		return ref.Symbol
	}
	return ref.Key
}

func valueText(v filter.Value) string {
	if v.Display != "" {
		return v.Display
	}
	if v.Serialized != "" {
		return v.Serialized
	}
	return filter.Stringify(v.Raw)
}

func connectorText(c filter.Connector, s *filter.Schema) string {
	if label := s.ConnectorLabel(c); label != "" {
		return label
	}
	return string(c)
}

// tokenSpan records where a token starts and ends on the token row, in
// terminal columns. End is exclusive.
type tokenSpan struct {
	Start, End int
	Index      int // index into the token slice
}

// tokenSpans lays tokens out left to right with tokenGap columns between
// them. The same math drives rendering and mouse hit-testing, so the two can
// never disagree about where a token sits.
func tokenSpans(toks []Token) []tokenSpan {
	spans := make([]tokenSpan, len(toks))
	x := 0
	for i, t := range toks {
		w := runewidth.StringWidth(t.Text)
		spans[i] = tokenSpan{Start: x, End: x + w, Index: i}
		x += w + tokenGap
	}
	return spans
}

// tokenAt returns the index of the token covering column x, or -1. Gap
// columns between tokens belong to no token.
func tokenAt(spans []tokenSpan, x int) int {
	for _, sp := range spans {
		if x >= sp.Start && x < sp.End {
			return sp.Index
		}
	}
	return -1
}

// tokenIndexOf finds the token matching a selection cursor, or -1.
func tokenIndexOf(toks []Token, c cursor) int {
	for i, t := range toks {
		if t.Expr == c.Expr && t.Kind == c.Kind {
			return i
		}
	}
	return -1
}
