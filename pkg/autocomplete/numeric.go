package autocomplete

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// maxNumericCandidates bounds how many step values a Numeric source offers,
// whatever the range.
const maxNumericCandidates = 100

// Numeric suggests values along a Min/Max/Step range and understands numbers
// the user types directly. A custom Parse can accept decorated input like
// "$1,500"; a custom Format controls how raw numbers render as labels.
// Numeric also validates that chosen values fall inside the range.
type Numeric struct {
	min, max   float64
	step       float64
	format     func(float64) string
	parse      func(string) (float64, error)
	maxResults int
}

// NumericOption adjusts a Numeric autocompleter during construction.
type NumericOption func(*Numeric)

// WithFormat sets how raw numbers render in suggestion labels and display
// values.
func WithFormat(format func(float64) string) NumericOption {
	return func(n *Numeric) {
		n.format = format
	}
}

// WithParse sets how typed input converts to a number. The default accepts
// plain decimal notation.
func WithParse(parse func(string) (float64, error)) NumericOption {
	return func(n *Numeric) {
		n.parse = parse
	}
}

// WithNumericMaxResults caps how many suggestions are returned. Zero means
// unlimited.
func WithNumericMaxResults(max int) NumericOption {
	return func(n *Numeric) {
		n.maxResults = max
	}
}

// NewNumeric builds an autocompleter over the closed range [min, max],
// offering candidates every step. A step of zero or below disables the
// generated candidates; typed numbers still parse and validate.
func NewNumeric(min, max, step float64, opts ...NumericOption) *Numeric {
	n := &Numeric{min: min, max: max, step: step}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Suggestions returns range candidates matching the typed input, with an
// exact entry for any number the user has already typed in full. With no
// input the candidates come back in range order, smallest first.
func (n *Numeric) Suggestions(_ context.Context, req Request) ([]Suggestion, error) {
	input := strings.TrimSpace(req.Input)

	if input == "" {
		items := make([]Suggestion, 0, 16)
		for i, value := 0, n.min; n.step > 0 && value <= n.max && i < maxNumericCandidates; i, value = i+1, value+n.step {
			items = append(items, n.suggestionFor(value))
		}
		return truncate(items, n.maxResults), nil
	}

	matches := make([]scored, 0, 16)
	if v, err := n.ParseValue(input); err == nil {
		value := v.(float64)
		matches = append(matches, scored{item: n.suggestionFor(value), score: scoreExact})
	}
	for i, value := 0, n.min; n.step > 0 && value <= n.max && i < maxNumericCandidates; i, value = i+1, value+n.step {
		item := n.suggestionFor(value)
		score := matchScore(item.Key, input, MatchPrefix, false)
		if score == 0 {
			score = matchScore(item.DisplayLabel(), input, MatchPrefix, false)
		}
		if score == 0 || score == scoreExact {
			// Exact hits are already covered by the typed entry above.
			continue
		}
		matches = append(matches, scored{item: item, score: score})
	}
	return rank(matches, n.maxResults), nil
}

func (n *Numeric) suggestionFor(value float64) Suggestion {
	key := strconv.FormatFloat(value, 'f', -1, 64)
	return Suggestion{Key: key, Label: n.FormatValue(value), Raw: value}
}

// FormatValue renders a raw number for display.
func (n *Numeric) FormatValue(raw any) string {
	value, ok := asFloat(raw)
	if !ok {
		return filter.Stringify(raw)
	}
	if n.format != nil {
		return n.format(value)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// ParseValue converts typed input to a raw float64.
func (n *Numeric) ParseValue(input string) (any, error) {
	input = strings.TrimSpace(input)
	if n.parse != nil {
		return n.parse(input)
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", input)
	}
	return value, nil
}

// ValidateValue rejects values outside [min, max].
func (n *Numeric) ValidateValue(raw any) error {
	value, ok := asFloat(raw)
	if !ok {
		parsed, err := n.ParseValue(filter.Stringify(raw))
		if err != nil {
			return err
		}
		value = parsed.(float64)
	}
	if value < n.min || value > n.max {
		return fmt.Errorf("value %s is outside the range %s to %s",
			n.FormatValue(value), n.FormatValue(n.min), n.FormatValue(n.max))
	}
	return nil
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
