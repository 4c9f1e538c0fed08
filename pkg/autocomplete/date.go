package autocomplete

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oakwood-commons/filtx/pkg/filter"
)

// DefaultDateLayout is the layout used for typed and displayed literal
// dates.
const DefaultDateLayout = "2006-01-02"

// datePreset is a relative date the Date source offers by name. The raw
// value stays the symbolic key; resolving it against a clock is the host's
// concern when the filter is executed.
type datePreset struct {
	key   string
	label string
}

var datePresets = []datePreset{
	{key: "today", label: "Today"},
	{key: "yesterday", label: "Yesterday"},
	{key: "this-week", label: "This week"},
	{key: "last-week", label: "Last week"},
	{key: "this-month", label: "This month"},
	{key: "last-month", label: "Last month"},
	{key: "this-year", label: "This year"},
}

// Date suggests relative date presets and accepts literal dates typed in the
// configured layout. Preset values stay symbolic ("today" rather than a
// timestamp); literal input parses to a time.Time.
type Date struct {
	layout     string
	now        func() time.Time
	maxResults int
}

// DateOption adjusts a Date autocompleter during construction.
type DateOption func(*Date)

// WithLayout sets the layout literal dates are typed and displayed in.
func WithLayout(layout string) DateOption {
	return func(d *Date) {
		d.layout = layout
	}
}

// WithClock overrides the clock used to annotate presets with their current
// resolution.
func WithClock(now func() time.Time) DateOption {
	return func(d *Date) {
		d.now = now
	}
}

// WithDateMaxResults caps how many suggestions are returned. Zero means
// unlimited.
func WithDateMaxResults(max int) DateOption {
	return func(d *Date) {
		d.maxResults = max
	}
}

// NewDate builds a date autocompleter using the default ISO layout.
func NewDate(opts ...DateOption) *Date {
	d := &Date{layout: DefaultDateLayout, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Suggestions returns matching presets, plus an exact entry when the input
// parses as a literal date. With no input the presets come back in their
// natural order, today first.
func (d *Date) Suggestions(_ context.Context, req Request) ([]Suggestion, error) {
	input := strings.TrimSpace(req.Input)

	if input == "" {
		items := make([]Suggestion, 0, len(datePresets))
		for _, preset := range datePresets {
			items = append(items, d.presetSuggestion(preset))
		}
		return truncate(items, d.maxResults), nil
	}

	matches := make([]scored, 0, len(datePresets)+1)
	if when, err := time.Parse(d.layout, input); err == nil {
		matches = append(matches, scored{
			item:  Suggestion{Key: input, Label: when.Format(d.layout), Raw: when},
			score: scoreExact,
		})
	}
	for _, preset := range datePresets {
		score := matchScore(preset.label, input, MatchSubstring, false)
		if k := matchScore(preset.key, input, MatchSubstring, false); k > score {
			score = k
		}
		if score == 0 {
			continue
		}
		matches = append(matches, scored{item: d.presetSuggestion(preset), score: score})
	}
	return rank(matches, d.maxResults), nil
}

func (d *Date) presetSuggestion(preset datePreset) Suggestion {
	return Suggestion{
		Key:         preset.key,
		Label:       preset.label,
		Description: d.describe(preset.key),
		Raw:         preset.key,
	}
}

// describe annotates a preset with the date it resolves to right now, so the
// dropdown can show "Yesterday  2026-08-22".
func (d *Date) describe(key string) string {
	now := d.now()
	switch key {
	case "today":
		return now.Format(d.layout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(d.layout)
	case "this-week":
		return "week of " + startOfWeek(now).Format(d.layout)
	case "last-week":
		return "week of " + startOfWeek(now).AddDate(0, 0, -7).Format(d.layout)
	case "this-month":
		return now.Format("January 2006")
	case "last-month":
		return now.AddDate(0, -1, 0).Format("January 2006")
	case "this-year":
		return now.Format("2006")
	}
	return ""
}

// startOfWeek returns the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// FormatValue renders a chosen date for display: preset keys show their
// label, times show in the configured layout.
func (d *Date) FormatValue(raw any) string {
	switch v := raw.(type) {
	case time.Time:
		return v.Format(d.layout)
	case string:
		for _, preset := range datePresets {
			if preset.key == v {
				return preset.label
			}
		}
		return v
	}
	return filter.Stringify(raw)
}

// ParseValue converts typed input to either a preset key or a time.Time.
func (d *Date) ParseValue(input string) (any, error) {
	input = strings.TrimSpace(input)
	lowered := strings.ToLower(input)
	for _, preset := range datePresets {
		if preset.key == lowered || strings.ToLower(preset.label) == lowered {
			return preset.key, nil
		}
	}
	if when, err := time.Parse(d.layout, input); err == nil {
		return when, nil
	}
	return nil, fmt.Errorf("%q is not a date in the form %s or a known preset", input, d.layout)
}

// ValidateValue rejects values that are neither presets nor dates in the
// configured layout.
func (d *Date) ValidateValue(raw any) error {
	switch v := raw.(type) {
	case time.Time:
		return nil
	case string:
		_, err := d.ParseValue(v)
		return err
	}
	return fmt.Errorf("value %v is not a date", raw)
}
