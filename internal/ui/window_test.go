package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampWindow(t *testing.T) {
	tests := []struct {
		name                            string
		start, total, height, highlight int
		want                            int
	}{
		{"list fits", 0, 4, 6, 3, 0},
		{"no highlight pins top", 3, 10, 4, -1, 0},
		{"highlight inside window", 2, 10, 4, 3, 2},
		{"highlight above window", 5, 10, 4, 2, 2},
		{"highlight below window", 0, 10, 4, 6, 3},
		{"highlight at last row", 0, 10, 4, 9, 6},
		{"start past end clamps", 9, 10, 4, 7, 6},
		{"zero height", 2, 10, 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampWindow(tt.start, tt.total, tt.height, tt.highlight))
		})
	}
}

func TestWindowBounds(t *testing.T) {
	lo, hi := windowBounds(0, 3, 6)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi, "short lists are fully visible")

	lo, hi = windowBounds(2, 10, 4)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 6, hi)

	lo, hi = windowBounds(8, 10, 4)
	assert.Equal(t, 8, lo)
	assert.Equal(t, 10, hi, "end never passes the list")

	lo, hi = windowBounds(5, 10, 0)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 10, hi, "zero height disables windowing")
}

func TestDropdownFollowsHighlight(t *testing.T) {
	// Drive the real dropdown: nine fields, six visible.
	m, _ := newTestModel(t, wideSchema(9))
	assert.Len(t, m.suggestions, 9)
	assert.Equal(t, 0, m.dropStart)

	for i := 0; i < 8; i++ {
		m.moveHighlight(1)
	}
	assert.Equal(t, 8, m.highlight)
	assert.Equal(t, 3, m.dropStart, "window slides to keep the highlight visible")

	for i := 0; i < 8; i++ {
		m.moveHighlight(-1)
	}
	assert.Equal(t, 0, m.highlight)
	assert.Equal(t, 0, m.dropStart)
}
