package ui

// clampWindow slides the dropdown's visible window so the highlighted row
// stays inside it. start is the previous window start; the returned start is
// clamped to [0, total-height]. A highlight of -1 (typed text, nothing
// highlighted) pins the window to the top.
func clampWindow(start, total, height, highlight int) int {
	if height <= 0 || total <= height {
		return 0
	}
	if highlight < 0 {
		return 0
	}
	if highlight < start {
		start = highlight
	}
	if highlight >= start+height {
		start = highlight - height + 1
	}
	if start > total-height {
		start = total - height
	}
	if start < 0 {
		start = 0
	}
	return start
}

// windowBounds returns the half-open visible range for the current window.
func windowBounds(start, total, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	end := start + height
	if end > total {
		end = total
	}
	return start, end
}
