// Package timetable implements the spreadsheet timetable engine: it recovers
// the implicit stream/group/subgroup column structure from a loosely
// structured grid, decomposes free-text cells into subject/teacher/room
// records, and answers schedule and occupancy queries over the result.
//
// The package is pure: it performs no I/O and holds no global state. Grids
// come from the sheets client, and every heuristic (stop phrases, rank
// keywords, locale labels) is injected via ClassifierConfig.
package timetable

import "strings"

// Grid is a raw 2-D table of string cells as read from a spreadsheet export.
// Rows may be ragged; use At for bounds-safe access.
type Grid [][]string

// Header band geometry. The first HeaderRows rows hold the day/time/stream
// header bands; data rows start at DataRowStart.
const (
	HeaderRows   = 15
	DataRowStart = 15

	// layoutScanWindow bounds the header-band search in InferLayout.
	layoutScanWindow = 30
)

// At returns the cell at (row, col), or "" when out of bounds.
func (g Grid) At(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// Width returns the widest row of the grid.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// RowText joins all cells of a row with single spaces, for whole-row
// substring scans.
func (g Grid) RowText(row int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	return strings.Join(g[row], " ")
}

// Preprocess reconstructs values lost to merged cells, mirroring what the
// spreadsheet author saw: header rows are forward-filled left-to-right, the
// day column is forward-filled downward, and the time column is
// forward-filled downward across short runs (a time value covers at most two
// following blank rows). Returns a rectangular copy; the receiver is not
// modified.
func (g Grid) Preprocess() Grid {
	width := g.Width()
	out := make(Grid, len(g))
	for i, r := range g {
		row := make([]string, width)
		copy(row, r)
		out[i] = row
	}

	// Header bands: merged header cells arrive blank, inherit from the left.
	for r := 0; r < len(out) && r < HeaderRows; r++ {
		forwardFill(out[r])
	}

	// Day column: merged downward across a whole day.
	last := ""
	for r := range out {
		if v := strings.TrimSpace(out[r][0]); v != "" {
			last = v
		} else {
			out[r][0] = last
		}
	}

	// Time column: merged downward, but only across short runs.
	if width > 1 {
		lastTime := ""
		run := 0
		for r := range out {
			if v := strings.TrimSpace(out[r][1]); v != "" {
				lastTime = v
				run = 0
			} else if lastTime != "" && run < 2 {
				out[r][1] = lastTime
				run++
			} else {
				lastTime = ""
			}
		}
	}

	return out
}

// forwardFill replaces each empty cell with the nearest preceding non-empty
// value in the same row.
func forwardFill(row []string) {
	last := ""
	for i, v := range row {
		if strings.TrimSpace(v) != "" {
			last = v
		} else {
			row[i] = last
		}
	}
}
