package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Stream is one teaching stream recovered from the header band: a cohort
// sharing common lectures before splitting into numbered groups and named
// subgroups. Column indices refer to the source grid.
type Stream struct {
	ID        string
	Title     string
	AnchorCol int

	// Groups maps group number -> subgroup label -> column index. Labels are
	// unique per group; duplicates get " (2)", " (3)" suffixes.
	Groups map[int]map[string]int

	// Labels is the reverse map: column index -> human-readable owner label.
	Labels map[int]string

	// groupOrder preserves group discovery order for deterministic listing.
	groupOrder []int
}

// AllColumns returns every subgroup column of the stream, across all groups.
func (s *Stream) AllColumns() []int {
	var cols []int
	for _, num := range s.groupOrder {
		for _, col := range s.Groups[num] {
			cols = append(cols, col)
		}
	}
	return cols
}

// GroupNumbers returns the stream's group numbers in ascending order.
func (s *Stream) GroupNumbers() []int {
	nums := make([]int, len(s.groupOrder))
	copy(nums, s.groupOrder)
	for i := 1; i < len(nums); i++ {
		for j := i; j > 0 && nums[j-1] > nums[j]; j-- {
			nums[j-1], nums[j] = nums[j], nums[j-1]
		}
	}
	return nums
}

// Layout is the inferred column structure of one grid. It is read-only after
// InferLayout returns.
type Layout struct {
	streams map[string]*Stream

	// order holds stream ids in discovery order; first-seen registration is
	// part of the contract, so iteration never relies on map order.
	order []string
}

// Empty reports whether no stream was recovered (unusable source).
func (l *Layout) Empty() bool {
	return l == nil || len(l.order) == 0
}

// Stream returns a stream by synthetic id.
func (l *Layout) Stream(id string) (*Stream, bool) {
	s, ok := l.streams[id]
	return s, ok
}

// Streams returns all streams in discovery order.
func (l *Layout) Streams() []*Stream {
	out := make([]*Stream, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.streams[id])
	}
	return out
}

// OwnerLabel attributes a column to its owner. Anchor columns take priority
// and report the whole stream; otherwise the owning group and canonical
// subgroup label are reported. The second result is false when no stream
// owns the column.
func (l *Layout) OwnerLabel(col int, cls *Classifier) (string, bool) {
	general := strings.ToLower(cls.Config().GeneralGroupLabel)
	for _, id := range l.order {
		st := l.streams[id]
		if col == st.AnchorCol {
			return fmt.Sprintf("Поток (%s)", st.Title), true
		}
		for _, num := range st.groupOrder {
			for label, c := range st.Groups[num] {
				if c != col {
					continue
				}
				clean := cls.CanonicalLabel(label)
				if clean == "" || strings.Contains(strings.ToLower(clean), general) {
					return fmt.Sprintf("Гр. %d", num), true
				}
				return fmt.Sprintf("Гр. %d (%s)", num, clean), true
			}
		}
	}
	return "", false
}

// InferLayout scans the header band of a grid and recovers the
// stream -> group -> subgroup -> column mapping. It is a deterministic, pure
// function of the grid's first rows.
//
// The group row is the first of the scan window whose cells hold a literal
// "1 <group keyword>" token (or "1" and the keyword as separate cells). The
// stream row is the nearest row above it mentioning the stream keyword,
// defaulting to three rows up. The sub-header row sits directly above the
// group row. The group row is forward-filled left-to-right first, because
// merged header cells arrive blank.
//
// Columns whose group header yields no integer are skipped: they are
// annotation columns, not part of any group axis. An empty (never nil)
// layout is returned when no group row exists in the window; callers treat
// that as an unusable source, not an error.
func InferLayout(grid Grid, cls *Classifier) *Layout {
	layout := &Layout{streams: make(map[string]*Stream)}
	cfg := cls.Config()
	groupOne := "1 " + cfg.GroupKeyword

	groupRow := -1
	limit := grid.Rows()
	if limit > layoutScanWindow {
		limit = layoutScanWindow
	}
	for r := 0; r < limit; r++ {
		if rowHasGroupOne(grid, r, groupOne, cfg.GroupKeyword) {
			groupRow = r
			break
		}
	}
	if groupRow == -1 {
		return layout
	}

	flowRow := -1
	for r := groupRow - 1; r >= 0; r-- {
		if strings.Contains(strings.ToLower(grid.RowText(r)), cfg.StreamKeyword) {
			flowRow = r
			break
		}
	}
	if flowRow == -1 {
		flowRow = groupRow - 3
		if flowRow < 0 {
			flowRow = 0
		}
	}

	subHeaderRow := groupRow - 1

	// Manual merged-cell reconstruction for the group row.
	width := grid.Width()
	filledGroups := make([]string, width)
	last := ""
	for c := 0; c < width; c++ {
		if v := strings.TrimSpace(grid.At(groupRow, c)); v != "" {
			last = v
		}
		filledGroups[c] = last
	}

	seen := make(map[string]string) // stream title -> synthetic id

	for c := 2; c < width; c++ {
		flowVal := strings.TrimSpace(grid.At(flowRow, c))
		title := cfg.GeneralStreamTitle
		if flowVal != "" && !strings.EqualFold(flowVal, cfg.MissingToken) {
			title = strings.ReplaceAll(flowVal, "\n", " ")
		}

		num, ok := firstInt(filledGroups[c])
		if !ok {
			continue
		}

		subName := strings.TrimSpace(strings.ReplaceAll(grid.At(subHeaderRow, c), "\n", " "))
		label := subName
		if label == "" || strings.EqualFold(label, cfg.MissingToken) || label == title {
			label = cfg.GeneralGroupLabel
		}

		id, registered := seen[title]
		if !registered {
			id = fmt.Sprintf("f_%d", len(layout.order))
			seen[title] = id
			layout.streams[id] = &Stream{
				ID:        id,
				Title:     title,
				AnchorCol: c,
				Groups:    make(map[int]map[string]int),
				Labels:    make(map[int]string),
			}
			layout.order = append(layout.order, id)
		}
		st := layout.streams[id]

		if _, ok := st.Groups[num]; !ok {
			st.Groups[num] = make(map[string]int)
			st.groupOrder = append(st.groupOrder, num)
		}

		// Duplicate labels within a group get numbered suffixes.
		base := label
		for counter := 2; ; counter++ {
			if _, taken := st.Groups[num][label]; !taken {
				break
			}
			label = fmt.Sprintf("%s (%d)", base, counter)
		}

		st.Groups[num][label] = c
		st.Labels[c] = fmt.Sprintf("Гр. %d (%s)", num, label)
	}

	return layout
}

// rowHasGroupOne reports whether a row marks the group header: one cell is a
// literal "1 <keyword>", or "1" and the keyword appear as separate cells.
func rowHasGroupOne(grid Grid, row int, groupOne, keyword string) bool {
	if row < 0 || row >= grid.Rows() {
		return false
	}
	sawOne, sawKeyword := false, false
	for _, cell := range grid[row] {
		v := strings.ToLower(strings.TrimSpace(cell))
		switch v {
		case groupOne:
			return true
		case "1":
			sawOne = true
		case keyword:
			sawKeyword = true
		}
	}
	return sawOne && sawKeyword
}

// firstInt extracts the first integer from a header cell.
func firstInt(s string) (int, bool) {
	m := groupNumRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
