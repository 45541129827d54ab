package timetable

import (
	"sort"
	"strings"
)

// SlotContent accumulates cell fragments for one subgroup label. Sets rather
// than lists: identical fragments from merged rows collapse automatically.
type SlotContent struct {
	Subjects map[string]struct{}
	Teachers map[string]struct{}
	Rooms    map[string]struct{}
}

func newSlotContent() *SlotContent {
	return &SlotContent{
		Subjects: make(map[string]struct{}),
		Teachers: make(map[string]struct{}),
		Rooms:    make(map[string]struct{}),
	}
}

func (sc *SlotContent) add(rec CellRecord) {
	if rec.Subject != "" {
		sc.Subjects[rec.Subject] = struct{}{}
	}
	if rec.Teacher != "" {
		sc.Teachers[rec.Teacher] = struct{}{}
	}
	if rec.Room != "" {
		sc.Rooms[rec.Room] = struct{}{}
	}
}

// Slot is the aggregation unit for one (day, time-range) pair. Groups is
// keyed by canonical subgroup label; the empty label holds stream-wide
// content.
type Slot struct {
	Time     string
	IsStream bool
	Groups   map[string]*SlotContent
}

// HasContent reports whether any label accumulated content.
func (s *Slot) HasContent() bool {
	return len(s.Groups) > 0
}

// DaySlots holds one day's slots in first-seen time order.
type DaySlots struct {
	Day   Day
	Slots []*Slot
}

// Schedule is aggregated timetable output: days in first-seen order, slots
// in first-seen time-string order within a day. Chronological sorting of
// time strings is deliberately not applied; slot order follows the sheet's
// row order, which is how the source timetables are authored.
type Schedule struct {
	Days []*DaySlots
}

// IsEmpty reports whether no slot accumulated content.
func (s *Schedule) IsEmpty() bool {
	for _, d := range s.Days {
		for _, slot := range d.Slots {
			if slot.HasContent() {
				return false
			}
		}
	}
	return true
}

// Aggregate walks the data rows of a grid and builds the schedule for one
// group of one stream, restricted to the given days.
//
// A row contributes when its day cell matches a requested day and its time
// cell holds a clock-time token. The anchor column decides between a
// stream-wide session (every other stream column empty or textually equal to
// the anchor after normalization) and per-subgroup content. Content from
// different physical columns sharing a canonical label merges into one
// record.
func Aggregate(grid Grid, layout *Layout, cls *Classifier, days []Day, streamID string, groupNum int) *Schedule {
	schedule := &Schedule{}
	st, ok := layout.Stream(streamID)
	if !ok {
		return schedule
	}
	groupCols := st.Groups[groupNum]
	allCols := st.AllColumns()

	dayIdx := make(map[string]*DaySlots)
	slotIdx := make(map[string]map[string]*Slot)

	for r := DataRowStart; r < grid.Rows(); r++ {
		day, ok := MatchDay(grid.At(r, 0), days)
		if !ok {
			continue
		}

		timeStr := strings.TrimSpace(strings.ReplaceAll(grid.At(r, 1), "\n", " "))
		if !HasTimeToken(timeStr) {
			continue
		}

		ds, ok := dayIdx[day.Key]
		if !ok {
			ds = &DaySlots{Day: day}
			dayIdx[day.Key] = ds
			slotIdx[day.Key] = make(map[string]*Slot)
			schedule.Days = append(schedule.Days, ds)
		}
		slot, ok := slotIdx[day.Key][timeStr]
		if !ok {
			slot = &Slot{Time: timeStr, Groups: make(map[string]*SlotContent)}
			slotIdx[day.Key][timeStr] = slot
			ds.Slots = append(ds.Slots, slot)
		}

		anchorRaw := grid.At(r, st.AnchorCol)
		anchorText := cls.Normalize(anchorRaw)
		anchorRec := cls.Decompose(anchorRaw)

		streamSession := false
		if !anchorRec.IsEmpty() {
			conflict := false
			for _, col := range allCols {
				if col == st.AnchorCol {
					continue
				}
				other := cls.Normalize(grid.At(r, col))
				if other != "" && other != anchorText {
					conflict = true
					break
				}
			}
			streamSession = !conflict
		}

		if streamSession {
			slot.IsStream = true
			sc, ok := slot.Groups[""]
			if !ok {
				sc = newSlotContent()
				slot.Groups[""] = sc
			}
			sc.add(anchorRec)
			continue
		}

		for label, col := range groupCols {
			rec := cls.Decompose(grid.At(r, col))
			if rec.IsEmpty() {
				continue
			}
			canonical := cls.CanonicalLabel(label)
			sc, ok := slot.Groups[canonical]
			if !ok {
				sc = newSlotContent()
				slot.Groups[canonical] = sc
			}
			sc.add(rec)
		}
	}

	return schedule
}

// Entry is one renderable schedule line for the presentation layer.
type Entry struct {
	Day      string
	Time     string
	Text     string
	IsStream bool
}

// Entries flattens the schedule into display tuples. Within a slot, subgroup
// labels sort lexicographically and set members sort before joining, so
// output is deterministic. The general label and the stream label are hidden
// from the merged text.
func (s *Schedule) Entries(cls *Classifier) []Entry {
	general := strings.ToLower(cls.Config().GeneralGroupLabel)
	var out []Entry

	for _, ds := range s.Days {
		for _, slot := range ds.Slots {
			if !slot.HasContent() {
				continue
			}

			labels := make([]string, 0, len(slot.Groups))
			for label := range slot.Groups {
				labels = append(labels, label)
			}
			sort.Strings(labels)

			var lines []string
			for _, label := range labels {
				sc := slot.Groups[label]
				parts := make([]string, 0, 3)
				if subj := joinSet(sc.Subjects, " "); subj != "" {
					parts = append(parts, subj)
				}
				if teach := joinSet(sc.Teachers, " "); teach != "" {
					parts = append(parts, teach)
				}
				line := strings.Join(parts, " ")
				if label != "" && !strings.Contains(strings.ToLower(label), general) {
					line += " (" + label + ")"
				}
				if rooms := joinSet(sc.Rooms, ", "); rooms != "" {
					line += " [" + rooms + "]"
				}
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			lines = uniqueSorted(lines)
			if len(lines) == 0 {
				continue
			}

			sep := " / "
			if len(lines) >= 3 {
				sep = "\n"
			}
			out = append(out, Entry{
				Day:      strings.ToUpper(ds.Day.Name),
				Time:     slot.Time,
				Text:     strings.Join(lines, sep),
				IsStream: slot.IsStream,
			})
		}
	}

	return out
}

func joinSet(set map[string]struct{}, sep string) string {
	if len(set) == 0 {
		return ""
	}
	items := make([]string, 0, len(set))
	for v := range set {
		items = append(items, v)
	}
	sort.Strings(items)
	return strings.Join(items, sep)
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, v := range items {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
