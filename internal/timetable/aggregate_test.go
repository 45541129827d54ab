package timetable

import (
	"strings"
	"testing"
)

// scheduleGrid builds a grid with the standard test header band (one stream,
// groups 1 and 2) followed by the given data rows at DataRowStart.
func scheduleGrid(subHeader []string, dataRows ...[]string) Grid {
	grid := headerGrid(map[int][]string{
		3: {"", "", "Поток А", "Поток А", "Поток А"},
		4: subHeader,
		5: {"", "", "1 группа", "1 группа", "2 группа"},
	})
	for _, row := range dataRows {
		grid = append(grid, row)
	}
	return grid
}

func mondayOnly(t *testing.T) []Day {
	t.Helper()
	day, ok := DayByKey("mon")
	if !ok {
		t.Fatal("missing monday in week table")
	}
	return []Day{day}
}

func TestAggregateStreamSession(t *testing.T) {
	cls := newTestClassifier()
	lecture := "Физика\nПрофессор Петров П.П.\n305"
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", ""},
		[]string{"Понедельник", "8:00 - 9:35", lecture, lecture, lecture},
	)
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, mondayOnly(t), "f_0", 1)
	if sched.IsEmpty() {
		t.Fatal("expected schedule content")
	}

	slot := sched.Days[0].Slots[0]
	if !slot.IsStream {
		t.Error("identical content across all stream columns must classify as stream session")
	}
	sc, ok := slot.Groups[""]
	if !ok {
		t.Fatal("stream session content must file under the empty label")
	}
	if _, ok := sc.Subjects["Физика"]; !ok {
		t.Errorf("missing subject, got %v", sc.Subjects)
	}
	if _, ok := sc.Rooms["305"]; !ok {
		t.Errorf("missing room, got %v", sc.Rooms)
	}
}

// Flipping exactly one non-anchor column to differing nonempty text must
// flip classification from stream session to per-subgroup.
func TestAggregateStreamDetectionMonotonicity(t *testing.T) {
	cls := newTestClassifier()
	lecture := "Физика\nПрофессор Петров П.П."
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", ""},
		[]string{"Понедельник", "8:00 - 9:35", lecture, "Другой предмет", lecture},
	)
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, mondayOnly(t), "f_0", 1)
	slot := sched.Days[0].Slots[0]
	if slot.IsStream {
		t.Error("differing non-anchor column must force per-subgroup classification")
	}
	if _, ok := slot.Groups[""]; ok {
		t.Error("per-subgroup slot must not hold stream-wide content")
	}
}

// Blank non-anchor columns do not break stream detection.
func TestAggregateStreamSessionWithBlanks(t *testing.T) {
	cls := newTestClassifier()
	lecture := "Физика\nПрофессор Петров П.П."
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", ""},
		[]string{"Понедельник", "8:00 - 9:35", lecture, "", ""},
	)
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, mondayOnly(t), "f_0", 1)
	if !sched.Days[0].Slots[0].IsStream {
		t.Error("blank sibling columns must still classify as stream session")
	}
}

// A subject-only column and a teacher-only column sharing a canonical label
// merge into one record.
func TestAggregateMergesSplitColumns(t *testing.T) {
	cls := newTestClassifier()
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", "КТС"},
		[]string{"Понедельник", "10:45 - 12:20", "", "Теория игр", "Доцент Иванов И.И.\n402"},
	)
	// Rebuild header so both КТС columns sit in group 1.
	grid[5] = []string{"", "", "1 группа", "1 группа", "1 группа"}
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, mondayOnly(t), "f_0", 1)
	slot := sched.Days[0].Slots[0]

	sc, ok := slot.Groups["КТС"]
	if !ok {
		t.Fatalf("expected merged canonical label КТС, got labels %v", labelsOf(slot))
	}
	if _, ok := sc.Subjects["Теория игр"]; !ok {
		t.Errorf("subject not merged: %v", sc.Subjects)
	}
	if _, ok := sc.Teachers["Доцент Иванов И.И."]; !ok {
		t.Errorf("teacher not merged: %v", sc.Teachers)
	}
	if _, ok := sc.Rooms["402"]; !ok {
		t.Errorf("room not merged: %v", sc.Rooms)
	}
}

func TestAggregateSkipsRowsWithoutTime(t *testing.T) {
	cls := newTestClassifier()
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", ""},
		[]string{"Понедельник", "пара 1", "Физика", "", ""},
		[]string{"Вторник", "8:00 - 9:35", "Химия", "", ""},
	)
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, mondayOnly(t), "f_0", 1)
	if !sched.IsEmpty() {
		t.Errorf("rows without a time token or matching day must be skipped, got %d days", len(sched.Days))
	}
}

func TestAggregateFirstSeenOrdering(t *testing.T) {
	cls := newTestClassifier()
	mon, _ := DayByKey("mon")
	tue, _ := DayByKey("tue")
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", ""},
		[]string{"Вторник", "10:45 - 12:20", "Химия", "", ""},
		[]string{"Вторник", "8:00 - 9:35", "Физика", "", ""},
		[]string{"Понедельник", "8:00 - 9:35", "Алгебра", "", ""},
	)
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, []Day{mon, tue}, "f_0", 1)
	if len(sched.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(sched.Days))
	}
	// Days appear in first-seen row order, not week order.
	if sched.Days[0].Day.Key != "tue" || sched.Days[1].Day.Key != "mon" {
		t.Errorf("day order = %s, %s; want tue, mon", sched.Days[0].Day.Key, sched.Days[1].Day.Key)
	}
	// Times within a day keep first-seen order, not chronological.
	slots := sched.Days[0].Slots
	if slots[0].Time != "10:45 - 12:20" || slots[1].Time != "8:00 - 9:35" {
		t.Errorf("slot order = %q, %q; want first-seen order", slots[0].Time, slots[1].Time)
	}
}

func TestEntriesDeterministic(t *testing.T) {
	cls := newTestClassifier()
	grid := scheduleGrid(
		[]string{"", "", "МСС", "КТС", ""},
		[]string{"Понедельник", "10:45 - 12:20", "Матанализ\n305", "Теория игр\n402", ""},
	)
	layout := InferLayout(grid, cls)

	sched := Aggregate(grid, layout, cls, mondayOnly(t), "f_0", 1)
	entries := sched.Entries(cls)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.Day != "ПОНЕДЕЛЬНИК" {
		t.Errorf("day = %q", e.Day)
	}
	// Merged lines sort lexicographically for deterministic output.
	first := strings.Index(e.Text, "Матанализ")
	second := strings.Index(e.Text, "Теория игр")
	if first == -1 || second == -1 || first > second {
		t.Errorf("merged lines not in sorted order: %q", e.Text)
	}
	if !strings.Contains(e.Text, "[305]") || !strings.Contains(e.Text, "[402]") {
		t.Errorf("rooms missing from merged text: %q", e.Text)
	}
}

func labelsOf(slot *Slot) []string {
	var out []string
	for l := range slot.Groups {
		out = append(out, l)
	}
	return out
}
