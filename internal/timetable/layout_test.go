package timetable

import (
	"reflect"
	"testing"
)

// headerGrid builds a grid with the given rows placed at their indices and
// enough trailing rows to reach the data band.
func headerGrid(rows map[int][]string) Grid {
	grid := make(Grid, DataRowStart)
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i := range grid {
		grid[i] = make([]string, width)
	}
	for idx, r := range rows {
		copy(grid[idx], r)
	}
	return grid
}

func TestInferLayoutEndToEnd(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		3: {"", "", "Поток А", "Поток А", "Поток А"},
		4: {"", "", "МСС", "КТС", ""},
		5: {"", "", "1 группа", "1 группа", "2 группа"},
	})

	layout := InferLayout(grid, cls)
	if layout.Empty() {
		t.Fatal("expected non-empty layout")
	}

	streams := layout.Streams()
	if len(streams) != 1 {
		t.Fatalf("got %d streams, want 1", len(streams))
	}
	st := streams[0]
	if st.Title != "Поток А" {
		t.Errorf("stream title = %q, want %q", st.Title, "Поток А")
	}
	if st.AnchorCol != 2 {
		t.Errorf("anchor column = %d, want 2", st.AnchorCol)
	}

	wantGroup1 := map[string]int{"МСС": 2, "КТС": 3}
	if !reflect.DeepEqual(st.Groups[1], wantGroup1) {
		t.Errorf("group 1 map = %v, want %v", st.Groups[1], wantGroup1)
	}
	wantGroup2 := map[string]int{"Общая": 4}
	if !reflect.DeepEqual(st.Groups[2], wantGroup2) {
		t.Errorf("group 2 map = %v, want %v", st.Groups[2], wantGroup2)
	}
}

func TestInferLayoutIdempotent(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		2: {"", "", "Поток А", "", "Поток Б", ""},
		4: {"", "", "КТС", "КТС", "ФМО", "ФМО"},
		5: {"", "", "1 группа", "", "1 группа", "2 группа"},
	})

	a := InferLayout(grid, cls)
	b := InferLayout(grid, cls)

	aStreams, bStreams := a.Streams(), b.Streams()
	if len(aStreams) != len(bStreams) {
		t.Fatalf("stream counts differ: %d vs %d", len(aStreams), len(bStreams))
	}
	for i := range aStreams {
		if aStreams[i].ID != bStreams[i].ID {
			t.Errorf("stream %d id differs: %q vs %q", i, aStreams[i].ID, bStreams[i].ID)
		}
		if !reflect.DeepEqual(aStreams[i].Groups, bStreams[i].Groups) {
			t.Errorf("stream %d group maps differ", i)
		}
		if !reflect.DeepEqual(aStreams[i].Labels, bStreams[i].Labels) {
			t.Errorf("stream %d label maps differ", i)
		}
	}
}

func TestInferLayoutDeduplicatesLabels(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		3: {"", "", "Поток А", "Поток А", "Поток А"},
		4: {"", "", "КТС", "КТС", "КТС"},
		5: {"", "", "1 группа", "", ""},
	})

	layout := InferLayout(grid, cls)
	st := layout.Streams()[0]

	group := st.Groups[1]
	if len(group) != 3 {
		t.Fatalf("got %d labels, want 3: %v", len(group), group)
	}
	for _, label := range []string{"КТС", "КТС (2)", "КТС (3)"} {
		if _, ok := group[label]; !ok {
			t.Errorf("missing deduplicated label %q in %v", label, group)
		}
	}

	// No two columns share a stored label.
	seen := make(map[string]int)
	for label, col := range group {
		if prev, dup := seen[label]; dup {
			t.Errorf("label %q stored for columns %d and %d", label, prev, col)
		}
		seen[label] = col
	}
}

func TestInferLayoutNoGroupRow(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		3: {"", "", "что-то", "ещё"},
	})

	layout := InferLayout(grid, cls)
	if !layout.Empty() {
		t.Error("expected empty layout when no group row found in scan window")
	}
}

func TestInferLayoutSeparateOneAndKeywordCells(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		5: {"", "", "1", "группа", "2 группа"},
		4: {"", "", "А", "Б", "В"},
	})

	layout := InferLayout(grid, cls)
	if layout.Empty() {
		t.Fatal("row with separate \"1\" and keyword cells should register as group row")
	}
}

func TestInferLayoutSkipsNonNumericColumns(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		3: {"", "", "Поток А", "Поток А", "Поток А"},
		5: {"", "", "1 группа", "примечание", ""},
	})

	layout := InferLayout(grid, cls)
	st := layout.Streams()[0]

	// "примечание" holds no integer, and the blank column 4 inherits it
	// during merged-cell reconstruction, so both columns are annotation
	// columns: absent from every group map and from the reverse label map.
	if got := st.GroupNumbers(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("group numbers = %v, want [1]", got)
	}
	if got := st.Groups[1]; len(got) != 1 {
		t.Fatalf("group 1 map = %v, want a single column", got)
	}
	for _, col := range []int{3, 4} {
		for _, num := range st.GroupNumbers() {
			for label, c := range st.Groups[num] {
				if c == col {
					t.Errorf("annotation column %d registered in group %d as %q", col, num, label)
				}
			}
		}
		if label, ok := st.Labels[col]; ok {
			t.Errorf("annotation column %d has reverse label %q", col, label)
		}
	}
	if _, ok := st.Labels[2]; !ok {
		t.Error("column 2 should keep its reverse label")
	}
}

func TestOwnerLabel(t *testing.T) {
	cls := newTestClassifier()
	grid := headerGrid(map[int][]string{
		3: {"", "", "Поток А", "Поток А", "Поток А"},
		4: {"", "", "МСС", "КТС", ""},
		5: {"", "", "1 группа", "1 группа", "2 группа"},
	})
	layout := InferLayout(grid, cls)

	tests := []struct {
		col    int
		want   string
		wantOK bool
	}{
		{2, "Поток (Поток А)", true}, // anchor has priority over group ownership
		{3, "Гр. 1 (КТС)", true},
		{4, "Гр. 2", true}, // general label hidden
		{9, "", false},
	}

	for _, tt := range tests {
		got, ok := layout.OwnerLabel(tt.col, cls)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("OwnerLabel(%d) = %q, %v; want %q, %v", tt.col, got, ok, tt.want, tt.wantOK)
		}
	}
}
