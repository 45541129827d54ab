package timetable

import (
	"strings"
	"testing"
)

func searchGrid() Grid {
	grid := headerGrid(map[int][]string{
		3: {"", "", "Поток А", "Поток А", "Поток А"},
		4: {"", "", "МСС", "КТС", ""},
		5: {"", "", "1 группа", "1 группа", "2 группа"},
	})
	grid = append(grid,
		[]string{"Понедельник", "8:00 - 9:35", "Физика\nПрофессор Петров П.П.\n305", "", ""},
		[]string{"Понедельник", "10:45 - 12:20", "", "Матанализ\nДоцент Иванов И.И.\n402", ""},
		[]string{"Вторник", "8:00 - 9:35", "", "", "Химия\nДоцент Иванов И.И.\n305"},
	)
	return grid
}

func TestSearchByTeacher(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	layout := InferLayout(grid, cls)

	matches := Search(grid, layout, cls, Week, "Иванов")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}

	// Monday hit belongs to group 1, КТС column.
	if matches[0].Day.Key != "mon" || matches[0].Owner != "Гр. 1 (КТС)" {
		t.Errorf("first match = %s/%s, want mon owner Гр. 1 (КТС)", matches[0].Day.Key, matches[0].Owner)
	}
	if matches[0].Description != "Матанализ" {
		t.Errorf("description = %q, want subject text", matches[0].Description)
	}
	if matches[0].Room != "402" {
		t.Errorf("room = %q, want 402", matches[0].Room)
	}

	// Tuesday hit belongs to group 2, general subgroup; label hidden.
	if matches[1].Day.Key != "tue" || matches[1].Owner != "Гр. 2" {
		t.Errorf("second match = %s/%s, want tue owner Гр. 2", matches[1].Day.Key, matches[1].Owner)
	}
}

func TestSearchAnchorColumnPriority(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	layout := InferLayout(grid, cls)

	matches := Search(grid, layout, cls, Week, "Петров")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Owner != "Поток (Поток А)" {
		t.Errorf("anchor column hit must attribute to the stream, got %q", matches[0].Owner)
	}
}

func TestSearchByRoomNumber(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	layout := InferLayout(grid, cls)

	matches := Search(grid, layout, cls, Week, "305")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if m.Description == "" {
			t.Errorf("match without description: %+v", m)
		}
	}
}

func TestSearchNoMatch(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	layout := InferLayout(grid, cls)

	if got := Search(grid, layout, cls, Week, "Нетакой"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
	if got := Search(grid, layout, cls, Week, "  "); got != nil {
		t.Errorf("blank query must return nil, got %+v", got)
	}
}

func TestOccupancyComplementLaw(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	mon, _ := DayByKey("mon")

	all, occupied := Occupancy(grid, cls, mon, ClockTime{8, 30})

	// occupied ⊆ all, and free ∩ occupied = ∅.
	for room := range occupied {
		if _, ok := all[room]; !ok {
			t.Errorf("occupied room %q not in all-rooms set", room)
		}
	}
	free := FreeRooms(all, occupied)
	for _, room := range free {
		if _, busy := occupied[room]; busy {
			t.Errorf("room %q both free and occupied", room)
		}
		if _, ok := all[room]; !ok {
			t.Errorf("free room %q not in all-rooms set", room)
		}
	}

	// At 8:30 Monday, 305 hosts the physics lecture; 402 is free.
	if _, busy := occupied["305"]; !busy {
		t.Errorf("305 should be occupied at 8:30 Monday, occupied=%v", occupied)
	}
	found := false
	for _, room := range free {
		if room == "402" {
			found = true
		}
	}
	if !found {
		t.Errorf("402 should be free at 8:30 Monday, free=%v", free)
	}
}

func TestRunningNow(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	mon, _ := DayByKey("mon")

	current := RunningNow(grid, cls, mon, ClockTime{11, 0})
	if len(current) == 0 {
		t.Fatal("expected a session at 11:00 Monday")
	}
	if !strings.Contains(current[0].Text, "Матанализ") {
		t.Errorf("unexpected session text %q", current[0].Text)
	}
	if current[0].MinutesLeft != 80 {
		t.Errorf("minutes left = %d, want 80", current[0].MinutesLeft)
	}

	if got := RunningNow(grid, cls, mon, ClockTime{6, 0}); len(got) != 0 {
		t.Errorf("no session runs at 6:00, got %+v", got)
	}
}

func TestLocateNow(t *testing.T) {
	cls := newTestClassifier()
	grid := searchGrid()
	mon, _ := DayByKey("mon")
	tue, _ := DayByKey("tue")

	p, ok := LocateNow(grid, cls, mon, ClockTime{8, 30}, "Петров")
	if !ok {
		t.Fatal("Петров teaches at 8:30 Monday")
	}
	if p.Room != "305" {
		t.Errorf("room = %q, want 305", p.Room)
	}
	if p.Until != (ClockTime{9, 35}) {
		t.Errorf("until = %v, want 09:35", p.Until)
	}

	if _, ok := LocateNow(grid, cls, tue, ClockTime{12, 0}, "Петров"); ok {
		t.Error("Петров has no session at 12:00 Tuesday")
	}
}
