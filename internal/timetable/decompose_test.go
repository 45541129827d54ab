package timetable

import "testing"

func TestDecompose(t *testing.T) {
	cls := newTestClassifier()

	tests := []struct {
		name string
		cell string
		want CellRecord
	}{
		{
			name: "Subject teacher room",
			cell: "Матанализ\nДоцент Иванов И.И.\n305",
			want: CellRecord{Subject: "Матанализ", Teacher: "Доцент Иванов И.И.", Room: "305"},
		},
		{
			name: "Room with letter",
			cell: "Физика\n521а",
			want: CellRecord{Subject: "Физика", Room: "521а"},
		},
		{
			name: "Teacher by initials only",
			cell: "Петров П.С.",
			want: CellRecord{Teacher: "Петров П.С."},
		},
		{
			name: "Teacher by rank keyword",
			cell: "Ассистент Сидорова",
			want: CellRecord{Teacher: "Ассистент Сидорова"},
		},
		{
			name: "Multi-line subject joins in order",
			cell: "Теория\nвероятностей",
			want: CellRecord{Subject: "Теория вероятностей"},
		},
		{
			name: "Empty cell",
			cell: "",
			want: CellRecord{},
		},
		{
			name: "Missing token",
			cell: "nan",
			want: CellRecord{},
		},
		{
			name: "Short junk dropped",
			cell: "Хд\nАлгебра",
			want: CellRecord{Subject: "Алгебра"},
		},
		{
			name: "Last room line wins",
			cell: "305\n402",
			want: CellRecord{Room: "402"},
		},
		{
			name: "First token in a room line wins",
			cell: "12 34",
			want: CellRecord{Room: "12"},
		},
		{
			// The whole-cell scrub runs first, so a cell opening with a stop
			// phrase is discarded entirely, content below included.
			name: "Stop phrase opening the cell discards it",
			cell: "по согласованию\nИстория",
			want: CellRecord{},
		},
		{
			name: "Stop phrase on a later line discarded",
			cell: "История\nпо согласованию",
			want: CellRecord{Subject: "История"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cls.Decompose(tt.cell)
			if got != tt.want {
				t.Errorf("Decompose(%q) = %+v, want %+v", tt.cell, got, tt.want)
			}
		})
	}
}

// A bare 2-4 digit token in a short line is a room; the same token inside a
// longer prose line must route to subject instead.
func TestRoomClassifierPurity(t *testing.T) {
	cls := newTestClassifier()

	short := cls.Decompose("305")
	if short.Room != "305" {
		t.Errorf("short digit line: room = %q, want 305", short.Room)
	}
	if short.Subject != "" {
		t.Errorf("short digit line must not become a subject, got %q", short.Subject)
	}

	long := cls.Decompose("Семинар в аудитории 305 корпуса")
	if long.Room != "" {
		t.Errorf("long prose line: room = %q, want empty", long.Room)
	}
	if long.Subject == "" {
		t.Error("long prose line should route to subject")
	}
}
