package timetable

import (
	"strings"
	"unicode/utf8"
)

// CellRecord is the structured content of one timetable cell. Any field may
// be empty; a cell with neither subject nor teacher carries no session.
type CellRecord struct {
	Subject string
	Teacher string
	Room    string
}

// IsEmpty reports whether the record carries no session content.
func (r CellRecord) IsEmpty() bool {
	return r.Subject == "" && r.Teacher == ""
}

// Decompose splits a multi-line cell into subject, teacher and room. Lines
// are normalized individually and routed in strict precedence:
//
//  1. room: a word-bounded 2-4 digit token and the whole line is at most 6
//     runes (last qualifying line wins);
//  2. teacher: an academic rank keyword or an initials pattern (last wins);
//  3. subject: anything longer than 2 runes, space-joined in arrival order.
//
// Lines matching none of the three are dropped. Malformed content never
// aborts decomposition; the worst outcome is an empty record.
func (c *Classifier) Decompose(raw string) CellRecord {
	var rec CellRecord
	if c.Normalize(raw) == "" {
		return rec
	}

	for _, line := range strings.Split(raw, "\n") {
		line = c.Normalize(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		if room := c.roomToken(line); room != "" && utf8.RuneCountInString(line) <= maxRoomLineLen {
			rec.Room = room
			continue
		}

		if c.isTeacherLine(line) {
			rec.Teacher = line
			continue
		}

		if utf8.RuneCountInString(line) > 2 {
			if rec.Subject == "" {
				rec.Subject = line
			} else {
				rec.Subject += " " + line
			}
		}
	}

	return rec
}
