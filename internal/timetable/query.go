package timetable

import (
	"sort"
	"strings"

	"github.com/glebkhr/schedbot-go/internal/sliceutil"
)

// Match is one search hit: a cell mentioning the query, attributed to the
// stream or group owning its column.
type Match struct {
	Day         Day
	Time        string
	Owner       string
	Description string
	Room        string
}

// unknownOwner labels columns no stream claims (annotation columns).
const unknownOwner = "Неизв."

// Search scans every content column of the data rows for a case-insensitive
// substring hit and attributes each hit via the layout's reverse column map.
// Used for both teacher-name and room-number queries; results are ordered by
// week day, then time string, then owner. Duplicate hits (the same person in
// a subject column and a teacher column of one row) collapse.
func Search(grid Grid, layout *Layout, cls *Classifier, days []Day, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []Match

	for r := DataRowStart; r < grid.Rows(); r++ {
		day, ok := MatchDay(grid.At(r, 0), days)
		if !ok {
			continue
		}
		timeStr := strings.TrimSpace(strings.ReplaceAll(grid.At(r, 1), "\n", " "))
		if !HasTimeToken(timeStr) {
			continue
		}

		for c := 2; c < grid.Width(); c++ {
			cellRaw := grid.At(r, c)
			if !strings.Contains(strings.ToLower(cellRaw), q) {
				continue
			}

			owner, ok := layout.OwnerLabel(c, cls)
			if !ok {
				owner = unknownOwner
			}

			rec := cls.Decompose(cellRaw)
			desc := rec.Subject
			if desc == "" {
				desc = rec.Teacher
			}
			if desc == "" {
				desc = strings.TrimSpace(strings.ReplaceAll(cls.Normalize(cellRaw), "\n", " "))
			}
			if desc == "" {
				continue
			}

			matches = append(matches, Match{
				Day:         day,
				Time:        timeStr,
				Owner:       owner,
				Description: desc,
				Room:        rec.Room,
			})
		}
	}

	matches = sliceutil.Deduplicate(matches, func(m Match) string {
		return m.Day.Key + "|" + m.Time + "|" + m.Owner + "|" + m.Description
	})

	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := weekIndex(matches[i].Day), weekIndex(matches[j].Day)
		if di != dj {
			return di < dj
		}
		if matches[i].Time != matches[j].Time {
			return matches[i].Time < matches[j].Time
		}
		return matches[i].Owner < matches[j].Owner
	})

	return matches
}

// Occupancy scans all data rows of a grid and returns every room token ever
// seen plus the subset mentioned in rows whose day matches and whose time
// range contains the instant. This is a global query: attribution to groups
// is irrelevant for room occupancy.
func Occupancy(grid Grid, cls *Classifier, day Day, at ClockTime) (all, occupied map[string]struct{}) {
	all = make(map[string]struct{})
	occupied = make(map[string]struct{})
	dayLower := strings.ToLower(day.Name)

	for r := DataRowStart; r < grid.Rows(); r++ {
		rooms := cls.RoomTokens(grid.RowText(r))
		if len(rooms) == 0 {
			continue
		}
		for _, room := range rooms {
			all[room] = struct{}{}
		}

		if !strings.Contains(strings.ToLower(grid.At(r, 0)), dayLower) {
			continue
		}
		tr, ok := ParseTimeRange(grid.At(r, 1))
		if !ok || !tr.Contains(at) {
			continue
		}
		for _, room := range rooms {
			occupied[room] = struct{}{}
		}
	}

	return all, occupied
}

// FreeRooms returns the sorted complement of occupied within all.
func FreeRooms(all, occupied map[string]struct{}) []string {
	var free []string
	for room := range all {
		if _, busy := occupied[room]; !busy {
			free = append(free, room)
		}
	}
	sort.Strings(free)
	return free
}

// Current is one session running at the queried instant.
type Current struct {
	Time        string
	Text        string
	MinutesLeft int
}

// RunningNow lists sessions in progress at the given instant: rows matching
// the day whose time range contains the instant, one entry per content cell
// that reads as a subject.
func RunningNow(grid Grid, cls *Classifier, day Day, at ClockTime) []Current {
	var out []Current
	dayLower := strings.ToLower(day.Name)

	for r := DataRowStart; r < grid.Rows(); r++ {
		if !strings.Contains(strings.ToLower(grid.At(r, 0)), dayLower) {
			continue
		}
		timeStr := strings.TrimSpace(strings.ReplaceAll(grid.At(r, 1), "\n", " "))
		tr, ok := ParseTimeRange(timeStr)
		if !ok || !tr.Contains(at) {
			continue
		}

		left := tr.End.TotalMinutes() - at.TotalMinutes()
		for c := 2; c < grid.Width(); c++ {
			cell := cls.Normalize(grid.At(r, c))
			if !cls.IsSubjectText(cell) {
				continue
			}
			out = append(out, Current{
				Time:        timeStr,
				Text:        strings.TrimSpace(strings.ReplaceAll(cell, "\n", " ")),
				MinutesLeft: left,
			})
		}
	}

	return sliceutil.Deduplicate(out, func(c Current) string {
		return c.Time + "|" + c.Text
	})
}

// Presence locates a person at an instant: which room and until when.
type Presence struct {
	Time  string
	Room  string
	Until ClockTime
}

// LocateNow searches rows running at the instant for a whole-row substring
// hit on the name. The room token is taken from the content columns only so
// the time cell's digit groups cannot masquerade as a room number. The
// boolean is false when the person has no session now.
func LocateNow(grid Grid, cls *Classifier, day Day, at ClockTime, name string) (Presence, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return Presence{}, false
	}
	dayLower := strings.ToLower(day.Name)

	for r := DataRowStart; r < grid.Rows(); r++ {
		if !strings.Contains(strings.ToLower(grid.At(r, 0)), dayLower) {
			continue
		}
		tr, ok := ParseTimeRange(grid.At(r, 1))
		if !ok || !tr.Contains(at) {
			continue
		}

		rowText := grid.RowText(r)
		if !strings.Contains(strings.ToLower(rowText), q) {
			continue
		}

		room := ""
		for c := 2; c < grid.Width() && room == ""; c++ {
			if tokens := cls.RoomTokens(grid.At(r, c)); len(tokens) > 0 {
				room = tokens[0]
			}
		}
		return Presence{
			Time:  strings.TrimSpace(strings.ReplaceAll(grid.At(r, 1), "\n", " ")),
			Room:  room,
			Until: tr.End,
		}, true
	}

	return Presence{}, false
}
