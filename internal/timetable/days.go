package timetable

import (
	"strings"
	"time"
)

// Day pairs a stable key with a localized display name. The order of a day
// table defines the output order of multi-day results.
type Day struct {
	Key  string
	Name string
}

// Week is the default Russian day table, Monday first.
var Week = []Day{
	{Key: "mon", Name: "Понедельник"},
	{Key: "tue", Name: "Вторник"},
	{Key: "wed", Name: "Среда"},
	{Key: "thu", Name: "Четверг"},
	{Key: "fri", Name: "Пятница"},
	{Key: "sat", Name: "Суббота"},
	{Key: "sun", Name: "Воскресенье"},
}

// DayByKey returns the day for a key like "mon".
func DayByKey(key string) (Day, bool) {
	for _, d := range Week {
		if d.Key == key {
			return d, true
		}
	}
	return Day{}, false
}

// DayForTime returns the day table entry for a wall-clock instant.
func DayForTime(t time.Time) Day {
	// time.Weekday is Sunday-based; Week is Monday-based.
	idx := (int(t.Weekday()) + 6) % 7
	return Week[idx]
}

// MatchDay finds the day whose localized name occurs in a raw day cell
// (case-insensitive substring, because merged day cells carry extra text).
func MatchDay(cell string, days []Day) (Day, bool) {
	lower := strings.ToLower(cell)
	for _, d := range days {
		if strings.Contains(lower, strings.ToLower(d.Name)) {
			return d, true
		}
	}
	return Day{}, false
}

// weekIndex returns the position of a day in the week table, or a sentinel
// past the end for unknown days so they sort last.
func weekIndex(d Day) int {
	for i, w := range Week {
		if w.Key == d.Key {
			return i
		}
	}
	return len(Week)
}
