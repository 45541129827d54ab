package timetable

import (
	"fmt"
	"strconv"
	"time"
)

// ClockTime is a wall-clock time of day, independent of date and zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// ClockTimeOf extracts the time of day from an instant.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// TotalMinutes returns minutes since midnight.
func (t ClockTime) TotalMinutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than other.
func (t ClockTime) Before(other ClockTime) bool {
	return t.TotalMinutes() < other.TotalMinutes()
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeRange is a start/end pair within one day.
type TimeRange struct {
	Start ClockTime
	End   ClockTime
}

// Contains reports whether the instant falls within the range, inclusive on
// both ends.
func (r TimeRange) Contains(t ClockTime) bool {
	m := t.TotalMinutes()
	return m >= r.Start.TotalMinutes() && m <= r.End.TotalMinutes()
}

// ParseTimeRange extracts the first two H:MM / H.MM tokens from a time cell
// (separator normalized to ":"). Fewer than two tokens, or tokens that are
// not valid clock times, fail the parse; the caller skips the row rather
// than erroring.
func ParseTimeRange(s string) (TimeRange, bool) {
	matches := timeTokenRe.FindAllStringSubmatch(s, 2)
	if len(matches) < 2 {
		return TimeRange{}, false
	}

	var times [2]ClockTime
	for i, m := range matches {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 23 {
			return TimeRange{}, false
		}
		minute, err := strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return TimeRange{}, false
		}
		times[i] = ClockTime{Hour: hour, Minute: minute}
	}

	return TimeRange{Start: times[0], End: times[1]}, true
}

// HasTimeToken reports whether a cell holds at least one clock-time token,
// marking it as a time-slot row.
func HasTimeToken(s string) bool {
	return timeTokenRe.MatchString(s)
}
