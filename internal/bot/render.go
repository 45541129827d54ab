package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/glebkhr/schedbot-go/internal/timetable"
)

// maxFreeRoomsShown caps the free-rooms listing.
const maxFreeRoomsShown = 50

// renderSchedule formats aggregated slots as an HTML message. Entries are
// expected in day-then-slot discovery order.
func renderSchedule(groupNum int, entries []timetable.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏛 <b>ГРУППА %d</b>\n", groupNum)

	lastDay := ""
	for _, e := range entries {
		if e.Day != lastDay {
			fmt.Fprintf(&b, "\n📅 <b>%s</b>\n", html.EscapeString(e.Day))
			lastDay = e.Day
		}
		text := html.EscapeString(e.Text)
		// Multi-line slots are indented under their time label.
		text = strings.ReplaceAll(text, "\n", "\n   ")
		tag := ""
		if e.IsStream {
			tag = " <i>(Поток)</i>"
		}
		fmt.Fprintf(&b, "<code>%-12s</code> | %s%s\n", html.EscapeString(e.Time), text, tag)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderTeacherResults formats teacher search hits grouped by day.
func renderTeacherResults(name string, matches []timetable.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👨‍🏫 <b>Результаты для:</b> %s\n", html.EscapeString(name))

	lastDay, lastTime := "", ""
	for _, m := range matches {
		if m.Day.Name != lastDay {
			fmt.Fprintf(&b, "\n📅 <b>%s</b>\n", strings.ToUpper(m.Day.Name))
			lastDay = m.Day.Name
			lastTime = ""
		}
		if m.Time != lastTime {
			fmt.Fprintf(&b, "  🕒 %s\n", html.EscapeString(m.Time))
			lastTime = m.Time
		}
		roomPart := ""
		if m.Room != "" {
			roomPart = fmt.Sprintf(" [🚪 %s]", html.EscapeString(m.Room))
		}
		fmt.Fprintf(&b, "    ▫️ %s%s — <b>%s</b>\n",
			html.EscapeString(m.Description), roomPart, html.EscapeString(m.Owner))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderRoomResults formats room search hits grouped by day.
func renderRoomResults(room string, matches []timetable.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏢 <b>Занятия в аудитории %s:</b>\n", html.EscapeString(room))

	lastDay := ""
	for _, m := range matches {
		if m.Day.Name != lastDay {
			fmt.Fprintf(&b, "\n📅 <b>%s</b>\n", strings.ToUpper(m.Day.Name))
			lastDay = m.Day.Name
		}
		fmt.Fprintf(&b, "🕒 <code>%s</code> %s — <b>%s</b>\n",
			html.EscapeString(m.Time), html.EscapeString(m.Description), html.EscapeString(m.Owner))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderFreeRooms formats the free-rooms listing, capped at fifty rooms.
func renderFreeRooms(rooms []string) string {
	if len(rooms) > maxFreeRoomsShown {
		rooms = rooms[:maxFreeRoomsShown]
	}
	escaped := make([]string, len(rooms))
	for i, r := range rooms {
		escaped[i] = html.EscapeString(r)
	}
	return "🟢 <b>Свободные кабинеты сейчас:</b>\n\n" + strings.Join(escaped, ", ")
}

// renderNow formats the sessions running at the queried instant.
func renderNow(current []timetable.Current) string {
	var b strings.Builder
	b.WriteString("⚡️ <b>Сейчас или скоро по расписанию:</b>\n")
	for _, c := range current {
		fmt.Fprintf(&b, "\n<b>СЕЙЧАС:</b>\n🕒 <code>%s</code> | %s\n",
			html.EscapeString(c.Time), html.EscapeString(c.Text))
		fmt.Fprintf(&b, "⏳ <i>До конца осталось: %d мин.</i>\n", c.MinutesLeft)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPresence formats a located teacher.
func renderPresence(name string, p timetable.Presence) string {
	room := p.Room
	if room == "" {
		room = "не указана"
	}
	return fmt.Sprintf("📍 <b>%s</b> сейчас на паре.\n🚪 Аудитория: <b>%s</b>\n🕒 До конца: %s",
		html.EscapeString(name), html.EscapeString(room), p.Until.String())
}

// truncate cuts a message to the Telegram length limit without splitting a
// rune.
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
