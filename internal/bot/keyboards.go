package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/glebkhr/schedbot-go/internal/config"
	"github.com/glebkhr/schedbot-go/internal/timetable"
)

// navMode selects which extra button postControl shows next to "home".
type navMode string

const (
	navGeneral navMode = "general"
	navTeacher navMode = "teacher"
	navRoom    navMode = "room"
	navTrack   navMode = "track"
	navFree    navMode = "free"
)

// Callback data prefixes. Values are colon-separated, e.g.
// "get:mon:edu_1:f_0:2".
const (
	cbHome      = "home"
	cbSource    = "src"
	cbStream    = "flow"
	cbGroup     = "grp"
	cbSchedule  = "get"
	cbToday     = "today_sch"
	cbTomorrow  = "tomorrow_sch"
	cbFindProf  = "find_proff"
	cbFindRoom  = "find_room"
	cbNearEvent = "near_event"
	cbFreeRooms = "free_rooms"
	cbTrackNow  = "track_teacher_now"
	cbAddSource = "setup_hub"
)

const maxStreamTitleRunes = 25

// mainMenu lists every registered source plus the query entry points.
func mainMenu(sources []config.Source) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, src := range sources {
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📘 "+src.Label, cbSource+":"+src.ID),
		))
	}
	kb = append(kb,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔍 Поиск преподавателя", cbFindProf)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏢 Поиск по аудитории", cbFindRoom)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚡️ Что сейчас идет?", cbNearEvent)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📅 Расписание на СЕГОДНЯ", cbToday)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⏩ Расписание на ЗАВТРА", cbTomorrow)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🟢 Свободные кабинеты", cbFreeRooms)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📍 Где препод сейчас?", cbTrackNow)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚙️ Добавить расписание", cbAddSource)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

// postControl builds the navigation row placed under query results.
func postControl(mode navMode) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("🏠 В меню", cbHome),
	}
	switch mode {
	case navRoom:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔎 Другая аудитория", cbFindRoom))
	case navTeacher:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔎 Другой преподаватель", cbFindProf))
	case navTrack:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔎 Искать другого", cbTrackNow))
	case navFree:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", cbFreeRooms))
	default:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔎 Поиск препода", cbFindProf))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// streamSelect lists the streams of one source.
func streamSelect(sourceID string, layout *timetable.Layout) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	for _, st := range layout.Streams() {
		title := []rune(st.Title)
		if len(title) > maxStreamTitleRunes {
			title = title[:maxStreamTitleRunes]
		}
		kb = append(kb, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 "+string(title), fmt.Sprintf("%s:%s:%s", cbStream, sourceID, st.ID)),
		))
	}
	kb = append(kb, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", cbHome),
	))
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

// groupSelect lists the group numbers of one stream, two per row.
func groupSelect(sourceID string, st *timetable.Stream) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, num := range st.GroupNumbers() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Группа %d", num),
			fmt.Sprintf("%s:%s:%s:%d", cbGroup, sourceID, st.ID, num),
		))
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К потокам", cbSource+":"+sourceID),
	))
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}

// daySelect lists the week days three per row plus a whole-week button.
func daySelect(sourceID, streamID string, groupNum int) tgbotapi.InlineKeyboardMarkup {
	var kb [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, day := range timetable.Week {
		label := []rune(day.Name)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			string(label[:3]),
			fmt.Sprintf("%s:%s:%s:%s:%d", cbSchedule, day.Key, sourceID, streamID, groupNum),
		))
		if len(row) == 3 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
			"🗓 Вся неделя",
			fmt.Sprintf("%s:all:%s:%s:%d", cbSchedule, sourceID, streamID, groupNum),
		)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
			"⬅️ Назад",
			fmt.Sprintf("%s:%s:%s", cbStream, sourceID, streamID),
		)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(kb...)
}
