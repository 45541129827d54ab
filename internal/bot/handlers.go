package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/glebkhr/schedbot-go/internal/config"
	errs "github.com/glebkhr/schedbot-go/internal/errors"
	"github.com/glebkhr/schedbot-go/internal/timetable"
)

var (
	sheetIDRe  = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
	sheetGIDRe = regexp.MustCompile(`gid=([0-9]+)`)
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.states.Clear(chatID)
		switch msg.Command() {
		case "start":
			return b.send(chatID, "👋 <b>Добро пожаловать в Scheduler BOT!</b>", keyboardPtr(mainMenu(b.store.Sources())))
		default:
			return b.send(chatID, "Неизвестная команда. Напишите /start.", nil)
		}
	}

	text := strings.TrimSpace(msg.Text)
	state := b.states.State(chatID)
	switch state {
	case StateAwaitTeacherName:
		b.states.Clear(chatID)
		return b.runTeacherSearch(ctx, chatID, text)

	case StateAwaitRoomNumber:
		b.states.Clear(chatID)
		return b.runRoomSearch(ctx, chatID, text)

	case StateAwaitTrackName:
		b.states.Clear(chatID)
		return b.runTrackTeacher(ctx, chatID, text)

	case StateAwaitSourceTitle:
		b.states.SetTitle(chatID, text)
		b.states.SetState(chatID, StateAwaitSourceLink)
		return b.send(chatID, "🔗 Пришлите ссылку на Google Таблицу:", nil)

	case StateAwaitSourceLink:
		return b.finishAddSource(chatID, text)

	default:
		return b.send(chatID, "Выберите кнопку на клавиатуре или напишите /start.", keyboardPtr(mainMenu(b.store.Sources())))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		b.answer(cb.ID, "", false)
		return nil
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	parts := strings.Split(cb.Data, ":")

	switch parts[0] {
	case cbHome:
		b.states.Clear(chatID)
		b.answer(cb.ID, "", false)
		return b.edit(chatID, messageID, "🏠 <b>Главное меню</b>", keyboardPtr(mainMenu(b.store.Sources())))

	case cbSource:
		if len(parts) != 2 {
			return b.badCallback(cb)
		}
		b.answer(cb.ID, "", false)
		return b.showStreams(ctx, chatID, messageID, parts[1])

	case cbStream:
		if len(parts) != 3 {
			return b.badCallback(cb)
		}
		b.answer(cb.ID, "", false)
		return b.showGroups(ctx, chatID, messageID, parts[1], parts[2])

	case cbGroup:
		if len(parts) != 4 {
			return b.badCallback(cb)
		}
		num, err := strconv.Atoi(parts[3])
		if err != nil {
			return b.badCallback(cb)
		}
		b.answer(cb.ID, "", false)
		return b.edit(chatID, messageID, "🗓 <b>На какой день нужно расписание?</b>",
			keyboardPtr(daySelect(parts[1], parts[2], num)))

	case cbSchedule:
		if len(parts) != 5 {
			return b.badCallback(cb)
		}
		num, err := strconv.Atoi(parts[4])
		if err != nil {
			return b.badCallback(cb)
		}
		prefs := Prefs{SourceID: parts[2], StreamID: parts[3], GroupNum: num}
		b.prefs.Set(cb.From.ID, prefs)
		b.answer(cb.ID, "", false)
		return b.sendSchedule(ctx, chatID, prefs, parts[1])

	case cbToday:
		prefs, ok := b.prefs.Get(cb.From.ID)
		if !ok {
			b.answer(cb.ID, "❌ Выберите группу в меню!", true)
			return nil
		}
		b.answer(cb.ID, "", false)
		return b.sendSchedule(ctx, chatID, prefs, timetable.DayForTime(b.now()).Key)

	case cbTomorrow:
		prefs, ok := b.prefs.Get(cb.From.ID)
		if !ok {
			b.answer(cb.ID, "❌ Выберите группу!", true)
			return nil
		}
		b.answer(cb.ID, "", false)
		return b.sendSchedule(ctx, chatID, prefs, timetable.DayForTime(b.now().Add(24*time.Hour)).Key)

	case cbFindProf:
		b.states.SetState(chatID, StateAwaitTeacherName)
		b.answer(cb.ID, "", false)
		return b.edit(chatID, messageID, "👤 Введите фамилию преподавателя:", nil)

	case cbFindRoom:
		b.states.SetState(chatID, StateAwaitRoomNumber)
		b.answer(cb.ID, "", false)
		return b.edit(chatID, messageID, "🔢 Введите номер аудитории (например, <b>402</b>):", nil)

	case cbTrackNow:
		b.states.SetState(chatID, StateAwaitTrackName)
		b.answer(cb.ID, "", false)
		return b.send(chatID, "👤 Введите фамилию преподавателя для live-поиска:", nil)

	case cbNearEvent:
		b.answer(cb.ID, "", false)
		return b.runNearEvent(ctx, chatID)

	case cbFreeRooms:
		b.answer(cb.ID, "", false)
		return b.runFreeRooms(ctx, chatID)

	case cbAddSource:
		b.states.SetState(chatID, StateAwaitSourceTitle)
		b.answer(cb.ID, "", false)
		return b.edit(chatID, messageID, "📝 Введите короткое название для расписания (напр. 'Матфак 1 курс'):", nil)

	default:
		return b.badCallback(cb)
	}
}

func (b *Bot) badCallback(cb *tgbotapi.CallbackQuery) error {
	b.answer(cb.ID, "Кнопка устарела, откройте меню заново.", false)
	return nil
}

// showStreams loads a source and lists its streams.
func (b *Bot) showStreams(ctx context.Context, chatID int64, messageID int, sourceID string) error {
	_ = b.edit(chatID, messageID, "⏳ <i>Загрузка расписания...</i>", nil)

	entry, err := b.store.Get(ctx, sourceID)
	if err != nil {
		return b.edit(chatID, messageID, "❌ Ошибка загрузки данных.", keyboardPtr(mainMenu(b.store.Sources())))
	}
	if err := entry.Usable(); err != nil {
		b.log.WithSource(sourceID).WithError(err).Warnf("source not browsable")
		return b.edit(chatID, messageID, "❌ Не удалось распознать структуру расписания.", keyboardPtr(mainMenu(b.store.Sources())))
	}

	text := fmt.Sprintf("📍 <b>%s</b>\nВыберите поток:", html.EscapeString(entry.Source.Label))
	return b.edit(chatID, messageID, text, keyboardPtr(streamSelect(sourceID, entry.Layout)))
}

// showGroups lists the group numbers of a stream.
func (b *Bot) showGroups(ctx context.Context, chatID int64, messageID int, sourceID, streamID string) error {
	entry, err := b.store.Get(ctx, sourceID)
	if err != nil {
		return b.edit(chatID, messageID, "❌ Ошибка загрузки данных.", keyboardPtr(mainMenu(b.store.Sources())))
	}
	st, ok := entry.Layout.Stream(streamID)
	if !ok {
		return b.edit(chatID, messageID, "❌ Поток не найден.", keyboardPtr(mainMenu(b.store.Sources())))
	}
	return b.edit(chatID, messageID, "👥 <b>Выберите вашу группу:</b>", keyboardPtr(groupSelect(sourceID, st)))
}

// sendSchedule renders one group's schedule for a day key or "all".
func (b *Bot) sendSchedule(ctx context.Context, chatID int64, prefs Prefs, dayKey string) error {
	start := b.now()

	days := timetable.Week
	if dayKey != "all" {
		day, ok := timetable.DayByKey(dayKey)
		if !ok {
			return b.send(chatID, "🗓 Неизвестный день.", keyboardPtr(postControl(navGeneral)))
		}
		days = []timetable.Day{day}
	}

	entry, err := b.store.Get(ctx, prefs.SourceID)
	if err != nil {
		b.metrics.RecordQuery("schedule", "error", time.Since(start).Seconds())
		return b.send(chatID, "❌ Ошибка загрузки данных.", keyboardPtr(mainMenu(b.store.Sources())))
	}

	schedule := timetable.Aggregate(entry.Grid, entry.Layout, b.classifier, days, prefs.StreamID, prefs.GroupNum)
	entries := schedule.Entries(b.classifier)
	if len(entries) == 0 {
		b.metrics.RecordQuery("schedule", "no_data", time.Since(start).Seconds())
		return b.send(chatID, "🏖 <b>Занятий не найдено.</b>", keyboardPtr(postControl(navGeneral)))
	}

	b.metrics.RecordQuery("schedule", "success", time.Since(start).Seconds())
	if err := b.send(chatID, renderSchedule(prefs.GroupNum, entries), nil); err != nil {
		return err
	}
	return b.send(chatID, "⚙️ <b>Навигация:</b>", keyboardPtr(postControl(navGeneral)))
}

// runTeacherSearch scans every loaded source for a teacher name.
func (b *Bot) runTeacherSearch(ctx context.Context, chatID int64, name string) error {
	start := b.now()
	if name == "" {
		return b.send(chatID, "❌ Пустой запрос.", keyboardPtr(postControl(navTeacher)))
	}
	_ = b.send(chatID, "🔍 <i>Сканирую базу данных...</i>", nil)

	matches, err := b.searchAll(ctx, name)
	if errors.Is(err, errs.ErrNoData) {
		b.metrics.RecordQuery("teacher", "no_data", time.Since(start).Seconds())
		return b.send(chatID, fmt.Sprintf("🤷‍♂️ <b>Ничего не найдено для:</b> %s", html.EscapeString(name)),
			keyboardPtr(postControl(navTeacher)))
	}

	b.metrics.RecordQuery("teacher", "success", time.Since(start).Seconds())
	return b.send(chatID, renderTeacherResults(name, matches), keyboardPtr(postControl(navTeacher)))
}

// runRoomSearch scans every loaded source for a room number.
func (b *Bot) runRoomSearch(ctx context.Context, chatID int64, room string) error {
	start := b.now()
	if room == "" {
		return b.send(chatID, "❌ Пустой запрос.", keyboardPtr(postControl(navRoom)))
	}
	_ = b.send(chatID, fmt.Sprintf("🔍 Ищу занятия в аудитории <b>%s</b>...", html.EscapeString(room)), nil)

	matches, err := b.searchAll(ctx, room)
	if errors.Is(err, errs.ErrNoData) {
		b.metrics.RecordQuery("room", "no_data", time.Since(start).Seconds())
		return b.send(chatID, fmt.Sprintf("🤷‍♂️ В ауд. <b>%s</b> занятий не найдено.", html.EscapeString(room)),
			keyboardPtr(postControl(navRoom)))
	}

	b.metrics.RecordQuery("room", "success", time.Since(start).Seconds())
	return b.send(chatID, renderRoomResults(room, matches), keyboardPtr(postControl(navRoom)))
}

// searchAll merges substring search results across all registered sources,
// keeping the week ordering. An empty result reports ErrNoData.
func (b *Bot) searchAll(ctx context.Context, query string) ([]timetable.Match, error) {
	var matches []timetable.Match
	for _, src := range b.store.Sources() {
		entry, err := b.store.Get(ctx, src.ID)
		if err != nil {
			b.log.WithSource(src.ID).WithError(err).Warnf("skipping source in search")
			continue
		}
		matches = append(matches, timetable.Search(entry.Grid, entry.Layout, b.classifier, timetable.Week, query)...)
	}
	if len(matches) == 0 {
		return nil, errs.ErrNoData
	}
	sort.SliceStable(matches, func(i, j int) bool {
		di, dj := dayIndex(matches[i].Day), dayIndex(matches[j].Day)
		if di != dj {
			return di < dj
		}
		return matches[i].Time < matches[j].Time
	})
	return matches, nil
}

// runFreeRooms answers the "what's free now" query, guarded by working
// hours.
func (b *Bot) runFreeRooms(ctx context.Context, chatID int64) error {
	start := b.now()
	now := b.now()
	at := timetable.ClockTimeOf(now)

	workStart := timetable.ClockTime{Hour: b.cfg.WorkdayStartHour}
	workEnd := timetable.ClockTime{Hour: b.cfg.WorkdayEndHour}
	if at.Before(workStart) || workEnd.Before(at) || now.Weekday() == time.Sunday {
		return b.send(chatID,
			fmt.Sprintf("🌙 <b>Университет сейчас закрыт.</b>\nВне учебного времени (%s - %s) все кабинеты свободны.",
				workStart, workEnd),
			keyboardPtr(postControl(navFree)))
	}

	_ = b.send(chatID, "🔍 <i>Сканирую все расписания, секунду...</i>", nil)

	day := timetable.DayForTime(now)
	all := make(map[string]struct{})
	occupied := make(map[string]struct{})
	for _, src := range b.store.Sources() {
		entry, err := b.store.Get(ctx, src.ID)
		if err != nil {
			b.log.WithSource(src.ID).WithError(err).Warnf("skipping source in free-rooms scan")
			continue
		}
		srcAll, srcOcc := timetable.Occupancy(entry.Grid, b.classifier, day, at)
		for r := range srcAll {
			all[r] = struct{}{}
		}
		for r := range srcOcc {
			occupied[r] = struct{}{}
		}
	}

	free := timetable.FreeRooms(all, occupied)
	if len(free) == 0 {
		b.metrics.RecordQuery("free_rooms", "no_data", time.Since(start).Seconds())
		return b.send(chatID, "😱 Свободных кабинетов не найдено!", keyboardPtr(postControl(navFree)))
	}
	b.metrics.RecordQuery("free_rooms", "success", time.Since(start).Seconds())
	return b.send(chatID, renderFreeRooms(free), keyboardPtr(postControl(navFree)))
}

// runNearEvent lists sessions in progress right now.
func (b *Bot) runNearEvent(ctx context.Context, chatID int64) error {
	start := b.now()
	now := b.now()
	day := timetable.DayForTime(now)
	at := timetable.ClockTimeOf(now)

	var current []timetable.Current
	for _, src := range b.store.Sources() {
		entry, err := b.store.Get(ctx, src.ID)
		if err != nil {
			b.log.WithSource(src.ID).WithError(err).Warnf("skipping source in near-event scan")
			continue
		}
		current = append(current, timetable.RunningNow(entry.Grid, b.classifier, day, at)...)
	}

	if len(current) == 0 {
		b.metrics.RecordQuery("now", "no_data", time.Since(start).Seconds())
		return b.send(chatID, "🏖 Сейчас по расписанию пар нет.", nil)
	}
	b.metrics.RecordQuery("now", "success", time.Since(start).Seconds())
	return b.send(chatID, renderNow(current), keyboardPtr(postControl(navGeneral)))
}

// runTrackTeacher locates a teacher at the current instant.
func (b *Bot) runTrackTeacher(ctx context.Context, chatID int64, name string) error {
	start := b.now()
	if name == "" {
		return b.send(chatID, "❌ Пустой запрос.", keyboardPtr(postControl(navTrack)))
	}

	now := b.now()
	day := timetable.DayForTime(now)
	at := timetable.ClockTimeOf(now)

	for _, src := range b.store.Sources() {
		entry, err := b.store.Get(ctx, src.ID)
		if err != nil {
			b.log.WithSource(src.ID).WithError(err).Warnf("skipping source in teacher tracking")
			continue
		}
		if p, ok := timetable.LocateNow(entry.Grid, b.classifier, day, at, name); ok {
			b.metrics.RecordQuery("track", "success", time.Since(start).Seconds())
			return b.send(chatID, renderPresence(name, p), keyboardPtr(postControl(navTrack)))
		}
	}

	b.metrics.RecordQuery("track", "no_data", time.Since(start).Seconds())
	return b.send(chatID, "😴 У этого преподавателя сейчас нет пар.", keyboardPtr(postControl(navTrack)))
}

// finishAddSource parses a Google Sheets link and registers a new source.
func (b *Bot) finishAddSource(chatID int64, link string) error {
	sid := sheetIDRe.FindStringSubmatch(link)
	if sid == nil {
		return b.send(chatID, "❌ Не удалось распознать ссылку.", nil)
	}
	gid := "0"
	if m := sheetGIDRe.FindStringSubmatch(link); m != nil {
		gid = m[1]
	}

	title := b.states.Title(chatID)
	b.states.Clear(chatID)

	src := config.Source{
		ID:      fmt.Sprintf("edu_%d", len(b.store.Sources())+1),
		Label:   title,
		SheetID: sid[1],
		GID:     gid,
	}
	b.store.Register(src)
	b.log.WithSource(src.ID).Infof("source registered via bot")

	return b.send(chatID,
		fmt.Sprintf("✅ Расписание <b>%s</b> успешно добавлено!", html.EscapeString(title)),
		keyboardPtr(mainMenu(b.store.Sources())))
}

// dayIndex orders days by their position in the week table.
func dayIndex(d timetable.Day) int {
	for i, day := range timetable.Week {
		if day.Key == d.Key {
			return i
		}
	}
	return len(timetable.Week)
}

func keyboardPtr(kb tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &kb
}
