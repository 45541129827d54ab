// Package bot implements the Telegram surface of the schedule service:
// inline-keyboard navigation down to a group's week, free-text teacher and
// room search, live queries and the add-source dialog. All schedule
// semantics live in the timetable package; this package only routes updates
// and formats results.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/glebkhr/schedbot-go/internal/config"
	"github.com/glebkhr/schedbot-go/internal/logger"
	"github.com/glebkhr/schedbot-go/internal/metrics"
	"github.com/glebkhr/schedbot-go/internal/source"
	"github.com/glebkhr/schedbot-go/internal/timetable"
)

// API is the subset of tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot routes Telegram updates to query handlers.
type Bot struct {
	api        API
	store      *source.Store
	classifier *timetable.Classifier
	cfg        config.BotConfig
	log        *logger.Logger
	metrics    *metrics.Metrics
	states     *StateStore
	prefs      *PrefStore

	// now is swapped in tests.
	now func() time.Time
}

// New creates a bot over an authorized API client.
func New(api API, store *source.Store, cls *timetable.Classifier, cfg config.BotConfig, log *logger.Logger, m *metrics.Metrics) *Bot {
	return &Bot{
		api:        api,
		store:      store,
		classifier: cls,
		cfg:        cfg,
		log:        log.WithModule("bot"),
		metrics:    m,
		states:     NewStateStore(),
		prefs:      NewPrefStore(),
		now:        time.Now,
	}
}

// Run consumes updates via long polling until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(u)

	b.log.Infof("bot started, polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Infof("bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update and records its outcome.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	start := b.now()

	switch {
	case update.CallbackQuery != nil:
		err := b.handleCallback(ctx, update.CallbackQuery)
		b.record("callback", start, err)
	case update.Message != nil && update.Message.Text != "":
		err := b.handleMessage(ctx, update.Message)
		b.record("message", start, err)
	}
}

func (b *Bot) record(updateType string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		b.log.WithError(err).Errorf("update handling failed")
	}
	b.metrics.RecordBotUpdate(updateType, status, time.Since(start).Seconds())
}

// send delivers a message, trimming it to the Telegram length limit.
func (b *Bot) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, truncate(text, b.cfg.MaxMessageRunes))
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.metrics.RecordBotSendFailure("send_message")
		return err
	}
	return nil
}

// edit replaces the text of an existing message, falling back to a fresh
// message when editing fails (the original may be too old).
func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, truncate(text, b.cfg.MaxMessageRunes))
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.metrics.RecordBotSendFailure("edit_message")
		return b.send(chatID, text, keyboard)
	}
	return nil
}

// answer acknowledges a callback so the client stops the button spinner.
func (b *Bot) answer(callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := b.api.Request(cb); err != nil {
		b.metrics.RecordBotSendFailure("answer_callback")
	}
}
