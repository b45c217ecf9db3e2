package handlers

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/api"
	"github.com/Spok95/telegram-attendance-bot/internal/bot/menu"
	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/observability"
	"github.com/Spok95/telegram-attendance-bot/internal/speech"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Deps — общие зависимости всех сценариев.
type Deps struct {
	Bot        *tgbotapi.BotAPI
	DB         *sql.DB
	API        *api.Client
	Location   *time.Location
	Recognizer speech.Recognizer // nil — голосовой ввод выключен
	Capture    *speech.Capture
}

// Today — текущая дата в часовом поясе бота, формат API.
func (d *Deps) Today() string {
	return time.Now().In(d.Location).Format("2006-01-02")
}

func (d *Deps) Yesterday() string {
	return time.Now().In(d.Location).AddDate(0, 0, -1).Format("2006-01-02")
}

// parseCustomDate разбирает введённую вручную дату. Принимаем только
// ГГГГ-ММ-ДД — тот же формат, что уходит в API.
func parseCustomDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}

// Token возвращает токен сессии чата, читая его в момент вызова.
// Пустая строка — чат не авторизован.
func (d *Deps) Token(ctx context.Context, chatID int64) string {
	s, err := db.GetSession(ctx, d.DB, chatID)
	if err != nil || s == nil {
		return ""
	}
	return s.Token
}

// FailAPI показывает inline-баннер с текстом ошибки API. Истёкший токен —
// отдельный случай: сессию сбрасываем и предлагаем войти заново.
func (d *Deps) FailAPI(ctx context.Context, chatID int64, err error) {
	metrics.HandlerErrors.Inc()
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.IsAuthError() {
			_ = db.DeleteSession(ctx, d.DB, chatID)
			ClearChatState(chatID)
			msg := tgbotapi.NewMessage(chatID, "🚫 Сессия истекла. Войдите заново.")
			msg.ReplyMarkup = menu.Auth()
			_, _ = tg.Send(d.Bot, msg)
			return
		}
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "❌ "+reqErr.Message))
		return
	}
	observability.CaptureErrCtx(ctx, err)
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "❌ Сервис недоступен, попробуйте позже."))
}

// ClearChatState сбрасывает FSM-состояния всех сценариев чата
// (логаут, истёкшая сессия).
func ClearChatState(chatID int64) {
	authStates.remove(chatID)
	studentStates.remove(chatID)
	attStates.remove(chatID)
	reportStates.remove(chatID)
}
