package app

import (
	"context"
	"strings"

	"github.com/Spok95/telegram-attendance-bot/internal/bot/handlers"
	"github.com/Spok95/telegram-attendance-bot/internal/bot/menu"
	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleUpdate — единая точка входа для всех апдейтов. Внутри одного чата
// апдейты идут строго последовательно (лимитер); карты состояний сценариев
// держат собственный мьютекс, потому что разные чаты работают параллельно.
func HandleUpdate(ctx context.Context, d *handlers.Deps, l *ChatLimiter, update tgbotapi.Update) {
	metrics.BotUpdates.Inc()

	var chatID int64
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	default:
		return
	}
	unlock := l.lock(chatID)
	defer unlock()

	ctx = ctxutil.WithChatID(ctx, chatID)

	if update.CallbackQuery != nil {
		ctx = ctxutil.WithOp(ctx, "callback:"+callbackOp(update.CallbackQuery.Data))
		handleCallback(ctx, d, update.CallbackQuery)
		return
	}
	ctx = ctxutil.WithOp(ctx, "message")
	handleMessage(ctx, d, update.Message)
}

func handleCallback(ctx context.Context, d *handlers.Deps, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	data := cb.Data

	// кнопки входа/регистрации — единственные, доступные без сессии
	if strings.HasPrefix(data, "auth_") {
		handlers.HandleAuthCallback(d, cb)
		return
	}

	session, err := db.GetSession(ctx, d.DB, chatID)
	if err != nil || session == nil {
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, "Нужно войти"))
		handlers.SendAuthPrompt(d, chatID)
		return
	}
	_ = db.TouchSession(ctx, d.DB, chatID)

	switch {
	case strings.HasPrefix(data, "att_"):
		handlers.HandleAttendanceCallback(ctx, d, cb)
	case strings.HasPrefix(data, "rep_"):
		handlers.HandleReportCallback(ctx, d, cb)
	case strings.HasPrefix(data, "students_"):
		handlers.HandleStudentsCallback(ctx, d, cb)
	default:
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, "Неизвестная кнопка"))
	}
}

func handleMessage(ctx context.Context, d *handlers.Deps, m *tgbotapi.Message) {
	chatID := m.Chat.ID

	session, err := db.GetSession(ctx, d.DB, chatID)
	loggedIn := err == nil && session != nil

	// /start обрабатываем без проверки сессии
	if m.Text == "/start" {
		if !loggedIn {
			handlers.SendAuthPrompt(d, chatID)
			return
		}
		msg := tgbotapi.NewMessage(chatID, "👋 С возвращением, "+session.Username+"! Выберите действие:")
		msg.ReplyMarkup = menu.Main()
		_, _ = tg.Send(d.Bot, msg)
		return
	}

	if !loggedIn {
		if handlers.GetAuthState(chatID) != nil {
			handlers.HandleAuthText(ctx, d, m)
			return
		}
		handlers.SendAuthPrompt(d, chatID)
		return
	}
	_ = db.TouchSession(ctx, d.DB, chatID)

	if m.Voice != nil {
		handlers.HandleVoice(ctx, d, m)
		return
	}

	// активные сценарии разбирают текст первыми
	if handlers.GetAttState(chatID) != nil && m.Text != "" && !isMenuCommand(m.Text) {
		handlers.HandleAttendanceText(ctx, d, m)
		return
	}
	if st := handlers.GetStudentsState(chatID); st != nil && st.Step == handlers.StudentsStepAddName && m.Text != "" && !isMenuCommand(m.Text) {
		handlers.HandleStudentsText(ctx, d, m)
		return
	}
	if handlers.GetReportState(chatID) != nil && m.Text != "" && !isMenuCommand(m.Text) {
		handlers.HandleReportText(ctx, d, m)
		return
	}

	switch m.Text {
	case "/attendance", "📋 Посещаемость":
		handlers.StartAttendanceFSM(d, chatID)
	case "/students", "👥 Ученики":
		handlers.StartStudentsFSM(ctx, d, chatID)
	case "/reports", "📊 Отчёты":
		handlers.StartReportFSM(d, chatID)
	case "/logout", "🚪 Выйти":
		handlers.HandleLogout(ctx, d, chatID)
	default:
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Неизвестная команда. Используйте /start"))
	}
}

// callbackOp — префикс сценария из callback-данных, для тегов ошибок.
func callbackOp(data string) string {
	if i := strings.Index(data, "_"); i > 0 {
		return data[:i]
	}
	return data
}

func isMenuCommand(text string) bool {
	switch text {
	case "/start", "/attendance", "📋 Посещаемость", "/students", "👥 Ученики",
		"/reports", "📊 Отчёты", "/logout", "🚪 Выйти":
		return true
	}
	return false
}
