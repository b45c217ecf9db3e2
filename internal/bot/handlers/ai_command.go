package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
	"github.com/Spok95/telegram-attendance-bot/internal/observability"
	"github.com/Spok95/telegram-attendance-bot/internal/speech"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SubmitAICommand отправляет команду на сервер как есть и пересобирает лист
// свежим запросом — ответ AI-эндпоинта структурно не разбираем.
func SubmitAICommand(ctx context.Context, d *Deps, chatID int64, command string) {
	state := attStates.get(chatID)
	if state == nil || state.Sheet == nil {
		return
	}
	command = strings.TrimSpace(command)
	if command == "" {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Команда пустая. Опишите посещаемость текстом."))
		return
	}
	if !fsmutil.SetPending(chatID, "att:ai") {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⏳ Команда уже обрабатывается."))
		return
	}
	defer fsmutil.ClearPending(chatID, "att:ai")

	token := d.Token(ctx, chatID)
	if _, err := d.API.CreateAIAttendance(ctx, token, command); err != nil {
		state.Step = AttStepSheet
		d.FailAPI(ctx, chatID, err)
		return
	}
	records, err := d.API.AttendanceByDate(ctx, token, state.Sheet.Date)
	if err != nil {
		state.Step = AttStepSheet
		d.FailAPI(ctx, chatID, err)
		return
	}
	state.Sheet.Refresh(records)
	state.AICommand = ""
	state.Step = AttStepSheet
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "🤖 Команда обработана, лист обновлён."))
	renderSheet(d, chatID, state.Sheet)
}

// HandleVoice — голосовая команда. Повторное голосовое во время
// распознавания останавливает текущую сессию (тумблер).
func HandleVoice(ctx context.Context, d *Deps, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	state := attStates.get(chatID)
	if state == nil || state.Step != AttStepAI {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Сначала откройте лист посещаемости и нажмите «AI-команда»."))
		return
	}
	if d.Recognizer == nil {
		// аналог «распознавание не поддерживается» — блокирующее уведомление
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "🎤 "+speech.ErrUnavailable.Error()+". Введите команду текстом."))
		return
	}

	cctx, started := d.Capture.Toggle(ctx, chatID)
	if !started {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⏹ Распознавание остановлено."))
		return
	}
	defer d.Capture.Done(chatID)

	text, err := recognizeVoice(cctx, d, m.Voice.FileID)
	switch {
	case errors.Is(err, speech.ErrNoSpeech):
		// мягкий случай: просто перестаём слушать, без баннера об ошибке
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "🎤 Речи не услышал. Попробуйте ещё раз или введите текст."))
		return
	case errors.Is(err, speech.ErrPermissionDenied):
		metrics.HandlerErrors.Inc()
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "❌ "+err.Error()+"."))
		return
	case err != nil:
		metrics.HandlerErrors.Inc()
		observability.CaptureErrCtx(ctx, err)
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "❌ Не удалось распознать сообщение, введите команду текстом."))
		return
	}

	// распознанный текст попадает в то же поле, что и ручной ввод;
	// отправка — только после подтверждения, строка уходит как есть
	state.AICommand = text
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Отправить", "att_ai_send"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "att_ai_cancel"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🎙 Распознано: «%s»", text))
	msg.ReplyMarkup = keyboard
	_, _ = tg.Send(d.Bot, msg)
}

// voiceHTTP качает голосовые с серверов телеграма; собственный таймаут,
// чтобы зависший сервер не держал сессию распознавания вечно.
var voiceHTTP = &http.Client{Timeout: 30 * time.Second}

func recognizeVoice(ctx context.Context, d *Deps, fileID string) (string, error) {
	url, err := d.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("voice file: %w", err)
	}
	body, err := downloadVoice(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()
	return d.Recognizer.Recognize(ctx, body)
}

func downloadVoice(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := voiceHTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice download: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("voice download: http %d", resp.StatusCode)
	}
	return resp.Body, nil
}
