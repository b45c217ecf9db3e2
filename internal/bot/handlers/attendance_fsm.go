package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/telegram-attendance-bot/internal/attendance"
	"github.com/Spok95/telegram-attendance-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type AttStep int

const (
	AttStepDate    AttStep = iota + 1 // выбор даты
	AttStepSheet                      // лист открыт
	AttStepCustom                     // ввод произвольной даты
	AttStepAI                         // ввод AI-команды (текст или голос)
	AttStepDiscard                    // подтверждение сброса правок
)

type AttFSMState struct {
	Step      AttStep
	Sheet     *attendance.Sheet
	AICommand string // распознанный текст, ожидающий подтверждения
}

var attStates = newFSMStates[AttFSMState]()

func GetAttState(chatID int64) *AttFSMState { return attStates.get(chatID) }

var statusIcons = map[models.Status]string{
	models.StatusPresent: "✅",
	models.StatusAbsent:  "🚫",
	models.StatusLate:    "⏰",
}

// StartAttendanceFSM — сценарий отметки посещаемости.
func StartAttendanceFSM(d *Deps, chatID int64) {
	attStates.set(chatID, &AttFSMState{Step: AttStepDate})
	sendDateChoice(d, chatID, "📋 За какую дату отмечаем?", "att")
}

func sendDateChoice(d *Deps, chatID int64, title, prefix string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сегодня", prefix+"_date_"+d.Today()),
			tgbotapi.NewInlineKeyboardButtonData("Вчера", prefix+"_date_"+d.Yesterday()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📆 Другая дата", prefix+"_custom"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", prefix+"_cancel"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, title)
	msg.ReplyMarkup = keyboard
	_, _ = tg.Send(d.Bot, msg)
}

// openSheet загружает ростер и записи даты и собирает лист заново.
func openSheet(ctx context.Context, d *Deps, chatID int64, date string) {
	state := attStates.get(chatID)
	if state == nil {
		return
	}
	token := d.Token(ctx, chatID)
	roster, err := d.API.Students(ctx, token)
	if err != nil {
		attStates.remove(chatID)
		d.FailAPI(ctx, chatID, err)
		return
	}
	records, err := d.API.AttendanceByDate(ctx, token, date)
	if err != nil {
		attStates.remove(chatID)
		d.FailAPI(ctx, chatID, err)
		return
	}
	state.Sheet = attendance.NewSheet(date, roster, records)
	state.Step = AttStepSheet
	renderSheet(d, chatID, state.Sheet)
}

func renderSheet(d *Deps, chatID int64, sheet *attendance.Sheet) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, st := range sheet.Roster {
		label := fmt.Sprintf("%s %s", statusIcons[sheet.Statuses[st.ID]], st.Name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("att_st_%d", st.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "att_save"),
		tgbotapi.NewInlineKeyboardButtonData("🤖 AI-команда", "att_ai"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📆 Сменить дату", "att_redate"),
		tgbotapi.NewInlineKeyboardButtonData("❌ Закрыть", "att_cancel"),
	))

	text := fmt.Sprintf("📋 Посещаемость за %s\nНажмите на ученика, чтобы переключить статус: ✅ → 🚫 → ⏰", sheet.Date)
	if len(sheet.Roster) == 0 {
		text = "⚠️ Ростер пуст — сначала добавьте учеников."
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = tg.Send(d.Bot, msg)
}

func HandleAttendanceCallback(ctx context.Context, d *Deps, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	state := attStates.get(chatID)
	if state == nil {
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, "Экран устарел, откройте заново"))
		return
	}
	data := cb.Data

	switch {
	case strings.HasPrefix(data, "att_date_"):
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		openSheet(ctx, d, chatID, strings.TrimPrefix(data, "att_date_"))
	case data == "att_custom":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		state.Step = AttStepCustom
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Введите дату в формате ГГГГ-ММ-ДД:"))
	case strings.HasPrefix(data, "att_st_"):
		if state.Sheet == nil {
			return
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "att_st_"), 10, 64)
		if err != nil {
			return
		}
		next, err := state.Sheet.Cycle(id)
		if err != nil {
			_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, "Ученика нет в листе"))
			return
		}
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, string(next)))
		refreshSheetMarkup(d, chatID, cb.Message.MessageID, state.Sheet)
	case data == "att_save":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		saveSheet(ctx, d, chatID, state)
	case data == "att_ai":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		state.Step = AttStepAI
		hint := "Опишите посещаемость одной фразой, например: «Иванов и Петров отсутствуют»."
		if d.Recognizer != nil {
			hint += "\n🎤 Можно отправить голосовое сообщение."
		}
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, hint))
	case data == "att_redate":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		// несохранённые правки при смене даты пропадают — спрашиваем явно
		if state.Sheet != nil && state.Sheet.Dirty() {
			state.Step = AttStepDiscard
			keyboard := tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("Сбросить правки", "att_discard_yes"),
					tgbotapi.NewInlineKeyboardButtonData("⬅️ Вернуться", "att_discard_no"),
				),
			)
			msg := tgbotapi.NewMessage(chatID, "⚠️ Есть несохранённые правки. Смена даты их сбросит.")
			msg.ReplyMarkup = keyboard
			_, _ = tg.Send(d.Bot, msg)
			return
		}
		state.Step = AttStepDate
		sendDateChoice(d, chatID, "📋 За какую дату отмечаем?", "att")
	case data == "att_discard_yes":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		state.Sheet = nil
		state.Step = AttStepDate
		sendDateChoice(d, chatID, "📋 За какую дату отмечаем?", "att")
	case data == "att_discard_no":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		state.Step = AttStepSheet
		renderSheet(d, chatID, state.Sheet)
	case data == "att_ai_send":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		SubmitAICommand(ctx, d, chatID, state.AICommand)
	case data == "att_ai_cancel":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		state.AICommand = ""
		state.Step = AttStepSheet
		renderSheet(d, chatID, state.Sheet)
	case data == "att_cancel":
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		attStates.remove(chatID)
	}
}

// refreshSheetMarkup перерисовывает клавиатуру листа на месте, без нового
// сообщения.
func refreshSheetMarkup(d *Deps, chatID int64, messageID int, sheet *attendance.Sheet) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, st := range sheet.Roster {
		label := fmt.Sprintf("%s %s", statusIcons[sheet.Statuses[st.ID]], st.Name)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("att_st_%d", st.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить", "att_save"),
		tgbotapi.NewInlineKeyboardButtonData("🤖 AI-команда", "att_ai"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📆 Сменить дату", "att_redate"),
		tgbotapi.NewInlineKeyboardButtonData("❌ Закрыть", "att_cancel"),
	))
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.NewInlineKeyboardMarkup(rows...))
	_, _ = tg.Send(d.Bot, edit)
}

// saveSheet — по одному запросу на ученика; неудачи собираем и показываем
// пофамильно, откатов нет.
func saveSheet(ctx context.Context, d *Deps, chatID int64, state *AttFSMState) {
	if state.Sheet == nil {
		return
	}
	if !fsmutil.SetPending(chatID, "att:save") {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⏳ Уже сохраняю, подождите."))
		return
	}
	defer fsmutil.ClearPending(chatID, "att:save")

	results := state.Sheet.Save(ctx, d.API, d.Token(ctx, chatID))
	failed := attendance.Failed(results)
	if len(failed) == 0 {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID,
			fmt.Sprintf("✅ Посещаемость за %s сохранена (%d учеников).", state.Sheet.Date, len(results))))
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Сохранено %d из %d. Не удалось:\n", len(results)-len(failed), len(results))
	for _, f := range failed {
		fmt.Fprintf(&b, "• %s — %v\n", state.Sheet.Name(f.StudentID), f.Err)
	}
	b.WriteString("Успевшие записи уже на сервере; нажмите «Сохранить» ещё раз, чтобы повторить.")
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, b.String()))
}

// HandleAttendanceText — произвольная дата или текст AI-команды.
func HandleAttendanceText(ctx context.Context, d *Deps, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	state := attStates.get(chatID)
	if state == nil {
		return
	}
	if fsmutil.IsCancelText(m.Text) {
		if state.Sheet != nil {
			state.Step = AttStepSheet
			renderSheet(d, chatID, state.Sheet)
		} else {
			attStates.remove(chatID)
		}
		return
	}

	switch state.Step {
	case AttStepCustom:
		date, ok := parseCustomDate(m.Text)
		if !ok {
			_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Нужна дата в формате ГГГГ-ММ-ДД, например 2026-09-01."))
			return
		}
		openSheet(ctx, d, chatID, date)
	case AttStepAI:
		SubmitAICommand(ctx, d, chatID, m.Text)
	}
}
