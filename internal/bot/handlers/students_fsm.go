package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/telegram-attendance-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	StudentsStepView    = 1 // просмотр ростера
	StudentsStepAddName = 2 // ввод имени нового ученика
)

type StudentsFSMState struct {
	Step   int
	Roster []models.Student
}

var studentStates = newFSMStates[StudentsFSMState]()

func GetStudentsState(chatID int64) *StudentsFSMState { return studentStates.get(chatID) }

// StartStudentsFSM — экран ростера.
func StartStudentsFSM(ctx context.Context, d *Deps, chatID int64) {
	roster, err := d.API.Students(ctx, d.Token(ctx, chatID))
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	studentStates.set(chatID, &StudentsFSMState{Step: StudentsStepView, Roster: roster})
	renderRoster(d, chatID, roster)
}

func renderRoster(d *Deps, chatID int64, roster []models.Student) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👥 Ученики (%d):\n", len(roster)))
	for i, st := range roster {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, st.Name))
	}
	if len(roster) == 0 {
		b.WriteString("Список пуст. Добавьте первого ученика.\n")
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", "students_add"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", "students_del"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Закрыть", "students_close"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = keyboard
	_, _ = tg.Send(d.Bot, msg)
}

func HandleStudentsCallback(ctx context.Context, d *Deps, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	state := studentStates.get(chatID)
	if state == nil {
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, "Экран устарел, откройте заново"))
		return
	}
	data := cb.Data
	_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))
	fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)

	switch {
	case data == "students_add":
		state.Step = StudentsStepAddName
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Введите имя ученика (или «отмена»):"))
	case data == "students_del":
		if len(state.Roster) == 0 {
			_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Удалять некого."))
			renderRoster(d, chatID, state.Roster)
			return
		}
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, st := range state.Roster {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(st.Name, fmt.Sprintf("students_del_%d", st.ID)),
			))
		}
		rows = append(rows, fsmutil.BackCancelRow("students_back", "students_close"))
		msg := tgbotapi.NewMessage(chatID, "Кого удалить?")
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		_, _ = tg.Send(d.Bot, msg)
	case strings.HasPrefix(data, "students_delok_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "students_delok_"), 10, 64)
		if err != nil {
			return
		}
		deleteStudent(ctx, d, chatID, state, id)
	case strings.HasPrefix(data, "students_del_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "students_del_"), 10, 64)
		if err != nil {
			return
		}
		// удаление необратимо — подтверждаем явно
		name := studentName(state.Roster, id)
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("students_delok_%d", id)),
				tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", "students_back"),
			),
		)
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Удалить ученика «%s»? Вместе с ним пропадёт история посещаемости.", name))
		msg.ReplyMarkup = keyboard
		_, _ = tg.Send(d.Bot, msg)
	case data == "students_back":
		renderRoster(d, chatID, state.Roster)
	case data == "students_close":
		studentStates.remove(chatID)
	}
}

// HandleStudentsText — ввод имени нового ученика.
func HandleStudentsText(ctx context.Context, d *Deps, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	state := studentStates.get(chatID)
	if state == nil || state.Step != StudentsStepAddName {
		return
	}
	if fsmutil.IsCancelText(m.Text) {
		state.Step = StudentsStepView
		renderRoster(d, chatID, state.Roster)
		return
	}
	name := strings.TrimSpace(m.Text)
	if name == "" {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Имя не может быть пустым."))
		return
	}
	st, err := d.API.CreateStudent(ctx, d.Token(ctx, chatID), name)
	if err != nil {
		state.Step = StudentsStepView
		d.FailAPI(ctx, chatID, err)
		return
	}
	state.Step = StudentsStepView
	state.Roster = append(state.Roster, st)
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "✅ Ученик добавлен: "+st.Name))
	renderRoster(d, chatID, state.Roster)
}

func deleteStudent(ctx context.Context, d *Deps, chatID int64, state *StudentsFSMState, id int64) {
	if err := d.API.DeleteStudent(ctx, d.Token(ctx, chatID), id); err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	name := studentName(state.Roster, id)
	next := state.Roster[:0]
	for _, st := range state.Roster {
		if st.ID != id {
			next = append(next, st)
		}
	}
	state.Roster = next
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "🗑 Удалён: "+name))
	renderRoster(d, chatID, state.Roster)
}

func studentName(roster []models.Student, id int64) string {
	for _, st := range roster {
		if st.ID == id {
			return st.Name
		}
	}
	return fmt.Sprintf("ID %d", id)
}
