package handlers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Spok95/telegram-attendance-bot/internal/attendance"
	"github.com/Spok95/telegram-attendance-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/telegram-attendance-bot/internal/export"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/Spok95/telegram-attendance-bot/internal/tg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ReportStep int

const (
	ReportStepDate ReportStep = iota + 1
	ReportStepView
	ReportStepCustom
)

type ReportFSMState struct {
	Step   ReportStep
	Date   string
	Roster []models.Student
}

var reportStates = newFSMStates[ReportFSMState]()

func GetReportState(chatID int64) *ReportFSMState { return reportStates.get(chatID) }

func StartReportFSM(d *Deps, chatID int64) {
	reportStates.set(chatID, &ReportFSMState{Step: ReportStepDate})
	sendDateChoice(d, chatID, "📊 Сводка за какую дату?", "rep")
}

// showReport — сводка-плитки и действия по дате.
func showReport(ctx context.Context, d *Deps, chatID int64, date string) {
	state := reportStates.get(chatID)
	if state == nil {
		return
	}
	token := d.Token(ctx, chatID)
	summary, err := d.API.Summary(ctx, token, date)
	if err != nil {
		reportStates.remove(chatID)
		d.FailAPI(ctx, chatID, err)
		return
	}
	state.Date = date
	state.Step = ReportStepView

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Сводка за %s\n\n", date)
	fmt.Fprintf(&b, "👥 Всего: %d\n", summary.Total)
	fmt.Fprintf(&b, "✅ Присутствуют: %d (%.1f%%)\n", summary.Present, summary.PresentPercentage)
	fmt.Fprintf(&b, "🚫 Отсутствуют: %d (%.1f%%)\n", summary.Absent, summary.AbsentPercentage)
	fmt.Fprintf(&b, "⏰ Опоздали: %d (%.1f%%)\n", summary.Late, summary.LatePercentage)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 CSV", "rep_csv"),
			tgbotapi.NewInlineKeyboardButtonData("📥 Excel", "rep_excel"),
			tgbotapi.NewInlineKeyboardButtonData("📄 Лист дня", "rep_sheet"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 По ученику", "rep_student"),
			tgbotapi.NewInlineKeyboardButtonData("📆 Другая дата", "rep_redate"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Закрыть", "rep_cancel"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = keyboard
	_, _ = tg.Send(d.Bot, msg)
}

func HandleReportCallback(ctx context.Context, d *Deps, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	state := reportStates.get(chatID)
	if state == nil {
		_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, "Экран устарел, откройте заново"))
		return
	}
	data := cb.Data
	_, _ = tg.Request(d.Bot, tgbotapi.NewCallback(cb.ID, ""))

	switch {
	case strings.HasPrefix(data, "rep_date_"):
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		showReport(ctx, d, chatID, strings.TrimPrefix(data, "rep_date_"))
	case data == "rep_custom":
		state.Step = ReportStepCustom
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "Введите дату в формате ГГГГ-ММ-ДД:"))
	case data == "rep_csv":
		sendExport(ctx, d, chatID, state.Date, "csv")
	case data == "rep_excel":
		sendExport(ctx, d, chatID, state.Date, "excel")
	case data == "rep_sheet":
		sendLocalSheet(ctx, d, chatID, state.Date)
	case data == "rep_student":
		listReportStudents(ctx, d, chatID, state)
	case strings.HasPrefix(data, "rep_st_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "rep_st_"), 10, 64)
		if err != nil {
			return
		}
		showStudentHistory(ctx, d, chatID, state, id)
	case data == "rep_redate":
		state.Step = ReportStepDate
		sendDateChoice(d, chatID, "📊 Сводка за какую дату?", "rep")
	case data == "rep_cancel":
		fsmutil.DisableMarkup(d.Bot, chatID, cb.Message.MessageID)
		reportStates.remove(chatID)
	}
}

func HandleReportText(ctx context.Context, d *Deps, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	state := reportStates.get(chatID)
	if state == nil || state.Step != ReportStepCustom {
		return
	}
	if fsmutil.IsCancelText(m.Text) {
		reportStates.remove(chatID)
		return
	}
	date, ok := parseCustomDate(m.Text)
	if !ok {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Нужна дата в формате ГГГГ-ММ-ДД, например 2026-09-01."))
		return
	}
	showReport(ctx, d, chatID, date)
}

// sendExport пересылает готовый файл с сервера отчётов.
func sendExport(ctx context.Context, d *Deps, chatID int64, date, kind string) {
	if !fsmutil.SetPending(chatID, "report:"+kind) {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⏳ Выгрузка уже идёт."))
		return
	}
	defer fsmutil.ClearPending(chatID, "report:"+kind)

	token := d.Token(ctx, chatID)
	var (
		data []byte
		name string
		err  error
	)
	if kind == "csv" {
		data, name, err = d.API.ExportCSV(ctx, token, date)
	} else {
		data, name, err = d.API.ExportExcel(ctx, token, date)
	}
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	if err := tg.SendDocument(d.Bot, chatID, name, data, "Отчёт за "+date); err != nil {
		d.FailAPI(ctx, chatID, err)
	}
}

// sendLocalSheet строит Excel-лист из текущих данных даты.
func sendLocalSheet(ctx context.Context, d *Deps, chatID int64, date string) {
	if !fsmutil.SetPending(chatID, "report:sheet") {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⏳ Выгрузка уже идёт."))
		return
	}
	defer fsmutil.ClearPending(chatID, "report:sheet")

	token := d.Token(ctx, chatID)
	roster, err := d.API.Students(ctx, token)
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	records, err := d.API.AttendanceByDate(ctx, token, date)
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	path, err := export.DaySheet(date, roster, attendance.Derive(roster, records))
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	defer func() { _ = os.Remove(path) }()
	raw, err := os.ReadFile(path)
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	if err := tg.SendDocument(d.Bot, chatID, "attendance_"+date+".xlsx", raw, "Лист посещаемости за "+date); err != nil {
		d.FailAPI(ctx, chatID, err)
	}
}

func listReportStudents(ctx context.Context, d *Deps, chatID int64, state *ReportFSMState) {
	roster, err := d.API.Students(ctx, d.Token(ctx, chatID))
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	if len(roster) == 0 {
		_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, "⚠️ Список учеников пуст."))
		return
	}
	state.Roster = roster
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, st := range roster {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(st.Name, fmt.Sprintf("rep_st_%d", st.ID)),
		))
	}
	rows = append(rows, fsmutil.BackCancelRow("rep_redate", "rep_cancel"))
	msg := tgbotapi.NewMessage(chatID, "Чью историю показать?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, _ = tg.Send(d.Bot, msg)
}

func showStudentHistory(ctx context.Context, d *Deps, chatID int64, state *ReportFSMState, studentID int64) {
	records, err := d.API.AttendanceByStudent(ctx, d.Token(ctx, chatID), studentID)
	if err != nil {
		d.FailAPI(ctx, chatID, err)
		return
	}
	name := studentName(state.Roster, studentID)
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s — история посещаемости:\n", name)
	if len(records) == 0 {
		b.WriteString("Записей нет.")
	}
	for _, r := range records {
		fmt.Fprintf(&b, "%s — %s %s\n", r.Date, statusIcons[r.Status], r.Status)
	}
	_, _ = tg.Send(d.Bot, tgbotapi.NewMessage(chatID, b.String()))
}
