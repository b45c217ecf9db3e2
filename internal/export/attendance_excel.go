// Package export собирает локальные Excel-отчёты по посещаемости.
// Серверные выгрузки (/reports/export/...) приходят готовыми файлами; этот
// пакет нужен для листа текущей даты, который бот строит сам из уже
// загруженных данных.
package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

var statusLabels = map[models.Status]string{
	models.StatusPresent: "Присутствует",
	models.StatusAbsent:  "Отсутствует",
	models.StatusLate:    "Опоздал",
}

// DaySheet строит книгу с одним листом: ростер и статусы за дату плюс
// строка итогов. Возвращает путь сохранённого файла.
func DaySheet(date string, roster []models.Student, statuses map[int64]models.Status) (string, error) {
	f := excelize.NewFile()
	sheet := "Посещаемость"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"ID", "Ученик", "Статус"}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, h := range headers {
		cell := fmt.Sprintf("%s1", colName(i+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return "", fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	_ = f.SetCellStyle(sheet, "A1", "C1", bold)
	_ = f.AutoFilter(sheet, "A1:C1", nil)

	rows := make([]models.Student, len(roster))
	copy(rows, roster)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	var present, absent, late int
	for r, st := range rows {
		status, ok := statuses[st.ID]
		if !ok {
			status = models.StatusPresent
		}
		switch status {
		case models.StatusAbsent:
			absent++
		case models.StatusLate:
			late++
		default:
			present++
		}
		_ = f.SetCellInt(sheet, fmt.Sprintf("A%d", r+2), st.ID)
		_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", r+2), st.Name)
		_ = f.SetCellStr(sheet, fmt.Sprintf("C%d", r+2), statusLabels[status])
	}

	// строка итогов под таблицей
	totalRow := len(rows) + 3
	_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", totalRow),
		fmt.Sprintf("Итого за %s: %d учеников, присутствуют %d, отсутствуют %d, опоздали %d",
			date, len(rows), present, absent, late))
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("A%d", totalRow), bold)

	// эвристическая ширина: по заголовку и первым строкам
	for c := 1; c <= len(headers); c++ {
		maxim := len([]rune(headers[c-1]))
		for r := 0; r < minim(50, len(rows)); r++ {
			var val string
			switch c {
			case 2:
				val = rows[r].Name
			case 3:
				val = statusLabels[statuses[rows[r].ID]]
			}
			if l := len([]rune(val)); l > maxim {
				maxim = l
			}
		}
		w := float64(maxim) * 1.1
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}

	path := fmt.Sprintf("/tmp/attendance_%s_%d.xlsx", date, time.Now().Unix())
	return path, f.SaveAs(path)
}

// helpers
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
