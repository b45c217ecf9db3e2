package export

import (
	"os"
	"testing"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestDaySheet(t *testing.T) {
	roster := []models.Student{
		{ID: 2, Name: "Петров Пётр"},
		{ID: 1, Name: "Иванов Иван"},
		{ID: 3, Name: "Сидорова Анна"},
	}
	statuses := map[int64]models.Status{
		1: models.StatusPresent,
		2: models.StatusAbsent,
		3: models.StatusLate,
	}

	path, err := DaySheet("2026-09-01", roster, statuses)
	if err != nil {
		t.Fatalf("DaySheet: %v", err)
	}
	defer func() { _ = os.Remove(path) }()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("открыть книгу: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := "Посещаемость"
	cell := func(ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("ячейка %s: %v", ref, err)
		}
		return v
	}

	if cell("A1") != "ID" || cell("B1") != "Ученик" || cell("C1") != "Статус" {
		t.Errorf("заголовки: %q %q %q", cell("A1"), cell("B1"), cell("C1"))
	}

	// строки отсортированы по имени
	if cell("B2") != "Иванов Иван" || cell("B3") != "Петров Пётр" || cell("B4") != "Сидорова Анна" {
		t.Errorf("порядок строк: %q %q %q", cell("B2"), cell("B3"), cell("B4"))
	}
	if cell("C2") != "Присутствует" || cell("C3") != "Отсутствует" || cell("C4") != "Опоздал" {
		t.Errorf("статусы: %q %q %q", cell("C2"), cell("C3"), cell("C4"))
	}
	if cell("A2") != "1" || cell("A3") != "2" || cell("A4") != "3" {
		t.Errorf("ID: %q %q %q", cell("A2"), cell("A3"), cell("A4"))
	}

	want := "Итого за 2026-09-01: 3 учеников, присутствуют 1, отсутствуют 1, опоздали 1"
	if cell("A7") != want {
		t.Errorf("итоги:\n got %q\nwant %q", cell("A7"), want)
	}
}

func TestDaySheetDefaultsMissingToPresent(t *testing.T) {
	roster := []models.Student{{ID: 5, Name: "Новиков Олег"}}

	path, err := DaySheet("2026-09-01", roster, map[int64]models.Status{})
	if err != nil {
		t.Fatalf("DaySheet: %v", err)
	}
	defer func() { _ = os.Remove(path) }()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Посещаемость", "C2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Присутствует" {
		t.Errorf("ученик без отметки должен считаться присутствующим, получили %q", got)
	}
}
