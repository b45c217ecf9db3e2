// Package attendance держит редактируемый лист посещаемости одной даты:
// вывод карты статусов из ростера и серверных записей, локальные правки и
// позаписное сохранение.
package attendance

import (
	"context"
	"fmt"
	"sort"

	"github.com/Spok95/telegram-attendance-bot/internal/api"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// Derive строит карту student_id → статус: у каждого ученика ростера ровно
// одна запись; при отсутствии серверной отметки — present. Умолчание
// оптимистичное: та же логика, что у серверной сводки.
func Derive(roster []models.Student, records []models.AttendanceRecord) map[int64]models.Status {
	byStudent := make(map[int64]models.Status, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r.Status
	}
	m := make(map[int64]models.Status, len(roster))
	for _, st := range roster {
		if s, ok := byStudent[st.ID]; ok {
			m[st.ID] = s
		} else {
			m[st.ID] = models.StatusPresent
		}
	}
	return m
}

// Sheet — лист одной даты. Живёт в памяти до явного сохранения; смена даты
// собирает новый лист заново, несохранённые правки при этом теряются —
// обработчик обязан предупредить об этом пользователя.
type Sheet struct {
	Date     string // YYYY-MM-DD
	Roster   []models.Student
	Statuses map[int64]models.Status
	dirty    bool
}

func NewSheet(date string, roster []models.Student, records []models.AttendanceRecord) *Sheet {
	return &Sheet{
		Date:     date,
		Roster:   roster,
		Statuses: Derive(roster, records),
	}
}

// SetStatus — локальная правка одного ученика. Сеть не трогаем.
func (s *Sheet) SetStatus(studentID int64, status models.Status) error {
	if _, err := models.ParseStatus(string(status)); err != nil {
		return err
	}
	if _, ok := s.Statuses[studentID]; !ok {
		return fmt.Errorf("ученика %d нет в листе за %s", studentID, s.Date)
	}
	s.Statuses[studentID] = status
	s.dirty = true
	return nil
}

// Cycle переключает статус ученика по кругу present → absent → late.
func (s *Sheet) Cycle(studentID int64) (models.Status, error) {
	cur, ok := s.Statuses[studentID]
	if !ok {
		return "", fmt.Errorf("ученика %d нет в листе за %s", studentID, s.Date)
	}
	var next models.Status
	switch cur {
	case models.StatusPresent:
		next = models.StatusAbsent
	case models.StatusAbsent:
		next = models.StatusLate
	default:
		next = models.StatusPresent
	}
	s.Statuses[studentID] = next
	s.dirty = true
	return next, nil
}

// Dirty — есть ли несохранённые правки.
func (s *Sheet) Dirty() bool { return s.dirty }

// SaveResult — итог сохранения одного ученика.
type SaveResult struct {
	StudentID int64
	Status    models.Status
	Err       error
}

// Failed возвращает только неудачные записи.
func Failed(results []SaveResult) []SaveResult {
	var out []SaveResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Save сохраняет весь лист: по одному запросу на ученика, последовательно,
// в порядке возрастания id. Отката нет — успевшие записи остаются на
// сервере. Ошибки не прерывают цикл, а собираются по каждому ученику,
// чтобы вызывающий мог показать и повторить только неудавшихся.
func (s *Sheet) Save(ctx context.Context, client *api.Client, token string) []SaveResult {
	ids := make([]int64, 0, len(s.Statuses))
	for id := range s.Statuses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]SaveResult, 0, len(ids))
	for _, id := range ids {
		status := s.Statuses[id]
		_, err := client.CreateManualAttendance(ctx, token, models.ManualAttendance{
			StudentID: id,
			Status:    status,
			Date:      s.Date,
		})
		results = append(results, SaveResult{StudentID: id, Status: status, Err: err})
	}
	if len(Failed(results)) == 0 {
		s.dirty = false
	}
	return results
}

// Refresh пересобирает карту по свежим записям (после AI-команды лист
// всегда строится из нового запроса, а не из тела ответа AI). Локальные
// правки при этом сбрасываются.
func (s *Sheet) Refresh(records []models.AttendanceRecord) {
	s.Statuses = Derive(s.Roster, records)
	s.dirty = false
}

// Name возвращает имя ученика из ростера листа.
func (s *Sheet) Name(studentID int64) string {
	for _, st := range s.Roster {
		if st.ID == studentID {
			return st.Name
		}
	}
	return fmt.Sprintf("ID %d", studentID)
}
