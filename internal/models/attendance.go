package models

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// ParseStatus — единственная точка входа для статусов извне (callback-данные,
// ответы API). Всё, что не входит в тройку present/absent/late, отклоняем.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPresent, StatusAbsent, StatusLate:
		return Status(s), nil
	}
	return "", fmt.Errorf("неизвестный статус %q", s)
}

// AttendanceRecord — серверная запись посещаемости. Одна запись на пару
// (student_id, date); уникальность гарантирует сервер.
type AttendanceRecord struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Status      Status    `json:"status"`
	StudentName string    `json:"student_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ManualAttendance — тело POST /attendance/manual/.
type ManualAttendance struct {
	StudentID int64  `json:"student_id"`
	Status    Status `json:"status"`
	Date      string `json:"date,omitempty"`
}

// Summary — агрегат GET /attendance/summary/{date}.
type Summary struct {
	Total             int     `json:"total"`
	Present           int     `json:"present"`
	Absent            int     `json:"absent"`
	Late              int     `json:"late"`
	PresentPercentage float64 `json:"presentPercentage"`
	AbsentPercentage  float64 `json:"absentPercentage"`
	LatePercentage    float64 `json:"latePercentage"`
}
