package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// CreateManualAttendance создаёт (или перезаписывает на сервере) отметку
// одного ученика за дату.
func (c *Client) CreateManualAttendance(ctx context.Context, token string, rec models.ManualAttendance) (models.AttendanceRecord, error) {
	var out models.AttendanceRecord
	err := c.do(ctx, "attendance_manual", http.MethodPost, "/attendance/manual/", token, rec, &out, "не удалось сохранить отметку")
	return out, err
}

// CreateAIAttendance отправляет свободный текст команды как есть. Структуру
// ответа не разбираем: после успеха лист пересобирается свежим запросом.
func (c *Client) CreateAIAttendance(ctx context.Context, token, command string) (json.RawMessage, error) {
	body := struct {
		Command string `json:"command"`
	}{Command: command}
	var out json.RawMessage
	err := c.do(ctx, "attendance_ai", http.MethodPost, "/attendance/ai/", token, body, &out, "не удалось обработать команду")
	return out, err
}

func (c *Client) AttendanceByDate(ctx context.Context, token, date string) ([]models.AttendanceRecord, error) {
	var list []models.AttendanceRecord
	path := "/attendance/date/" + date
	err := c.do(ctx, "attendance_by_date", http.MethodGet, path, token, nil, &list, "не удалось загрузить посещаемость")
	return list, err
}

func (c *Client) AttendanceByStudent(ctx context.Context, token string, studentID int64) ([]models.AttendanceRecord, error) {
	var list []models.AttendanceRecord
	path := fmt.Sprintf("/attendance/student/%d", studentID)
	err := c.do(ctx, "attendance_by_student", http.MethodGet, path, token, nil, &list, "не удалось загрузить историю ученика")
	return list, err
}

func (c *Client) Summary(ctx context.Context, token, date string) (models.Summary, error) {
	var s models.Summary
	path := "/attendance/summary/" + date
	err := c.do(ctx, "attendance_summary", http.MethodGet, path, token, nil, &s, "не удалось загрузить сводку")
	return s, err
}
