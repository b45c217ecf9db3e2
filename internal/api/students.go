package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

func (c *Client) Students(ctx context.Context, token string) ([]models.Student, error) {
	var list []models.Student
	err := c.do(ctx, "students_list", http.MethodGet, "/students/", token, nil, &list, "не удалось загрузить список учеников")
	return list, err
}

func (c *Client) CreateStudent(ctx context.Context, token, name string) (models.Student, error) {
	var s models.Student
	body := struct {
		Name string `json:"name"`
	}{Name: name}
	err := c.do(ctx, "student_create", http.MethodPost, "/students/", token, body, &s, "не удалось добавить ученика")
	return s, err
}

func (c *Client) DeleteStudent(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/students/%d", id)
	return c.do(ctx, "student_delete", http.MethodDelete, path, token, nil, nil, "не удалось удалить ученика")
}
