package api

import (
	"context"
	"net/http"

	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// Register создаёт пользователя API. Токен не нужен.
func (c *Client) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	var u models.User
	err := c.do(ctx, "register", http.MethodPost, "/users/register", "", reg, &u, "не удалось зарегистрироваться")
	return u, err
}

// Login обменивает логин/пароль на bearer-токен.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.Token, error) {
	var t models.Token
	err := c.do(ctx, "login", http.MethodPost, "/users/login", "", creds, &t, "не удалось войти")
	return t, err
}
