package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Session — авторизованный чат: username для приветствия, token — для всех
// запросов к API. Токен читается из БД в момент запроса, не кэшируется в FSM.
type Session struct {
	ChatID    int64
	Username  string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
