package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/models"
)

// SaveSession сохраняет (или обновляет) сессию чата после успешного логина.
// Токен уже проверен сервером — здесь только хранение.
func SaveSession(ctx context.Context, database *sql.DB, chatID int64, username, token string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := database.ExecContext(ctx, `
INSERT INTO sessions (chat_id, username, token, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (chat_id)
DO UPDATE SET username = EXCLUDED.username, token = EXCLUDED.token, updated_at = now()`,
		chatID, username, token)
	return err
}

// GetSession возвращает сессию чата либо nil, если чат не авторизован.
func GetSession(ctx context.Context, database *sql.DB, chatID int64) (*models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var s models.Session
	err := database.QueryRowContext(ctx, `
SELECT chat_id, username, token, created_at, updated_at FROM sessions WHERE chat_id = $1`,
		chatID).Scan(&s.ChatID, &s.Username, &s.Token, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession — выход из аккаунта. Отсутствие строки ошибкой не считаем.
func DeleteSession(ctx context.Context, database *sql.DB, chatID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := database.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID)
	return err
}

// TouchSession обновляет updated_at, чтобы активные чаты не попадали под чистку.
func TouchSession(ctx context.Context, database *sql.DB, chatID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	_, err := database.ExecContext(ctx, `UPDATE sessions SET updated_at = now() WHERE chat_id = $1`, chatID)
	return err
}

// SweepSessions удаляет сессии, к которым не обращались дольше maxAge.
// Возвращает число удалённых строк (для метрик фоновой задачи).
func SweepSessions(ctx context.Context, database *sql.DB, maxAge time.Duration) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	res, err := database.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < now() - ($1 * interval '1 second')`,
		int64(maxAge.Seconds()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
