//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/testutil/testdb"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatalf("поднять тестовую БД: %v", err)
	}
	defer h.Close()

	const chat = int64(42)

	// до логина сессии нет
	s, err := db.GetSession(ctx, h.DB, chat)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("сессии быть не должно, получили %+v", s)
	}

	if err := db.SaveSession(ctx, h.DB, chat, "teacher", "tok-1"); err != nil {
		t.Fatal(err)
	}
	s, err = db.GetSession(ctx, h.DB, chat)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil || s.Username != "teacher" || s.Token != "tok-1" {
		t.Fatalf("сессия после логина: %+v", s)
	}

	// повторный логин перезаписывает токен, а не плодит строки
	if err := db.SaveSession(ctx, h.DB, chat, "teacher", "tok-2"); err != nil {
		t.Fatal(err)
	}
	s, err = db.GetSession(ctx, h.DB, chat)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil || s.Token != "tok-2" {
		t.Fatalf("токен не обновился: %+v", s)
	}

	if err := db.DeleteSession(ctx, h.DB, chat); err != nil {
		t.Fatal(err)
	}
	s, err = db.GetSession(ctx, h.DB, chat)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("сессия должна быть удалена, получили %+v", s)
	}

	// повторный выход — не ошибка
	if err := db.DeleteSession(ctx, h.DB, chat); err != nil {
		t.Fatalf("повторное удаление: %v", err)
	}
}

func TestTouchAndSweep(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatalf("поднять тестовую БД: %v", err)
	}
	defer h.Close()

	if err := db.SaveSession(ctx, h.DB, 1, "stale", "tok-a"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveSession(ctx, h.DB, 2, "active", "tok-b"); err != nil {
		t.Fatal(err)
	}

	// состариваем обе сессии вручную
	if _, err := h.DB.ExecContext(ctx,
		`UPDATE sessions SET updated_at = now() - interval '1 hour'`); err != nil {
		t.Fatal(err)
	}
	// активный чат «касается» своей сессии
	if err := db.TouchSession(ctx, h.DB, 2); err != nil {
		t.Fatal(err)
	}

	n, err := db.SweepSessions(ctx, h.DB, 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("ожидали одну зачищенную сессию, получили %d", n)
	}

	s, err := db.GetSession(ctx, h.DB, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Error("застарелая сессия должна быть удалена")
	}
	s, err = db.GetSession(ctx, h.DB, 2)
	if err != nil {
		t.Fatal(err)
	}
	if s == nil {
		t.Error("активная сессия не должна попадать под чистку")
	}
}
