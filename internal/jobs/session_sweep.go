package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"go.uber.org/zap"
)

// SessionSweepMaxAge — сессии, к которым не обращались дольше этого срока,
// считаем брошенными: токен на сервере давно истёк.
const SessionSweepMaxAge = 30 * 24 * time.Hour

// SessionSweep возвращает задачу чистки брошенных сессий.
func SessionSweep(database *sql.DB, log *zap.SugaredLogger) Job {
	return func(ctx context.Context) error {
		n, err := db.SweepSessions(ctx, database, SessionSweepMaxAge)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Infow("session sweep", "deleted", n)
		}
		return nil
	}
}
