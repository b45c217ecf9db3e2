package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/api"
	"github.com/Spok95/telegram-attendance-bot/internal/app"
	"github.com/Spok95/telegram-attendance-bot/internal/bot/handlers"
	"github.com/Spok95/telegram-attendance-bot/internal/config"
	"github.com/Spok95/telegram-attendance-bot/internal/db"
	"github.com/Spok95/telegram-attendance-bot/internal/jobs"
	"github.com/Spok95/telegram-attendance-bot/internal/logging"
	"github.com/Spok95/telegram-attendance-bot/internal/observability"
	"github.com/Spok95/telegram-attendance-bot/internal/speech"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

var release = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	logg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logg.Closer()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		logg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Sugar.Fatalw("db connect failed", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		logg.Sugar.Fatalw("migrate failed", "err", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logg.Sugar.Fatalw("bot init failed", "err", err)
	}
	logg.Sugar.Infow("бот запущен", "username", bot.Self.UserName, "env", cfg.Env)

	deps := &handlers.Deps{
		Bot:      bot,
		DB:       database,
		API:      api.New(cfg.APIBaseURL),
		Location: cfg.Location,
		Capture:  speech.NewCapture(),
	}
	if cfg.STTBaseURL != "" {
		deps.Recognizer = speech.NewWhisperClient(cfg.STTBaseURL, cfg.STTToken)
		logg.Sugar.Infow("голосовой ввод включён", "stt", cfg.STTBaseURL)
	}

	app.StartHTTP(ctx, cfg.HTTPAddr, database)

	jobsLog := logg.Component("jobs")
	runner := jobs.New(ctx, jobsLog)
	runner.Every(6*time.Hour, "session_sweep", jobs.SessionSweep(database, jobsLog))

	limiter := app.NewChatLimiter()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			logg.Sugar.Info("остановка бота")
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go app.HandleUpdate(ctx, deps, limiter, update)
		}
	}
}
