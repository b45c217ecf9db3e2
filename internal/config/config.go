package config

import (
	"os"
	"time"
)

type Config struct {
	BotToken    string
	APIBaseURL  string // REST API посещаемости
	DatabaseURL string
	Location    *time.Location
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	STTBaseURL  string // сервис распознавания речи; пусто — голосовой ввод выключен
	STTToken    string
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	cfg := &Config{
		BotToken:    mustEnv("BOT_TOKEN"),
		APIBaseURL:  mustEnv("API_BASE_URL"),
		DatabaseURL: mustEnv("DATABASE_URL"),
		Location:    loc,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		STTBaseURL:  os.Getenv("STT_BASE_URL"),
		STTToken:    os.Getenv("STT_TOKEN"),
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
