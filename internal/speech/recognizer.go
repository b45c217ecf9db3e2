// Package speech — голосовой ввод команды. Распознаватель — внешняя,
// подключаемая зависимость: бот умеет работать и без него, тогда остаётся
// только текстовый ввод.
package speech

import (
	"context"
	"errors"
	"io"
	"sync"
)

var (
	// ErrUnavailable — распознавание не настроено (нет STT_BASE_URL).
	ErrUnavailable = errors.New("распознавание речи недоступно")
	// ErrPermissionDenied — STT-сервис отверг ключ доступа.
	ErrPermissionDenied = errors.New("нет доступа к сервису распознавания")
	// ErrNoSpeech — в записи не нашлось речи. Мягкая ошибка: прослушивание
	// просто останавливается, баннер об ошибке не показываем.
	ErrNoSpeech = errors.New("речь не распознана")
)

// Recognizer превращает аудиозапись в текст. Одна запись — один результат.
type Recognizer interface {
	Recognize(ctx context.Context, audio io.Reader) (string, error)
}

// Capture следит, чтобы в чате шла максимум одна сессия распознавания.
// Повторный запрос при активной сессии её останавливает (тумблер, а не
// очередь).
type Capture struct {
	mu     sync.Mutex
	active map[int64]context.CancelFunc
}

func NewCapture() *Capture {
	return &Capture{active: make(map[int64]context.CancelFunc)}
}

// Toggle: если в чате уже слушаем — останавливает и возвращает false;
// иначе регистрирует новую сессию и возвращает её контекст и true.
func (c *Capture) Toggle(ctx context.Context, chatID int64) (context.Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.active[chatID]; ok {
		cancel()
		delete(c.active, chatID)
		return nil, false
	}
	ctx, cancel := context.WithCancel(ctx)
	c.active[chatID] = cancel
	return ctx, true
}

// Done снимает сессию после завершения распознавания.
func (c *Capture) Done(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.active[chatID]; ok {
		cancel()
		delete(c.active, chatID)
	}
}

// Listening — идёт ли сейчас распознавание в чате.
func (c *Capture) Listening(chatID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[chatID]
	return ok
}
