package app

import "sync"

// ChatLimiter сериализует обработку апдейтов в рамках одного чата: два
// сценария одновременно в одном чате не выполняются. Разные чаты при этом
// обрабатываются параллельно.
type ChatLimiter struct {
	chats sync.Map // chatID -> *sync.Mutex
}

func NewChatLimiter() *ChatLimiter { return &ChatLimiter{} }

func (l *ChatLimiter) lock(chatID int64) func() {
	v, _ := l.chats.LoadOrStore(chatID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
