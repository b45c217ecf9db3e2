package handlers

import "sync"

// fsmStates — карта состояний сценария по чатам. Лимитер сериализует
// апдейты только внутри одного чата; разные чаты пишут сюда параллельно,
// поэтому сама карта — под мьютексом. Поля *T дальше трогает только
// «свой» чат.
type fsmStates[T any] struct {
	mu sync.Mutex
	m  map[int64]*T
}

func newFSMStates[T any]() *fsmStates[T] {
	return &fsmStates[T]{m: make(map[int64]*T)}
}

func (s *fsmStates[T]) get(chatID int64) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID]
}

func (s *fsmStates[T]) set(chatID int64, st *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = st
}

func (s *fsmStates[T]) remove(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
}
