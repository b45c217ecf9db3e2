package handlers

import (
	"sync"
	"testing"
)

// Параллельные чаты пишут в карты состояний одновременно — под -race
// здесь не должно быть ни гонки, ни потери состояния.
func TestStatesParallelChats(t *testing.T) {
	var wg sync.WaitGroup
	for chat := int64(1); chat <= 8; chat++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				authStates.set(id, &AuthFSMState{Step: AuthLoginUsername, Username: "u"})
				attStates.set(id, &AttFSMState{Step: AttStepDate})
				if authStates.get(id) == nil {
					t.Errorf("чат %d: состояние потерялось до сброса", id)
					return
				}
				ClearChatState(id)
				if authStates.get(id) != nil {
					t.Errorf("чат %d: ClearChatState не снял состояние", id)
					return
				}
			}
		}(chat)
	}
	wg.Wait()
}

func TestStatesIsolatedPerChat(t *testing.T) {
	authStates.set(501, &AuthFSMState{Step: AuthLoginUsername})
	authStates.set(502, &AuthFSMState{Step: AuthRegUsername})

	ClearChatState(501)
	if authStates.get(501) != nil {
		t.Error("состояние чата 501 должно быть снято")
	}
	st := authStates.get(502)
	if st == nil || st.Step != AuthRegUsername {
		t.Error("сброс чата 501 не должен трогать чат 502")
	}
	ClearChatState(502)
}
