package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDownloadVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ogg-bytes"))
	}))
	defer srv.Close()

	body, err := downloadVoice(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = body.Close() }()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "ogg-bytes" {
		t.Fatalf("получили %q", raw)
	}
}

func TestDownloadVoiceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := downloadVoice(context.Background(), srv.URL); err == nil {
		t.Fatal("ожидали ошибку при http 500")
	}
}

func TestDownloadVoiceHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		_, err := downloadVoice(ctx, srv.URL)
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("ожидали ошибку отменённого контекста")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("загрузка не прервалась по отмене контекста")
	}
}

func TestVoiceClientHasTimeout(t *testing.T) {
	if voiceHTTP.Timeout <= 0 {
		t.Fatal("у клиента загрузки голосовых должен быть таймаут")
	}
}
