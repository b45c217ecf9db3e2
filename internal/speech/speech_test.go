package speech

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCaptureToggle(t *testing.T) {
	c := NewCapture()
	const chat = int64(100)

	ctx, started := c.Toggle(context.Background(), chat)
	if !started {
		t.Fatal("первый Toggle должен запускать сессию")
	}
	if !c.Listening(chat) {
		t.Error("после запуска чат должен числиться слушающим")
	}

	// повторный Toggle — стоп, а не вторая сессия
	if _, started := c.Toggle(context.Background(), chat); started {
		t.Fatal("повторный Toggle должен останавливать, а не запускать")
	}
	if c.Listening(chat) {
		t.Error("после остановки чат не должен числиться слушающим")
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("контекст первой сессии должен быть отменён")
	}
}

func TestCaptureIsolatedPerChat(t *testing.T) {
	c := NewCapture()
	if _, ok := c.Toggle(context.Background(), 1); !ok {
		t.Fatal("чат 1 не запустился")
	}
	if _, ok := c.Toggle(context.Background(), 2); !ok {
		t.Fatal("сессия в чате 1 не должна блокировать чат 2")
	}
	c.Done(1)
	if c.Listening(1) {
		t.Error("Done должен снимать сессию")
	}
	if !c.Listening(2) {
		t.Error("Done(1) не должен трогать чат 2")
	}
}

func sttServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			t.Errorf("ожидали multipart, получили %q", r.Header.Get("Content-Type"))
		}
		if err == nil {
			mr, err := r.MultipartReader()
			if err != nil {
				t.Fatal(err)
			}
			seen := map[string]string{}
			for {
				part, err := mr.NextPart()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatal(err)
				}
				raw, _ := io.ReadAll(part)
				seen[part.FormName()] = string(raw)
			}
			if seen["model"] != "whisper-1" {
				t.Errorf("model = %q", seen["model"])
			}
			if seen["file"] != "ogg-bytes" {
				t.Errorf("файл не дошёл: %q", seen["file"])
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestWhisperRecognize(t *testing.T) {
	srv := sttServer(t, http.StatusOK, `{"text":" Отметь Иванова отсутствующим "}`)
	defer srv.Close()

	got, err := NewWhisperClient(srv.URL, "key").Recognize(context.Background(), strings.NewReader("ogg-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Отметь Иванова отсутствующим" {
		t.Errorf("текст не обрезан/не извлечён: %q", got)
	}
}

func TestWhisperEmptyTranscript(t *testing.T) {
	srv := sttServer(t, http.StatusOK, `{"text":"  "}`)
	defer srv.Close()

	_, err := NewWhisperClient(srv.URL, "key").Recognize(context.Background(), strings.NewReader("ogg-bytes"))
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("ожидали ErrNoSpeech, получили %v", err)
	}
}

func TestWhisperPermissionDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewWhisperClient(srv.URL, "bad-key").Recognize(context.Background(), strings.NewReader("x"))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("ожидали ErrPermissionDenied, получили %v", err)
	}
}
