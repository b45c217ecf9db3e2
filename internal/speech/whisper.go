package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
)

// WhisperClient — распознаватель поверх whisper-совместимого HTTP API
// (POST /v1/audio/transcriptions, multipart с файлом).
type WhisperClient struct {
	baseURL string
	token   string
	model   string
	http    *http.Client
}

func NewWhisperClient(baseURL, token string) *WhisperClient {
	return &WhisperClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		model:   "whisper-1",
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (w *WhisperClient) Recognize(ctx context.Context, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "voice.ogg")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := mw.WriteField("model", w.model); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	t0 := time.Now()
	resp, err := w.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.STTRequests.Observe(time.Since(t0).Seconds())

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrPermissionDenied
	case resp.StatusCode/100 != 2:
		return "", fmt.Errorf("stt: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("stt: decode: %w", err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
