package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/telegram-attendance-bot/internal/ctxutil"
	"github.com/Spok95/telegram-attendance-bot/internal/metrics"
)

// Client — шлюз к REST API посещаемости. По одному методу на эндпоинт;
// bearer-токен передаётся явным аргументом, без глобального состояния.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// RequestError — ответ API с не-2xx статусом. Message берём из поля detail
// тела ответа, иначе — сырой текст тела, иначе — фолбэк эндпоинта.
type RequestError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.Status, e.Message)
}

// IsAuthError — истёкший или невалидный токен.
func (e *RequestError) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return fallback
}

// do выполняет запрос и, при out != nil, декодирует JSON-ответ. op — имя
// эндпоинта для метрик: в отличие от path оно не содержит дат и id, иначе
// каждая дата плодила бы новую серию в prometheus.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any, fallback string) error {
	ctx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	t0 := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(op, 0, time.Since(t0))
		return fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveAPIRequest(op, resp.StatusCode, time.Since(t0))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", path, err)
	}
	if resp.StatusCode/100 != 2 {
		return &RequestError{Status: resp.StatusCode, Endpoint: path, Message: errorMessage(raw, fallback)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode: %w", path, err)
	}
	return nil
}

// download забирает файл (CSV/Excel): возвращает байты и имя из
// Content-Disposition, если сервер его прислал.
func (c *Client) download(ctx context.Context, op, path, token, fallback string) ([]byte, string, error) {
	ctx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	t0 := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(op, 0, time.Since(t0))
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveAPIRequest(op, resp.StatusCode, time.Since(t0))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%s: read body: %w", path, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, "", &RequestError{Status: resp.StatusCode, Endpoint: path, Message: errorMessage(raw, fallback)}
	}
	name := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = params["filename"]
		}
	}
	return raw, name, nil
}
