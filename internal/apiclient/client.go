// Пакет apiclient — HTTP-клиент к REST API облачного хранилища MyCloud.
// Чистая граница ввода-вывода: авторизация токеном в заголовке
// (Authorization: Token <...>), JSON-тела, типизированные ошибки.
// Повторных попыток нет — неудавшийся запрос перезапускает пользователь.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client — HTTP-клиент к бэкенду MyCloud.
type Client struct {
	baseURL    string // Базовый URL бэкенда (без trailing slash)
	httpClient *http.Client
	// streamClient — без общего таймаута: скачивание больших файлов
	// длится дольше timeout, обрыв контролируется контекстом запроса.
	streamClient *http.Client
	logger       *slog.Logger
}

// New создаёт клиент к бэкенду MyCloud.
// baseURL — базовый URL API (например, https://mycloud.example.com).
// timeout — таймаут HTTP-запросов (0 — значение по умолчанию 30s).
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
		logger:       logger.With(slog.String("component", "api_client")),
	}
}

// BaseURL возвращает базовый URL бэкенда.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- HTTP helpers ---

// do выполняет запрос к API. token — пустая строка для публичных endpoints,
// body — сериализуется в JSON (nil — запрос без тела).
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("сериализация тела запроса: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	return resp, nil
}

// decodeResponse декодирует JSON-ответ в target.
// Для не-2xx статусов возвращает *APIError с detail сервера.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromResponse(resp)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("декодирование ответа API: %w", err)
		}
	}

	return nil
}

// checkResponse проверяет статус ответа (для запросов без тела ответа).
func checkResponse(resp *http.Response, expectedStatus int) error {
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return apiErrorFromResponse(resp)
	}
	return nil
}

// apiErrorFromResponse строит APIError из ответа с ошибкой.
// Бэкенд отдаёт ошибки в формате {"detail": "..."}.
func apiErrorFromResponse(resp *http.Response) *APIError {
	detail := ""
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	} else if len(raw) > 0 {
		detail = string(raw)
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Detail:     detail,
	}
}
