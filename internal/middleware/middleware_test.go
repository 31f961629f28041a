package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

// TestNormalizePath проверяет замену числовых сегментов на {id}.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/dashboard", "/dashboard"},
		{"/files/42", "/files/{id}"},
		{"/files/42/rename", "/files/{id}/rename"},
		{"/admin/users/7/toggle-staff", "/admin/users/{id}/toggle-staff"},
		{"/metrics", "/metrics"},
		{"/files/abc", "/files/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePath(tt.input); got != tt.expected {
				t.Errorf("ожидалось %q, получено %q", tt.expected, got)
			}
		})
	}
}

// TestRequestID проверяет генерацию и передачу request-id.
func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	// Без входящего заголовка — генерируется новый
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Error("request-id не попал в контекст")
	}
	if w.Header().Get(RequestIDHeader) != seen {
		t.Error("request-id в ответе не совпадает с контекстом")
	}

	// Входящий заголовок сохраняется
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "fixed-id" {
		t.Errorf("ожидался fixed-id, получено %q", seen)
	}
}

// TestRequestLogger проверяет, что middleware не искажает ответ.
func TestRequestLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("body"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("статус искажён: %d", w.Code)
	}
	if w.Body.String() != "body" {
		t.Errorf("тело искажено: %q", w.Body.String())
	}
}
