package config

import (
	"log/slog"
	"testing"
	"time"
)

// setRequiredEnv задаёт минимальный набор обязательных переменных.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MC_BACKEND_URL", "https://backend.example.com")
}

// TestLoad_Defaults проверяет значения по умолчанию.
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Ошибка Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port: want 8080, got %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: want info, got %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: want json, got %s", cfg.LogFormat)
	}
	if cfg.BackendTimeout != 30*time.Second {
		t.Errorf("BackendTimeout: want 30s, got %v", cfg.BackendTimeout)
	}
	if cfg.BackendHealthPath != "/api/health/" {
		t.Errorf("BackendHealthPath: want /api/health/, got %s", cfg.BackendHealthPath)
	}
	if cfg.ShareLinkCacheSize != 256 {
		t.Errorf("ShareLinkCacheSize: want 256, got %d", cfg.ShareLinkCacheSize)
	}
	if cfg.ShareLinkCacheTTL != 10*time.Minute {
		t.Errorf("ShareLinkCacheTTL: want 10m, got %v", cfg.ShareLinkCacheTTL)
	}
	if cfg.EditSessionTTL != 30*time.Minute {
		t.Errorf("EditSessionTTL: want 30m, got %v", cfg.EditSessionTTL)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout: want 5s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.SecureCookie {
		t.Error("SecureCookie: want false по умолчанию")
	}
}

// TestLoad_MissingBackendURL проверяет ошибку при отсутствии MC_BACKEND_URL.
func TestLoad_MissingBackendURL(t *testing.T) {
	t.Setenv("MC_BACKEND_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("ожидалась ошибка при отсутствии MC_BACKEND_URL")
	}
}

// TestLoad_TrailingSlashTrimmed проверяет нормализацию URL бэкенда.
func TestLoad_TrailingSlashTrimmed(t *testing.T) {
	t.Setenv("MC_BACKEND_URL", "https://backend.example.com///")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Ошибка Load: %v", err)
	}
	if cfg.BackendURL != "https://backend.example.com" {
		t.Errorf("BackendURL: want без trailing slash, got %s", cfg.BackendURL)
	}
}

// TestLoad_Overrides проверяет переопределение значений из окружения.
func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MC_PORT", "9090")
	t.Setenv("MC_LOG_LEVEL", "debug")
	t.Setenv("MC_LOG_FORMAT", "text")
	t.Setenv("MC_BACKEND_TIMEOUT", "10s")
	t.Setenv("MC_SECURE_COOKIE", "true")
	t.Setenv("MC_SHARE_LINK_CACHE_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Ошибка Load: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port: want 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: want debug, got %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: want text, got %s", cfg.LogFormat)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Errorf("BackendTimeout: want 10s, got %v", cfg.BackendTimeout)
	}
	if !cfg.SecureCookie {
		t.Error("SecureCookie: want true")
	}
	if cfg.ShareLinkCacheTTL != time.Hour {
		t.Errorf("ShareLinkCacheTTL: want 1h, got %v", cfg.ShareLinkCacheTTL)
	}
}

// TestLoad_InvalidValues проверяет отклонение некорректных значений.
func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"нечисловой порт", "MC_PORT", "abc"},
		{"порт вне диапазона", "MC_PORT", "70000"},
		{"неизвестный уровень логов", "MC_LOG_LEVEL", "verbose"},
		{"неизвестный формат логов", "MC_LOG_FORMAT", "xml"},
		{"некорректная длительность", "MC_BACKEND_TIMEOUT", "30 seconds"},
		{"некорректный bool", "MC_SECURE_COOKIE", "да"},
		{"нулевой размер кэша ссылок", "MC_SHARE_LINK_CACHE_SIZE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("ожидалась ошибка для %s=%q", tt.key, tt.value)
			}
		})
	}
}

// TestParseLogLevel проверяет разбор уровней логирования.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLogLevel(tt.input)
			if err != nil {
				t.Fatalf("Ошибка parseLogLevel(%q): %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("ожидалось %v, получено %v", tt.expected, level)
			}
		})
	}

	if _, err := parseLogLevel("trace"); err == nil {
		t.Error("ожидалась ошибка для уровня trace")
	}
}
