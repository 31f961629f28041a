// Пакет config — загрузка и валидация конфигурации web-клиента
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации web-клиента.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Бэкенд ---

	// Базовый URL API бэкенда
	BackendURL string
	// Таймаут HTTP-запросов к бэкенду
	BackendTimeout time.Duration
	// Путь health endpoint бэкенда (для dephealth-проверок)
	BackendHealthPath string

	// --- Сессии ---

	// Ключ шифрования session cookie (base64 или произвольная строка).
	// Пустое значение — случайный ключ, сессии не переживают рестарт.
	SessionSecret string
	// Secure flag для cookie (true при работе за HTTPS)
	SecureCookie bool

	// --- Кэш ---

	// Путь к файлу SQLite-кэша списка файлов
	CacheDBPath string
	// Максимальный размер LRU-кэша специальных ссылок
	ShareLinkCacheSize int
	// TTL записей кэша специальных ссылок
	ShareLinkCacheTTL time.Duration
	// TTL автоматов inline-редактирования
	EditSessionTTL time.Duration

	// --- Dephealth ---

	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MC_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("MC_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("MC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MC_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// MC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MC_LOG_LEVEL: %w", err)
	}

	// MC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("MC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MC_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Бэкенд ---

	// MC_BACKEND_URL — обязательный
	cfg.BackendURL, err = getEnvRequired("MC_BACKEND_URL")
	if err != nil {
		return nil, err
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	// MC_BACKEND_TIMEOUT — таймаут запросов к бэкенду (по умолчанию 30s)
	cfg.BackendTimeout, err = getEnvDuration("MC_BACKEND_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MC_BACKEND_TIMEOUT: %w", err)
	}

	// MC_BACKEND_HEALTH_PATH — health endpoint бэкенда (по умолчанию /api/health/)
	cfg.BackendHealthPath = getEnvDefault("MC_BACKEND_HEALTH_PATH", "/api/health/")

	// --- Сессии ---

	// MC_SESSION_SECRET — ключ шифрования сессий (опционально)
	cfg.SessionSecret = getEnvDefault("MC_SESSION_SECRET", "")

	// MC_SECURE_COOKIE — Secure flag (по умолчанию false)
	cfg.SecureCookie, err = getEnvBool("MC_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("MC_SECURE_COOKIE: %w", err)
	}

	// --- Кэш ---

	// MC_CACHE_DB_PATH — путь к SQLite-кэшу (по умолчанию ./data/cache.db)
	cfg.CacheDBPath = getEnvDefault("MC_CACHE_DB_PATH", "./data/cache.db")

	// MC_SHARE_LINK_CACHE_SIZE — размер кэша ссылок (по умолчанию 256)
	cfg.ShareLinkCacheSize, err = getEnvInt("MC_SHARE_LINK_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("MC_SHARE_LINK_CACHE_SIZE: %w", err)
	}
	if cfg.ShareLinkCacheSize < 1 {
		return nil, fmt.Errorf("MC_SHARE_LINK_CACHE_SIZE: значение %d должно быть положительным", cfg.ShareLinkCacheSize)
	}

	// MC_SHARE_LINK_CACHE_TTL — TTL кэша ссылок (по умолчанию 10m)
	cfg.ShareLinkCacheTTL, err = getEnvDuration("MC_SHARE_LINK_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MC_SHARE_LINK_CACHE_TTL: %w", err)
	}

	// MC_EDIT_SESSION_TTL — TTL автоматов редактирования (по умолчанию 30m)
	cfg.EditSessionTTL, err = getEnvDuration("MC_EDIT_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MC_EDIT_SESSION_TTL: %w", err)
	}

	// --- Dephealth ---

	// MC_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию mycloud)
	cfg.DephealthGroup = getEnvDefault("MC_DEPHEALTH_GROUP", "mycloud")

	// MC_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("MC_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MC_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// MC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("MC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
