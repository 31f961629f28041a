// main.go — точка входа web-клиента MyCloud.
// Собирает конфигурацию, логгер, кэш листингов, API-клиент,
// сервисы и HTTP-сервер; запускает мониторинг доступности бэкенда.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mycloud/web-client/internal/apiclient"
	"github.com/mycloud/web-client/internal/config"
	"github.com/mycloud/web-client/internal/repository"
	"github.com/mycloud/web-client/internal/server"
	"github.com/mycloud/web-client/internal/service"
	"github.com/mycloud/web-client/internal/session"
	"github.com/mycloud/web-client/internal/ui/handlers"
	uimiddleware "github.com/mycloud/web-client/internal/ui/middleware"
	"github.com/mycloud/web-client/internal/ui/templates"
	"github.com/mycloud/web-client/internal/viewmodel"
)

// editSessionRegistrySize — ёмкость реестра сессий редактирования.
// Одна запись на активного пользователя.
const editSessionRegistrySize = 1024

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Web-клиент MyCloud запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("backend_url", cfg.BackendURL),
	)

	// 3. Локальный кэш листингов (SQLite)
	if dir := filepath.Dir(cfg.CacheDBPath); dir != "." && cfg.CacheDBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("Ошибка создания каталога кэша", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	db, err := repository.Open(cfg.CacheDBPath, logger)
	if err != nil {
		logger.Error("Ошибка открытия кэша листингов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fileCache := repository.NewFileCache(db)

	// 4. Клиент REST API бэкенда
	api := apiclient.New(cfg.BackendURL, cfg.BackendTimeout, logger)

	// 5. Шифрованные session cookie
	if cfg.SessionSecret == "" {
		logger.Warn("MC_SESSION_SECRET не задан: после перезапуска все сессии будут сброшены")
	}
	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SecureCookie)
	if err != nil {
		logger.Error("Ошибка инициализации менеджера сессий", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Сервисы
	authSvc := service.NewAuthService(api, logger)
	fileSvc := service.NewFileService(api, fileCache, cfg.ShareLinkCacheSize, cfg.ShareLinkCacheTTL, logger)
	adminSvc := service.NewAdminUserService(api, logger)

	depSvc, err := service.NewDephealthService(
		"web-client",
		cfg.DephealthGroup,
		cfg.BackendURL,
		cfg.BackendHealthPath,
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка инициализации dephealth", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Состояние inline-редактирования
	registry := viewmodel.NewRegistry(editSessionRegistrySize, cfg.EditSessionTTL)

	// 8. Шаблоны и обработчики
	renderer, err := templates.New()
	if err != nil {
		logger.Error("Ошибка загрузки шаблонов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessionAuth := uimiddleware.NewSessionAuth(sessions, logger)
	h := server.Handlers{
		Auth:      handlers.NewAuthHandler(authSvc, sessions, registry, renderer, logger),
		Dashboard: handlers.NewDashboardHandler(authSvc, fileSvc, adminSvc, sessions, registry, renderer, logger),
		Files:     handlers.NewFilesHandler(fileSvc, registry, logger),
		Admin:     handlers.NewAdminUsersHandler(adminSvc, renderer, logger),
		Health:    handlers.NewHealthHandler(depSvc),
	}

	// 9. Мониторинг доступности бэкенда
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := depSvc.Start(ctx); err != nil {
		logger.Error("Ошибка запуска dephealth", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer depSvc.Stop()

	// 10. Запуск сервера (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, h, sessionAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Web-клиент остановлен")
}
