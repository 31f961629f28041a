// Пакет server — HTTP-сервер web-клиента с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на внешнем балансировщике.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mycloud/web-client/internal/config"
	"github.com/mycloud/web-client/internal/middleware"
	"github.com/mycloud/web-client/internal/ui/handlers"
	uimiddleware "github.com/mycloud/web-client/internal/ui/middleware"
)

// Handlers — обработчики, монтируемые в router.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Files     *handlers.FilesHandler
	Admin     *handlers.AdminUsersHandler
	Health    *handlers.HealthHandler
}

// Server — HTTP-сервер web-клиента.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers, sessionAuth *uimiddleware.SessionAuth) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, h, sessionAuth),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает chi router со всеми маршрутами и middleware.
func NewRouter(logger *slog.Logger, h Handlers, sessionAuth *uimiddleware.SessionAuth) chi.Router {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger(logger))

	// Служебные endpoints: проверяются Kubernetes напрямую, без сессии
	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	// Публичные страницы
	router.Get("/login", h.Auth.HandleLoginPage)
	router.Post("/login", h.Auth.HandleLogin)
	router.Get("/register", h.Auth.HandleRegisterPage)
	router.Post("/register", h.Auth.HandleRegister)
	router.Post("/logout", h.Auth.HandleLogout)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	// Страницы, требующие сессии
	router.Group(func(r chi.Router) {
		r.Use(sessionAuth.Middleware())

		r.Get("/dashboard", h.Dashboard.HandleDashboard)

		r.Post("/files/upload", h.Files.HandleUpload)
		r.Get("/files/{id}/view", h.Files.HandleView)
		r.Get("/files/{id}/download", h.Files.HandleDownload)
		r.Post("/files/{id}/share", h.Files.HandleShare)
		r.Post("/files/{id}/delete", h.Files.HandleDelete)
		r.Post("/files/{id}/edit", h.Files.HandleEditStart)
		r.Post("/files/{id}/edit/commit", h.Files.HandleEditCommit)
		r.Post("/files/{id}/edit/cancel", h.Files.HandleEditCancel)

		// Администрирование — только для is_staff
		r.Group(func(r chi.Router) {
			r.Use(uimiddleware.RequireStaff())

			r.Get("/admin/users", h.Admin.HandleList)
			r.Post("/admin/users/{id}/toggle-staff", h.Admin.HandleToggleStaff)
			r.Post("/admin/users/{id}/toggle-active", h.Admin.HandleToggleActive)
			r.Post("/admin/users/{id}/delete", h.Admin.HandleDelete)
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
