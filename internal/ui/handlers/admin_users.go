// admin_users.go — администрирование пользователей.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mycloud/web-client/internal/domain/model"
	"github.com/mycloud/web-client/internal/service"
	"github.com/mycloud/web-client/internal/session"
	uimiddleware "github.com/mycloud/web-client/internal/ui/middleware"
	"github.com/mycloud/web-client/internal/ui/templates"
)

// usersData — данные страницы списка пользователей.
type usersData struct {
	baseData
	Users         []model.UserRecord
	CurrentUserID int64
}

// AdminUsersHandler — обработчик раздела администрирования.
type AdminUsersHandler struct {
	adminSvc *service.AdminUserService
	renderer *templates.Renderer
	logger   *slog.Logger
}

// NewAdminUsersHandler создаёт обработчик администрирования.
func NewAdminUsersHandler(adminSvc *service.AdminUserService, renderer *templates.Renderer, logger *slog.Logger) *AdminUsersHandler {
	return &AdminUsersHandler{
		adminSvc: adminSvc,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "ui.admin")),
	}
}

// HandleList обрабатывает GET /admin/users.
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	data := usersData{
		baseData: baseData{
			Title:    "Пользователи",
			LoggedIn: true,
			Username: sess.Username,
			IsStaff:  sess.IsStaff,
		},
		CurrentUserID: sess.UserID,
	}
	data.flashFromQuery(r)

	users, err := h.adminSvc.ListUsers(r.Context(), sess)
	if err != nil {
		h.logger.Warn("Ошибка получения списка пользователей", slog.String("error", err.Error()))
		if data.Error == "" {
			data.Error = userMessage(err)
		}
	}
	data.Users = users

	if err := h.renderer.Render(w, "users.html", data); err != nil {
		h.logger.Error("Ошибка рендеринга списка пользователей", slog.String("error", err.Error()))
	}
}

// HandleToggleStaff обрабатывает POST /admin/users/{id}/toggle-staff.
func (h *AdminUsersHandler) HandleToggleStaff(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, "признак администратора", func(sess *session.Data, userID int64, value bool) error {
		_, err := h.adminSvc.SetStaff(r.Context(), sess, userID, value)
		return err
	})
}

// HandleToggleActive обрабатывает POST /admin/users/{id}/toggle-active.
func (h *AdminUsersHandler) HandleToggleActive(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, "статус активности", func(sess *session.Data, userID int64, value bool) error {
		_, err := h.adminSvc.SetActive(r.Context(), sess, userID, value)
		return err
	})
}

// setFlag — общая часть переключения флага пользователя.
func (h *AdminUsersHandler) setFlag(w http.ResponseWriter, r *http.Request, what string, apply func(*session.Data, int64, bool) error) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	userID, err := userIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/admin/users", err.Error())
		return
	}

	value, err := strconv.ParseBool(r.FormValue("value"))
	if err != nil {
		redirectWithError(w, r, "/admin/users", "недопустимое значение флага")
		return
	}

	if err := apply(sess, userID, value); err != nil {
		h.logger.Warn("Ошибка изменения флага пользователя",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		redirectWithError(w, r, "/admin/users", userMessage(err))
		return
	}

	redirectWithMessage(w, r, "/admin/users", what+" изменён")
}

// HandleDelete обрабатывает POST /admin/users/{id}/delete.
// Удаление каскадно уносит файлы пользователя на бэкенде,
// поэтому без явного подтверждения запрос отклоняется.
func (h *AdminUsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	userID, err := userIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/admin/users", err.Error())
		return
	}

	if r.FormValue("confirm") != "true" {
		redirectWithError(w, r, "/admin/users", "удаление не подтверждено")
		return
	}

	if err := h.adminSvc.DeleteUser(r.Context(), sess, userID); err != nil {
		h.logger.Warn("Ошибка удаления пользователя",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		redirectWithError(w, r, "/admin/users", userMessage(err))
		return
	}

	redirectWithMessage(w, r, "/admin/users", "пользователь удалён")
}

// userIDParam извлекает идентификатор пользователя из пути запроса.
func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("недопустимый идентификатор пользователя: %q", raw)
	}
	return id, nil
}
