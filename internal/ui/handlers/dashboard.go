// dashboard.go — главная страница: список файлов с фильтрацией,
// сортировкой и inline-редактированием.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mycloud/web-client/internal/domain/model"
	"github.com/mycloud/web-client/internal/service"
	"github.com/mycloud/web-client/internal/session"
	uimiddleware "github.com/mycloud/web-client/internal/ui/middleware"
	"github.com/mycloud/web-client/internal/ui/templates"
	"github.com/mycloud/web-client/internal/viewmodel"
)

// sortableFields — поля, по которым сортируется таблица файлов.
var sortableFields = []model.SortField{
	model.SortByOwner,
	model.SortByName,
	model.SortBySize,
	model.SortByUploadedAt,
	model.SortByLastDownload,
	model.SortByComment,
}

// fileRow — строка таблицы файлов.
type fileRow struct {
	ID             int64
	OwnerName      string
	Name           string
	SizeBytes      int64
	UploadedAt     time.Time
	LastDownloadAt *time.Time
	Comment        string
}

// dashboardData — данные страницы дашборда.
type dashboardData struct {
	baseData
	Stale       bool
	Query       string
	Sort        string
	Order       string
	OrderMark   string
	Scope       string
	OwnerFilter string
	SortLinks   map[string]string
	ShowOwner   bool
	Users       []model.UserRecord
	Files       []fileRow
	Rename      viewmodel.FieldEdit
	Comment     viewmodel.FieldEdit
	ShareLink   string
}

// DashboardHandler — обработчик главной страницы.
type DashboardHandler struct {
	authSvc  *service.AuthService
	fileSvc  *service.FileService
	adminSvc *service.AdminUserService
	sessions *session.Manager
	registry *viewmodel.Registry
	renderer *templates.Renderer
	logger   *slog.Logger
}

// NewDashboardHandler создаёт обработчик дашборда.
func NewDashboardHandler(
	authSvc *service.AuthService,
	fileSvc *service.FileService,
	adminSvc *service.AdminUserService,
	sessions *session.Manager,
	registry *viewmodel.Registry,
	renderer *templates.Renderer,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		authSvc:  authSvc,
		fileSvc:  fileSvc,
		adminSvc: adminSvc,
		sessions: sessions,
		registry: registry,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "ui.dashboard")),
	}
}

// HandleDashboard обрабатывает GET /dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	// Сверка сессии с бэкендом: отклонённый токен завершает сессию,
	// актуальный признак администратора обновляет cookie.
	profile, err := h.authSvc.CheckSession(r.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrSessionInvalid) {
			h.sessions.Clear(w)
			redirectWithError(w, r, "/login", "сессия истекла, войдите заново")
			return
		}
		h.logger.Warn("Ошибка сверки сессии", slog.String("error", err.Error()))
		profile = &model.UserRecord{ID: sess.UserID, Username: sess.Username, IsStaff: sess.IsStaff}
	}
	if profile.IsStaff != sess.IsStaff {
		sess.IsStaff = profile.IsStaff
		if err := h.sessions.Set(w, sess); err != nil {
			h.logger.Warn("Ошибка обновления session cookie", slog.String("error", err.Error()))
		}
	}

	params, parseErr := parseViewParams(r, profile.IsStaff)
	if parseErr != nil {
		redirectWithError(w, r, "/dashboard", parseErr.Error())
		return
	}

	data := dashboardData{
		baseData: baseData{
			Title:    "Файлы",
			LoggedIn: true,
			Username: sess.Username,
			IsStaff:  profile.IsStaff,
		},
		Query:     params.SearchText,
		Sort:      string(params.SortField),
		Order:     string(params.SortOrder),
		Scope:     string(params.Scope),
		ShowOwner: profile.IsStaff && params.Scope == model.ScopeAll,
		ShareLink: r.URL.Query().Get("share"),
	}
	data.flashFromQuery(r)
	if params.OwnerFilter != nil {
		data.OwnerFilter = strconv.FormatInt(*params.OwnerFilter, 10)
	}
	data.OrderMark = "↑"
	if params.SortOrder == model.SortDesc {
		data.OrderMark = "↓"
	}
	data.SortLinks = buildSortLinks(params)

	files, stale, err := h.fileSvc.List(r.Context(), sess)
	if err != nil {
		if errors.Is(err, service.ErrSessionInvalid) {
			h.sessions.Clear(w)
			redirectWithError(w, r, "/login", "сессия истекла, войдите заново")
			return
		}
		if data.Error == "" {
			data.Error = userMessage(err)
		}
	}
	data.Stale = stale

	// Справочник пользователей: имена владельцев и фильтр по владельцу
	var users map[int64]model.UserRecord
	if profile.IsStaff {
		list, usersErr := h.adminSvc.ListUsers(r.Context(), sess)
		if usersErr != nil {
			h.logger.Debug("Справочник пользователей недоступен", slog.String("error", usersErr.Error()))
		} else {
			data.Users = list
			users = make(map[int64]model.UserRecord, len(list))
			for _, u := range list {
				users[u.ID] = u
			}
		}
	}

	projected := viewmodel.Project(files, params, sess.UserID, users)
	data.Files = make([]fileRow, 0, len(projected))
	for i := range projected {
		f := &projected[i]
		data.Files = append(data.Files, fileRow{
			ID:             f.ID,
			OwnerName:      viewmodel.OwnerName(f, users),
			Name:           f.OriginalName,
			SizeBytes:      f.SizeBytes,
			UploadedAt:     f.UploadedAt,
			LastDownloadAt: f.LastDownloadAt,
			Comment:        f.Comment,
		})
	}

	edits := h.registry.Get(sess.Username)
	data.Rename = edits.State(viewmodel.KindRename)
	data.Comment = edits.State(viewmodel.KindComment)

	if err := h.renderer.Render(w, "dashboard.html", data); err != nil {
		h.logger.Error("Ошибка рендеринга дашборда", slog.String("error", err.Error()))
	}
}

// parseViewParams извлекает параметры представления из query string.
// Неизвестные значения сортировки, порядка или области — ошибка,
// а не молчаливый откат к значениям по умолчанию.
func parseViewParams(r *http.Request, isStaff bool) (model.ViewParams, error) {
	params := model.DefaultViewParams()
	q := r.URL.Query()

	params.SearchText = q.Get("q")

	if v := q.Get("sort"); v != "" {
		field, err := model.ParseSortField(v)
		if err != nil {
			return params, err
		}
		params.SortField = field
	}

	if v := q.Get("order"); v != "" {
		order, err := model.ParseSortOrder(v)
		if err != nil {
			return params, err
		}
		params.SortOrder = order
	}

	// Область видимости и фильтр по владельцу доступны только администратору
	if isStaff {
		if v := q.Get("scope"); v != "" {
			scope, err := model.ParseScope(v)
			if err != nil {
				return params, err
			}
			params.Scope = scope
		}
		if v := q.Get("owner"); v != "" {
			ownerID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return params, fmt.Errorf("недопустимый владелец: %q", v)
			}
			params.OwnerFilter = &ownerID
		}
	}

	return params, nil
}

// buildSortLinks строит URL заголовков столбцов: клик по текущему
// полю переключает направление, по другому — сортирует по нему
// по возрастанию. Поиск, область и фильтр по владельцу сохраняются.
func buildSortLinks(params model.ViewParams) map[string]string {
	links := make(map[string]string, len(sortableFields))

	for _, field := range sortableFields {
		order := model.SortAsc
		if field == params.SortField && params.SortOrder == model.SortAsc {
			order = model.SortDesc
		}

		v := url.Values{}
		if params.SearchText != "" {
			v.Set("q", params.SearchText)
		}
		v.Set("sort", string(field))
		v.Set("order", string(order))
		if params.Scope != model.ScopeMine {
			v.Set("scope", string(params.Scope))
		}
		if params.OwnerFilter != nil {
			v.Set("owner", strconv.FormatInt(*params.OwnerFilter, 10))
		}

		links[string(field)] = "/dashboard?" + v.Encode()
	}

	return links
}
