// Пакет handlers — HTTP-обработчики страниц web-клиента.
// auth.go — вход, регистрация, выход.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mycloud/web-client/internal/apiclient"
	"github.com/mycloud/web-client/internal/service"
	"github.com/mycloud/web-client/internal/session"
	uimiddleware "github.com/mycloud/web-client/internal/ui/middleware"
	"github.com/mycloud/web-client/internal/ui/templates"
	"github.com/mycloud/web-client/internal/viewmodel"
)

// baseData — поля, общие для всех страниц (layout).
type baseData struct {
	Title    string
	LoggedIn bool
	Username string
	IsStaff  bool
	Message  string
	Error    string
}

// flashFromQuery заполняет Message/Error из query-параметров redirect-after-POST.
func (b *baseData) flashFromQuery(r *http.Request) {
	b.Message = r.URL.Query().Get("msg")
	b.Error = r.URL.Query().Get("err")
}

// redirectWithError выполняет redirect с сообщением об ошибке.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?err="+url.QueryEscape(msg), http.StatusFound)
}

// redirectWithMessage выполняет redirect с информационным сообщением.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?msg="+url.QueryEscape(msg), http.StatusFound)
}

// userMessage переводит ошибку сервисного слоя в текст для пользователя.
// Ошибки валидации показываются с detail бэкенда дословно.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return "неверные имя пользователя или пароль"
	case errors.Is(err, service.ErrSessionInvalid):
		return "сессия истекла, войдите заново"
	case errors.Is(err, service.ErrNotFound):
		return "объект не найден"
	case errors.Is(err, service.ErrPermissionDenied):
		return "доступ запрещён"
	case errors.Is(err, service.ErrSelfModification):
		return "операция над собственной учётной записью запрещена"
	case errors.Is(err, service.ErrBackendUnavailable):
		return "сервер временно недоступен, попробуйте позже"
	case errors.Is(err, service.ErrEmptyName):
		return "имя файла не может быть пустым"
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == apiclient.KindValidation {
		return apiErr.Detail
	}
	return "не удалось выполнить операцию"
}

// loginForm — сохранённые значения формы входа.
type loginForm struct {
	Username string
}

// registerForm — сохранённые значения формы регистрации.
type registerForm struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// AuthHandler — обработчики входа, регистрации и выхода.
type AuthHandler struct {
	authSvc  *service.AuthService
	sessions *session.Manager
	registry *viewmodel.Registry
	renderer *templates.Renderer
	logger   *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(
	authSvc *service.AuthService,
	sessions *session.Manager,
	registry *viewmodel.Registry,
	renderer *templates.Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authSvc:  authSvc,
		sessions: sessions,
		registry: registry,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "ui.auth")),
	}
}

// loginData — данные страницы входа.
type loginData struct {
	baseData
	Form loginForm
}

// HandleLoginPage обрабатывает GET /login.
// Пользователь с действующей сессией сразу попадает на дашборд.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, err := h.sessions.Get(r); err == nil && sess != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	data := loginData{baseData: baseData{Title: "Вход"}}
	data.flashFromQuery(r)
	h.render(w, "login.html", data)
}

// HandleLogin обрабатывает POST /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	sess, err := h.authSvc.Login(r.Context(), username, password)
	if err != nil {
		data := loginData{
			baseData: baseData{Title: "Вход", Error: userMessage(err)},
			Form:     loginForm{Username: username},
		}
		h.render(w, "login.html", data)
		return
	}

	if err := h.sessions.Set(w, sess); err != nil {
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "внутренняя ошибка", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// registerData — данные страницы регистрации.
type registerData struct {
	baseData
	Form registerForm
}

// HandleRegisterPage обрабатывает GET /register.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	data := registerData{baseData: baseData{Title: "Регистрация"}}
	data.flashFromQuery(r)
	h.render(w, "register.html", data)
}

// HandleRegister обрабатывает POST /register.
// Успешная регистрация сразу создаёт сессию.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
	}

	sess, err := h.authSvc.Register(r.Context(), apiclient.RegisterRequest{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password:  r.PostFormValue("password"),
	})
	if err != nil {
		data := registerData{
			baseData: baseData{Title: "Регистрация", Error: userMessage(err)},
			Form:     form,
		}
		h.render(w, "register.html", data)
		return
	}

	if err := h.sessions.Set(w, sess); err != nil {
		h.logger.Error("Ошибка установки session cookie", slog.String("error", err.Error()))
		http.Error(w, "внутренняя ошибка", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleLogout обрабатывает POST /logout.
// Выход всегда успешен локально: cookie очищается, автомат
// редактирования сессии удаляется.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := uimiddleware.SessionFromContext(r.Context()); sess != nil {
		h.registry.Drop(sess.Username)
		h.logger.Info("пользователь вышел", slog.String("username", sess.Username))
	} else if sess, err := h.sessions.Get(r); err == nil && sess != nil {
		h.registry.Drop(sess.Username)
	}

	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// render рендерит страницу, логируя ошибки шаблона.
func (h *AuthHandler) render(w http.ResponseWriter, name string, data any) {
	if err := h.renderer.Render(w, name, data); err != nil {
		h.logger.Error("Ошибка рендеринга", slog.String("template", name), slog.String("error", err.Error()))
	}
}
