// Пакет middleware — HTTP middleware UI: проверка сессии из cookie.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mycloud/web-client/internal/session"
)

// contextKey — тип для ключей контекста UI.
type contextKey string

// ContextKeySession — данные сессии в контексте запроса.
const ContextKeySession contextKey = "ui_session"

// SessionAuth — middleware проверки аутентификации UI-пользователей.
// Извлекает сессию из зашифрованного cookie, redirect на /login
// при её отсутствии или повреждении.
type SessionAuth struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionAuth создаёт middleware проверки сессии.
func NewSessionAuth(sessions *session.Manager, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "ui_auth_middleware")),
	}
}

// Middleware возвращает HTTP middleware для защищённых маршрутов.
func (sa *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sa.sessions.Get(r)
			if err != nil {
				sa.logger.Debug("Ошибка чтения сессии",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				// Повреждённый cookie — очищаем и redirect на login
				sa.sessions.Clear(w)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			if sess == nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff возвращает middleware, пропускающий только администраторов.
// Признак берётся из сессии; бэкенд дополнительно проверяет права
// на каждой операции, так что устаревший признак не даёт лишнего доступа.
func RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil || !sess.IsStaff {
				http.Redirect(w, r, "/dashboard?err="+url.QueryEscape("доступ запрещён"), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext возвращает данные сессии из контекста
// (nil, если middleware не применялся).
func SessionFromContext(ctx context.Context) *session.Data {
	if sess, ok := ctx.Value(ContextKeySession).(*session.Data); ok {
		return sess
	}
	return nil
}
