// auth.go — вход, регистрация и проверка сессии.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mycloud/web-client/internal/apiclient"
	"github.com/mycloud/web-client/internal/domain/model"
	"github.com/mycloud/web-client/internal/session"
)

// AuthService — аутентификация пользователей через API бэкенда.
type AuthService struct {
	api    *apiclient.Client
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(api *apiclient.Client, logger *slog.Logger) *AuthService {
	return &AuthService{
		api:    api,
		logger: logger.With(slog.String("component", "auth-service")),
	}
}

// Login выполняет вход и возвращает данные новой сессии.
// Неверные учётные данные (401 или 400 от бэкенда) возвращаются
// как ErrInvalidCredentials; сетевые ошибки — как ErrBackendUnavailable.
// Повторные попытки не выполняются.
func (s *AuthService) Login(ctx context.Context, username, password string) (*session.Data, error) {
	result, err := s.api.Login(ctx, username, password)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindAuth) || apiclient.IsKind(err, apiclient.KindValidation) {
			s.logger.Info("отклонённая попытка входа", slog.String("username", username))
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, mapAPIError(err)
	}

	// Профиль нужен для идентификатора пользователя: ответ логина его не содержит
	profile, err := s.api.Me(ctx, result.Token)
	if err != nil {
		return nil, mapAPIError(err)
	}

	s.logger.Info("пользователь вошёл",
		slog.String("username", profile.Username),
		slog.Bool("is_staff", profile.IsStaff))

	return &session.Data{
		Token:    result.Token,
		UserID:   profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
		IsStaff:  profile.IsStaff,
	}, nil
}

// Register создаёт учётную запись и сразу выполняет вход.
// Ошибки валидации бэкенда (занятое имя, слабый пароль) возвращаются
// с текстом detail для показа в форме.
func (s *AuthService) Register(ctx context.Context, req apiclient.RegisterRequest) (*session.Data, error) {
	result, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, mapAPIError(err)
	}

	s.logger.Info("зарегистрирован пользователь", slog.String("username", result.User.Username))

	return &session.Data{
		Token:    result.Token,
		UserID:   result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
		IsStaff:  result.User.IsStaff,
	}, nil
}

// CheckSession сверяет сессию с бэкендом и возвращает актуальный профиль.
//
// Если бэкенд отклонил токен — ErrSessionInvalid, сессию нужно очистить.
// Если бэкенд недоступен — возвращается профиль из данных сессии:
// пользователь продолжает видеть интерфейс, операции всё равно
// завершатся ошибкой на уровне конкретного запроса.
func (s *AuthService) CheckSession(ctx context.Context, sess *session.Data) (*model.UserRecord, error) {
	profile, err := s.api.Me(ctx, sess.Token)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindAuth) {
			return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
		}
		if apiclient.IsKind(err, apiclient.KindNetwork) {
			s.logger.Warn("бэкенд недоступен, используется профиль из сессии",
				slog.String("username", sess.Username))
			return &model.UserRecord{
				ID:       sess.UserID,
				Username: sess.Username,
				Email:    sess.Email,
				IsStaff:  sess.IsStaff,
				IsActive: true,
			}, nil
		}
		return nil, mapAPIError(err)
	}
	return profile, nil
}
