// admin_users.go — административное управление пользователями.
package service

import (
	"context"
	"log/slog"

	"github.com/mycloud/web-client/internal/apiclient"
	"github.com/mycloud/web-client/internal/domain/model"
	"github.com/mycloud/web-client/internal/session"
)

// AdminUserService — операции администратора над учётными записями.
//
// Изменение и удаление собственной учётной записи запрещено на уровне
// сервиса: администратор не может снять с себя права или заблокировать
// сам себя, даже если бэкенд такую операцию пропустил бы.
type AdminUserService struct {
	api    *apiclient.Client
	logger *slog.Logger
}

// NewAdminUserService создаёт сервис управления пользователями.
func NewAdminUserService(api *apiclient.Client, logger *slog.Logger) *AdminUserService {
	return &AdminUserService{
		api:    api,
		logger: logger.With(slog.String("component", "admin-user-service")),
	}
}

// ListUsers возвращает всех пользователей со статистикой хранилища.
func (s *AdminUserService) ListUsers(ctx context.Context, sess *session.Data) ([]model.UserRecord, error) {
	users, err := s.api.ListUsers(ctx, sess.Token)
	if err != nil {
		return nil, mapAPIError(err)
	}
	return users, nil
}

// SetStaff включает или выключает признак администратора.
func (s *AdminUserService) SetStaff(ctx context.Context, sess *session.Data, userID int64, isStaff bool) (*model.UserRecord, error) {
	if userID == sess.UserID {
		return nil, ErrSelfModification
	}

	updated, err := s.api.SetUserFlags(ctx, sess.Token, userID, apiclient.UserFlags{IsStaff: &isStaff})
	if err != nil {
		return nil, mapAPIError(err)
	}

	s.logger.Info("изменён признак администратора",
		slog.Int64("user_id", userID),
		slog.Bool("is_staff", isStaff),
		slog.String("by", sess.Username))
	return updated, nil
}

// SetActive блокирует или разблокирует учётную запись.
func (s *AdminUserService) SetActive(ctx context.Context, sess *session.Data, userID int64, isActive bool) (*model.UserRecord, error) {
	if userID == sess.UserID {
		return nil, ErrSelfModification
	}

	updated, err := s.api.SetUserFlags(ctx, sess.Token, userID, apiclient.UserFlags{IsActive: &isActive})
	if err != nil {
		return nil, mapAPIError(err)
	}

	s.logger.Info("изменена активность учётной записи",
		slog.Int64("user_id", userID),
		slog.Bool("is_active", isActive),
		slog.String("by", sess.Username))
	return updated, nil
}

// DeleteUser удаляет учётную запись вместе с её файлами.
func (s *AdminUserService) DeleteUser(ctx context.Context, sess *session.Data, userID int64) error {
	if userID == sess.UserID {
		return ErrSelfModification
	}

	if err := s.api.DeleteUser(ctx, sess.Token, userID); err != nil {
		return mapAPIError(err)
	}

	s.logger.Info("удалена учётная запись",
		slog.Int64("user_id", userID),
		slog.String("by", sess.Username))
	return nil
}
