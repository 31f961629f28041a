// users.go — операции над пользователями (профиль и админ-панель).
package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mycloud/web-client/internal/domain/model"
)

// userDTO — пользователь в формате бэкенда.
type userDTO struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	IsActive        bool    `json:"is_active"`
	IsStaff         bool    `json:"is_staff"`
	FileCount       int     `json:"file_count"`
	TotalFileSizeMB float64 `json:"total_file_size"`
}

// toModel преобразует DTO в доменную модель.
func (u *userDTO) toModel() *model.UserRecord {
	return &model.UserRecord{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		IsActive:        u.IsActive,
		IsStaff:         u.IsStaff,
		FileCount:       u.FileCount,
		TotalFileSizeMB: u.TotalFileSizeMB,
	}
}

// UserFlags — изменяемые признаки пользователя для PATCH /api/users/{id}/.
// nil-поле не передаётся и не изменяется сервером.
type UserFlags struct {
	IsStaff  *bool `json:"is_staff,omitempty"`
	IsActive *bool `json:"is_active,omitempty"`
}

// ListUsers возвращает список всех пользователей (только для администратора).
// Не-администратору сервер отвечает 403 (KindPermission).
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.UserRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/users/list_users/", token, nil)
	if err != nil {
		return nil, err
	}

	var dtos []userDTO
	if err := decodeResponse(resp, &dtos); err != nil {
		return nil, err
	}

	users := make([]model.UserRecord, 0, len(dtos))
	for i := range dtos {
		users = append(users, *dtos[i].toModel())
	}
	return users, nil
}

// SetUserFlags изменяет признаки is_staff/is_active пользователя.
// Возвращает обновлённую запись в том виде, в котором её сохранил сервер.
func (c *Client) SetUserFlags(ctx context.Context, token string, userID int64, flags UserFlags) (*model.UserRecord, error) {
	path := fmt.Sprintf("/api/users/%d/", userID)

	resp, err := c.do(ctx, http.MethodPatch, path, token, flags)
	if err != nil {
		return nil, err
	}

	var dto userDTO
	if err := decodeResponse(resp, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// DeleteUser удаляет пользователя (только для администратора).
func (c *Client) DeleteUser(ctx context.Context, token string, userID int64) error {
	path := fmt.Sprintf("/api/users/%d/", userID)

	resp, err := c.do(ctx, http.MethodDelete, path, token, nil)
	if err != nil {
		return err
	}
	return checkResponse(resp, http.StatusNoContent)
}
