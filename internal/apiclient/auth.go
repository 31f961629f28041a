// auth.go — аутентификация: вход, регистрация, профиль текущего пользователя.
package apiclient

import (
	"context"
	"net/http"

	"github.com/mycloud/web-client/internal/domain/model"
)

// LoginResult — ответ POST /api/auth/login/.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// RegisterRequest — тело POST /api/auth/register/.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterResult — ответ регистрации: созданный пользователь и токен сессии.
type RegisterResult struct {
	Token string
	User  model.UserRecord
}

// Login выполняет вход по логину и паролю.
// 401 от сервера означает неверные учётные данные (KindAuth).
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login/", "", body)
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// registerResponse — сырой ответ POST /api/auth/register/:
// поля пользователя плюс token.
type registerResponse struct {
	userDTO
	Token string `json:"token"`
}

// Register создаёт нового пользователя.
// Дубликат логина или email сервер отклоняет со статусом 400 (KindValidation).
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/register/", "", req)
	if err != nil {
		return nil, err
	}

	var raw registerResponse
	if err := decodeResponse(resp, &raw); err != nil {
		return nil, err
	}

	return &RegisterResult{
		Token: raw.Token,
		User:  *raw.userDTO.toModel(),
	}, nil
}

// Me возвращает профиль текущего пользователя (GET /api/users/me/).
// Используется для восстановления и сверки сессии: 401 означает,
// что токен больше не действителен.
func (c *Client) Me(ctx context.Context, token string) (*model.UserRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/users/me/", token, nil)
	if err != nil {
		return nil, err
	}

	var user userDTO
	if err := decodeResponse(resp, &user); err != nil {
		return nil, err
	}
	return user.toModel(), nil
}
