package model

import (
	"fmt"
	"strings"
)

// UserRecord — пользователь облачного хранилища.
// Используется на дашборде (резолв имени владельца) и в админ-панели.
// Изменяется только через подтверждённые ответы бэкенда.
type UserRecord struct {
	// ID — идентификатор пользователя (назначается сервером)
	ID int64
	// Username — логин
	Username string
	// Email — адрес электронной почты
	Email string
	// FirstName — имя
	FirstName string
	// LastName — фамилия
	LastName string
	// IsActive — активен ли аккаунт
	IsActive bool
	// IsStaff — является ли администратором
	IsStaff bool
	// FileCount — количество файлов пользователя
	FileCount int
	// TotalFileSizeMB — суммарный размер файлов в мегабайтах
	TotalFileSizeMB float64
}

// DisplayName возвращает отображаемое имя пользователя:
// полное имя, иначе логин, иначе "User {id}".
func (u *UserRecord) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User %d", u.ID)
}
