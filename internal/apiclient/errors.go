// errors.go — типизированные ошибки бэкенд-API.
// Категория выводится из HTTP-статуса ответа; сетевые сбои
// (запрос не дошёл до сервера) — отдельная категория KindNetwork.
package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind — категория ошибки бэкенд-API.
type ErrorKind string

const (
	// KindAuth — неверные учётные данные или недействительный токен (401)
	KindAuth ErrorKind = "auth"
	// KindValidation — сервер отклонил значения полей (400)
	KindValidation ErrorKind = "validation"
	// KindPermission — недостаточно прав (403)
	KindPermission ErrorKind = "permission"
	// KindNotFound — ресурс не найден (404)
	KindNotFound ErrorKind = "not_found"
	// KindNetwork — запрос не удалось выполнить (транспортная ошибка)
	KindNetwork ErrorKind = "network"
	// KindServer — ошибка на стороне сервера (5xx и прочие статусы)
	KindServer ErrorKind = "server"
)

// APIError — ошибка запроса к бэкенду MyCloud.
type APIError struct {
	// Kind — категория ошибки
	Kind ErrorKind
	// StatusCode — HTTP-статус ответа (0 для сетевых ошибок)
	StatusCode int
	// Detail — сообщение сервера (поле detail) или описание сбоя
	Detail string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s (статус %d): %s", e.Kind, e.StatusCode, e.Detail)
}

// classifyStatus выводит категорию ошибки из HTTP-статуса.
func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusForbidden:
		return KindPermission
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// networkError оборачивает транспортную ошибку в APIError.
func networkError(err error) *APIError {
	return &APIError{
		Kind:   KindNetwork,
		Detail: err.Error(),
	}
}

// IsKind проверяет, является ли err ошибкой API указанной категории.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}
