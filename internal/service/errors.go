// Пакет service — бизнес-логика web-клиента поверх API бэкенда.
package service

import (
	"errors"
	"fmt"

	"github.com/mycloud/web-client/internal/apiclient"
)

// Типизированные ошибки сервисного слоя.
// Handlers сопоставляют их с редиректами и сообщениями пользователю.
var (
	// ErrInvalidCredentials — неверные имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrSessionInvalid — токен сессии отклонён бэкендом, требуется повторный вход.
	ErrSessionInvalid = errors.New("сессия недействительна")
	// ErrNotFound — файл или пользователь не найден на бэкенде.
	ErrNotFound = errors.New("объект не найден")
	// ErrPermissionDenied — операция запрещена для текущего пользователя.
	ErrPermissionDenied = errors.New("доступ запрещён")
	// ErrSelfModification — администратор пытается изменить или удалить
	// собственную учётную запись.
	ErrSelfModification = errors.New("операция над собственной учётной записью запрещена")
	// ErrBackendUnavailable — бэкенд недоступен или вернул 5xx.
	// Операция не выполнялась и не будет повторена автоматически.
	ErrBackendUnavailable = errors.New("бэкенд недоступен")
	// ErrEmptyName — пустое имя файла при переименовании.
	ErrEmptyName = errors.New("имя файла не может быть пустым")
)

// mapAPIError переводит ошибку API-клиента в типизированную ошибку
// сервисного слоя. Ошибки валидации возвращаются как есть: их detail
// показывается пользователю дословно.
func mapAPIError(err error) error {
	switch {
	case apiclient.IsKind(err, apiclient.KindAuth):
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	case apiclient.IsKind(err, apiclient.KindPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case apiclient.IsKind(err, apiclient.KindNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case apiclient.IsKind(err, apiclient.KindNetwork), apiclient.IsKind(err, apiclient.KindServer):
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	default:
		return err
	}
}

