// viewparams.go — параметры отображения списка файлов.
// Поле сортировки, направление и область видимости — закрытые
// перечисления с явной валидацией: нераспознанное значение — ошибка,
// а не молчаливый no-op.
package model

import "fmt"

// SortField — поле сортировки списка файлов.
type SortField string

const (
	// SortByOwner — по отображаемому имени владельца
	SortByOwner SortField = "owner"
	// SortByName — по оригинальному имени файла
	SortByName SortField = "name"
	// SortBySize — по размеру в байтах
	SortBySize SortField = "size"
	// SortByUploadedAt — по дате загрузки
	SortByUploadedAt SortField = "uploaded_at"
	// SortByLastDownload — по дате последнего скачивания
	SortByLastDownload SortField = "last_download_at"
	// SortByComment — по комментарию
	SortByComment SortField = "comment"
)

// ParseSortField преобразует строку в SortField.
// Возвращает ошибку для недопустимых значений.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case SortByOwner, SortByName, SortBySize, SortByUploadedAt, SortByLastDownload, SortByComment:
		return SortField(s), nil
	default:
		return "", fmt.Errorf("недопустимое поле сортировки: %q, допустимые: owner, name, size, uploaded_at, last_download_at, comment", s)
	}
}

// SortOrder — направление сортировки.
type SortOrder string

const (
	// SortAsc — по возрастанию
	SortAsc SortOrder = "asc"
	// SortDesc — по убыванию
	SortDesc SortOrder = "desc"
)

// ParseSortOrder преобразует строку в SortOrder.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s), nil
	default:
		return "", fmt.Errorf("недопустимое направление сортировки: %q, допустимые: asc, desc", s)
	}
}

// Scope — область видимости списка файлов.
type Scope string

const (
	// ScopeMine — только файлы текущего пользователя
	ScopeMine Scope = "mine"
	// ScopeAll — все видимые файлы (для администратора)
	ScopeAll Scope = "all"
)

// ParseScope преобразует строку в Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeMine, ScopeAll:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("недопустимая область видимости: %q, допустимые: mine, all", s)
	}
}

// ViewParams — параметры отображения списка файлов.
// Принадлежат слою представления и передаются в проекцию
// при каждом пересчёте, не хранятся в доменной модели.
type ViewParams struct {
	// SearchText — поисковый запрос (подстрока имени файла, без учёта регистра)
	SearchText string
	// SortField — поле сортировки
	SortField SortField
	// SortOrder — направление сортировки
	SortOrder SortOrder
	// Scope — область видимости (mine, all)
	Scope Scope
	// OwnerFilter — фильтр по владельцу (nil — не применяется)
	OwnerFilter *int64
}

// DefaultViewParams возвращает параметры отображения по умолчанию:
// сортировка по имени по возрастанию, только свои файлы.
func DefaultViewParams() ViewParams {
	return ViewParams{
		SortField: SortByName,
		SortOrder: SortAsc,
		Scope:     ScopeMine,
	}
}
