// Пакет viewmodel — построение представления списка файлов
// и состояние inline-редактирования на дашборде.
package viewmodel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mycloud/web-client/internal/domain/model"
)

// Project строит представление списка файлов: фильтрация по области
// видимости, владельцу и подстроке имени, затем устойчивая сортировка.
// Исходный срез не изменяется. Файлы с равными ключами сортировки
// сохраняют исходный относительный порядок.
//
// users — справочник пользователей для отображаемого имени владельца;
// может быть nil (тогда используется OwnerDisplayName из записи файла).
func Project(files []model.FileRecord, params model.ViewParams, currentUserID int64, users map[int64]model.UserRecord) []model.FileRecord {
	result := make([]model.FileRecord, 0, len(files))

	search := strings.ToLower(params.SearchText)

	for _, f := range files {
		if params.Scope == model.ScopeMine && f.OwnerID != currentUserID {
			continue
		}
		if params.OwnerFilter != nil && f.OwnerID != *params.OwnerFilter {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(f.OriginalName), search) {
			continue
		}
		result = append(result, f)
	}

	less := lessFunc(params.SortField, users)

	sort.SliceStable(result, func(i, j int) bool {
		if params.SortOrder == model.SortDesc {
			return less(&result[j], &result[i])
		}
		return less(&result[i], &result[j])
	})

	return result
}

// OwnerName возвращает отображаемое имя владельца файла.
// Приоритет: справочник пользователей, затем имя из записи файла,
// затем подстановка по идентификатору.
func OwnerName(f *model.FileRecord, users map[int64]model.UserRecord) string {
	if u, ok := users[f.OwnerID]; ok {
		return u.DisplayName()
	}
	if f.OwnerDisplayName != "" {
		return f.OwnerDisplayName
	}
	return fmt.Sprintf("User %d", f.OwnerID)
}

// lessFunc возвращает компаратор для поля сортировки.
// Строки сравниваются побайтово, без локале-зависимых правил.
func lessFunc(field model.SortField, users map[int64]model.UserRecord) func(a, b *model.FileRecord) bool {
	switch field {
	case model.SortByOwner:
		return func(a, b *model.FileRecord) bool {
			return OwnerName(a, users) < OwnerName(b, users)
		}
	case model.SortBySize:
		return func(a, b *model.FileRecord) bool {
			return a.SizeBytes < b.SizeBytes
		}
	case model.SortByUploadedAt:
		return func(a, b *model.FileRecord) bool {
			return a.UploadedAt.Before(b.UploadedAt)
		}
	case model.SortByLastDownload:
		return func(a, b *model.FileRecord) bool {
			// Файлы без скачиваний идут первыми: nil считается нулевым временем
			return derefTime(a.LastDownloadAt).Before(derefTime(b.LastDownloadAt))
		}
	case model.SortByComment:
		return func(a, b *model.FileRecord) bool {
			return a.Comment < b.Comment
		}
	default:
		return func(a, b *model.FileRecord) bool {
			return a.OriginalName < b.OriginalName
		}
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
