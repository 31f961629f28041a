// Пакет model — доменные модели Web Client.
package model

import "time"

// FileRecord — запись файла из облачного хранилища MyCloud.
// Источник истины — бэкенд: изменяемые поля (OriginalName, Comment,
// LastDownloadAt) обновляются только подтверждёнными ответами сервера,
// без оптимистичных локальных правок.
type FileRecord struct {
	// ID — идентификатор файла (назначается сервером)
	ID int64
	// OwnerID — идентификатор владельца
	OwnerID int64
	// OwnerDisplayName — отображаемое имя владельца (как вернул сервер)
	OwnerDisplayName string
	// OriginalName — оригинальное имя файла
	OriginalName string
	// SizeBytes — размер файла в байтах
	SizeBytes int64
	// UploadedAt — время загрузки
	UploadedAt time.Time
	// LastDownloadAt — время последнего скачивания (nil — ещё не скачивался)
	LastDownloadAt *time.Time
	// Comment — комментарий к файлу
	Comment string
}
