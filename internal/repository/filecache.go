package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mycloud/web-client/internal/domain/model"
)

// CachedFile — строка кэша списка файлов.
// Составной первичный ключ (account_id, file_id): один и тот же файл
// может присутствовать в списках нескольких учётных записей
// (например, у владельца и у администратора).
type CachedFile struct {
	AccountID        int64     `gorm:"primaryKey;column:account_id"`
	FileID           int64     `gorm:"primaryKey;column:file_id"`
	OwnerID          int64     `gorm:"column:owner_id;index"`
	OwnerDisplayName string    `gorm:"column:owner_display_name"`
	OriginalName     string    `gorm:"column:original_name"`
	SizeBytes        int64     `gorm:"column:size_bytes"`
	UploadedAt       time.Time `gorm:"column:uploaded_at"`
	// LastDownloadAt — нулевое время означает «не скачивался».
	LastDownloadAt time.Time `gorm:"column:last_download_at"`
	Comment        string    `gorm:"column:comment"`
	CachedAt       time.Time `gorm:"column:cached_at;autoUpdateTime"`
}

// TableName задаёт имя таблицы кэша.
func (CachedFile) TableName() string {
	return "cached_files"
}

// toModel преобразует строку кэша в доменную модель.
func (c *CachedFile) toModel() model.FileRecord {
	f := model.FileRecord{
		ID:               c.FileID,
		OwnerID:          c.OwnerID,
		OwnerDisplayName: c.OwnerDisplayName,
		OriginalName:     c.OriginalName,
		SizeBytes:        c.SizeBytes,
		UploadedAt:       c.UploadedAt,
		Comment:          c.Comment,
	}
	if !c.LastDownloadAt.IsZero() {
		t := c.LastDownloadAt
		f.LastDownloadAt = &t
	}
	return f
}

// fromModel преобразует доменную модель в строку кэша.
func fromModel(accountID int64, f *model.FileRecord) CachedFile {
	c := CachedFile{
		AccountID:        accountID,
		FileID:           f.ID,
		OwnerID:          f.OwnerID,
		OwnerDisplayName: f.OwnerDisplayName,
		OriginalName:     f.OriginalName,
		SizeBytes:        f.SizeBytes,
		UploadedAt:       f.UploadedAt,
		Comment:          f.Comment,
	}
	if f.LastDownloadAt != nil {
		c.LastDownloadAt = *f.LastDownloadAt
	}
	return c
}

// FileCache — операции над локальным кэшем списка файлов.
type FileCache interface {
	// ReplaceAll атомарно заменяет кэшированный список учётной записи.
	ReplaceAll(ctx context.Context, accountID int64, files []model.FileRecord) error
	// List возвращает кэшированный список учётной записи.
	List(ctx context.Context, accountID int64) ([]model.FileRecord, error)
	// Upsert добавляет или обновляет одну запись.
	Upsert(ctx context.Context, accountID int64, file *model.FileRecord) error
	// Remove удаляет запись из кэша.
	Remove(ctx context.Context, accountID int64, fileID int64) error
}

// fileCache — реализация FileCache поверх GORM.
type fileCache struct {
	db *gorm.DB
}

// NewFileCache создаёт кэш списка файлов.
func NewFileCache(db *gorm.DB) FileCache {
	return &fileCache{db: db}
}

// ReplaceAll заменяет список в транзакции: старые строки учётной записи
// удаляются, новые вставляются одним batch.
func (fc *fileCache) ReplaceAll(ctx context.Context, accountID int64, files []model.FileRecord) error {
	return fc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&CachedFile{}).Error; err != nil {
			return fmt.Errorf("ошибка очистки кэша: %w", err)
		}

		if len(files) == 0 {
			return nil
		}

		rows := make([]CachedFile, 0, len(files))
		for i := range files {
			rows = append(rows, fromModel(accountID, &files[i]))
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("ошибка записи кэша: %w", err)
		}
		return nil
	})
}

// List возвращает кэшированные файлы учётной записи
// в порядке возрастания file_id.
func (fc *fileCache) List(ctx context.Context, accountID int64) ([]model.FileRecord, error) {
	var rows []CachedFile
	err := fc.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("file_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения кэша: %w", err)
	}

	files := make([]model.FileRecord, 0, len(rows))
	for i := range rows {
		files = append(files, rows[i].toModel())
	}
	return files, nil
}

// Upsert сохраняет одну запись (после upload, rename, update_comment).
func (fc *fileCache) Upsert(ctx context.Context, accountID int64, file *model.FileRecord) error {
	row := fromModel(accountID, file)
	err := fc.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("ошибка обновления кэша: %w", err)
	}
	return nil
}

// Remove удаляет запись из кэша (после успешного delete на бэкенде).
func (fc *fileCache) Remove(ctx context.Context, accountID int64, fileID int64) error {
	err := fc.db.WithContext(ctx).
		Where("account_id = ? AND file_id = ?", accountID, fileID).
		Delete(&CachedFile{}).Error
	if err != nil {
		return fmt.Errorf("ошибка удаления из кэша: %w", err)
	}
	return nil
}
