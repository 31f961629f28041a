// Пакет repository — локальный кэш списка файлов на SQLite.
//
// Бэкенд остаётся источником истины; кэш хранит последний успешно
// полученный список для каждой учётной записи и позволяет показать
// дашборд при временной недоступности бэкенда.
package repository

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open открывает SQLite-базу кэша и выполняет миграцию схемы.
// path — путь к файлу базы либо ":memory:" для тестов.
func Open(path string, logger *slog.Logger) (*gorm.DB, error) {
	dsn := path
	if path != ":memory:" {
		// WAL и busy_timeout для устойчивости к конкурентному доступу
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы кэша: %w", err)
	}

	// SQLite: одно соединение, чтобы избежать блокировок
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&CachedFile{}); err != nil {
		return nil, fmt.Errorf("ошибка миграции схемы кэша: %w", err)
	}

	logger.Debug("база кэша открыта", slog.String("path", path))
	return db, nil
}
