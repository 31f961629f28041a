// files.go — операции над файлами: список с локальным кэшем,
// загрузка, переименование, комментарии, удаление, скачивание,
// специальные ссылки.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mycloud/web-client/internal/apiclient"
	"github.com/mycloud/web-client/internal/domain/model"
	"github.com/mycloud/web-client/internal/repository"
	"github.com/mycloud/web-client/internal/session"
)

// Prometheus-метрики файловых операций.
var (
	fileOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wc_file_operations_total",
		Help: "Общее количество файловых операций (по операции и результату).",
	}, []string{"operation", "status"})

	staleListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wc_stale_listings_total",
		Help: "Количество показов списка из локального кэша при недоступном бэкенде.",
	})

	shareLinkCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wc_share_link_cache_hits_total",
		Help: "Попадания в кэш специальных ссылок.",
	})
	shareLinkCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wc_share_link_cache_misses_total",
		Help: "Промахи кэша специальных ссылок.",
	})
)

// FileService — файловые операции от имени пользователя.
//
// Список файлов кэшируется в SQLite: при недоступном бэкенде дашборд
// показывает последний полученный список с пометкой stale. Мутации
// выполняются строго confirm-then-apply: локальное состояние меняется
// только после подтверждения бэкенда.
type FileService struct {
	api        *apiclient.Client
	cache      repository.FileCache
	shareLinks *expirable.LRU[int64, string]
	logger     *slog.Logger
}

// NewFileService создаёт файловый сервис.
// shareLinkSize и shareLinkTTL задают параметры LRU-кэша специальных ссылок.
func NewFileService(
	api *apiclient.Client,
	cache repository.FileCache,
	shareLinkSize int,
	shareLinkTTL time.Duration,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		api:        api,
		cache:      cache,
		shareLinks: expirable.NewLRU[int64, string](shareLinkSize, nil, shareLinkTTL),
		logger:     logger.With(slog.String("component", "file-service")),
	}
}

// List возвращает список файлов пользователя.
//
// При успехе кэш учётной записи атомарно заменяется свежим списком.
// При недоступности бэкенда возвращается кэшированный список
// и stale=true; если кэш пуст — ошибка.
func (s *FileService) List(ctx context.Context, sess *session.Data) (files []model.FileRecord, stale bool, err error) {
	files, err = s.api.ListFiles(ctx, sess.Token)
	if err != nil {
		mapped := mapAPIError(err)
		if apiclient.IsKind(err, apiclient.KindNetwork) || apiclient.IsKind(err, apiclient.KindServer) {
			cached, cacheErr := s.cache.List(ctx, sess.UserID)
			if cacheErr == nil && len(cached) > 0 {
				staleListingsTotal.Inc()
				s.logger.Warn("бэкенд недоступен, список из кэша",
					slog.Int64("user_id", sess.UserID),
					slog.Int("files", len(cached)))
				return cached, true, nil
			}
		}
		fileOpsTotal.WithLabelValues("list", "error").Inc()
		return nil, false, mapped
	}

	if cacheErr := s.cache.ReplaceAll(ctx, sess.UserID, files); cacheErr != nil {
		// Кэш вторичен: ошибка записи не мешает показать свежий список
		s.logger.Warn("ошибка обновления кэша списка", slog.String("error", cacheErr.Error()))
	}

	fileOpsTotal.WithLabelValues("list", "ok").Inc()
	return files, false, nil
}

// Upload загружает файл и добавляет подтверждённую запись в кэш.
func (s *FileService) Upload(ctx context.Context, sess *session.Data, filename, comment string, content io.Reader) (*model.FileRecord, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyName
	}

	created, err := s.api.Upload(ctx, sess.Token, filename, comment, content)
	if err != nil {
		fileOpsTotal.WithLabelValues("upload", "error").Inc()
		return nil, mapAPIError(err)
	}

	if cacheErr := s.cache.Upsert(ctx, sess.UserID, created); cacheErr != nil {
		s.logger.Warn("ошибка записи в кэш после загрузки", slog.String("error", cacheErr.Error()))
	}

	fileOpsTotal.WithLabelValues("upload", "ok").Inc()
	s.logger.Info("файл загружен",
		slog.Int64("file_id", created.ID),
		slog.String("name", created.OriginalName))
	return created, nil
}

// Rename переименовывает файл. Имя применяется в том виде, в котором
// его вернул бэкенд.
func (s *FileService) Rename(ctx context.Context, sess *session.Data, fileID int64, newName string) (*model.FileRecord, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, ErrEmptyName
	}

	updated, err := s.api.Rename(ctx, sess.Token, fileID, newName)
	if err != nil {
		fileOpsTotal.WithLabelValues("rename", "error").Inc()
		return nil, mapAPIError(err)
	}

	if cacheErr := s.cache.Upsert(ctx, sess.UserID, updated); cacheErr != nil {
		s.logger.Warn("ошибка обновления кэша после переименования", slog.String("error", cacheErr.Error()))
	}

	fileOpsTotal.WithLabelValues("rename", "ok").Inc()
	return updated, nil
}

// UpdateComment обновляет комментарий. Пустая строка очищает комментарий.
func (s *FileService) UpdateComment(ctx context.Context, sess *session.Data, fileID int64, comment string) (*model.FileRecord, error) {
	updated, err := s.api.UpdateComment(ctx, sess.Token, fileID, comment)
	if err != nil {
		fileOpsTotal.WithLabelValues("update_comment", "error").Inc()
		return nil, mapAPIError(err)
	}

	if cacheErr := s.cache.Upsert(ctx, sess.UserID, updated); cacheErr != nil {
		s.logger.Warn("ошибка обновления кэша комментария", slog.String("error", cacheErr.Error()))
	}

	fileOpsTotal.WithLabelValues("update_comment", "ok").Inc()
	return updated, nil
}

// Delete удаляет файл. Запись исчезает из кэша только после
// подтверждения бэкенда: отклонённое удаление оставляет список нетронутым.
func (s *FileService) Delete(ctx context.Context, sess *session.Data, fileID int64) error {
	if err := s.api.Delete(ctx, sess.Token, fileID); err != nil {
		fileOpsTotal.WithLabelValues("delete", "error").Inc()
		return mapAPIError(err)
	}

	if cacheErr := s.cache.Remove(ctx, sess.UserID, fileID); cacheErr != nil {
		s.logger.Warn("ошибка удаления из кэша", slog.String("error", cacheErr.Error()))
	}
	s.shareLinks.Remove(fileID)

	fileOpsTotal.WithLabelValues("delete", "ok").Inc()
	s.logger.Info("файл удалён", slog.Int64("file_id", fileID))
	return nil
}

// Download запрашивает содержимое файла. Ответ передаётся потоково,
// вызывающий обязан закрыть resp.Body.
func (s *FileService) Download(ctx context.Context, sess *session.Data, fileID int64) (*http.Response, error) {
	resp, err := s.api.Download(ctx, sess.Token, fileID)
	if err != nil {
		fileOpsTotal.WithLabelValues("download", "error").Inc()
		return nil, mapAPIError(err)
	}
	fileOpsTotal.WithLabelValues("download", "ok").Inc()
	return resp, nil
}

// AttachmentFilename извлекает имя файла из заголовка Content-Disposition
// ответа бэкенда. Если заголовок отсутствует или не разбирается —
// подставляется синтетическое имя по идентификатору.
func AttachmentFilename(resp *http.Response, fileID int64) string {
	cd := resp.Header.Get("Content-Disposition")
	if cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return fmt.Sprintf("file_%d", fileID)
}

// ViewURL возвращает URL просмотра файла на бэкенде.
func (s *FileService) ViewURL(sess *session.Data, fileID int64) string {
	return s.api.ViewURL(fileID, sess.Token)
}

// ShareLink возвращает специальную ссылку на файл.
// Ссылки кэшируются в LRU с TTL: повторный запрос той же ссылки
// не обращается к бэкенду.
func (s *FileService) ShareLink(ctx context.Context, sess *session.Data, fileID int64) (string, error) {
	if link, ok := s.shareLinks.Get(fileID); ok {
		shareLinkCacheHits.Inc()
		return link, nil
	}
	shareLinkCacheMisses.Inc()

	result, err := s.api.ShareLink(ctx, sess.Token, fileID)
	if err != nil {
		fileOpsTotal.WithLabelValues("share", "error").Inc()
		return "", mapAPIError(err)
	}

	s.shareLinks.Add(fileID, result.SpecialLink)
	fileOpsTotal.WithLabelValues("share", "ok").Inc()
	return result.SpecialLink, nil
}
