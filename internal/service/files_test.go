package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mycloud/web-client/internal/repository"
	"github.com/mycloud/web-client/internal/session"
)

func testCache(t *testing.T) repository.FileCache {
	t.Helper()
	db, err := repository.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("Ошибка открытия базы кэша: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewFileCache(db)
}

func testSession() *session.Data {
	return &session.Data{Token: "tok-1", UserID: 7, Username: "ivan"}
}

func newFileService(t *testing.T, baseURL string, cache repository.FileCache) *FileService {
	t.Helper()
	return NewFileService(testAPIClient(t, baseURL), cache, 16, time.Minute, testLogger())
}

const listPayload = `[
	{"id": 1, "user_id": 7, "original_name": "a.txt", "size": 100, "upload_date": "2025-01-10T12:00:00Z"},
	{"id": 2, "user_id": 7, "original_name": "b.txt", "size": 200, "upload_date": "2025-01-11T12:00:00Z"}
]`

// TestFileService_ListCachesResult проверяет, что успешный список
// сохраняется в локальный кэш.
func TestFileService_ListCachesResult(t *testing.T) {
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listPayload))
	})

	cache := testCache(t)
	svc := newFileService(t, server.URL, cache)

	files, stale, err := svc.List(context.Background(), testSession())
	if err != nil {
		t.Fatalf("Ошибка List: %v", err)
	}
	if stale {
		t.Error("не ожидался stale при живом бэкенде")
	}
	if len(files) != 2 {
		t.Fatalf("ожидалось 2 файла, получено %d", len(files))
	}

	cached, err := cache.List(context.Background(), 7)
	if err != nil {
		t.Fatalf("Ошибка чтения кэша: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("ожидалось 2 файла в кэше, получено %d", len(cached))
	}
}

// TestFileService_ListStaleFallback проверяет показ кэша при недоступном бэкенде.
func TestFileService_ListStaleFallback(t *testing.T) {
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listPayload))
	})

	cache := testCache(t)
	svc := newFileService(t, server.URL, cache)

	// Прогрев кэша
	if _, _, err := svc.List(context.Background(), testSession()); err != nil {
		t.Fatalf("Ошибка прогрева: %v", err)
	}

	// Бэкенд недоступен — список из кэша со stale=true
	down := newFileService(t, "http://localhost:1", cache)
	files, stale, err := down.List(context.Background(), testSession())
	if err != nil {
		t.Fatalf("ожидался список из кэша, получена ошибка: %v", err)
	}
	if !stale {
		t.Error("ожидался stale=true")
	}
	if len(files) != 2 {
		t.Errorf("ожидалось 2 файла из кэша, получено %d", len(files))
	}
}

// TestFileService_ListNoCacheNoBackend проверяет ошибку при пустом кэше
// и недоступном бэкенде.
func TestFileService_ListNoCacheNoBackend(t *testing.T) {
	svc := newFileService(t, "http://localhost:1", testCache(t))

	_, _, err := svc.List(context.Background(), testSession())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("ожидался ErrBackendUnavailable, получено %v", err)
	}
}

// TestFileService_DeleteRejectedKeepsList проверяет, что отклонённое
// удаление не трогает кэшированный список.
func TestFileService_DeleteRejectedKeepsList(t *testing.T) {
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(listPayload))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not your file"})
		}
	})

	cache := testCache(t)
	svc := newFileService(t, server.URL, cache)
	svc.List(context.Background(), testSession())

	err := svc.Delete(context.Background(), testSession(), 1)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("ожидался ErrPermissionDenied, получено %v", err)
	}

	cached, _ := cache.List(context.Background(), 7)
	if len(cached) != 2 {
		t.Errorf("отклонённое удаление изменило кэш: %d файлов", len(cached))
	}
}

// TestFileService_DeleteConfirmedRemoves проверяет удаление из кэша
// после подтверждения бэкенда.
func TestFileService_DeleteConfirmedRemoves(t *testing.T) {
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(listPayload))
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	cache := testCache(t)
	svc := newFileService(t, server.URL, cache)
	svc.List(context.Background(), testSession())

	if err := svc.Delete(context.Background(), testSession(), 1); err != nil {
		t.Fatalf("Ошибка Delete: %v", err)
	}

	cached, _ := cache.List(context.Background(), 7)
	if len(cached) != 1 || cached[0].ID != 2 {
		t.Errorf("ожидался только файл 2 в кэше, получено %+v", cached)
	}
}

// TestFileService_RenameEmptyName проверяет отклонение пустого имени
// без обращения к бэкенду.
func TestFileService_RenameEmptyName(t *testing.T) {
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("запрос не должен быть отправлен")
	})

	svc := newFileService(t, server.URL, testCache(t))

	if _, err := svc.Rename(context.Background(), testSession(), 1, "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("ожидался ErrEmptyName, получено %v", err)
	}
}

// TestFileService_RenameUpdatesCache проверяет обновление кэша
// значением, которое вернул бэкенд.
func TestFileService_RenameUpdatesCache(t *testing.T) {
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(listPayload))
		case r.Method == http.MethodPatch:
			w.Header().Set("Content-Type", "application/json")
			// Сервер нормализовал имя
			json.NewEncoder(w).Encode(map[string]any{
				"id": 1, "user_id": 7, "original_name": "normalized.txt",
				"size": 100, "upload_date": "2025-01-10T12:00:00Z",
			})
		}
	})

	cache := testCache(t)
	svc := newFileService(t, server.URL, cache)
	svc.List(context.Background(), testSession())

	updated, err := svc.Rename(context.Background(), testSession(), 1, "requested.txt")
	if err != nil {
		t.Fatalf("Ошибка Rename: %v", err)
	}
	if updated.OriginalName != "normalized.txt" {
		t.Errorf("ожидалось имя от сервера, получено %s", updated.OriginalName)
	}

	cached, _ := cache.List(context.Background(), 7)
	if cached[0].OriginalName != "normalized.txt" {
		t.Errorf("кэш не обновлён именем сервера: %s", cached[0].OriginalName)
	}
}

// TestFileService_ShareLinkCached проверяет кэширование специальных ссылок.
func TestFileService_ShareLinkCached(t *testing.T) {
	requests := 0
	server := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"special_link": "https://cloud.example.com/s/abc",
			"file_name":    "a.txt",
		})
	})

	svc := newFileService(t, server.URL, testCache(t))

	link1, err := svc.ShareLink(context.Background(), testSession(), 1)
	if err != nil {
		t.Fatalf("Ошибка ShareLink: %v", err)
	}
	link2, err := svc.ShareLink(context.Background(), testSession(), 1)
	if err != nil {
		t.Fatalf("Ошибка повторного ShareLink: %v", err)
	}

	if link1 != link2 {
		t.Errorf("ссылки различаются: %q и %q", link1, link2)
	}
	if requests != 1 {
		t.Errorf("ожидался 1 запрос к бэкенду, было %d", requests)
	}
}

// TestFileService_UploadEmptyName проверяет отклонение пустого имени файла.
func TestFileService_UploadEmptyName(t *testing.T) {
	svc := newFileService(t, "http://localhost:1", testCache(t))

	_, err := svc.Upload(context.Background(), testSession(), "", "", strings.NewReader("data"))
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("ожидался ErrEmptyName, получено %v", err)
	}
}

// TestAttachmentFilename проверяет извлечение имени из Content-Disposition.
func TestAttachmentFilename(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Content-Disposition", `attachment; filename="report.pdf"`)
	if got := AttachmentFilename(resp, 5); got != "report.pdf" {
		t.Errorf("ожидалось report.pdf, получено %q", got)
	}

	// Без заголовка — синтетическое имя
	resp = &http.Response{Header: http.Header{}}
	if got := AttachmentFilename(resp, 5); got != "file_5" {
		t.Errorf("ожидалось file_5, получено %q", got)
	}

	// Нечитаемый заголовок — синтетическое имя
	resp = &http.Response{Header: http.Header{}}
	resp.Header.Set("Content-Disposition", "attachment; ;;")
	if got := AttachmentFilename(resp, 7); got != "file_7" {
		t.Errorf("ожидалось file_7, получено %q", got)
	}
}
