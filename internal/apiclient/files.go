// files.go — операции над файлами: список, загрузка, переименование,
// комментарий, удаление, скачивание, просмотр, специальная ссылка.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/mycloud/web-client/internal/domain/model"
)

// fileDTO — файл в формате бэкенда.
type fileDTO struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	User         *ownerDTO  `json:"user"`
	UserDisplay  string     `json:"user_display"`
	OriginalName string     `json:"original_name"`
	Size         int64      `json:"size"`
	UploadDate   time.Time  `json:"upload_date"`
	LastDownload *time.Time `json:"last_download_date"`
	Comment      string     `json:"comment"`
	SpecialLink  string     `json:"special_link"`
}

// ownerDTO — вложенный объект владельца файла.
type ownerDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// toModel преобразует DTO в доменную модель.
func (f *fileDTO) toModel() *model.FileRecord {
	ownerID := f.UserID
	display := f.UserDisplay
	if f.User != nil {
		if f.User.ID != 0 {
			ownerID = f.User.ID
		}
		if display == "" {
			display = f.User.DisplayName
		}
	}

	return &model.FileRecord{
		ID:               f.ID,
		OwnerID:          ownerID,
		OwnerDisplayName: display,
		OriginalName:     f.OriginalName,
		SizeBytes:        f.Size,
		UploadedAt:       f.UploadDate,
		LastDownloadAt:   f.LastDownload,
		Comment:          f.Comment,
	}
}

// ShareLinkResult — ответ GET /api/files/{id}/get_special_link/.
type ShareLinkResult struct {
	SpecialLink string `json:"special_link"`
	FileName    string `json:"file_name"`
}

// ListFiles возвращает список файлов (GET /api/files/).
// Администратор видит все файлы, обычный пользователь — только свои;
// фильтрация выполняется на бэкенде, клиент получает готовый набор.
func (c *Client) ListFiles(ctx context.Context, token string) ([]model.FileRecord, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/files/", token, nil)
	if err != nil {
		return nil, err
	}

	var dtos []fileDTO
	if err := decodeResponse(resp, &dtos); err != nil {
		return nil, err
	}

	files := make([]model.FileRecord, 0, len(dtos))
	for i := range dtos {
		files = append(files, *dtos[i].toModel())
	}
	return files, nil
}

// Upload загружает файл (POST /api/files/, multipart: file_path + comment).
// Возвращает созданную запись в том виде, в котором её сохранил сервер.
// Тело передаётся потоково через io.Pipe, без буферизации файла в памяти.
func (c *Client) Upload(ctx context.Context, token, filename, comment string, content io.Reader) (*model.FileRecord, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file_path", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		if comment != "" {
			if err := mw.WriteField("comment", comment); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/", pr)
	if err != nil {
		return nil, fmt.Errorf("создание запроса загрузки: %w", err)
	}
	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}

	var dto fileDTO
	if err := decodeResponse(resp, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// Rename переименовывает файл (PATCH /api/files/{id}/rename/).
// Возвращает запись с именем в том виде, в котором его сохранил сервер
// (сервер может нормализовать значение).
func (c *Client) Rename(ctx context.Context, token string, fileID int64, newName string) (*model.FileRecord, error) {
	path := fmt.Sprintf("/api/files/%d/rename/", fileID)
	body := map[string]string{"new_name": newName}

	resp, err := c.do(ctx, http.MethodPatch, path, token, body)
	if err != nil {
		return nil, err
	}

	var dto fileDTO
	if err := decodeResponse(resp, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// UpdateComment обновляет комментарий к файлу (PATCH /api/files/{id}/update_comment/).
func (c *Client) UpdateComment(ctx context.Context, token string, fileID int64, comment string) (*model.FileRecord, error) {
	path := fmt.Sprintf("/api/files/%d/update_comment/", fileID)
	body := map[string]string{"comment": comment}

	resp, err := c.do(ctx, http.MethodPatch, path, token, body)
	if err != nil {
		return nil, err
	}

	var dto fileDTO
	if err := decodeResponse(resp, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// Delete удаляет файл (DELETE /api/files/{id}/).
func (c *Client) Delete(ctx context.Context, token string, fileID int64) error {
	path := fmt.Sprintf("/api/files/%d/", fileID)

	resp, err := c.do(ctx, http.MethodDelete, path, token, nil)
	if err != nil {
		return err
	}
	return checkResponse(resp, http.StatusNoContent)
}

// Download запрашивает содержимое файла (GET /api/files/{id}/download/).
// Возвращает сырой ответ для потоковой передачи: вызывающий обязан
// закрыть resp.Body. Заголовок Content-Disposition содержит имя файла.
func (c *Client) Download(ctx context.Context, token string, fileID int64) (*http.Response, error) {
	path := fmt.Sprintf("/api/files/%d/download/", fileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса скачивания: %w", err)
	}
	req.Header.Set("Authorization", "Token "+token)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := apiErrorFromResponse(resp)
		resp.Body.Close()
		return nil, apiErr
	}
	return resp, nil
}

// ViewURL возвращает URL просмотра файла в браузере
// (GET /api/files/{id}/view/?token=...). Endpoint публичный,
// авторизация передаётся query-параметром, чтобы ссылку можно
// было открыть в новой вкладке.
func (c *Client) ViewURL(fileID int64, token string) string {
	return fmt.Sprintf("%s/api/files/%d/view/?token=%s", c.baseURL, fileID, url.QueryEscape(token))
}

// ShareLink запрашивает специальную ссылку на файл
// (GET /api/files/{id}/get_special_link/).
func (c *Client) ShareLink(ctx context.Context, token string, fileID int64) (*ShareLinkResult, error) {
	path := fmt.Sprintf("/api/files/%d/get_special_link/", fileID)

	resp, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var result ShareLinkResult
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
