// files.go — действия над файлами: загрузка, скачивание, просмотр,
// специальная ссылка, удаление и inline-редактирование.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mycloud/web-client/internal/service"
	"github.com/mycloud/web-client/internal/session"
	uimiddleware "github.com/mycloud/web-client/internal/ui/middleware"
	"github.com/mycloud/web-client/internal/viewmodel"
)

// maxUploadMemory — порог буферизации multipart-формы в памяти.
const maxUploadMemory = 32 << 20

// FilesHandler — обработчик действий над файлами.
type FilesHandler struct {
	fileSvc  *service.FileService
	registry *viewmodel.Registry
	logger   *slog.Logger
}

// NewFilesHandler создаёт обработчик действий над файлами.
func NewFilesHandler(fileSvc *service.FileService, registry *viewmodel.Registry, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		fileSvc:  fileSvc,
		registry: registry,
		logger:   logger.With(slog.String("component", "ui.files")),
	}
}

// HandleUpload обрабатывает POST /files/upload.
func (h *FilesHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		redirectWithError(w, r, "/dashboard", "не удалось прочитать форму загрузки")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		redirectWithError(w, r, "/dashboard", "файл не выбран")
		return
	}
	defer file.Close()

	comment := r.FormValue("comment")

	uploaded, err := h.fileSvc.Upload(r.Context(), sess, header.Filename, comment, file)
	if err != nil {
		h.logger.Warn("Ошибка загрузки файла",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		redirectWithError(w, r, "/dashboard", userMessage(err))
		return
	}

	redirectWithMessage(w, r, "/dashboard", fmt.Sprintf("файл %q загружен", uploaded.OriginalName))
}

// HandleDownload обрабатывает GET /files/{id}/download.
// Содержимое проксируется от бэкенда потоково, без буферизации.
func (h *FilesHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	fileID, err := fileIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	resp, err := h.fileSvc.Download(r.Context(), sess, fileID)
	if err != nil {
		redirectWithError(w, r, "/dashboard", userMessage(err))
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}
	filename := service.AttachmentFilename(resp, fileID)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Заголовки уже отправлены, корректный ответ об ошибке невозможен
		h.logger.Warn("Обрыв проксирования файла",
			slog.Int64("file_id", fileID),
			slog.String("error", err.Error()))
	}
}

// HandleView обрабатывает GET /files/{id}/view: перенаправление
// на URL inline-просмотра бэкенда с токеном в query string.
func (h *FilesHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	fileID, err := fileIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	http.Redirect(w, r, h.fileSvc.ViewURL(sess, fileID), http.StatusFound)
}

// HandleShare обрабатывает POST /files/{id}/share.
func (h *FilesHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	fileID, err := fileIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	link, err := h.fileSvc.ShareLink(r.Context(), sess, fileID)
	if err != nil {
		redirectWithError(w, r, "/dashboard", userMessage(err))
		return
	}

	v := url.Values{}
	v.Set("msg", "специальная ссылка получена")
	v.Set("share", link)
	http.Redirect(w, r, "/dashboard?"+v.Encode(), http.StatusFound)
}

// HandleDelete обрабатывает POST /files/{id}/delete.
// Без явного подтверждения удаление отклоняется.
func (h *FilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	fileID, err := fileIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	if r.FormValue("confirm") != "true" {
		redirectWithError(w, r, "/dashboard", "удаление не подтверждено")
		return
	}

	if err := h.fileSvc.Delete(r.Context(), sess, fileID); err != nil {
		redirectWithError(w, r, "/dashboard", userMessage(err))
		return
	}

	redirectWithMessage(w, r, "/dashboard", "файл удалён")
}

// HandleEditStart обрабатывает POST /files/{id}/edit: открывает
// черновик поля с текущим значением из последнего листинга.
func (h *FilesHandler) HandleEditStart(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	fileID, err := fileIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	kind, err := viewmodel.ParseFieldKind(r.FormValue("field"))
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	initial, err := h.currentFieldValue(r, sess, fileID, kind)
	if err != nil {
		redirectWithError(w, r, "/dashboard", userMessage(err))
		return
	}

	if err := h.registry.Get(sess.Username).StartEdit(kind, fileID, initial); err != nil {
		redirectWithError(w, r, "/dashboard", editMessage(err))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleEditCommit обрабатывает POST /files/{id}/edit/commit:
// фиксирует черновик и отправляет изменение на бэкенд.
func (h *FilesHandler) HandleEditCommit(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	urlFileID, err := fileIDParam(r)
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	kind, err := viewmodel.ParseFieldKind(r.FormValue("field"))
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	edits := h.registry.Get(sess.Username)

	// Форма могла устареть: черновик уже открыт для другого файла
	if st := edits.State(kind); st.State != viewmodel.StateEditing || st.FileID != urlFileID {
		redirectWithError(w, r, "/dashboard", "форма редактирования устарела, откройте её заново")
		return
	}

	if err := edits.UpdateDraft(kind, r.FormValue("value")); err != nil {
		redirectWithError(w, r, "/dashboard", editMessage(err))
		return
	}

	fileID, draft, err := edits.BeginCommit(kind)
	if err != nil {
		redirectWithError(w, r, "/dashboard", editMessage(err))
		return
	}

	var saveErr error
	switch kind {
	case viewmodel.KindRename:
		_, saveErr = h.fileSvc.Rename(r.Context(), sess, fileID, draft)
	case viewmodel.KindComment:
		_, saveErr = h.fileSvc.UpdateComment(r.Context(), sess, fileID, draft)
	}

	if err := edits.FinishCommit(kind, saveErr); err != nil {
		h.logger.Error("Ошибка завершения редактирования",
			slog.String("field", string(kind)),
			slog.String("error", err.Error()))
	}

	if saveErr != nil {
		// Черновик сохранён в состоянии editing, форма откроется снова
		redirectWithError(w, r, "/dashboard", userMessage(saveErr))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleEditCancel обрабатывает POST /files/{id}/edit/cancel.
func (h *FilesHandler) HandleEditCancel(w http.ResponseWriter, r *http.Request) {
	sess := uimiddleware.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	kind, err := viewmodel.ParseFieldKind(r.FormValue("field"))
	if err != nil {
		redirectWithError(w, r, "/dashboard", err.Error())
		return
	}

	if err := h.registry.Get(sess.Username).Cancel(kind); err != nil {
		redirectWithError(w, r, "/dashboard", editMessage(err))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// currentFieldValue возвращает текущее значение редактируемого поля
// файла из листинга (при недоступном бэкенде — из кэша).
func (h *FilesHandler) currentFieldValue(r *http.Request, sess *session.Data, fileID int64, kind viewmodel.FieldKind) (string, error) {
	files, _, err := h.fileSvc.List(r.Context(), sess)
	if err != nil {
		return "", err
	}

	for i := range files {
		if files[i].ID != fileID {
			continue
		}
		if kind == viewmodel.KindRename {
			return files[i].OriginalName, nil
		}
		return files[i].Comment, nil
	}

	return "", service.ErrNotFound
}

// editMessage возвращает текст ошибки конечного автомата редактирования.
func editMessage(err error) string {
	var stateErr *viewmodel.EditStateError
	if errors.As(err, &stateErr) {
		return stateErr.Message
	}
	return err.Error()
}

// fileIDParam извлекает идентификатор файла из пути запроса.
func fileIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("недопустимый идентификатор файла: %q", raw)
	}
	return id, nil
}
