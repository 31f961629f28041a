package viewmodel

import (
	"errors"
	"testing"
)

// TestEditSessions_FullCycle проверяет полный цикл idle → editing → saving → idle.
func TestEditSessions_FullCycle(t *testing.T) {
	es := NewEditSessions()

	if st := es.State(KindRename); st.State != StateIdle {
		t.Fatalf("ожидалось начальное состояние idle, получено %s", st.State)
	}

	if err := es.StartEdit(KindRename, 5, "report.pdf"); err != nil {
		t.Fatalf("Ошибка StartEdit: %v", err)
	}
	if st := es.State(KindRename); st.State != StateEditing || st.FileID != 5 || st.Draft != "report.pdf" {
		t.Fatalf("неожиданное состояние после StartEdit: %+v", st)
	}

	if err := es.UpdateDraft(KindRename, "report-v2.pdf"); err != nil {
		t.Fatalf("Ошибка UpdateDraft: %v", err)
	}

	fileID, draft, err := es.BeginCommit(KindRename)
	if err != nil {
		t.Fatalf("Ошибка BeginCommit: %v", err)
	}
	if fileID != 5 || draft != "report-v2.pdf" {
		t.Errorf("ожидался fileID=5 draft=report-v2.pdf, получено %d %q", fileID, draft)
	}
	if st := es.State(KindRename); st.State != StateSaving {
		t.Fatalf("ожидалось saving, получено %s", st.State)
	}

	if err := es.FinishCommit(KindRename, nil); err != nil {
		t.Fatalf("Ошибка FinishCommit: %v", err)
	}
	st := es.State(KindRename)
	if st.State != StateIdle || st.Draft != "" || st.FileID != 0 {
		t.Errorf("после успешного сохранения ожидалось чистое idle, получено %+v", st)
	}
}

// TestEditSessions_FailedCommitKeepsDraft проверяет возврат в editing
// с сохранением черновика при ошибке сохранения.
func TestEditSessions_FailedCommitKeepsDraft(t *testing.T) {
	es := NewEditSessions()

	es.StartEdit(KindComment, 3, "старый комментарий")
	es.UpdateDraft(KindComment, "новый комментарий")
	es.BeginCommit(KindComment)

	if err := es.FinishCommit(KindComment, errors.New("бэкенд недоступен")); err != nil {
		t.Fatalf("Ошибка FinishCommit: %v", err)
	}

	st := es.State(KindComment)
	if st.State != StateEditing {
		t.Errorf("ожидалось editing после ошибки, получено %s", st.State)
	}
	if st.Draft != "новый комментарий" {
		t.Errorf("черновик должен сохраниться, получено %q", st.Draft)
	}
	if st.LastErr == "" {
		t.Error("ожидался текст последней ошибки")
	}
}

// TestEditSessions_StartDiscardsPrevious проверяет, что новое редактирование
// того же поля отбрасывает прежний черновик.
func TestEditSessions_StartDiscardsPrevious(t *testing.T) {
	es := NewEditSessions()

	es.StartEdit(KindRename, 1, "a.txt")
	es.UpdateDraft(KindRename, "изменённый черновик")

	if err := es.StartEdit(KindRename, 2, "b.txt"); err != nil {
		t.Fatalf("Ошибка StartEdit поверх editing: %v", err)
	}

	st := es.State(KindRename)
	if st.FileID != 2 || st.Draft != "b.txt" {
		t.Errorf("ожидался новый черновик файла 2, получено %+v", st)
	}
}

// TestEditSessions_SavingBlocksChanges проверяет, что во время saving
// отклоняются StartEdit, UpdateDraft и Cancel.
func TestEditSessions_SavingBlocksChanges(t *testing.T) {
	es := NewEditSessions()

	es.StartEdit(KindRename, 1, "a.txt")
	es.BeginCommit(KindRename)

	var stateErr *EditStateError

	err := es.StartEdit(KindRename, 2, "b.txt")
	if !errors.As(err, &stateErr) || stateErr.Code != "SAVE_IN_PROGRESS" {
		t.Errorf("ожидался SAVE_IN_PROGRESS для StartEdit, получено %v", err)
	}

	err = es.UpdateDraft(KindRename, "x")
	if !errors.As(err, &stateErr) || stateErr.Code != "INVALID_TRANSITION" {
		t.Errorf("ожидался INVALID_TRANSITION для UpdateDraft, получено %v", err)
	}

	err = es.Cancel(KindRename)
	if !errors.As(err, &stateErr) || stateErr.Code != "SAVE_IN_PROGRESS" {
		t.Errorf("ожидался SAVE_IN_PROGRESS для Cancel, получено %v", err)
	}
}

// TestEditSessions_IndependentFields проверяет независимость полей rename и comment.
func TestEditSessions_IndependentFields(t *testing.T) {
	es := NewEditSessions()

	es.StartEdit(KindRename, 1, "a.txt")
	es.BeginCommit(KindRename)

	// Поле comment остаётся доступным, пока rename сохраняется
	if err := es.StartEdit(KindComment, 1, "комментарий"); err != nil {
		t.Fatalf("Ошибка StartEdit для comment во время saving rename: %v", err)
	}
	if st := es.State(KindComment); st.State != StateEditing {
		t.Errorf("ожидалось editing для comment, получено %s", st.State)
	}
}

// TestEditSessions_InvalidTransitions проверяет отклонение операций вне editing.
func TestEditSessions_InvalidTransitions(t *testing.T) {
	es := NewEditSessions()

	var stateErr *EditStateError

	if _, _, err := es.BeginCommit(KindRename); !errors.As(err, &stateErr) || stateErr.Code != "INVALID_TRANSITION" {
		t.Errorf("ожидался INVALID_TRANSITION для BeginCommit из idle, получено %v", err)
	}
	if err := es.UpdateDraft(KindRename, "x"); !errors.As(err, &stateErr) || stateErr.Code != "INVALID_TRANSITION" {
		t.Errorf("ожидался INVALID_TRANSITION для UpdateDraft из idle, получено %v", err)
	}
	if err := es.FinishCommit(KindRename, nil); !errors.As(err, &stateErr) || stateErr.Code != "INVALID_TRANSITION" {
		t.Errorf("ожидался INVALID_TRANSITION для FinishCommit из idle, получено %v", err)
	}

	// Cancel из idle — no-op без ошибки
	if err := es.Cancel(KindRename); err != nil {
		t.Errorf("Cancel из idle не должен возвращать ошибку: %v", err)
	}
}

// TestParseFieldKind проверяет разбор поля редактирования.
func TestParseFieldKind(t *testing.T) {
	if k, err := ParseFieldKind("rename"); err != nil || k != KindRename {
		t.Errorf("ожидался KindRename, получено %v, %v", k, err)
	}
	if k, err := ParseFieldKind("comment"); err != nil || k != KindComment {
		t.Errorf("ожидался KindComment, получено %v, %v", k, err)
	}
	if _, err := ParseFieldKind("unknown"); err == nil {
		t.Error("ожидалась ошибка для неизвестного поля")
	}
}
