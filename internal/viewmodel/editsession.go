package viewmodel

import (
	"fmt"
	"sync"
)

// FieldKind — редактируемое поле файла.
type FieldKind string

const (
	// KindRename — редактирование имени файла.
	KindRename FieldKind = "rename"
	// KindComment — редактирование комментария.
	KindComment FieldKind = "comment"
)

// EditState — состояние редактирования поля.
type EditState string

const (
	// StateIdle — редактирование не ведётся.
	StateIdle EditState = "idle"
	// StateEditing — открыт черновик, изменения ещё не отправлены.
	StateEditing EditState = "editing"
	// StateSaving — черновик отправлен на бэкенд, ответ не получен.
	StateSaving EditState = "saving"
)

// EditStateError — ошибка перехода между состояниями редактирования.
type EditStateError struct {
	Code    string // Машиночитаемый код (INVALID_TRANSITION, SAVE_IN_PROGRESS)
	Message string // Человекочитаемое описание
}

func (e *EditStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldEdit — снимок состояния редактирования одного поля.
type FieldEdit struct {
	State   EditState
	FileID  int64
	Draft   string
	LastErr string
}

// slot — внутреннее состояние редактирования одного поля.
type slot struct {
	state   EditState
	fileID  int64
	draft   string
	lastErr string
}

// EditSessions — конечный автомат inline-редактирования.
//
// Для каждого поля (rename, comment) ведётся независимый жизненный цикл
// idle → editing → saving. Начало нового редактирования того же поля
// отбрасывает предыдущий черновик; во время saving любые изменения
// отклоняются до получения ответа бэкенда.
//
// Потокобезопасен через sync.Mutex.
type EditSessions struct {
	mu    sync.Mutex
	slots map[FieldKind]*slot
}

// NewEditSessions создаёт автомат с обоими полями в состоянии idle.
func NewEditSessions() *EditSessions {
	return &EditSessions{
		slots: map[FieldKind]*slot{
			KindRename:  {state: StateIdle},
			KindComment: {state: StateIdle},
		},
	}
}

// StartEdit открывает черновик поля для файла.
// Если редактирование того же поля уже открыто — прежний черновик
// отбрасывается без предупреждения. Во время saving начало нового
// редактирования отклоняется.
func (es *EditSessions) StartEdit(kind FieldKind, fileID int64, initial string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	s, err := es.slot(kind)
	if err != nil {
		return err
	}

	if s.state == StateSaving {
		return &EditStateError{
			Code:    "SAVE_IN_PROGRESS",
			Message: fmt.Sprintf("поле %s сохраняется, новое редактирование недоступно", kind),
		}
	}

	s.state = StateEditing
	s.fileID = fileID
	s.draft = initial
	s.lastErr = ""
	return nil
}

// UpdateDraft обновляет текст черновика. Допустимо только в editing.
func (es *EditSessions) UpdateDraft(kind FieldKind, text string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	s, err := es.slot(kind)
	if err != nil {
		return err
	}

	if s.state != StateEditing {
		return &EditStateError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("черновик поля %s не открыт (состояние %s)", kind, s.state),
		}
	}

	s.draft = text
	return nil
}

// BeginCommit переводит поле в saving и возвращает файл и черновик
// для отправки на бэкенд. Допустимо только из editing.
func (es *EditSessions) BeginCommit(kind FieldKind) (fileID int64, draft string, err error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	s, serr := es.slot(kind)
	if serr != nil {
		return 0, "", serr
	}

	if s.state != StateEditing {
		return 0, "", &EditStateError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("сохранение поля %s невозможно из состояния %s", kind, s.state),
		}
	}

	s.state = StateSaving
	return s.fileID, s.draft, nil
}

// FinishCommit завершает сохранение по результату запроса к бэкенду.
// При успехе поле возвращается в idle, черновик очищается.
// При ошибке поле возвращается в editing: черновик сохраняется,
// текст ошибки доступен в снимке состояния.
func (es *EditSessions) FinishCommit(kind FieldKind, saveErr error) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	s, err := es.slot(kind)
	if err != nil {
		return err
	}

	if s.state != StateSaving {
		return &EditStateError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("завершение сохранения поля %s невозможно из состояния %s", kind, s.state),
		}
	}

	if saveErr != nil {
		s.state = StateEditing
		s.lastErr = saveErr.Error()
		return nil
	}

	*s = slot{state: StateIdle}
	return nil
}

// Cancel закрывает черновик без сохранения. Во время saving отклоняется:
// запрос уже отправлен, его результат нужно дождаться.
func (es *EditSessions) Cancel(kind FieldKind) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	s, err := es.slot(kind)
	if err != nil {
		return err
	}

	if s.state == StateSaving {
		return &EditStateError{
			Code:    "SAVE_IN_PROGRESS",
			Message: fmt.Sprintf("поле %s сохраняется, отмена недоступна", kind),
		}
	}

	*s = slot{state: StateIdle}
	return nil
}

// State возвращает снимок состояния редактирования поля.
func (es *EditSessions) State(kind FieldKind) FieldEdit {
	es.mu.Lock()
	defer es.mu.Unlock()

	s, err := es.slot(kind)
	if err != nil {
		return FieldEdit{State: StateIdle}
	}

	return FieldEdit{
		State:   s.state,
		FileID:  s.fileID,
		Draft:   s.draft,
		LastErr: s.lastErr,
	}
}

// slot возвращает слот поля. Вызывается под мьютексом.
func (es *EditSessions) slot(kind FieldKind) (*slot, error) {
	s, ok := es.slots[kind]
	if !ok {
		return nil, &EditStateError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("неизвестное поле редактирования: %q", kind),
		}
	}
	return s, nil
}

// ParseFieldKind преобразует строку в FieldKind.
// Возвращает ошибку для недопустимых значений.
func ParseFieldKind(s string) (FieldKind, error) {
	switch FieldKind(s) {
	case KindRename, KindComment:
		return FieldKind(s), nil
	default:
		return "", fmt.Errorf("недопустимое поле: %q, допустимые: rename, comment", s)
	}
}
