package viewmodel

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry — реестр автоматов редактирования по сессиям браузера.
//
// Сервер не хранит состояние в cookie: каждому вошедшему пользователю
// соответствует свой EditSessions, живущий в LRU с TTL. Брошенные
// черновики вытесняются автоматически, начатое заново редактирование
// получает чистый автомат.
type Registry struct {
	sessions *expirable.LRU[string, *EditSessions]
}

// NewRegistry создаёт реестр.
// size — максимум одновременно отслеживаемых сессий, ttl — время жизни
// автомата с момента создания.
func NewRegistry(size int, ttl time.Duration) *Registry {
	return &Registry{
		sessions: expirable.NewLRU[string, *EditSessions](size, nil, ttl),
	}
}

// Get возвращает автомат редактирования для ключа сессии,
// создавая его при первом обращении.
func (r *Registry) Get(sessionKey string) *EditSessions {
	if es, ok := r.sessions.Get(sessionKey); ok {
		return es
	}
	es := NewEditSessions()
	r.sessions.Add(sessionKey, es)
	return es
}

// Drop удаляет автомат сессии (при logout).
func (r *Registry) Drop(sessionKey string) {
	r.sessions.Remove(sessionKey)
}
