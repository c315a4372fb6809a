package storage

import (
	"context"
	"sync"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[int64]*entity.Session),
	}
}

// Get возвращает копию сессии по ID, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, userID, chatID int64) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[userID]
	r.mu.RUnlock()

	if exists {
		return cloneSession(session), nil
	}

	// Создаём новую сессию
	newSession := entity.NewSession(userID, chatID)

	r.mu.Lock()
	if existing, ok := r.sessions[userID]; ok {
		newSession = existing
	} else {
		r.sessions[userID] = newSession
	}
	r.mu.Unlock()

	return cloneSession(newSession), nil
}

// Save сохраняет состояние сессии
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	r.sessions[session.ID] = cloneSession(session)
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние сессии
func (r *MemorySessionRepository) UpdateState(ctx context.Context, userID int64, state entity.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, exists := r.sessions[userID]; exists {
		session.SetState(state)
	}

	return nil
}

func cloneSession(s *entity.Session) *entity.Session {
	c := *s
	c.Entries = append([]entity.SeriesEntry(nil), s.Entries...)
	return &c
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
