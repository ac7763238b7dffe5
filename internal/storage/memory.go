package storage

import (
	"sort"
	"sync"
	"time"

	"journal-backend/internal/model"
)

type MemoryStorage struct {
	sessions map[string]*model.Session
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*model.Session),
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

// Close 进程内存储，关闭时丢弃全部会话
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*model.Session)
	return nil
}

func (m *MemoryStorage) CreateSession(session *model.Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return ErrSessionExists
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MemoryStorage) GetSession(sessionID string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (m *MemoryStorage) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, sessionID)
	return nil
}

// ListSessions 按最后活动时间倒序
func (m *MemoryStorage) ListSessions() ([]*model.Session, error) {
	m.mu.RLock()
	sessions := make([]*model.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	active := make(map[string]time.Time, len(sessions))
	for _, s := range sessions {
		active[s.ID] = s.LastActive()
	}
	sort.Slice(sessions, func(i, j int) bool {
		return active[sessions[i].ID].After(active[sessions[j].ID])
	})

	return sessions, nil
}

func (m *MemoryStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DeleteIdleBefore 生成中的会话不会被清理
func (m *MemoryStorage) DeleteIdleBefore(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.sessions {
		if session.Busy() {
			continue
		}
		if session.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
