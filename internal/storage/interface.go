package storage

import (
	"time"

	"journal-backend/internal/model"
)

type Storage interface {
	// 会话管理
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	DeleteSession(sessionID string) error
	ListSessions() ([]*model.Session, error)
	Count() int

	// 删除最后活动时间早于 cutoff 的会话，返回删除数量
	DeleteIdleBefore(cutoff time.Time) int

	// 存储管理
	Init() error
	Close() error
}
