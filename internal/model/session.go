package model

import (
	"image"
	"sync"
	"sync/atomic"
	"time"
)

// ImageAsset 上传图片及其规范化后的 JPEG 字节
type ImageAsset struct {
	Image  image.Image `json:"-"`
	Bytes  []byte      `json:"-"`
	Format string      `json:"format"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
}

// Session 单个编辑会话的全部状态，只属于一个使用者。
// 读写 Title/History/Image/UpdatedAt 前需持有 Lock。
type Session struct {
	ID        string
	Title     string
	History   *EditHistory
	Image     *ImageAsset
	CreatedAt time.Time
	UpdatedAt time.Time

	mu   sync.Mutex
	busy atomic.Bool
}

func NewSession(id, title string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Title:     title,
		History:   NewEditHistory(""),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}

// TryAcquire 占用会话，同一会话同一时间只允许一个生成请求
func (s *Session) TryAcquire() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *Session) Release() {
	s.busy.Store(false)
}

func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Touch 调用方需持有 Lock
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// Snapshot 会话当前状态的只读副本
func (s *Session) Snapshot() *SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.History.Current()
	return &SessionResponse{
		SessionID: s.ID,
		Title:     s.Title,
		Text:      text,
		Result:    s.History.Result(),
		History:   s.History.Entries(),
		Image:     s.Image,
		CharCount: len([]rune(text)),
		CharLimit: CharLimit,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (s *Session) Summary() SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionSummary{
		SessionID:  s.ID,
		Title:      s.Title,
		HistoryLen: s.History.Len(),
		HasImage:   s.Image != nil,
		UpdatedAt:  s.UpdatedAt,
	}
}
