package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"journal-backend/internal/config"
	"journal-backend/internal/imageproc"
	"journal-backend/internal/metrics"
	"journal-backend/internal/model"
	"journal-backend/internal/storage"
	"journal-backend/pkg/logger"
)

var (
	ErrSessionBusy   = errors.New("session has a generation in progress")
	ErrImageTooLarge = errors.New("image exceeds upload limit")
)

type SessionService struct {
	storage       storage.Storage
	dispatcher    *Dispatcher
	config        config.SessionConfig
	maxImageBytes int64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSessionService(store storage.Storage, dispatcher *Dispatcher, cfg *config.Config) *SessionService {
	if store == nil {
		store = storage.NewMemoryStorage()
	}
	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		store = storage.NewMemoryStorage()
		_ = store.Init()
	}

	s := &SessionService{
		storage:       store,
		dispatcher:    dispatcher,
		config:        cfg.Session,
		maxImageBytes: cfg.Image.MaxUploadBytes,
		stop:          make(chan struct{}),
	}

	if s.config.CleanupInterval > 0 && s.config.TTL > 0 {
		s.wg.Add(1)
		go s.cleanupIdleSessions()
	}

	return s
}

func (s *SessionService) CreateSession(title, text string) (*model.Session, error) {
	if title == "" {
		title = DefaultTitlePrefix + " " + time.Now().Format("2006-01-02 15:04")
	}

	session := model.NewSession(uuid.New().String(), title)
	session.History.SetCurrent(text)

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	metrics.SetActiveSessions(s.storage.Count())

	return session, nil
}

func (s *SessionService) GetSession(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session, nil
}

func (s *SessionService) ListSessions() ([]model.SessionSummary, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}
	return summaries, nil
}

func (s *SessionService) DeleteSession(sessionID string) error {
	if err := s.storage.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	metrics.SetActiveSessions(s.storage.Count())
	return nil
}

// SetText 替换编辑区文本，不写历史
func (s *SessionService) SetText(sessionID, text string) (*model.SessionResponse, error) {
	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	session.Lock()
	session.History.SetCurrent(text)
	session.Touch()
	session.Unlock()

	return session.Snapshot(), nil
}

// AttachImage 解码并规范化上传图片，替换会话当前图片
func (s *SessionService) AttachImage(sessionID string, data []byte) (*model.ImageAsset, error) {
	if s.maxImageBytes > 0 && int64(len(data)) > s.maxImageBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrImageTooLarge, len(data), s.maxImageBytes)
	}

	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	asset, err := imageproc.NewAsset(data)
	if err != nil {
		return nil, err
	}

	session.Lock()
	session.Image = asset
	session.Touch()
	session.Unlock()

	logger.Infof("Attached %dx%d image to session %s (%d bytes)", asset.Width, asset.Height, sessionID, len(asset.Bytes))
	return asset, nil
}

func (s *SessionService) ClearImage(sessionID string) error {
	session, err := s.acquire(sessionID)
	if err != nil {
		return err
	}
	defer session.Release()

	session.Lock()
	session.Image = nil
	session.Touch()
	session.Unlock()
	return nil
}

// Run 执行任务。req.Text 为 nil 时使用会话当前文本
func (s *SessionService) Run(ctx context.Context, sessionID string, req *model.RunRequest) (*model.Outcome, error) {
	task, err := model.ParseTaskKind(req.Task)
	if err != nil {
		return nil, err
	}

	session, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	var text string
	if req.Text != nil {
		text = *req.Text
	} else {
		session.Lock()
		text = session.History.Current()
		session.Unlock()
	}

	return s.dispatcher.Run(ctx, session, model.TaskRequest{
		Task:  task,
		Text:  text,
		Style: req.Style,
	})
}

// acquire 取会话并占用，调用方负责 Release
func (s *SessionService) acquire(sessionID string) (*model.Session, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !session.TryAcquire() {
		return nil, ErrSessionBusy
	}
	return session, nil
}

func (s *SessionService) cleanupIdleSessions() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.CleanupIdle(time.Now())
		}
	}
}

// CleanupIdle 删除 TTL 内没有活动的会话
func (s *SessionService) CleanupIdle(now time.Time) int {
	removed := s.storage.DeleteIdleBefore(now.Add(-s.config.TTL))
	if removed > 0 {
		logger.Infof("Cleaned up %d expired sessions", removed)
	}
	metrics.SetActiveSessions(s.storage.Count())
	return removed
}

func (s *SessionService) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
	return s.storage.Close()
}
