package service

import (
	"context"
	"sync"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"go.uber.org/zap"
)

// Session 一个控制台会话的页面状态
type Session struct {
	ID        string
	Register  *RegisterTable
	Partywise *PartywiseReport
	LotReport *LotReportService

	lastSeen time.Time
}

// SessionOptions 会话存储配置
type SessionOptions struct {
	Client          *textileapi.Client
	Observer        EditObserver
	Logger          *zap.Logger
	DefaultPageSize int
	TTL             time.Duration
}

// SessionStore 按会话ID保存页面状态，空闲超过TTL的会话被清理
type SessionStore struct {
	mu       sync.Mutex
	opts     SessionOptions
	sessions map[string]*Session
}

// NewSessionStore 创建会话存储
func NewSessionStore(opts SessionOptions) *SessionStore {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Observer == nil {
		opts.Observer = NewEditNotifier(nil, nil, opts.Logger)
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	return &SessionStore{opts: opts, sessions: make(map[string]*Session)}
}

// Get 获取会话，不存在时创建
func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		logger := s.opts.Logger
		sess = &Session{
			ID:        id,
			Register:  NewRegisterTable(s.opts.Client, s.opts.Observer, logger, id, s.opts.DefaultPageSize),
			Partywise: NewPartywiseReport(s.opts.Client, logger, id),
			LotReport: NewLotReportService(s.opts.Client, logger, id, s.opts.DefaultPageSize),
		}
		s.sessions[id] = sess
	}
	sess.lastSeen = time.Now()
	return sess
}

// Len 当前会话数
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep 清理空闲会话，返回清理数量
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.opts.TTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor 定期清理，ctx 结束时退出
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := s.Sweep(now); n > 0 {
					s.opts.Logger.Info("Swept idle console sessions", zap.Int("count", n))
				}
			}
		}
	}()
}
