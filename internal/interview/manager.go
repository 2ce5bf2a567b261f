package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/types"

	"github.com/gofrs/uuid/v5"
)

// ErrSessionNotFound 会话不存在、已被重置或已过期回收
var ErrSessionNotFound = errors.New("interview session not found")

// managedSession 会话及其最近一次访问时间 (UnixNano)
type managedSession struct {
	session     *Session
	lastTouched atomic.Int64
}

func (e *managedSession) touch(now time.Time) {
	e.lastTouched.Store(now.UnixNano())
}

func (e *managedSession) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastTouched.Load()))
}

// Manager 管理多个互相独立的面试会话，以 UUIDv7 为键。
// 配置了 TTL 时，Sweep 回收长时间无访问的会话。
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession

	idleTTL      time.Duration
	completedTTL time.Duration
	now          func() time.Time
}

// ManagerOption 会话管理器配置项
type ManagerOption func(*Manager)

// WithIdleTTL 任意状态的会话无访问超过 ttl 后被回收，<=0 表示不回收
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// WithCompletedTTL 已完成的会话无访问超过 ttl 后被回收，<=0 表示只按 idleTTL 回收
func WithCompletedTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.completedTTL = ttl
	}
}

// WithManagerClock 替换时间来源，测试使用
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager 创建会话管理器
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*managedSession),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create 新建一个 pending 会话并返回其 ID
func (m *Manager) Create() (string, *Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("生成会话ID失败: %w", err)
	}

	entry := &managedSession{session: NewSession()}
	entry.touch(m.now())

	m.mu.Lock()
	m.sessions[id.String()] = entry
	m.mu.Unlock()
	return id.String(), entry.session, nil
}

// Get 按 ID 查找会话，并刷新其访问时间
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.touch(m.now())
	return entry.session, nil
}

// Remove 重置并移除会话
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	entry.session.Reset()
	return nil
}

// Len 当前管理的会话数
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep 回收过期会话，返回回收数量
func (m *Manager) Sweep() int {
	if m.idleTTL <= 0 && m.completedTTL <= 0 {
		return 0
	}
	now := m.now()

	var expired []*managedSession
	m.mu.Lock()
	for id, entry := range m.sessions {
		if m.expired(entry, now) {
			delete(m.sessions, id)
			expired = append(expired, entry)
		}
	}
	m.mu.Unlock()

	for _, entry := range expired {
		entry.session.Reset()
	}
	return len(expired)
}

func (m *Manager) expired(entry *managedSession, now time.Time) bool {
	idle := entry.idleSince(now)
	if m.idleTTL > 0 && idle > m.idleTTL {
		return true
	}
	return m.completedTTL > 0 && idle > m.completedTTL && entry.session.Status() == types.SessionCompleted
}

// Run 按 interval 周期执行 Sweep，直到 ctx 结束
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || (m.idleTTL <= 0 && m.completedTTL <= 0) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Ctx(ctx).Info().Int("evicted", n).Int("remaining", m.Len()).Msg("已回收过期面试会话")
			}
		}
	}
}
