package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 内存视图存储，过期项在读取时忽略、由 Sweep 清理
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memEntry
	ttl   time.Duration
	now   func() time.Time
}

type memEntry struct {
	view    *View
	expires time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{items: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, v *View) error {
	m.mu.Lock()
	m.items[v.RunID] = memEntry{view: v.Clone(), expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, runID string) (*View, error) {
	m.mu.RLock()
	e, ok := m.items[runID]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		return nil, ErrNotFound
	}
	return e.view.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, runID string) error {
	m.mu.Lock()
	delete(m.items, runID)
	m.mu.Unlock()
	return nil
}

// Sweep 清理过期项，返回清理数量
func (m *MemoryStore) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, id)
			n++
		}
	}
	return n
}

// Len 当前条目数（含未清理的过期项）
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// RunSweeper 周期清理，ctx 取消后退出
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
