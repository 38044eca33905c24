package kv

import (
	"context"
	"path"
	"sync"
	"time"
)

type entry struct {
	value  []byte
	expire time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && !now.Before(e.expire)
}

// Memory 进程内 KV，单实例部署时使用.过期键在读取时清理.
type Memory struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// NewMemory 创建内存 KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]entry), now: time.Now}
}

func (m *Memory) lookup(key string) (entry, bool) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return entry{}, false
	}

	if e.expired(m.now()) {
		m.mu.Lock()
		if cur, ok := m.data[key]; ok && cur.expired(m.now()) {
			delete(m.data, key)
		}
		m.mu.Unlock()

		return entry{}, false
	}

	return e, true
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.lookup(key)
	if !ok {
		return nil, notFound(key)
	}

	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expire = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.lookup(key)
	return ok, nil
}

func (m *Memory) Scan(_ context.Context, match string) ([]string, error) {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))

	for k, e := range m.data {
		if e.expired(now) {
			continue
		}

		if match != "" {
			if ok, err := path.Match(match, k); err != nil {
				return nil, err
			} else if !ok {
				continue
			}
		}

		keys = append(keys, k)
	}

	return keys, nil
}

func (m *Memory) Close() error { return nil }
