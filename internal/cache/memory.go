package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a process-local marker store used when Redis is not
// configured.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]time.Time
	prefix string
	now    func() time.Time
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]time.Time),
		prefix: prefix,
		now:    time.Now,
	}
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) IsProcessed(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.prefix + hash
	expires, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if !expires.IsZero() && !m.now().Before(expires) {
		delete(m.data, key)
		return false, nil
	}
	return true, nil
}

// MarkProcessed stores hash. A ttl of zero never expires.
func (m *MemoryStore) MarkProcessed(ctx context.Context, hash string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	m.data[m.prefix+hash] = expires
	return nil
}

func (m *MemoryStore) ClearProcessed(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.data {
		if strings.HasPrefix(key, m.prefix) {
			delete(m.data, key)
		}
	}
	return nil
}
