package cache

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

type memoryItem struct {
	entry      Entry
	expiration time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily on
// access.
type MemoryStore struct {
	data  map[string]memoryItem
	mutex sync.RWMutex
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryItem),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	s.mutex.RLock()
	item, exists := s.data[key]
	s.mutex.RUnlock()

	if !exists {
		return Entry{}, false, nil
	}

	if s.now().After(item.expiration) {
		s.mutex.Lock()
		delete(s.data, key)
		s.mutex.Unlock()
		return Entry{}, false, nil
	}

	return item.entry, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	data := make([]byte, len(entry.Data))
	copy(data, entry.Data)
	entry.Data = data

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = memoryItem{
		entry:      entry,
		expiration: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]memoryItem)
	return nil
}
