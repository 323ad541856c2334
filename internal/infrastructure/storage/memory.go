package storage

import (
	"context"
	"sync"
	"time"

	"github.com/taabalselect/storefront/internal/domain"
)

// memoryItem is a stored value with an optional expiration
type memoryItem struct {
	value      []byte
	expiration time.Time // zero means no expiry
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// MemoryStore is a thread-safe in-process KeyValueStore. Values are copied
// on the way in and out so callers cannot alias stored bytes.
type MemoryStore struct {
	data  map[string]memoryItem
	mutex sync.RWMutex
	ttl   time.Duration
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a memory store. A positive ttl expires entries and
// starts a cleanup goroutine that runs until Close.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		data: make(map[string]memoryItem),
		ttl:  ttl,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	if ttl > 0 {
		go s.cleanupExpired(cleanupInterval(ttl))
	} else {
		close(s.done)
	}

	return s
}

// Get retrieves a value
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[key]
	if !exists || item.expired(time.Now()) {
		return nil, domain.ErrKeyNotFound
	}

	return append([]byte(nil), item.value...), nil
}

// Set stores a value
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	item := memoryItem{value: append([]byte(nil), value...)}
	if s.ttl > 0 {
		item.expiration = time.Now().Add(s.ttl)
	}
	s.data[key] = item

	return nil
}

// Delete removes a value
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// Size returns the number of stored entries, expired ones included
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Close stops the cleanup goroutine
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

// cleanupExpired removes expired entries periodically
func (s *MemoryStore) cleanupExpired(every time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purge(time.Now())
		}
	}
}

func (s *MemoryStore) purge(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for key, item := range s.data {
		if item.expired(now) {
			delete(s.data, key)
		}
	}
}

// cleanupInterval sweeps at the ttl, bounded to [1s, 10m]
func cleanupInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl < time.Second:
		return time.Second
	case ttl > 10*time.Minute:
		return 10 * time.Minute
	default:
		return ttl
	}
}
