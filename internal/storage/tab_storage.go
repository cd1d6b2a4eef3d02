package storage

import (
	"dashgate/internal/providers"
	"sync"
)

// Storage is the tab-scoped key/value medium. Calls never fail: an
// unavailable medium reads as empty and drops writes.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// TabStorage namespaces keys of one browser tab inside a shared medium.
type TabStorage struct {
	medium providers.CacheProviderInterface
	prefix string

	mu   sync.Mutex
	keys map[string]struct{}
}

func NewTabStorage(medium providers.CacheProviderInterface, tabID string) *TabStorage {
	return &TabStorage{
		medium: medium,
		prefix: "tab:" + tabID + ":",
		keys:   make(map[string]struct{}),
	}
}

func (s *TabStorage) Get(key string) ([]byte, bool) {
	return s.medium.Get(s.prefix + key)
}

func (s *TabStorage) Set(key string, value []byte) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
	s.medium.Set(s.prefix+key, value)
}

func (s *TabStorage) Delete(key string) {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	s.medium.Del(s.prefix + key)
}

// Clear drops every key this tab has written.
func (s *TabStorage) Clear() {
	s.mu.Lock()
	keys := s.keys
	s.keys = make(map[string]struct{})
	s.mu.Unlock()

	for k := range keys {
		s.medium.Del(s.prefix + k)
	}
}

// Touch restarts the expiry of every key this tab has written.
func (s *TabStorage) Touch() {
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	for _, k := range keys {
		s.medium.Touch(s.prefix + k)
	}
}

// Unavailable is the null-object Storage used when no medium exists.
type Unavailable struct{}

func (Unavailable) Get(_ string) ([]byte, bool) { return nil, false }
func (Unavailable) Set(_ string, _ []byte)      {}
func (Unavailable) Delete(_ string)             {}
