package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Store es el contrato del almacen efimero clave-valor usado para datos de
// signup en curso, codigos OTP y contadores de rate limit. Get devuelve
// (valor, true) si la clave existe y no expiro; una clave ausente no es error.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
}

// NewMemoryStore crea un Store en memoria con expiracion real por TTL.
func NewMemoryStore() Store {
	return &memoryStore{items: make(map[string]memoryEntry)}
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().UTC().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *memoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[key]
	if ok && !entry.expiresAt.IsZero() && time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, key)
		ok = false
	}
	var count int64
	if ok {
		count = parseCount(entry.value)
	}
	count++
	entry.value = formatCount(count)
	s.items[key] = entry
	return count, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.items, key)
	}
	return nil
}

func parseCount(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}
