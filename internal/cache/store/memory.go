package store

import (
	"context"
	"sync"

	"legaltrack/internal/cache"
	"legaltrack/pkg/requestcontext"
)

// InMemoryStore is a process-local cache. Payloads are copied in and out.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[cache.Namespace]map[string]cache.Entry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[cache.Namespace]map[string]cache.Entry)}
}

func (s *InMemoryStore) Put(ctx context.Context, ns cache.Namespace, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := cache.Entry{
		Payload:   append([]byte(nil), payload...),
		FetchedAt: requestcontext.Now(ctx).UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.entries[ns]
	if !ok {
		bucket = make(map[string]cache.Entry)
		s.entries[ns] = bucket
	}
	bucket[key] = entry
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, ns cache.Namespace, key string) (cache.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[ns][key]
	if !ok {
		return cache.Entry{}, cache.ErrNotFound
	}
	entry.Payload = append([]byte(nil), entry.Payload...)
	return entry, nil
}

func (s *InMemoryStore) Remove(_ context.Context, ns cache.Namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[ns], key)
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, ns cache.Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ns)
	return nil
}

func (s *InMemoryStore) SizeOf(_ context.Context, ns cache.Namespace) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, e := range s.entries[ns] {
		total += int64(len(e.Payload))
	}
	return total, nil
}
