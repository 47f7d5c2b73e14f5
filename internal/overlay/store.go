// Package overlay keeps client-only flags, such as "read", layered over
// server records without modifying them.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"legaltrack/internal/cache"
	pstrings "legaltrack/pkg/platform/strings"
)

// DefaultCapacity bounds the persisted set.
const DefaultCapacity = 10000

// NotificationKey identifies a notification for the read overlay. The case id
// and meta keep a reused notification id from inheriting another record's state.
func NotificationKey(id, caseID int64, meta string) string {
	return strconv.FormatInt(id, 10) + "|" + strconv.FormatInt(caseID, 10) + "|" + strings.TrimSpace(meta)
}

// Store is a bounded, insertion-ordered set persisted as a single cache
// entry. Reads are served from memory.
type Store struct {
	cache    cache.Store
	key      string
	capacity int
	logger   *slog.Logger

	mu    sync.RWMutex
	keys  []string
	index map[string]struct{}
}

type Option func(*Store)

func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithKey stores the set under a different cache key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New loads the persisted set. An unreadable entry starts the set empty.
func New(ctx context.Context, store cache.Store, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	s := &Store{
		cache:    store,
		key:      cache.KeyReadNotifications,
		capacity: DefaultCapacity,
		logger:   slog.Default(),
		index:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	entry, err := store.Get(ctx, cache.NamespaceOverlay, s.key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		return s, nil
	case errors.Is(err, cache.ErrCorrupted):
		s.logger.Warn("overlay entry corrupted, starting empty", "key", s.key, "error", err)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load overlay: %w", err)
	}

	var keys []string
	if err := json.Unmarshal(entry.Payload, &keys); err != nil {
		s.logger.Warn("overlay entry unreadable, starting empty", "key", s.key, "error", err)
		return s, nil
	}
	s.replace(pstrings.DedupeAndTrimN(keys, s.capacity))
	return s, nil
}

func (s *Store) Get(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[key]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Keys returns the set in insertion order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.keys...)
}

// SetAll replaces the set. Past capacity only the first keys, in input
// order, are kept.
func (s *Store) SetAll(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, pstrings.DedupeAndTrimN(keys, s.capacity))
}

// Add inserts keys not already present. Past capacity the oldest keys are
// evicted first.
func (s *Store) Add(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append([]string(nil), s.keys...), keys...)
	next = pstrings.DedupeAndTrim(next)
	if over := len(next) - s.capacity; over > 0 {
		next = next[over:]
	}
	return s.commit(ctx, next)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Remove(ctx, cache.NamespaceOverlay, s.key); err != nil {
		return fmt.Errorf("clear overlay: %w", err)
	}
	s.replace(nil)
	return nil
}

// commit persists keys and only then swaps the in-memory set. Callers hold mu.
func (s *Store) commit(ctx context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	payload, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}
	if err := s.cache.Put(ctx, cache.NamespaceOverlay, s.key, payload); err != nil {
		return fmt.Errorf("persist overlay: %w", err)
	}
	s.replace(keys)
	return nil
}

func (s *Store) replace(keys []string) {
	s.keys = keys
	s.index = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s.index[k] = struct{}{}
	}
}
