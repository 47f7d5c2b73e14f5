// Package credentials holds the opaque API token.
package credentials

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"legaltrack/pkg/platform/sentinel"
)

// ErrNoToken is returned by Get when no token is stored.
var ErrNoToken = fmt.Errorf("no api token: %w", sentinel.ErrNotFound)

// Store keeps a single bearer token. The token is opaque to this client.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// InMemoryStore keeps the token for the life of the process.
type InMemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewInMemory seeds the store; an empty token leaves it unset.
func NewInMemory(token string) *InMemoryStore {
	return &InMemoryStore{token: strings.TrimSpace(token)}
}

func (s *InMemoryStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

func (s *InMemoryStore) Set(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
