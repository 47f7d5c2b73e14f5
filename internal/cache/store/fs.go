package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"legaltrack/internal/cache"
	"legaltrack/pkg/requestcontext"
)

const tempPrefix = ".tmp-"

// FSStore keeps one JSON file per entry under root/<namespace>/.
//
// Writes are serialized per namespace and land via temp file + rename, so a
// reader sees either the old or the new file, never a partial one. Reads take
// no lock.
type FSStore struct {
	root   string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[cache.Namespace]*sync.Mutex
}

type FSOption func(*FSStore)

func WithFSLogger(logger *slog.Logger) FSOption {
	return func(s *FSStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type fileEnvelope struct {
	Key       string    `json:"key"`
	FetchedAt time.Time `json:"fetched_at"`
	Checksum  string    `json:"checksum"`
	Payload   []byte    `json:"payload"`
}

// NewFS creates the root directory if needed.
func NewFS(root string, opts ...FSOption) (*FSStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	s := &FSStore{
		root:   root,
		logger: slog.Default(),
		locks:  make(map[cache.Namespace]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FSStore) Put(ctx context.Context, ns cache.Namespace, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := fileEnvelope{
		Key:       key,
		FetchedAt: requestcontext.Now(ctx).UTC(),
		Checksum:  checksum(payload),
		Payload:   payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	lock := s.lock(ns)
	lock.Lock()
	defer lock.Unlock()

	dir := s.dir(ns)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create namespace directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	// Last chance to abandon the write before it becomes visible.
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(ns, key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, ns cache.Namespace, key string) (cache.Entry, error) {
	data, err := os.ReadFile(s.path(ns, key))
	if errors.Is(err, fs.ErrNotExist) {
		return cache.Entry{}, cache.ErrNotFound
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("read cache entry: %w", err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("cache entry unreadable", "namespace", ns, "key", key, "error", err)
		return cache.Entry{}, fmt.Errorf("decode %s/%s: %w", ns, key, cache.ErrCorrupted)
	}
	if env.Key != key || env.Checksum != checksum(env.Payload) {
		s.logger.Warn("cache entry checksum mismatch", "namespace", ns, "key", key)
		return cache.Entry{}, fmt.Errorf("verify %s/%s: %w", ns, key, cache.ErrCorrupted)
	}
	return cache.Entry{Payload: env.Payload, FetchedAt: env.FetchedAt}, nil
}

func (s *FSStore) Remove(_ context.Context, ns cache.Namespace, key string) error {
	lock := s.lock(ns)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(s.path(ns, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

func (s *FSStore) Clear(_ context.Context, ns cache.Namespace) error {
	lock := s.lock(ns)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(s.dir(ns)); err != nil {
		return fmt.Errorf("clear namespace %s: %w", ns, err)
	}
	return nil
}

// SizeOf sums the committed entry files of a namespace. In-flight temp
// files are not counted.
func (s *FSStore) SizeOf(_ context.Context, ns cache.Namespace) (int64, error) {
	entries, err := os.ReadDir(s.dir(ns))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list namespace %s: %w", ns, err)
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *FSStore) lock(ns cache.Namespace) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[ns]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ns] = l
	}
	return l
}

func (s *FSStore) dir(ns cache.Namespace) string {
	return filepath.Join(s.root, string(ns))
}

func (s *FSStore) path(ns cache.Namespace, key string) string {
	return filepath.Join(s.dir(ns), fileName(key))
}

// fileName keeps keys readable on disk; the hash suffix keeps sanitized
// collisions apart.
func fileName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + "-" + strconv.FormatUint(xxhash.Sum64String(key), 16) + ".json"
}

func checksum(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}
