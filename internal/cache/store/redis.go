package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"legaltrack/internal/cache"
	"legaltrack/pkg/requestcontext"
)

var (
	redisGetDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "legaltrack_cache_redis_get_duration_ms",
		Help:    "Latency of redis cache reads in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

const (
	defaultRedisPrefix = "legaltrack:cache:"

	fieldPayload   = "payload"
	fieldFetchedAt = "fetched_at"

	scanBatch = 200
)

// RedisStore keeps each entry in a hash {payload, fetched_at}. A single HSET
// writes both fields, so readers never see a payload with a stale timestamp.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type RedisOption func(*RedisStore)

// WithKeyPrefix isolates several clients sharing one redis database.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *RedisStore) Put(ctx context.Context, ns cache.Namespace, key string, payload []byte) error {
	fetchedAt := requestcontext.Now(ctx).UTC().Format(time.RFC3339Nano)
	err := s.client.HSet(ctx, s.key(ns, key), fieldPayload, payload, fieldFetchedAt, fetchedAt).Err()
	if err != nil {
		return fmt.Errorf("redis put %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, ns cache.Namespace, key string) (cache.Entry, error) {
	start := time.Now()
	defer func() {
		redisGetDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	fields, err := s.client.HGetAll(ctx, s.key(ns, key)).Result()
	if err != nil {
		return cache.Entry{}, fmt.Errorf("redis get %s/%s: %w", ns, key, err)
	}
	if len(fields) == 0 {
		return cache.Entry{}, cache.ErrNotFound
	}
	payload, ok := fields[fieldPayload]
	if !ok {
		return cache.Entry{}, fmt.Errorf("redis get %s/%s: missing payload: %w", ns, key, cache.ErrCorrupted)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, fields[fieldFetchedAt])
	if err != nil {
		return cache.Entry{}, fmt.Errorf("redis get %s/%s: bad timestamp: %w", ns, key, cache.ErrCorrupted)
	}
	return cache.Entry{Payload: []byte(payload), FetchedAt: fetchedAt}, nil
}

func (s *RedisStore) Remove(ctx context.Context, ns cache.Namespace, key string) error {
	return s.client.Del(ctx, s.key(ns, key)).Err()
}

// Clear deletes the namespace in SCAN batches so large namespaces do not
// block the server.
func (s *RedisStore) Clear(ctx context.Context, ns cache.Namespace) error {
	return s.scan(ctx, ns, func(keys []string) error {
		return s.client.Del(ctx, keys...).Err()
	})
}

func (s *RedisStore) SizeOf(ctx context.Context, ns cache.Namespace) (int64, error) {
	var total int64
	err := s.scan(ctx, ns, func(keys []string) error {
		pipe := s.client.Pipeline()
		cmds := make([]*redis.StringCmd, len(keys))
		for i, k := range keys {
			cmds[i] = pipe.HGet(ctx, k, fieldPayload)
		}
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		for _, cmd := range cmds {
			if v, err := cmd.Result(); err == nil {
				total += int64(len(v))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *RedisStore) scan(ctx context.Context, ns cache.Namespace, fn func(keys []string) error) error {
	var cursor uint64
	pattern := s.prefix + string(ns) + ":*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", ns, err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return fmt.Errorf("redis batch %s: %w", ns, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisStore) key(ns cache.Namespace, key string) string {
	return s.prefix + string(ns) + ":" + key
}
