// Package swr serves cached payloads immediately and refreshes them in the
// background, with at most one refresh in flight per key.
//
// A cached entry is always served, however old. The TTL only decides whether
// a read also triggers a refresh. A failed refresh never touches the cached
// entry: callers with cached data get it back with an advisory error, callers
// without get the error itself.
package swr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"legaltrack/internal/cache"
	"legaltrack/internal/platform/metrics"
	"legaltrack/pkg/platform/sentinel"
	"legaltrack/pkg/requestcontext"
)

// DefaultTTL applies to list and detail caches.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrNoCachedData is returned when the network may not be used and nothing is cached.
	ErrNoCachedData = fmt.Errorf("no cached data while offline: %w", sentinel.ErrUnavailable)
	// ErrClosed is returned once Close has been called.
	ErrClosed = fmt.Errorf("swr controller closed: %w", sentinel.ErrInvalidState)
)

// Fetcher retrieves the current payload for a key from the network. It must
// honour ctx cancellation.
type Fetcher func(ctx context.Context) ([]byte, error)

// Connectivity reports whether the network should be attempted at all.
type Connectivity interface {
	Online() bool
}

// Result is what Load hands back to a reader.
type Result struct {
	Payload   []byte
	FetchedAt time.Time
	// Stale is set when the entry is older than the TTL, or when it was
	// served in place of a refresh that failed.
	Stale bool
	// Refreshing is set when this read started or joined a background refresh.
	Refreshing bool
	// Err is the last refresh failure for this key, shown next to cached
	// data until a refresh succeeds or Dismiss is called.
	Err error
}

// Update is published to subscribers when a refresh finishes.
type Update struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
	Err       error
	// Blocking is set on failures for keys that had no cached data.
	Blocking bool
}

type Controller struct {
	store        cache.Store
	ttl          time.Duration
	connectivity Connectivity
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer

	group singleflight.Group
	root  context.Context
	stop  context.CancelFunc
	wg    sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	advisories  map[string]error
	subscribers map[int]subscriber
	nextSubID   int
}

type subscriber struct {
	key string
	ch  chan Update
}

type Option func(*Controller)

func WithTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithConnectivity(conn Connectivity) Option {
	return func(c *Controller) {
		c.connectivity = conn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func New(store cache.Store, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	root, stop := context.WithCancel(context.Background())
	c := &Controller{
		store:       store,
		ttl:         DefaultTTL,
		logger:      slog.Default(),
		tracer:      otel.Tracer("legaltrack/swr"),
		root:        root,
		stop:        stop,
		advisories:  make(map[string]error),
		subscribers: make(map[int]subscriber),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL is the age after which a read triggers a refresh.
func (c *Controller) TTL() time.Duration { return c.ttl }

// Load returns the cached payload for key without waiting on the network
// whenever one exists. A refresh is started when force is set, when nothing
// is cached, or when the entry is older than the TTL. Only a read with no
// cached data waits for the refresh to finish.
func (c *Controller) Load(ctx context.Context, key string, force bool, fetch Fetcher) (Result, error) {
	ns := cache.NamespaceOf(key)
	entry, hit := c.lookup(ctx, ns, key)
	now := requestcontext.Now(ctx)
	fresh := hit && entry.IsFresh(now, c.ttl)

	if c.cacheOnly(ctx) {
		if !hit {
			return Result{}, ErrNoCachedData
		}
		return Result{Payload: entry.Payload, FetchedAt: entry.FetchedAt, Stale: !fresh, Err: c.advisory(key)}, nil
	}

	if hit {
		res := Result{Payload: entry.Payload, FetchedAt: entry.FetchedAt, Stale: !fresh, Err: c.advisory(key)}
		if fresh && !force {
			c.metrics.IncrementCacheLookup(string(ns), "hit")
			return res, nil
		}
		c.metrics.IncrementCacheLookup(string(ns), "stale")
		if _, err := c.start(ctx, key, true, fetch); err != nil {
			return res, nil
		}
		res.Refreshing = true
		return res, nil
	}

	c.metrics.IncrementCacheLookup(string(ns), "miss")
	done, err := c.start(ctx, key, false, fetch)
	if err != nil {
		return Result{}, err
	}
	select {
	case r := <-done:
		if r.Err != nil {
			return Result{}, r.Err
		}
		out := r.Val.(cache.Entry)
		return Result{Payload: out.Payload, FetchedAt: out.FetchedAt}, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Dismiss clears the advisory error for key.
func (c *Controller) Dismiss(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.advisories, key)
}

// Subscribe delivers refresh outcomes for key, or for every key when key is
// empty. Only the latest undelivered update is kept per subscriber. The
// returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe(key string) (<-chan Update, func()) {
	ch := make(chan Update, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = subscriber{key: key, ch: ch}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub.ch)
			}
		})
	}
}

// Close cancels in-flight refreshes, waits for them to unwind and closes
// every subscription. Cancelled refreshes write nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, sub := range c.subscribers {
		close(sub.ch)
		delete(c.subscribers, id)
	}
}

func (c *Controller) lookup(ctx context.Context, ns cache.Namespace, key string) (cache.Entry, bool) {
	entry, err := c.store.Get(ctx, ns, key)
	switch {
	case err == nil:
		return entry, true
	case errors.Is(err, cache.ErrNotFound):
	case errors.Is(err, cache.ErrCorrupted):
		c.metrics.IncrementCacheLookup(string(ns), "corrupted")
		c.logger.Warn("cache entry corrupted, treating as miss", "key", key, "error", err)
	default:
		c.logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
	}
	return cache.Entry{}, false
}

func (c *Controller) cacheOnly(ctx context.Context) bool {
	if requestcontext.CacheOnly(ctx) {
		return true
	}
	return c.connectivity != nil && !c.connectivity.Online()
}

func (c *Controller) advisory(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advisories[key]
}

// start joins the in-flight refresh for key or begins one. The refresh runs
// on the controller's own context so a departing reader does not cancel it
// for the others.
func (c *Controller) start(ctx context.Context, key string, hadCache bool, fetch Fetcher) (<-chan singleflight.Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.wg.Add(1)
	c.mu.Unlock()

	refreshCtx := requestcontext.WithTime(c.root, requestcontext.Now(ctx))
	if id := requestcontext.RequestID(ctx); id != "" {
		refreshCtx = requestcontext.WithRequestID(refreshCtx, id)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		return c.refresh(refreshCtx, key, hadCache, fetch)
	})
	out := make(chan singleflight.Result, 1)
	go func() {
		defer c.wg.Done()
		r := <-ch
		if r.Shared {
			c.metrics.IncrementRefreshShared()
		}
		out <- r
	}()
	return out, nil
}

func (c *Controller) refresh(ctx context.Context, key string, hadCache bool, fetch Fetcher) (cache.Entry, error) {
	ctx, span := c.tracer.Start(ctx, "swr.refresh", trace.WithAttributes(
		attribute.String("cache.key", key),
		attribute.Bool("cache.had_entry", hadCache),
	))
	defer span.End()

	payload, err := fetch(ctx)
	if err == nil {
		// a fetch that ignored cancellation must still not be persisted
		err = ctx.Err()
	}
	if err != nil {
		return cache.Entry{}, c.fail(span, key, hadCache, err)
	}

	if err := c.store.Put(ctx, cache.NamespaceOf(key), key, payload); err != nil {
		if ctx.Err() != nil {
			return cache.Entry{}, c.fail(span, key, hadCache, ctx.Err())
		}
		c.logger.Warn("cache write failed", "key", key, "error", err)
		span.RecordError(err)
	}

	entry := cache.Entry{Payload: payload, FetchedAt: requestcontext.Now(ctx)}
	c.metrics.IncrementRefresh("ok")
	span.SetAttributes(attribute.Int("payload.bytes", len(payload)))

	c.mu.Lock()
	delete(c.advisories, key)
	c.mu.Unlock()
	c.publish(Update{Key: key, Payload: payload, FetchedAt: entry.FetchedAt})
	return entry, nil
}

func (c *Controller) fail(span trace.Span, key string, hadCache bool, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "refresh failed")

	if c.root.Err() != nil || errors.Is(err, context.Canceled) {
		c.metrics.IncrementRefresh("cancelled")
		c.logger.Debug("refresh cancelled", "key", key)
		return fmt.Errorf("refresh %s: %w", key, err)
	}
	c.metrics.IncrementRefresh("error")
	c.logger.Warn("refresh failed", "key", key, "had_cache", hadCache, "error", err)

	wrapped := fmt.Errorf("refresh %s: %w", key, err)
	if hadCache {
		c.mu.Lock()
		c.advisories[key] = wrapped
		c.mu.Unlock()
	}
	c.publish(Update{Key: key, Err: wrapped, Blocking: !hadCache})
	return wrapped
}

func (c *Controller) publish(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subscribers {
		if sub.key != "" && sub.key != u.Key {
			continue
		}
		select {
		case sub.ch <- u:
		default:
			// keep only the newest
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- u:
			default:
			}
		}
	}
}
