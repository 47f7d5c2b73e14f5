// Package assets caches downloaded case documents (PDFs) and refuses to
// cache anything that is not one.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"legaltrack/internal/assets/blobs"
	"legaltrack/internal/platform/metrics"
)

// Blobs is the byte storage behind the cache.
type Blobs interface {
	Stat(ctx context.Context, name string) (blobs.Info, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Write(ctx context.Context, name string, data []byte) error
	Rename(ctx context.Context, from, to string) error
	Remove(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]blobs.Info, error)
}

// Download is a completed HTTP fetch of a document.
type Download struct {
	Body        []byte
	ContentType string
}

// Downloader fetches remoteURL. Implementations return an error for non-2xx
// responses and attach credentials where appropriate.
type Downloader interface {
	Download(ctx context.Context, remoteURL string) (Download, error)
}

// Source tells where a handle came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceLegacy   Source = "legacy"
	SourceDownload Source = "download"
)

// Handle points at a cached document.
type Handle struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Source Source `json:"source"`
}

var ErrNoURL = errors.New("document has no download url")

type Cache struct {
	blobs      Blobs
	downloader Downloader
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	group      singleflight.Group
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func New(store Blobs, downloader Downloader, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, errors.New("blob store is required")
	}
	if downloader == nil {
		return nil, errors.New("downloader is required")
	}
	c := &Cache{
		blobs:      store,
		downloader: downloader,
		logger:     slog.Default(),
		tracer:     otel.Tracer("legaltrack/assets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchOrDownload returns the cached document for key, migrating a legacy
// entry if one exists, and downloads it otherwise. Concurrent calls for the
// same document share one download.
func (c *Cache) FetchOrDownload(ctx context.Context, key Key, remoteURL string) (Handle, error) {
	if strings.TrimSpace(remoteURL) == "" {
		return Handle{}, ErrNoURL
	}
	name := FileName(key, remoteURL)

	if h, ok := c.cached(ctx, name); ok {
		c.metrics.IncrementAssetDownload("cached")
		return h, nil
	}
	if h, ok := c.migrate(ctx, key, name); ok {
		c.metrics.IncrementAssetDownload("cached")
		return h, nil
	}

	ch := c.group.DoChan(name, func() (any, error) {
		return c.download(context.WithoutCancel(ctx), name, remoteURL)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Handle{}, r.Err
		}
		return r.Val.(Handle), nil
	case <-ctx.Done():
		return Handle{}, ctx.Err()
	}
}

// Lookup finds a cached document for key without downloading, preferring
// current names over the legacy one.
func (c *Cache) Lookup(ctx context.Context, key Key) (Handle, bool, error) {
	prefix := casePrefix(key.CaseID) + safeID(key.DocumentID) + "_"
	infos, err := c.blobs.List(ctx, prefix)
	if err != nil {
		return Handle{}, false, fmt.Errorf("list cached documents: %w", err)
	}
	for _, info := range infos {
		if info.Size > 0 && isFileNameFor(key, info.Name) {
			return Handle{Name: info.Name, Size: info.Size, Source: SourceCache}, true, nil
		}
	}
	legacy := LegacyFileName(key)
	if info, err := c.blobs.Stat(ctx, legacy); err == nil && info.Size > 0 {
		return Handle{Name: legacy, Size: info.Size, Source: SourceLegacy}, true, nil
	}
	return Handle{}, false, nil
}

// Cached lists every cached document of a case.
func (c *Cache) Cached(ctx context.Context, caseID int64) ([]Handle, error) {
	infos, err := c.blobs.List(ctx, casePrefix(caseID))
	if err != nil {
		return nil, fmt.Errorf("list cached documents: %w", err)
	}
	out := make([]Handle, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(info.Name, ".pdf") {
			out = append(out, Handle{Name: info.Name, Size: info.Size, Source: SourceCache})
		}
	}
	return out, nil
}

// Open streams a cached document.
func (c *Cache) Open(ctx context.Context, h Handle) (io.ReadCloser, error) {
	return c.blobs.Open(ctx, h.Name)
}

// Size sums the bytes of every cached document.
func (c *Cache) Size(ctx context.Context) (int64, error) {
	infos, err := c.blobs.List(ctx, "case_")
	if err != nil {
		return 0, fmt.Errorf("list cached documents: %w", err)
	}
	var total int64
	for _, info := range infos {
		total += info.Size
	}
	return total, nil
}

// Clear removes every cached document.
func (c *Cache) Clear(ctx context.Context) error {
	infos, err := c.blobs.List(ctx, "case_")
	if err != nil {
		return fmt.Errorf("list cached documents: %w", err)
	}
	for _, info := range infos {
		if err := c.blobs.Remove(ctx, info.Name); err != nil {
			return fmt.Errorf("remove %s: %w", info.Name, err)
		}
	}
	return nil
}

// cached trusts an existing blob only if it is non-empty. Empty blobs are
// removed so the next step can replace them.
func (c *Cache) cached(ctx context.Context, name string) (Handle, bool) {
	info, err := c.blobs.Stat(ctx, name)
	if err != nil {
		if !errors.Is(err, blobs.ErrNotFound) {
			c.logger.Warn("stat cached document failed", "name", name, "error", err)
		}
		return Handle{}, false
	}
	if info.Size > 0 {
		return Handle{Name: name, Size: info.Size, Source: SourceCache}, true
	}
	c.logger.Warn("cached document is empty, re-downloading", "name", name)
	if err := c.blobs.Remove(ctx, name); err != nil {
		c.logger.Warn("remove empty document failed", "name", name, "error", err)
	}
	return Handle{}, false
}

func (c *Cache) migrate(ctx context.Context, key Key, name string) (Handle, bool) {
	legacy := LegacyFileName(key)
	info, err := c.blobs.Stat(ctx, legacy)
	if err != nil || info.Size == 0 {
		return Handle{}, false
	}
	if err := c.blobs.Rename(ctx, legacy, name); err != nil {
		// still usable under the old name
		c.logger.Warn("migrate legacy document failed", "from", legacy, "to", name, "error", err)
		return Handle{Name: legacy, Size: info.Size, Source: SourceLegacy}, true
	}
	c.logger.Debug("migrated legacy document", "from", legacy, "to", name)
	return Handle{Name: name, Size: info.Size, Source: SourceLegacy}, true
}

func (c *Cache) download(ctx context.Context, name, remoteURL string) (Handle, error) {
	ctx, span := c.tracer.Start(ctx, "assets.download", trace.WithAttributes(attribute.String("asset.name", name)))
	defer span.End()

	// a caller that missed the cache may arrive just after another download landed
	if h, ok := c.cached(ctx, name); ok {
		return h, nil
	}

	d, err := c.downloader.Download(ctx, remoteURL)
	if err != nil {
		c.metrics.IncrementAssetDownload("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return Handle{}, fmt.Errorf("download document: %w", err)
	}
	if err := Validate(d.Body, d.ContentType); err != nil {
		c.metrics.IncrementAssetDownload("rejected")
		c.logger.Warn("downloaded document rejected",
			"name", name,
			"reason", ReasonOf(err),
			"size", len(d.Body),
			"content_type", d.ContentType,
		)
		span.SetStatus(codes.Error, string(ReasonOf(err)))
		return Handle{}, err
	}
	if err := c.blobs.Write(ctx, name, d.Body); err != nil {
		c.metrics.IncrementAssetDownload("error")
		span.RecordError(err)
		return Handle{}, fmt.Errorf("store document: %w", err)
	}
	c.metrics.IncrementAssetDownload("ok")
	span.SetAttributes(attribute.Int("asset.bytes", len(d.Body)))
	return Handle{Name: name, Size: int64(len(d.Body)), Source: SourceDownload}, nil
}
