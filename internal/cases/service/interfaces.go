package service

import (
	"context"
	"io"

	"legaltrack/internal/assets"
	"legaltrack/internal/swr"
)

// Loader serves cached payloads and schedules refreshes.
type Loader interface {
	Load(ctx context.Context, key string, force bool, fetch swr.Fetcher) (swr.Result, error)
}

// Backend returns raw response bodies from the case-tracking API.
type Backend interface {
	Subscriptions(ctx context.Context) ([]byte, error)
	CaseDetail(ctx context.Context, id int64) ([]byte, error)
	CompanyDetail(ctx context.Context, id int64) ([]byte, error)
	Notifications(ctx context.Context, page int) ([]byte, error)
	Calendar(ctx context.Context) ([]byte, error)
	Delays(ctx context.Context) ([]byte, error)
}

// ReadOverlay holds notification keys marked read on this device.
type ReadOverlay interface {
	Get(key string) bool
	Add(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

// Documents is the PDF asset cache.
type Documents interface {
	FetchOrDownload(ctx context.Context, key assets.Key, remoteURL string) (assets.Handle, error)
	Lookup(ctx context.Context, key assets.Key) (assets.Handle, bool, error)
	Cached(ctx context.Context, caseID int64) ([]assets.Handle, error)
	Open(ctx context.Context, h assets.Handle) (io.ReadCloser, error)
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
