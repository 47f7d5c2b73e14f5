// Package service exposes typed case data. Every read goes through the
// staleness controller, so callers always get cached data when any exists
// and learn whether it may be outdated.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"legaltrack/internal/assets"
	"legaltrack/internal/cache"
	"legaltrack/internal/cases/decode"
	"legaltrack/internal/cases/models"
	"legaltrack/internal/cases/normalize"
	"legaltrack/internal/overlay"
	"legaltrack/internal/swr"
	"legaltrack/pkg/platform/sentinel"
	pstrings "legaltrack/pkg/platform/strings"
	"legaltrack/pkg/rawvalue"
	"legaltrack/pkg/requestcontext"
)

const staleWarning = "data may be outdated"

// ErrDocumentNotFound is returned when a case has no document with the requested id.
var ErrDocumentNotFound = fmt.Errorf("document: %w", sentinel.ErrNotFound)

// View wraps decoded data with its cache status.
type View[T any] struct {
	Data       T
	FetchedAt  time.Time
	Stale      bool
	Refreshing bool
	// Advisory is the last refresh failure shown alongside cached data.
	Advisory error
}

// Warning is the text a UI shows next to the data, or "" when it is current.
func (v View[T]) Warning() string {
	switch {
	case v.Advisory != nil:
		return staleWarning + ": " + v.Advisory.Error()
	case v.Stale:
		return staleWarning
	default:
		return ""
	}
}

type Service struct {
	loader     Loader
	backend    Backend
	store      cache.Store
	overlay    ReadOverlay
	documents  Documents
	decoder    *decode.Decoder
	normalizer *normalize.Normalizer
	logger     *slog.Logger
}

type Option func(*Service)

func WithDecoder(d *decode.Decoder) Option {
	return func(s *Service) {
		if d != nil {
			s.decoder = d
		}
	}
}

func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(
	loader Loader,
	backend Backend,
	store cache.Store,
	readOverlay ReadOverlay,
	documents Documents,
	opts ...Option,
) (*Service, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if readOverlay == nil {
		return nil, fmt.Errorf("read overlay is required")
	}
	if documents == nil {
		return nil, fmt.Errorf("document cache is required")
	}
	s := &Service{
		loader:    loader,
		backend:   backend,
		store:     store,
		overlay:   readOverlay,
		documents: documents,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.decoder == nil {
		s.decoder = decode.New(decode.WithLogger(s.logger))
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New(normalize.WithLogger(s.logger))
	}
	return s, nil
}

// Cases lists tracked cases with the jurisdiction flag filled in.
func (s *Service) Cases(ctx context.Context, force bool) (View[[]models.LegalCase], error) {
	return load(ctx, s, cache.KeyCases, force, s.backend.Subscriptions, func(b []byte) ([]models.LegalCase, error) {
		cases, err := s.decoder.CaseList(b)
		if err != nil {
			return nil, err
		}
		return normalize.Summaries(cases), nil
	})
}

func (s *Service) Companies(ctx context.Context, force bool) (View[[]models.Company], error) {
	return load(ctx, s, cache.KeyCompanies, force, s.backend.Subscriptions, s.decoder.CompanyList)
}

func (s *Service) CaseDetail(ctx context.Context, id int64, force bool) (View[*models.CaseDetail], error) {
	fetch := func(ctx context.Context) ([]byte, error) { return s.backend.CaseDetail(ctx, id) }
	return load(ctx, s, cache.CaseDetailKey(id), force, fetch, func(b []byte) (*models.CaseDetail, error) {
		raw, err := s.decoder.CaseDetail(b)
		if err != nil {
			return nil, err
		}
		return s.normalizer.Normalize(raw)
	})
}

// CompanyDetail has no canonical model; the payload is cached as decoded.
func (s *Service) CompanyDetail(ctx context.Context, id int64, force bool) (View[rawvalue.Value], error) {
	fetch := func(ctx context.Context) ([]byte, error) { return s.backend.CompanyDetail(ctx, id) }
	return load(ctx, s, cache.CompanyDetailKey(id), force, fetch, rawvalue.Decode)
}

func (s *Service) Calendar(ctx context.Context, force bool) (View[[]models.CalendarEvent], error) {
	return load(ctx, s, cache.KeyCalendarEvents, force, s.backend.Calendar, s.decoder.CalendarEvents)
}

// Notifications returns one feed page. Items marked read locally report
// IsRead even when the backend has not caught up.
func (s *Service) Notifications(ctx context.Context, page int, force bool) (View[models.NotificationsPage], error) {
	if page < 1 {
		page = 1
	}
	fetch := func(ctx context.Context) ([]byte, error) { return s.backend.Notifications(ctx, page) }
	v, err := load(ctx, s, cache.NotificationsPageKey(page), force, fetch, s.decoder.NotificationsPage)
	if err != nil {
		return v, err
	}
	for i := range v.Data.Items {
		n := &v.Data.Items[i]
		if !n.IsRead && s.overlay.Get(overlay.NotificationKey(n.ID, n.CaseID, n.Meta)) {
			n.IsRead = true
		}
	}
	return v, nil
}

// MarkRead records notification keys as read on this device.
func (s *Service) MarkRead(ctx context.Context, keys []string) error {
	keys = pstrings.DedupeAndTrim(keys)
	if len(keys) == 0 {
		return nil
	}
	if err := s.overlay.Add(ctx, keys...); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MonitoringObjects is the raw subscriptions payload.
func (s *Service) MonitoringObjects(ctx context.Context, force bool) (View[rawvalue.Value], error) {
	return load(ctx, s, cache.KeyMonitoringObjects, force, s.backend.Subscriptions, rawvalue.Decode)
}

// Fines is the raw delays payload.
func (s *Service) Fines(ctx context.Context, force bool) (View[rawvalue.Value], error) {
	return load(ctx, s, cache.KeyFines, force, s.backend.Delays, rawvalue.Decode)
}

// Document returns a cached PDF for the document, downloading it when needed.
// A cached copy is served without consulting the case detail.
func (s *Service) Document(ctx context.Context, caseID int64, documentID string) (assets.Handle, error) {
	key := assets.Key{CaseID: caseID, DocumentID: documentID}
	h, ok, err := s.documents.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn("document lookup failed", "case_id", caseID, "document_id", documentID, "error", err)
	}
	if ok {
		return h, nil
	}
	if requestcontext.CacheOnly(ctx) {
		return assets.Handle{}, swr.ErrNoCachedData
	}

	detail, err := s.CaseDetail(ctx, caseID, false)
	if err != nil {
		return assets.Handle{}, err
	}
	doc, ok := detail.Data.FindDocument(documentID)
	if !ok {
		return assets.Handle{}, ErrDocumentNotFound
	}
	remoteURL := doc.PDFURL
	if remoteURL == "" {
		remoteURL = s.normalizer.ResolvePDFURL(doc)
	}
	return s.documents.FetchOrDownload(ctx, key, remoteURL)
}

func (s *Service) OpenDocument(ctx context.Context, h assets.Handle) (io.ReadCloser, error) {
	return s.documents.Open(ctx, h)
}

func (s *Service) CachedDocuments(ctx context.Context, caseID int64) ([]assets.Handle, error) {
	return s.documents.Cached(ctx, caseID)
}

// ClearCache drops every cached payload, the read overlay and all documents.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := cache.ClearAll(ctx, s.store); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if err := s.overlay.Clear(ctx); err != nil {
		return err
	}
	if err := s.documents.Clear(ctx); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	s.logger.Info("cache cleared")
	return nil
}

// CacheSize is the byte total of cached payloads and documents.
func (s *Service) CacheSize(ctx context.Context) (int64, error) {
	payloads, err := cache.SizeOfAll(ctx, s.store)
	if err != nil {
		return 0, fmt.Errorf("cache size: %w", err)
	}
	docs, err := s.documents.Size(ctx)
	if err != nil {
		return 0, fmt.Errorf("document cache size: %w", err)
	}
	return payloads + docs, nil
}

// payloadSchema versions the canonical form written to the cache. Entries
// written under another version are dropped and fetched again.
const payloadSchema = 1

type cachedPayload[T any] struct {
	Schema int `json:"schema"`
	Data   T   `json:"data"`
}

func encodePayload[T any](data T) ([]byte, error) {
	return json.Marshal(cachedPayload[T]{Schema: payloadSchema, Data: data})
}

func decodePayload[T any](b []byte) (T, error) {
	var p cachedPayload[T]
	if err := json.Unmarshal(b, &p); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", cache.ErrCorrupted, err)
	}
	if p.Schema != payloadSchema {
		var zero T
		return zero, fmt.Errorf("%w: schema %d, want %d", cache.ErrCorrupted, p.Schema, payloadSchema)
	}
	return p.Data, nil
}

// load reads key through the controller. Backend bodies are decoded into
// their canonical model before they are cached, so a malformed response never
// replaces good data and reads never see the wire format. A cached entry that
// no longer decodes is dropped and fetched again.
func load[T any](ctx context.Context, s *Service, key string, force bool, fetch swr.Fetcher, fromWire func([]byte) (T, error)) (View[T], error) {
	canonical := func(ctx context.Context) ([]byte, error) {
		body, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := fromWire(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out, err := encodePayload(data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		return out, nil
	}
	res, err := s.loader.Load(ctx, key, force, canonical)
	if err != nil {
		return View[T]{}, err
	}
	data, err := decodePayload[T](res.Payload)
	if err != nil {
		s.logger.Warn("dropping unreadable cache entry", "key", key, "error", err)
		if rmErr := s.store.Remove(ctx, cache.NamespaceOf(key), key); rmErr != nil {
			return View[T]{}, fmt.Errorf("remove unreadable %s: %w", key, rmErr)
		}
		if res, err = s.loader.Load(ctx, key, true, canonical); err != nil {
			return View[T]{}, err
		}
		if data, err = decodePayload[T](res.Payload); err != nil {
			return View[T]{}, fmt.Errorf("decode cached %s: %w", key, err)
		}
	}
	return View[T]{
		Data:       data,
		FetchedAt:  res.FetchedAt,
		Stale:      res.Stale,
		Refreshing: res.Refreshing,
		Advisory:   res.Err,
	}, nil
}
