package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"legaltrack/internal/assets"
	"legaltrack/internal/assets/blobs"
	"legaltrack/internal/cache"
	"legaltrack/internal/cache/store"
	"legaltrack/internal/cases/models"
	"legaltrack/internal/overlay"
	"legaltrack/internal/swr"
	"legaltrack/pkg/rawvalue"
	"legaltrack/pkg/requestcontext"
)

const (
	subscriptionsBody = `{"data": {"cases": [{"id": 1, "value": "А40-1/2024"}, {"id": 2, "value": "2-100/2024"}],
		"companies": [{"id": 5, "name": "ООО Ромашка"}]}}`
	notificationsBody = `{"message": "ok", "page": 1, "total_pages": 3, "data": [
		{"id": 1, "case": 10, "meta": "m1", "is_read": false},
		{"id": 2, "case": 10, "meta": "m2", "is_read": true}]}`
	calendarBody = `{"data": [{"id": 3, "datetime_start": "2024-03-10 10:00", "case_id": 1, "head": "Заседание"}]}`
	delaysBody   = `{"data": [{"id": 8, "sum": 1500.5}]}`
)

var (
	validPDF      = []byte("%PDF-1.7\n%%EOF")
	errBackendOff = errors.New("backend down")
)

type fakeBackend struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]string
	err    error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: map[string]int{},
		bodies: map[string]string{
			"subscriptions": subscriptionsBody,
			"notifications": notificationsBody,
			"calendar":      calendarBody,
			"delays":        delaysBody,
			"company":       `{"id": 5, "inn": "7700000000"}`,
		},
	}
}

func (f *fakeBackend) respond(name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.bodies[name]), nil
}

func (f *fakeBackend) set(name, body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[name] = body
	f.err = err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Subscriptions(context.Context) ([]byte, error) {
	return f.respond("subscriptions")
}

func (f *fakeBackend) CaseDetail(context.Context, int64) ([]byte, error) {
	return f.respond("detail")
}

func (f *fakeBackend) CompanyDetail(context.Context, int64) ([]byte, error) {
	return f.respond("company")
}

func (f *fakeBackend) Notifications(context.Context, int) ([]byte, error) {
	return f.respond("notifications")
}

func (f *fakeBackend) Calendar(context.Context) ([]byte, error) {
	return f.respond("calendar")
}

func (f *fakeBackend) Delays(context.Context) ([]byte, error) {
	return f.respond("delays")
}

type fakeDownloader struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeDownloader) Download(_ context.Context, remoteURL string) (assets.Download, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, remoteURL)
	return assets.Download{Body: validPDF, ContentType: "application/pdf"}, nil
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.InMemoryStore
	backend    *fakeBackend
	downloader *fakeDownloader
	controller *swr.Controller
	overlay    *overlay.Store
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewInMemory()
	s.backend = newFakeBackend()
	detail, err := os.ReadFile("../decode/testdata/arbitration_detail.json")
	s.Require().NoError(err)
	s.backend.bodies["detail"] = string(detail)

	s.controller, err = swr.New(s.store, swr.WithLogger(logger))
	s.Require().NoError(err)
	s.overlay, err = overlay.New(s.ctx, s.store, overlay.WithLogger(logger))
	s.Require().NoError(err)
	s.downloader = &fakeDownloader{}
	docs, err := assets.New(blobs.NewMemory(), s.downloader, assets.WithLogger(logger))
	s.Require().NoError(err)

	s.service, err = New(s.controller, s.backend, s.store, s.overlay, docs, WithLogger(logger))
	s.Require().NoError(err)
}

// canonical is the cache form of a calendar response body.
func (s *ServiceSuite) canonical(body string) []byte {
	events, err := s.service.decoder.CalendarEvents([]byte(body))
	s.Require().NoError(err)
	b, err := encodePayload(events)
	s.Require().NoError(err)
	return b
}

func (s *ServiceSuite) TearDownTest() {
	s.controller.Close()
}

func (s *ServiceSuite) TestCases() {
	s.Run("decodes and fills jurisdiction", func() {
		v, err := s.service.Cases(s.ctx, false)
		s.Require().NoError(err)
		s.Require().Len(v.Data, 2)
		s.Require().NotNil(v.Data[0].IsSou)
		s.False(*v.Data[0].IsSou)
		s.True(*v.Data[1].IsSou)
		s.False(v.Stale)
		s.Empty(v.Warning())
	})

	s.Run("fresh cache is served without the network", func() {
		_, err := s.service.Cases(s.ctx, false)
		s.Require().NoError(err)
		s.Equal(1, s.backend.count("subscriptions"))
	})
}

func (s *ServiceSuite) TestCompaniesShareTheSubscriptionsEndpoint() {
	v, err := s.service.Companies(s.ctx, false)
	s.Require().NoError(err)
	s.Require().Len(v.Data, 1)
	s.Equal("ООО Ромашка", v.Data[0].Name)
}

func (s *ServiceSuite) TestErrorEnvelopeKeepsCachedCompanies() {
	_, err := s.service.Companies(s.ctx, false)
	s.Require().NoError(err)
	s.backend.set("subscriptions", `{"message": "unauthorized"}`, nil)
	updates, unsubscribe := s.controller.Subscribe(cache.KeyCompanies)
	defer unsubscribe()

	v, err := s.service.Companies(s.ctx, true)
	s.Require().NoError(err)
	s.True(v.Refreshing)
	select {
	case u := <-updates:
		s.Error(u.Err)
	case <-time.After(time.Second):
		s.FailNow("no refresh update")
	}

	again, err := s.service.Companies(s.ctx, false)
	s.Require().NoError(err)
	s.Require().Len(again.Data, 1)
	s.Equal("ООО Ромашка", again.Data[0].Name)
	s.NotEmpty(again.Warning())
}

func (s *ServiceSuite) TestMalformedResponseIsNotCached() {
	s.backend.set("subscriptions", `[]`, nil)

	_, err := s.service.Cases(s.ctx, false)
	s.Require().Error(err)

	_, getErr := s.store.Get(s.ctx, cache.NamespaceLists, cache.KeyCases)
	s.ErrorIs(getErr, cache.ErrNotFound)
}

func (s *ServiceSuite) TestStaleDataCarriesWarning() {
	old := requestcontext.WithTime(s.ctx, time.Now().Add(-30*24*time.Hour))
	s.Require().NoError(s.store.Put(old, cache.NamespaceLists, cache.KeyCalendarEvents, s.canonical(calendarBody)))
	s.backend.set("calendar", "", errBackendOff)
	updates, unsubscribe := s.controller.Subscribe(cache.KeyCalendarEvents)
	defer unsubscribe()

	v, err := s.service.Calendar(s.ctx, false)
	s.Require().NoError(err)
	s.True(v.Stale)
	s.True(v.Refreshing)
	s.Equal("data may be outdated", v.Warning())
	s.Require().Len(v.Data, 1)

	select {
	case u := <-updates:
		s.ErrorIs(u.Err, errBackendOff)
		s.False(u.Blocking)
	case <-time.After(time.Second):
		s.FailNow("no refresh update")
	}

	again, err := s.service.Calendar(s.ctx, false)
	s.Require().NoError(err)
	s.Contains(again.Warning(), "backend down")
	s.Len(again.Data, 1)
}

func (s *ServiceSuite) TestCaseDetailIsNormalized() {
	v, err := s.service.CaseDetail(s.ctx, 101, false)
	s.Require().NoError(err)
	s.Equal(int64(101), v.Data.ID)
	s.NotEmpty(v.Data.Instances)
	_, ok := v.Data.FindDocument("doc-1")
	s.True(ok)
}

func (s *ServiceSuite) TestCaseDetailIsCachedInCanonicalForm() {
	v, err := s.service.CaseDetail(s.ctx, 101, false)
	s.Require().NoError(err)

	entry, err := s.store.Get(s.ctx, cache.NamespaceDetails, cache.CaseDetailKey(101))
	s.Require().NoError(err)
	want, err := encodePayload(v.Data)
	s.Require().NoError(err)
	s.JSONEq(string(want), string(entry.Payload))
	s.NotContains(string(entry.Payload), "short_info")

	var stored struct {
		Schema int               `json:"schema"`
		Data   models.CaseDetail `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(entry.Payload, &stored))
	s.Equal(payloadSchema, stored.Schema)
	s.Equal(*v.Data, stored.Data)

	again, err := s.service.CaseDetail(s.ctx, 101, false)
	s.Require().NoError(err)
	s.Equal(v.Data, again.Data)
	s.Equal(1, s.backend.count("detail"))
}

func (s *ServiceSuite) TestUnreadableCacheEntryIsRefetched() {
	s.Run("wire body left by an older version", func() {
		s.Require().NoError(s.store.Put(s.ctx, cache.NamespaceLists, cache.KeyCalendarEvents, []byte(calendarBody)))

		v, err := s.service.Calendar(s.ctx, false)
		s.Require().NoError(err)
		s.Require().Len(v.Data, 1)
		s.Equal("Заседание", v.Data[0].Head)
		s.Equal(1, s.backend.count("calendar"))

		entry, err := s.store.Get(s.ctx, cache.NamespaceLists, cache.KeyCalendarEvents)
		s.Require().NoError(err)
		_, err = decodePayload[[]models.CalendarEvent](entry.Payload)
		s.NoError(err)
	})

	s.Run("cache-only read drops the entry and reports no data", func() {
		s.Require().NoError(s.store.Put(s.ctx, cache.NamespaceLists, cache.KeyCompanies, []byte(`{"schema":99,"data":[]}`)))

		_, err := s.service.Companies(requestcontext.WithCacheOnly(s.ctx), false)
		s.ErrorIs(err, swr.ErrNoCachedData)

		_, err = s.store.Get(s.ctx, cache.NamespaceLists, cache.KeyCompanies)
		s.ErrorIs(err, cache.ErrNotFound)
	})
}

func TestDecodePayloadRejectsOtherSchemas(t *testing.T) {
	_, err := decodePayload[[]models.Company]([]byte(`{"data":[]}`))
	assert.ErrorIs(t, err, cache.ErrCorrupted)
	_, err = decodePayload[[]models.Company]([]byte(`not json`))
	assert.ErrorIs(t, err, cache.ErrCorrupted)

	b, err := encodePayload([]models.Company{{ID: 5, Name: "ООО Ромашка"}})
	require.NoError(t, err)
	got, err := decodePayload[[]models.Company](b)
	require.NoError(t, err)
	assert.Equal(t, "ООО Ромашка", got[0].Name)
}

func (s *ServiceSuite) TestNotificationsMergeReadOverlay() {
	s.Require().NoError(s.service.MarkRead(s.ctx, []string{overlay.NotificationKey(1, 10, "m1"), " "}))

	v, err := s.service.Notifications(s.ctx, 0, false)
	s.Require().NoError(err)
	s.Equal(3, v.Data.TotalPages)
	s.Require().Len(v.Data.Items, 2)
	s.True(v.Data.Items[0].IsRead)
	s.True(v.Data.Items[1].IsRead)

	entry, err := s.store.Get(s.ctx, cache.NamespaceLists, cache.NotificationsPageKey(1))
	s.Require().NoError(err)
	stored, err := decodePayload[models.NotificationsPage](entry.Payload)
	s.Require().NoError(err)
	s.False(stored.Items[0].IsRead, "the overlay is merged on read, not into the cache")
}

func (s *ServiceSuite) TestRawPayloads() {
	objects, err := s.service.MonitoringObjects(s.ctx, false)
	s.Require().NoError(err)
	s.Equal(rawvalue.KindMap, objects.Data.Kind())

	fines, err := s.service.Fines(s.ctx, false)
	s.Require().NoError(err)
	data, ok := fines.Data.Field("data")
	s.Require().True(ok)
	s.Equal(1, data.Len())

	company, err := s.service.CompanyDetail(s.ctx, 5, false)
	s.Require().NoError(err)
	inn, ok := company.Data.Field("inn")
	s.Require().True(ok)
	text, _ := inn.Text()
	s.Equal("7700000000", text)
}

func (s *ServiceSuite) TestDocument() {
	s.Run("downloads through the resolved link", func() {
		h, err := s.service.Document(s.ctx, 101, "doc-1")
		s.Require().NoError(err)
		s.Equal(assets.SourceDownload, h.Source)
		s.Require().Len(s.downloader.urls, 1)
		s.Contains(s.downloader.urls[0], "/subs/get-pdf?case_id=case-uuid&document_id=doc-1")
	})

	s.Run("second request is served from cache", func() {
		h, err := s.service.Document(s.ctx, 101, "doc-1")
		s.Require().NoError(err)
		s.Equal(assets.SourceCache, h.Source)
		s.Len(s.downloader.urls, 1)

		rc, err := s.service.OpenDocument(s.ctx, h)
		s.Require().NoError(err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		s.Require().NoError(err)
		s.Equal(validPDF, body)

		cached, err := s.service.CachedDocuments(s.ctx, 101)
		s.Require().NoError(err)
		s.Len(cached, 1)
	})

	s.Run("unknown document", func() {
		_, err := s.service.Document(s.ctx, 101, "missing")
		s.ErrorIs(err, ErrDocumentNotFound)
	})

	s.Run("cache-only without a copy", func() {
		_, err := s.service.Document(requestcontext.WithCacheOnly(s.ctx), 101, "other")
		s.ErrorIs(err, swr.ErrNoCachedData)
	})
}

func (s *ServiceSuite) TestClearCacheAndSize() {
	_, err := s.service.Cases(s.ctx, false)
	s.Require().NoError(err)
	_, err = s.service.Document(s.ctx, 101, "doc-1")
	s.Require().NoError(err)
	s.Require().NoError(s.service.MarkRead(s.ctx, []string{"1|10|m1"}))

	size, err := s.service.CacheSize(s.ctx)
	s.Require().NoError(err)
	s.Greater(size, int64(len(validPDF)))

	s.Require().NoError(s.service.ClearCache(s.ctx))
	size, err = s.service.CacheSize(s.ctx)
	s.Require().NoError(err)
	s.Zero(size)
	s.Zero(s.overlay.Len())
}

func TestNewRequiresCollaborators(t *testing.T) {
	st := store.NewInMemory()
	ctrl, err := swr.New(st)
	require.NoError(t, err)
	defer ctrl.Close()
	ov, err := overlay.New(context.Background(), st)
	require.NoError(t, err)
	docs, err := assets.New(blobs.NewMemory(), &fakeDownloader{})
	require.NoError(t, err)

	_, err = New(nil, newFakeBackend(), st, ov, docs)
	assert.Error(t, err)
	_, err = New(ctrl, nil, st, ov, docs)
	assert.Error(t, err)
	_, err = New(ctrl, newFakeBackend(), nil, ov, docs)
	assert.Error(t, err)
	_, err = New(ctrl, newFakeBackend(), st, nil, docs)
	assert.Error(t, err)
	_, err = New(ctrl, newFakeBackend(), st, ov, nil)
	assert.Error(t, err)
}

func TestViewWarning(t *testing.T) {
	assert.Empty(t, View[int]{}.Warning())
	assert.Equal(t, "data may be outdated", View[int]{Stale: true}.Warning())
	assert.Equal(t, "data may be outdated: boom", View[int]{Advisory: errors.New("boom")}.Warning())
}
