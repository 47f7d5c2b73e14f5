package httptransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"legaltrack/internal/assets"
	"legaltrack/internal/backend"
	"legaltrack/internal/cases/models"
	"legaltrack/internal/cases/service"
	"legaltrack/internal/overlay"
	"legaltrack/internal/swr"
	"legaltrack/internal/transport/http/mocks"
	"legaltrack/pkg/requestcontext"
	"legaltrack/pkg/testutil"
)

type staticConnectivity bool

func (s staticConnectivity) Online() bool { return bool(s) }

type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(New(s.service, staticConnectivity(false), logger))
}

func (s *HandlerSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	return testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), method, target, body))
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	return testutil.DecodeJSON[map[string]any](s.T(), w)
}

func (s *HandlerSuite) TestHealth() {
	w := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal("ok", body["status"])
	s.Equal(false, body["online"])
}

func (s *HandlerSuite) TestMetricsEndpoint() {
	w := s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestCases() {
	s.Run("fresh data has no warning", func() {
		fetched := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		s.service.EXPECT().Cases(gomock.Any(), false).Return(service.View[[]models.LegalCase]{
			Data:      []models.LegalCase{{ID: 1, Value: "А40-1/2024"}},
			FetchedAt: fetched,
		}, nil)

		w := s.do(http.MethodGet, "/v1/cases", nil)
		s.Equal(http.StatusOK, w.Code)
		s.NotEmpty(w.Header().Get("X-Request-ID"))
		testutil.AssertStaleness(s.T(), w, false, "")
		body := s.decode(w)
		s.Equal("2024-03-01T10:00:00Z", body["fetched_at"])
		s.Len(body["data"], 1)
	})

	s.Run("stale data is flagged", func() {
		s.service.EXPECT().Cases(gomock.Any(), true).Return(service.View[[]models.LegalCase]{
			Data:       []models.LegalCase{},
			Stale:      true,
			Refreshing: true,
		}, nil)

		w := s.do(http.MethodGet, "/v1/cases?refresh=true", nil)
		s.Equal(http.StatusOK, w.Code)
		testutil.AssertStaleness(s.T(), w, true, "data may be outdated")
		s.Equal(true, s.decode(w)["refreshing"])
	})

	s.Run("offline without cache", func() {
		s.service.EXPECT().Cases(gomock.Any(), false).DoAndReturn(
			func(ctx context.Context, _ bool) (service.View[[]models.LegalCase], error) {
				s.True(requestcontext.CacheOnly(ctx))
				return service.View[[]models.LegalCase]{}, swr.ErrNoCachedData
			})

		w := s.do(http.MethodGet, "/v1/cases?offline=true", nil)
		testutil.AssertStatusAndError(s.T(), w, http.StatusServiceUnavailable, "offline")
	})
}

func (s *HandlerSuite) TestCaseDetail() {
	s.Run("passes the id", func() {
		s.service.EXPECT().CaseDetail(gomock.Any(), int64(42), false).Return(service.View[*models.CaseDetail]{
			Data: &models.CaseDetail{ID: 42, Number: "А40-42/2024"},
		}, nil)

		w := s.do(http.MethodGet, "/v1/cases/42", nil)
		s.Equal(http.StatusOK, w.Code)
		data := s.decode(w)["data"].(map[string]any)
		s.Equal("А40-42/2024", data["number"])
	})

	s.Run("rejects a bad id", func() {
		w := s.do(http.MethodGet, "/v1/cases/abc", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("backend failures map to gateway errors", func() {
		s.service.EXPECT().CaseDetail(gomock.Any(), int64(7), false).Return(service.View[*models.CaseDetail]{},
			&backend.TransportError{Kind: backend.KindServer, StatusCode: 500, Path: backend.PathCaseDetail})

		w := s.do(http.MethodGet, "/v1/cases/7", nil)
		testutil.AssertStatusAndError(s.T(), w, http.StatusBadGateway, "backend_error")
	})
}

func (s *HandlerSuite) TestNotifications() {
	s.Run("page defaults to one", func() {
		s.service.EXPECT().Notifications(gomock.Any(), 1, false).Return(service.View[models.NotificationsPage]{
			Data: models.NotificationsPage{Page: 1, TotalPages: 1, Items: []models.Notification{}},
		}, nil)
		w := s.do(http.MethodGet, "/v1/notifications", nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("invalid page", func() {
		w := s.do(http.MethodGet, "/v1/notifications?page=0", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("mark read accepts keys and items", func() {
		s.service.EXPECT().MarkRead(gomock.Any(), []string{"k1", overlay.NotificationKey(2, 10, "m")}).Return(nil)
		w := s.do(http.MethodPost, "/v1/notifications/read", map[string]any{
			"keys":  []string{"k1"},
			"items": []map[string]any{{"id": 2, "case": 10, "meta": " m "}},
		})
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("mark read requires something", func() {
		w := s.do(http.MethodPost, "/v1/notifications/read", map[string]any{})
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestDocument() {
	s.Run("streams the pdf", func() {
		h := assets.Handle{Name: "case_1_d_abc.pdf", Size: 8, Source: assets.SourceCache}
		s.service.EXPECT().Document(gomock.Any(), int64(1), "d").Return(h, nil)
		s.service.EXPECT().OpenDocument(gomock.Any(), h).Return(io.NopCloser(strings.NewReader("%PDF-1.7")), nil)

		w := s.do(http.MethodGet, "/v1/cases/1/documents/d", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Equal("application/pdf", w.Header().Get("Content-Type"))
		s.Equal("8", w.Header().Get("Content-Length"))
		s.Equal("%PDF-1.7", w.Body.String())
	})

	s.Run("unknown document", func() {
		s.service.EXPECT().Document(gomock.Any(), int64(1), "x").Return(assets.Handle{}, service.ErrDocumentNotFound)
		w := s.do(http.MethodGet, "/v1/cases/1/documents/x", nil)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("rejected download", func() {
		err := fmt.Errorf("download: %w", &assets.ValidationError{Reason: assets.ReasonLooksLikeHTML})
		s.service.EXPECT().Document(gomock.Any(), int64(1), "h").Return(assets.Handle{}, err)
		w := s.do(http.MethodGet, "/v1/cases/1/documents/h", nil)
		testutil.AssertStatusAndError(s.T(), w, http.StatusBadGateway, "invalid_document")
	})

	s.Run("lists cached documents", func() {
		s.service.EXPECT().CachedDocuments(gomock.Any(), int64(1)).Return([]assets.Handle{{Name: "case_1_d.pdf", Size: 10, Source: assets.SourceCache}}, nil)
		w := s.do(http.MethodGet, "/v1/cases/1/documents", nil)
		s.Equal(http.StatusOK, w.Code)
		docs := s.decode(w)["documents"].([]any)
		s.Equal("case_1_d.pdf", docs[0].(map[string]any)["name"])
	})
}

func (s *HandlerSuite) TestCache() {
	s.Run("size", func() {
		s.service.EXPECT().CacheSize(gomock.Any()).Return(int64(2048), nil)
		w := s.do(http.MethodGet, "/v1/cache", nil)
		s.Equal(http.StatusOK, w.Code)
		s.Equal(float64(2048), s.decode(w)["bytes"])
	})

	s.Run("clear", func() {
		s.service.EXPECT().ClearCache(gomock.Any()).Return(nil)
		w := s.do(http.MethodDelete, "/v1/cache", nil)
		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("internal errors hide details", func() {
		s.service.EXPECT().ClearCache(gomock.Any()).Return(errors.New("disk on fire"))
		w := s.do(http.MethodDelete, "/v1/cache", nil)
		s.Equal(http.StatusInternalServerError, w.Code)
		s.NotContains(w.Body.String(), "disk on fire")
	})
}
