// Package httptransport is the local JSON API a UI shell talks to. Handlers
// decode the request, call the case service and render the result; every
// cached response carries its staleness so the UI can flag outdated data.
package httptransport

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"legaltrack/internal/assets"
	"legaltrack/internal/cases/models"
	"legaltrack/internal/cases/service"
	"legaltrack/internal/overlay"
	"legaltrack/internal/platform/middleware"
	"legaltrack/pkg/platform/httputil"
	"legaltrack/pkg/platform/middleware/requesttime"
	"legaltrack/pkg/rawvalue"
)

// Service is the case service as seen by the handlers.
type Service interface {
	Cases(ctx context.Context, force bool) (service.View[[]models.LegalCase], error)
	Companies(ctx context.Context, force bool) (service.View[[]models.Company], error)
	CaseDetail(ctx context.Context, id int64, force bool) (service.View[*models.CaseDetail], error)
	CompanyDetail(ctx context.Context, id int64, force bool) (service.View[rawvalue.Value], error)
	Calendar(ctx context.Context, force bool) (service.View[[]models.CalendarEvent], error)
	Notifications(ctx context.Context, page int, force bool) (service.View[models.NotificationsPage], error)
	MarkRead(ctx context.Context, keys []string) error
	MonitoringObjects(ctx context.Context, force bool) (service.View[rawvalue.Value], error)
	Fines(ctx context.Context, force bool) (service.View[rawvalue.Value], error)
	Document(ctx context.Context, caseID int64, documentID string) (assets.Handle, error)
	OpenDocument(ctx context.Context, h assets.Handle) (io.ReadCloser, error)
	CachedDocuments(ctx context.Context, caseID int64) ([]assets.Handle, error)
	ClearCache(ctx context.Context) error
	CacheSize(ctx context.Context) (int64, error)
}

// Connectivity reports whether the backend is currently reachable.
type Connectivity interface {
	Online() bool
}

const requestTimeout = 60 * time.Second

type Handler struct {
	service      Service
	connectivity Connectivity
	logger       *slog.Logger
}

func New(svc Service, connectivity Connectivity, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: svc, connectivity: connectivity, logger: logger}
}

// Register mounts every route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(requesttime.Middleware)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.CacheOnly)

	api.Get("/cases", h.handleCases)
	api.Get("/cases/{id}", h.handleCaseDetail)
	api.Get("/cases/{id}/documents", h.handleCachedDocuments)
	api.Get("/cases/{id}/documents/{docID}", h.handleDocument)
	api.Get("/companies", h.handleCompanies)
	api.Get("/companies/{id}", h.handleCompanyDetail)
	api.Get("/calendar", h.handleCalendar)
	api.Get("/notifications", h.handleNotifications)
	api.Post("/notifications/read", h.handleMarkRead)
	api.Get("/monitoring-objects", h.handleMonitoringObjects)
	api.Get("/fines", h.handleFines)
	api.Get("/cache", h.handleCacheSize)
	api.Delete("/cache", h.handleClearCache)

	r.Mount("/v1", api)
}

// NewRouter builds a chi router with every route registered.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// viewResponse is the envelope of every cached read.
type viewResponse struct {
	Data       any       `json:"data"`
	FetchedAt  time.Time `json:"fetched_at"`
	Stale      bool      `json:"stale"`
	Refreshing bool      `json:"refreshing"`
	Warning    string    `json:"warning,omitempty"`
}

func writeView[T any](w http.ResponseWriter, v service.View[T]) {
	httputil.WriteJSON(w, http.StatusOK, viewResponse{
		Data:       v.Data,
		FetchedAt:  v.FetchedAt,
		Stale:      v.Stale,
		Refreshing: v.Refreshing,
		Warning:    v.Warning(),
	})
}

// serve runs a cached read and renders either its view or its error.
func serve[T any](h *Handler, w http.ResponseWriter, r *http.Request, read func(ctx context.Context, force bool) (service.View[T], error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	v, err := read(ctx, forceRefresh(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeView(w, v)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	online := h.connectivity == nil || h.connectivity.Online()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "online": online})
}

func (h *Handler) handleCases(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.service.Cases)
}

func (h *Handler) handleCompanies(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.service.Companies)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.service.Calendar)
}

func (h *Handler) handleMonitoringObjects(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.service.MonitoringObjects)
}

func (h *Handler) handleFines(w http.ResponseWriter, r *http.Request) {
	serve(h, w, r, h.service.Fines)
}

func (h *Handler) handleCaseDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	serve(h, w, r, func(ctx context.Context, force bool) (service.View[*models.CaseDetail], error) {
		return h.service.CaseDetail(ctx, id, force)
	})
}

func (h *Handler) handleCompanyDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	serve(h, w, r, func(ctx context.Context, force bool) (service.View[rawvalue.Value], error) {
		return h.service.CompanyDetail(ctx, id, force)
	})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, httputil.NewError(http.StatusBadRequest, "bad_request", "page must be a positive integer"))
			return
		}
		page = n
	}
	serve(h, w, r, func(ctx context.Context, force bool) (service.View[models.NotificationsPage], error) {
		return h.service.Notifications(ctx, page, force)
	})
}

// markReadRequest accepts ready-made overlay keys, notification triples, or both.
type markReadRequest struct {
	Keys  []string `json:"keys"`
	Items []struct {
		ID     int64  `json:"id"`
		CaseID int64  `json:"case"`
		Meta   string `json:"meta"`
	} `json:"items"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid mark read request", "error", err)
		httputil.WriteError(w, httputil.NewError(http.StatusBadRequest, "bad_request", "invalid request body"))
		return
	}
	keys := append([]string(nil), req.Keys...)
	for _, it := range req.Items {
		keys = append(keys, overlay.NotificationKey(it.ID, it.CaseID, it.Meta))
	}
	if len(keys) == 0 {
		httputil.WriteError(w, httputil.NewError(http.StatusBadRequest, "bad_request", "no keys given"))
		return
	}
	if err := h.service.MarkRead(r.Context(), keys); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCachedDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	handles, err := h.service.CachedDocuments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": handles})
}

// handleDocument streams the cached PDF, downloading it first when needed.
func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	docID := chi.URLParam(r, "docID")
	handle, err := h.service.Document(r.Context(), id, docID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rc, err := h.service.OpenDocument(r.Context(), handle)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+handle.Name+`"`)
	if handle.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(handle.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "document stream interrupted", "name", handle.Name, "error", err)
	}
}

func (h *Handler) handleCacheSize(w http.ResponseWriter, r *http.Request) {
	size, err := h.service.CacheSize(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"bytes": size})
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCache(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, httputil.NewError(http.StatusBadRequest, "bad_request", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func forceRefresh(r *http.Request) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return err == nil && b
}
