package httptransport

import (
	"context"
	"errors"
	"net/http"

	"legaltrack/internal/assets"
	"legaltrack/internal/backend"
	"legaltrack/internal/cases/decode"
	"legaltrack/internal/swr"
	"legaltrack/pkg/platform/httputil"
	"legaltrack/pkg/platform/sentinel"
	"legaltrack/pkg/requestcontext"
)

// translate maps service errors onto HTTP errors. Order matters: the most
// specific conditions come first.
func translate(err error) *httputil.Error {
	switch {
	case errors.Is(err, swr.ErrNoCachedData):
		return &httputil.Error{Status: http.StatusServiceUnavailable, Code: "offline", Description: "offline and nothing cached", Err: err}
	case errors.Is(err, assets.ErrValidationFailed):
		return &httputil.Error{Status: http.StatusBadGateway, Code: "invalid_document", Description: "backend returned " + string(assets.ReasonOf(err)), Err: err}
	case errors.Is(err, assets.ErrNoURL):
		return &httputil.Error{Status: http.StatusNotFound, Code: "no_download_link", Description: "document has no download link", Err: err}
	case errors.Is(err, sentinel.ErrNotFound):
		return &httputil.Error{Status: http.StatusNotFound, Code: "not_found", Description: "not found", Err: err}
	case errors.Is(err, decode.ErrMalformedRecord):
		return &httputil.Error{Status: http.StatusBadGateway, Code: "malformed_response", Description: "backend response could not be read", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &httputil.Error{Status: http.StatusGatewayTimeout, Code: "timeout", Description: "request timed out", Err: err}
	}
	switch backend.KindOf(err) {
	case backend.KindServer, backend.KindDecode:
		return &httputil.Error{Status: http.StatusBadGateway, Code: "backend_error", Description: "backend request failed", Err: err}
	case backend.KindTimeout:
		return &httputil.Error{Status: http.StatusGatewayTimeout, Code: "timeout", Description: "backend timed out", Err: err}
	case backend.KindUnreachable:
		return &httputil.Error{Status: http.StatusServiceUnavailable, Code: "unreachable", Description: "backend unreachable", Err: err}
	}
	return &httputil.Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	he := translate(err)
	level := h.logger.WarnContext
	if he.Status == http.StatusInternalServerError {
		level = h.logger.ErrorContext
	}
	level(r.Context(), "request failed",
		"path", r.URL.Path,
		"status", he.Status,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, he)
}
