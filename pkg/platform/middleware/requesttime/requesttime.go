// Package requesttime pins one "now" per HTTP request, so every staleness
// decision and cache write made while serving it agrees on the time.
package requesttime

import (
	"net/http"
	"time"

	"legaltrack/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
