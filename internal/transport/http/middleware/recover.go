package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"perfeval/internal/transport/http/api"
)

// Recoverer turns handler panics into 500 responses instead of dropped
// connections.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"requestId", GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", GetRequestID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
