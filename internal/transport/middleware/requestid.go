package middleware

import (
	"net/http"

	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi/middleware"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger must run after chi's RequestID. It echoes the id back to the
// client and binds it to the context logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "request_id", reqID)
		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
