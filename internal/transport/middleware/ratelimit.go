package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/go-chi/httprate"
)

const ErrCodeRateLimited internal.ErrorCode = "RATE_LIMITED"

// LoginRateLimit throttles credential attempts per client IP. Mount it
// behind chi RealIP so proxied clients are told apart.
func LoginRateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(internal.Response{
		Success: false,
		Error:   "too many login attempts, try again later",
		Code:    ErrCodeRateLimited,
	})
}
