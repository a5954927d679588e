package middleware

import (
	"errors"
	"net/http"

	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/http/response"
	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded, please try again later")

// RateLimit returns a middleware sharing one token bucket across all callers.
// File reloads touch the whole store, so they are limited globally rather
// than per client.
func RateLimit(r rate.Limit, burst int) func(next http.Handler) http.Handler {
	limiter := rate.NewLimiter(r, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				response.Error(w, req, http.StatusTooManyRequests, errRateLimited)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
