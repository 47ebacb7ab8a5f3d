package middleware

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger stores chi's request id in the context for
// logger.FromContext and logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := chimw.GetReqID(ctx); id != "" {
			ctx = logger.WithRequestID(ctx, id)
			r = r.WithContext(ctx)
		}
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		logger.FromContext(ctx).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration", time.Since(start),
		)
	})
}
