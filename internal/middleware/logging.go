package middleware

import (
	"net/http"
	"time"

	"calculator-saas/internal/logging"

	"github.com/sirupsen/logrus"
)

// TraceHeader carries the request id in both directions.
const TraceHeader = "X-Request-ID"

// RequestLogger assigns a trace id (reusing the client's if present), stores
// it in the context and logs one line per request.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get(TraceHeader)
			if traceID == "" {
				traceID = logging.NewTraceID()
			}
			ctx := logging.WithTraceID(r.Context(), traceID)
			w.Header().Set(TraceHeader, traceID)

			rw := wrap(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			logging.FromContext(ctx, log).WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("request")
		})
	}
}
