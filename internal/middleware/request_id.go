package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"influence-api/pkg/logger"
)

type contextKey string

// RequestIDKey is the context key carrying the request id
const RequestIDKey contextKey = "request_id"

// RequestID tags every request with an id, echoes it in the X-Request-ID
// header and logs the request outcome with timing.
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"duration":   time.Since(start),
			}).Debug("request completed")
		})
	}
}

// GetRequestID extracts the request id from a context, empty when absent
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
