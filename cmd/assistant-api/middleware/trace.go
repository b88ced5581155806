package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// TraceHeader carries the request trace ID.
const TraceHeader = "X-Trace-ID"

// Trace tags each request with a trace ID, reusing a valid incoming one.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(observability.ContextWithTraceID(r.Context(), traceID)))
	})
}
