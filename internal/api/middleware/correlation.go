package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Inbound headers checked for an existing trace ID, in order. Pub/Sub push
// and most gateways forward X-Request-Id.
var correlationHeaders = []string{"X-Correlation-ID", "X-Request-Id"}

// CorrelationID stores a per-request trace ID on the context and echoes it in
// the X-Correlation-ID response header. A caller-supplied ID is reused;
// otherwise a new UUID is generated.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		for _, h := range correlationHeaders {
			if id = r.Header.Get(h); id != "" {
				break
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Correlation-ID", id)
		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
	})
}

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// GetCorrelationID returns "" if the middleware was not applied.
func GetCorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey).(string)
	return v
}
