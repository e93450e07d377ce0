package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// statusRecorder captures the status code and body size written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// RequestLogger emits one structured line per completed request. Probe paths
// are logged at debug level and server errors at warn.
func RequestLogger(logger *zap.Logger, quietPaths ...string) func(http.Handler) http.Handler {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			level := zapcore.InfoLevel
			switch {
			case quiet[r.URL.Path]:
				level = zapcore.DebugLevel
			case rec.status >= http.StatusInternalServerError:
				level = zapcore.WarnLevel
			}

			if ce := logger.Check(level, "http request"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", rec.status),
					zap.Int("bytes", rec.bytes),
					zap.Duration("latency", time.Since(start)),
					zap.String("correlation_id", GetCorrelationID(r.Context())),
					zap.String("remote_addr", r.RemoteAddr),
				)
			}
		})
	}
}
