package middleware

import (
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/PxPatel/trading-venue/internal/logger"
)

// RequestIDHeader carries the per-request ULID, echoed to the client
const RequestIDHeader = "X-Request-ID"

// statusRecorder remembers the first status written and counts body bytes
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status != 0 {
		return
	}
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Logging tags each request with an ID and logs one line when it completes:
// ERROR for 5xx, WARN for 4xx, INFO otherwise.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		fields := map[string]interface{}{
			"request_id":  id,
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"status":      rec.status,
			"bytes":       rec.bytes,
			"duration_us": time.Since(start).Microseconds(),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Error("Request completed", fields)
		case rec.status >= http.StatusBadRequest:
			logger.Warn("Request completed", fields)
		default:
			logger.Info("Request completed", fields)
		}
	})
}
