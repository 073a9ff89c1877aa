package middleware

import (
	"net/http"
	"time"
)

type Recorder interface {
	Record(method string, status int, duration time.Duration)
}

// Metrics records every request except scrapes of the metrics endpoint itself.
func Metrics(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rec == nil || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			rec.Record(r.Method, wrapped.status, time.Since(start))
		})
	}
}
