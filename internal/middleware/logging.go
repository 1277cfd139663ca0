package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer for
// flushing and deadlines on streamed responses.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger logs every HTTP request once it completes.
func Logger(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", wrapped.written,
				"ip", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// Recovery turns a panic in a handler into a 500 response. Once the handler
// has started its response (a streamed analysis, say) the panic is only
// logged.
func Recovery(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracked, ok := w.(*responseWriter)
			if !ok {
				tracked = &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			}

			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Panic recovered",
						"panic", rec,
						"path", r.URL.Path,
						"response_started", tracked.wroteHeader,
						"stack", string(debug.Stack()))
					if tracked.wroteHeader {
						return
					}
					tracked.Header().Set("Content-Type", "application/json")
					tracked.WriteHeader(http.StatusInternalServerError)
					tracked.Write([]byte(`{"error":"Internal server error"}`))
				}
			}()
			next.ServeHTTP(tracked, r)
		})
	}
}
