package server

import (
	"log"
	"net/http"
	"time"
)

// loggingMiddleware logs each request with the status and duration of its
// handling.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &loggedWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(lw, r)
		log.Println(r.Method, r.RequestURI, lw.status, time.Since(start).Round(time.Millisecond))
	})
}

// loggedWriter records the status code written by the handler.
type loggedWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggedWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
