package server

import (
	"context"
	"net/http"

	"github.com/sandeep066/aceInterview/internal/agent"
)

// ResultSourceHeader tells clients whether a result came from the model or
// from a deterministic fallback.
const ResultSourceHeader = "X-Result-Source"

type resultSourceKey struct{}

type resultSource struct {
	source agent.Source
}

// SetResultSource records where the handler's result came from. When a
// handler composes several results, any fallback wins. No-op outside
// ResultSourceMiddleware.
func SetResultSource(ctx context.Context, src agent.Source) {
	rs, ok := ctx.Value(resultSourceKey{}).(*resultSource)
	if !ok || src == "" {
		return
	}
	if rs.source == "" || src.IsFallback() {
		rs.source = src
	}
}

// ResultSourceMiddleware writes the X-Result-Source header from the value
// recorded by SetResultSource, just before the response headers go out.
func ResultSourceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs := &resultSource{}
		ctx := context.WithValue(r.Context(), resultSourceKey{}, rs)
		wrapped := &resultSourceResponseWriter{ResponseWriter: w, rs: rs}
		next.ServeHTTP(wrapped, r.WithContext(ctx))
	})
}

type resultSourceResponseWriter struct {
	http.ResponseWriter
	rs           *resultSource
	wroteHeaders bool
}

func (rw *resultSourceResponseWriter) WriteHeader(code int) {
	rw.writeSourceHeader()
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *resultSourceResponseWriter) Write(b []byte) (int, error) {
	rw.writeSourceHeader()
	return rw.ResponseWriter.Write(b)
}

func (rw *resultSourceResponseWriter) writeSourceHeader() {
	if rw.wroteHeaders {
		return
	}
	rw.wroteHeaders = true
	if rw.rs.source != "" {
		rw.Header().Set(ResultSourceHeader, string(rw.rs.source))
	}
}

func (rw *resultSourceResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
