package rest

import (
	"context"
	"net/http"
	"time"
)

// RequestTimeout puts a deadline of timeout on every request context. nothing is written here when
// it expires, the handler sees the deadline and renders the 504 through ErrorRenderer.
func RequestTimeout(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
