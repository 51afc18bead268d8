package middleware

import "net/http"

// Chain wraps h so the first-listed middleware sits outermost. The
// full stack is assembled once in routes.New; tests wrap individual
// handlers directly.
func Chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
