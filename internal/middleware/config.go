package middleware

import (
	"net/http"

	"github.com/habitedge/habitedge/internal/config"
	"github.com/habitedge/habitedge/internal/ctxkeys"
)

// Config puts a secret-stripped copy of the app config on the request
// context. The CSRF cookie reads IsProduction from it to decide on
// the Secure attribute.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), cfg.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
