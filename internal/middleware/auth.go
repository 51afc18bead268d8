package middleware

import (
	"net/http"
	"strings"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/service"
)

// AuthMiddleware resolves the JWT (cookie or Authorization header)
// and adds user + profile to the context when valid. Requests without
// credentials pass through unauthenticated; RequireAuth rejects them
// at the route level.
func AuthMiddleware(authService *service.AuthService, userService *service.UserService, profileService *service.ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := requestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			clear := func() {
				// Only clear the cookie when the bad token came from it
				if fromCookie {
					authService.ClearJWTCookie(w)
				}
			}

			claims, err := authService.VerifyJWT(token)
			if err != nil {
				clear()
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				clear()
				next.ServeHTTP(w, r)
				return
			}

			user, err := userService.ByID(userID)
			if err != nil {
				clear()
				next.ServeHTTP(w, r)
				return
			}

			// The hash never rides the request context.
			user.PasswordHash = nil

			profile, err := profileService.ByUserID(userID)
			if err != nil {
				clear()
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithProfile(ctx, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken pulls the JWT from the auth cookie or a bearer header.
// The mobile app sends Authorization: Bearer, browsers get the cookie.
func requestToken(r *http.Request) (token string, fromCookie bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if t, ok := strings.CutPrefix(auth, "Bearer "); ok && t != "" {
			return t, false
		}
	}

	cookie, err := r.Cookie("auth_token")
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// RequireAuth rejects unauthenticated requests with 401. All /api
// routes except the auth flow sit behind it.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}

		next.ServeHTTP(w, r)
	}
}
