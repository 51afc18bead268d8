package routes

import (
	"net/http"

	"github.com/habitedge/habitedge/internal/app"
	"github.com/habitedge/habitedge/internal/handler"
	"github.com/habitedge/habitedge/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(a.AuthService, a.ProfileService, a.Cfg.JWTExpiry)
	account := handler.NewAccountHandler(a.AuthService, a.UserService, a.MediaService)
	profile := handler.NewProfileHandler(a.ProfileService)
	target := handler.NewTargetHandler(a.TargetService)
	journal := handler.NewJournalHandler(a.JournalService, a.MediaService)
	stats := handler.NewStatsHandler(a.StatsService)
	guide := handler.NewGuideHandler(a.GuideService)
	export := handler.NewExportHandler(a.ExportService)
	strava := handler.NewStravaHandler(a.StravaService)
	health := handler.NewHealthHandler(a.DB)

	mux := http.NewServeMux()

	// Infrastructure
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", a.Metrics.Handler())

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/magic-link", rateLimiter(auth.MagicLink))
	mux.HandleFunc("GET /api/auth/magic-link/{token}", rateLimiter(auth.VerifyMagicLink))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/forgot-password", rateLimiter(auth.ForgotPassword))
	mux.HandleFunc("GET /api/auth/forgot-password/{token}", rateLimiter(auth.VerifyForgotPassword))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("POST /api/auth/onboarding", middleware.RequireAuth(auth.Onboarding))

	// Account
	mux.HandleFunc("PUT /api/account/password", middleware.RequireAuth(account.UpdatePassword))
	mux.HandleFunc("DELETE /api/account/password", middleware.RequireAuth(account.RemovePassword))
	mux.HandleFunc("PUT /api/account/avatar", middleware.RequireAuth(account.UploadAvatar))
	mux.HandleFunc("DELETE /api/account/avatar", middleware.RequireAuth(account.DeleteAvatar))
	mux.HandleFunc("DELETE /api/account", middleware.RequireAuth(account.DeleteAccount))

	// Profile
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profile.Get))
	mux.HandleFunc("PUT /api/profile", middleware.RequireAuth(profile.Update))

	// Targets
	mux.HandleFunc("GET /api/targets", middleware.RequireAuth(target.List))
	mux.HandleFunc("POST /api/targets", middleware.RequireAuth(target.Create))
	mux.HandleFunc("GET /api/targets/{id}", middleware.RequireAuth(target.Get))
	mux.HandleFunc("PUT /api/targets/{id}", middleware.RequireAuth(target.Update))
	mux.HandleFunc("DELETE /api/targets/{id}", middleware.RequireAuth(target.Delete))
	mux.HandleFunc("POST /api/targets/{id}/progress", middleware.RequireAuth(target.LogProgress))
	mux.HandleFunc("DELETE /api/targets/{id}/progress/{entryId}", middleware.RequireAuth(target.RemoveProgress))
	mux.HandleFunc("POST /api/targets/{id}/complete", middleware.RequireAuth(target.Complete))
	mux.HandleFunc("POST /api/targets/{id}/reopen", middleware.RequireAuth(target.Reopen))
	mux.HandleFunc("POST /api/targets/{id}/priority", middleware.RequireAuth(target.SetPriority))

	// Journal
	mux.HandleFunc("GET /api/entries", middleware.RequireAuth(journal.List))
	mux.HandleFunc("POST /api/entries", middleware.RequireAuth(journal.Create))
	mux.HandleFunc("GET /api/entries/{id}", middleware.RequireAuth(journal.Get))
	mux.HandleFunc("PUT /api/entries/{id}", middleware.RequireAuth(journal.Update))
	mux.HandleFunc("DELETE /api/entries/{id}", middleware.RequireAuth(journal.Delete))
	mux.HandleFunc("POST /api/entries/{id}/attachments", middleware.RequireAuth(journal.UploadAttachment))
	mux.HandleFunc("DELETE /api/media/{mediaId}", middleware.RequireAuth(journal.DeleteAttachment))

	// Stats
	mux.HandleFunc("GET /api/stats/streaks", middleware.RequireAuth(stats.Streaks))
	mux.HandleFunc("GET /api/stats/dashboard", middleware.RequireAuth(stats.Dashboard))

	// Guides (read-only content, no session needed)
	mux.HandleFunc("GET /api/guides", guide.List)
	mux.HandleFunc("GET /api/guides/{slug}", guide.Get)

	// Backup
	mux.HandleFunc("GET /api/export", middleware.RequireAuth(export.Download))
	mux.HandleFunc("POST /api/import", middleware.RequireAuth(export.Upload))

	// Strava. The callback is authorized by the state cookie set in
	// Connect, not by a session; see the handler.
	mux.HandleFunc("GET /api/strava/connect", middleware.RequireAuth(strava.Connect))
	mux.HandleFunc("GET /api/strava/callback", strava.Callback)

	// Live events
	mux.HandleFunc("GET /api/events", middleware.RequireAuth(a.Hub.ServeWS))

	// Global middleware - executed in order (top to bottom). Metrics
	// sits innermost so it sees the route pattern the mux matched.
	handler := middleware.Chain(
		mux,
		middleware.Config(a.Cfg),
		middleware.RequestID,
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(a.AuthService, a.UserService, a.ProfileService),
		middleware.Metrics(a.Metrics),
	)

	return handler
}
