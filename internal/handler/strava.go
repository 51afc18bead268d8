package handler

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/service"
)

type StravaHandler struct {
	stravaService *service.StravaService
}

func NewStravaHandler(stravaService *service.StravaService) *StravaHandler {
	return &StravaHandler{stravaService: stravaService}
}

// Connect redirects to Strava's consent screen. The state token in
// the cookie is what later authorizes the callback, so the callback
// itself needs no session.
func (h *StravaHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if !h.stravaService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "Strava is not configured on this server")
		return
	}

	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, h.stravaService.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the OAuth dance and imports recent activities.
// The access token lives for this request only; nothing about the
// Strava account is stored.
func (h *StravaHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.stravaService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "Strava is not configured on this server")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("strava oauth state validation failed", "error", err)
		respondError(w, http.StatusBadRequest, "OAuth state mismatch, start over from the connect step")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondError(w, http.StatusBadRequest, "Strava access was denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := h.stravaService.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("strava token exchange failed", "error", err)
		respondError(w, http.StatusBadGateway, "failed to connect to Strava")
		return
	}

	days := 0
	if d := r.URL.Query().Get("days"); d != "" {
		days, _ = strconv.Atoi(d)
	}

	summary, err := h.stravaService.Import(r.Context(), token, days)
	if err != nil {
		slog.Error("strava import failed", "error", err)
		respondError(w, http.StatusBadGateway, "failed to import activities from Strava")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
