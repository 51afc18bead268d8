package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/service"
)

type AuthHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
	jwtExpiry      time.Duration
}

func NewAuthHandler(authService *service.AuthService, profileService *service.ProfileService, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		jwtExpiry:      jwtExpiry,
	}
}

type sessionResponse struct {
	Token           string      `json:"token"`
	NeedsOnboarding bool        `json:"needsOnboarding"`
	User            *model.User `json:"user"`
}

// MagicLink emails a single-use sign-in link. The first request ever
// made against an empty server creates the athlete account; requests
// for any other email succeed silently so the endpoint reveals
// nothing about the account.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.SendMagicLink(req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			respondError(w, http.StatusBadRequest, "invalid email address")
			return
		}
		slog.Error("failed to send magic link", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to send sign-in link")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "check your email for a sign-in link",
	})
}

// VerifyMagicLink consumes a sign-in token and starts a session.
func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing token")
		return
	}

	user, err := h.authService.VerifyMagicLink(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired sign-in link")
		return
	}

	h.signIn(w, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrPasswordlessAccount):
			respondError(w, http.StatusBadRequest, "this account uses passwordless login, request a sign-in link instead")
		case errors.Is(err, service.ErrEmailNotVerified):
			respondError(w, http.StatusForbidden, "verify your email with a sign-in link first")
		default:
			slog.Error("login failed", "error", err)
			respondError(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	h.signIn(w, user)
}

// ForgotPassword emails a link that signs the athlete in and drops
// the password, so a new one can be set from the app. Unknown or
// passwordless emails succeed silently.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authService.SendForgotPasswordLink(req.Email); err != nil {
		slog.Error("failed to send password reset link", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to send reset link")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "if that account has a password, a reset link is on its way",
	})
}

// VerifyForgotPassword consumes a reset token, drops the password and
// starts a session so a new one can be set right away.
func (h *AuthHandler) VerifyForgotPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing token")
		return
	}

	user, err := h.authService.VerifyForgotPasswordLink(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired reset link")
		return
	}

	h.signIn(w, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// Me returns the signed-in athlete and their profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())

	respondJSON(w, http.StatusOK, map[string]any{
		"user":            user,
		"profile":         profile,
		"needsOnboarding": profile == nil || profile.Name == "",
	})
}

// Onboarding stores the profile answers collected after first sign-in.
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		Name     string `json:"name"`
		Sport    string `json:"sport"`
		Position string `json:"position"`
		Level    string `json:"level"`
		Timezone string `json:"timezone"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := &model.Profile{
		Name:     req.Name,
		Sport:    req.Sport,
		Position: req.Position,
		Level:    req.Level,
		Timezone: req.Timezone,
	}

	if err := h.authService.CompleteOnboarding(user.ID, profile); err != nil {
		if respondValidationError(w, err) {
			return
		}
		slog.Error("failed to complete onboarding", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	updated, err := h.profileService.ByUserID(user.ID)
	if err != nil {
		slog.Error("failed to load profile", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// signIn issues the JWT, sets the session cookie and responds with
// the token so native clients can store it themselves.
func (h *AuthHandler) signIn(w http.ResponseWriter, user *model.User) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	h.authService.SetJWTCookie(w, token, time.Now().Add(h.jwtExpiry))

	needsOnboarding, err := h.authService.NeedsOnboarding(user.ID)
	if err != nil {
		slog.Warn("failed to check onboarding state", "error", err, "user_id", user.ID)
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Token:           token,
		NeedsOnboarding: needsOnboarding,
		User:            user,
	})
}
