package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/habitedge/habitedge/internal/ctxkeys"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/service"
	"github.com/habitedge/habitedge/internal/validation"
)

type AccountHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	mediaService *service.MediaService
}

func NewAccountHandler(authService *service.AuthService, userService *service.UserService, mediaService *service.MediaService) *AccountHandler {
	return &AccountHandler{
		authService:  authService,
		userService:  userService,
		mediaService: mediaService,
	}
}

// UpdatePassword sets a password on a passwordless account or, when
// one exists, changes it after checking the current one.
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if user.HasPassword() {
		err = h.userService.UpdatePassword(user.ID, req.CurrentPassword, req.NewPassword)
	} else {
		err = h.authService.SetPassword(user.ID, req.NewPassword)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCurrentPassword):
			respondError(w, http.StatusBadRequest, "current password is incorrect")
		case respondValidationError(w, err):
		default:
			slog.Error("failed to update password", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to update password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// RemovePassword switches the account back to passwordless sign-in.
func (h *AccountHandler) RemovePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.authService.RemovePassword(user.ID); err != nil {
		slog.Error("failed to remove password", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to remove password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password removed, use sign-in links from now on",
	})
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if !h.mediaService.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "uploads are disabled on this server")
		return
	}

	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, validation.ImageConstraints.MaxSize+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	if err := validation.ValidateFile(header, validation.ImageConstraints); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Replace, not accumulate: one avatar per athlete.
	if err := h.mediaService.DeleteUserAvatar(user.ID); err != nil {
		slog.Warn("failed to delete old avatar", "error", err, "user_id", user.ID)
	}

	media, err := h.mediaService.Upload(user.ID, nil, model.MediaTypeAvatar, file, header)
	if err != nil {
		slog.Error("failed to upload avatar", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}

	respondJSON(w, http.StatusOK, media)
}

func (h *AccountHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.mediaService.DeleteUserAvatar(user.ID); err != nil {
		slog.Error("failed to delete avatar", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to delete avatar")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// DeleteAccount wipes the account and everything it owns. There is
// no undo; clients are expected to confirm before calling.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if err := h.userService.DeleteAccount(user.ID); err != nil {
		slog.Error("failed to delete account", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	h.authService.ClearJWTCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
