package handler

import (
	"encoding/json"
	"net/http"

	"github.com/qivlabs/qiv-auth/internal/api/http/session"
	"github.com/qivlabs/qiv-auth/internal/model"
)

type requestResetRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// RequestReset handles POST /api/auth/password-reset/request.
func (h *Auth) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewValidationError("", "invalid request body"))
		return
	}

	message, err := h.authService.RequestReset(r.Context(), req.Email)
	if err != nil {
		h.logger.Info("Auth handler: reset request failed",
			"email", req.Email,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": message,
		"email":   req.Email,
	})
}

// ConfirmReset handles POST /api/auth/password-reset/confirm.
func (h *Auth) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req confirmResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewValidationError("", "invalid request body"))
		return
	}

	identity, token, err := h.authService.ConfirmReset(r.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		h.logger.Info("Auth handler: reset confirm failed", "email", req.Email)
		writeError(w, err)
		return
	}

	session.SetCookie(w, token, h.cookies)
	writeJSON(w, http.StatusOK, identityResponse{
		Message: "Password has been reset successfully",
		User:    identity.Public(),
	})
}
