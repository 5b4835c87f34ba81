package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/qivlabs/qiv-auth/internal/api/http/session"
	"github.com/qivlabs/qiv-auth/internal/logger"
	"github.com/qivlabs/qiv-auth/internal/model"
	"github.com/qivlabs/qiv-auth/internal/service"
)

// AuthService defines the flow operations exposed over HTTP.
type AuthService interface {
	Register(ctx context.Context, params service.RegisterParams) (model.Identity, string, error)
	Login(ctx context.Context, email, password string) (model.Identity, string, error)
	ReconcileFederatedProfile(ctx context.Context, profile model.FederatedProfile) (model.Identity, string, error)
	RequestReset(ctx context.Context, email string) (string, error)
	ConfirmReset(ctx context.Context, email, code, newPassword string) (model.Identity, string, error)
}

// Auth handles the HTTP endpoints for all authentication flows.
type Auth struct {
	authService    AuthService
	identities     model.IdentityStore
	contextManager model.ContextManager
	cookies        session.CookieOptions
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	authService AuthService,
	identities model.IdentityStore,
	contextManager model.ContextManager,
	cookies session.CookieOptions,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		authService:    authService,
		identities:     identities,
		contextManager: contextManager,
		cookies:        cookies,
		logger:         logger,
	}
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type identityResponse struct {
	Message string               `json:"message"`
	User    model.PublicIdentity `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewValidationError("", "invalid request body"))
		return
	}

	identity, token, err := h.authService.Register(r.Context(), service.RegisterParams{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.logger.Info("Auth handler: registration failed",
			"email", req.Email,
			"error", err.Error())
		writeError(w, err)
		return
	}

	session.SetCookie(w, token, h.cookies)
	writeJSON(w, http.StatusCreated, identityResponse{
		Message: "User registered successfully",
		User:    identity.Public(),
	})
}

// Login handles POST /api/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewValidationError("", "invalid request body"))
		return
	}

	identity, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: login failed", "email", req.Email)
		writeError(w, err)
		return
	}

	session.SetCookie(w, token, h.cookies)
	writeJSON(w, http.StatusOK, identityResponse{
		Message: "Login successful",
		User:    identity.Public(),
	})
}

// Logout handles POST /api/auth/logout.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, h.cookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me handles GET /api/user/me for authenticated callers.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, model.NewAuthError("not authenticated"))
		return
	}

	identity, err := h.identities.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, model.NewAuthError("not authenticated"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.PublicIdentity{"user": identity.Public()})
}
