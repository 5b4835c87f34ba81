package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/qivlabs/qiv-auth/internal/api/http/session"
	"github.com/qivlabs/qiv-auth/internal/provider"
)

const stateCookieName = "oauth_state"

// Federated handles the provider redirect handshake. The provider
// delivers a verified profile; all identity decisions live in the
// reconcile flow.
type Federated struct {
	auth        *Auth
	provider    provider.Provider
	frontendURL string
}

// NewFederated creates a new Federated handler redirecting to
// frontendURL after the handshake completes.
func NewFederated(auth *Auth, p provider.Provider, frontendURL string) *Federated {
	return &Federated{
		auth:        auth,
		provider:    p,
		frontendURL: frontendURL,
	}
}

// Start handles GET /api/auth/google: issues a state cookie and
// redirects to the provider's consent page.
func (h *Federated) Start(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.auth.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /api/auth/google/callback: verifies the state,
// exchanges the code, reconciles the profile and sets the session
// cookie before redirecting back to the frontend.
func (h *Federated) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		h.auth.logger.Info("Auth handler: federated callback state mismatch")
		h.redirectFailure(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectFailure(w, r)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.auth.logger.Error("Auth handler: federated exchange failed",
			"provider", h.provider.Name(),
			"error", err.Error())
		h.redirectFailure(w, r)
		return
	}

	_, token, err := h.auth.authService.ReconcileFederatedProfile(r.Context(), profile)
	if err != nil {
		h.auth.logger.Error("Auth handler: federated reconcile failed",
			"provider", h.provider.Name(),
			"error", err.Error())
		h.redirectFailure(w, r)
		return
	}

	session.SetCookie(w, token, h.auth.cookies)
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *Federated) redirectFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendURL+"/login?error=true", http.StatusTemporaryRedirect)
}
