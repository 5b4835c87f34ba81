package middleware

import (
	"net/http"

	"github.com/qivlabs/qiv-auth/internal/api/http/session"
	"github.com/qivlabs/qiv-auth/internal/logger"
	"github.com/qivlabs/qiv-auth/internal/model"
)

// Authenticate validates the session cookie and injects the user ID
// into the request context.
type Authenticate struct {
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenManager model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenManager: tokenManager, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid session token. Verification
// is self-contained; no store round trip happens here.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		sess, err := m.tokenManager.ParseSessionToken(cookie.Value)
		if err != nil {
			m.logger.Debug("Authenticate middleware: invalid session token",
				"error", err.Error())
			unauthorized(w)
			return
		}

		ctx := m.contextManager.SetUserIDToContext(r.Context(), sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
}
