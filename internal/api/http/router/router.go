package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/qivlabs/qiv-auth/internal/api/http/handler"
	"github.com/qivlabs/qiv-auth/internal/api/http/middleware"
	"github.com/qivlabs/qiv-auth/internal/logger"
	"github.com/qivlabs/qiv-auth/internal/model"
)

// Router wires the HTTP handlers and middleware for all auth flows.
type Router struct {
	auth           *handler.Auth
	federated      *handler.Federated
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	auth *handler.Auth,
	federated *handler.Federated,
	tokenManager model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		auth:           auth,
		federated:      federated,
		tokenManager:   tokenManager,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handler builds the route tree. Auth endpoints are public; user
// endpoints require a valid session cookie.
func (r *Router) Handler() http.Handler {
	root := mux.NewRouter()
	root.Use(middleware.NewLogging(r.logger).Handle)

	auth := root.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", r.auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", r.auth.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/password-reset/request", r.auth.RequestReset).Methods(http.MethodPost)
	auth.HandleFunc("/password-reset/confirm", r.auth.ConfirmReset).Methods(http.MethodPost)

	if r.federated != nil {
		auth.HandleFunc("/google", r.federated.Start).Methods(http.MethodGet)
		auth.HandleFunc("/google/callback", r.federated.Callback).Methods(http.MethodGet)
	}

	user := root.PathPrefix("/api/user").Subrouter()
	user.Use(middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger).Handle)
	user.HandleFunc("/me", r.auth.Me).Methods(http.MethodGet)

	return root
}
