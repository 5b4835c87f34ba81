package provider

import (
	"context"

	"github.com/qivlabs/qiv-auth/internal/model"
)

// Provider is the contract for an external identity provider.
// Implementations return profile facts only; identity creation and
// linking decisions happen in the reconcile flow.
type Provider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the authorization URL for the redirect
	// handshake.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for a verified profile.
	Exchange(ctx context.Context, code string) (model.FederatedProfile, error)
}
