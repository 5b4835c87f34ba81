package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qivlabs/qiv-auth/internal/model"
)

// ReconcileFederatedProfile matches an external-provider profile to an
// identity: reuse it when the provider id is already linked, link it to
// an existing identity sharing the email, or create a fresh identity
// with a username derived from the email. A session token is issued in
// every case.
func (a *Auth) ReconcileFederatedProfile(ctx context.Context, profile model.FederatedProfile) (model.Identity, string, error) {
	a.logger.Debug("Auth service: reconciling federated profile",
		"provider_id", profile.ProviderID)

	identity, err := a.identities.GetByFederatedID(ctx, profile.ProviderID)
	if err == nil {
		return a.issueFederatedSession(identity)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, "", fmt.Errorf("failed to get identity by federated id: %w", err)
	}

	email := normalizeEmail(profile.Email)

	existing, err := a.identities.GetByEmail(ctx, email)
	if err == nil {
		if !linkPolicyAllows(existing) {
			return model.Identity{}, "", model.NewConflictError("federated account is already linked")
		}

		linked, err := a.identities.LinkFederated(ctx, existing.ID, profile.ProviderID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.Identity{}, "", model.NewConflictError("federated account is already linked")
			}
			return model.Identity{}, "", fmt.Errorf("failed to link federated id: %w", err)
		}

		a.logger.Info("Auth service: linked federated login to existing identity",
			"user_id", linked.ID,
			"username", linked.Username)

		return a.issueFederatedSession(linked)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, "", fmt.Errorf("failed to get identity by email: %w", err)
	}

	created, err := a.createFederatedIdentity(ctx, profile.ProviderID, email)
	if err != nil {
		return model.Identity{}, "", err
	}

	a.logger.Info("Auth service: created federated identity",
		"user_id", created.ID,
		"username", created.Username)

	return a.issueFederatedSession(created)
}

// linkPolicyAllows decides whether a federated login may silently claim
// an existing identity that shares its email. It currently allows any
// unlinked identity, including local ones, without password
// confirmation. This trusts the provider's email verification; harden
// here if that trust changes.
func linkPolicyAllows(identity model.Identity) bool {
	return identity.FederatedID == nil
}

// createFederatedIdentity derives a username from the email local part
// and appends an incrementing numeric suffix until the store accepts
// it. The unique index is the authority: a lost race on the probe shows
// up as a username conflict on insert, which restarts the search.
func (a *Auth) createFederatedIdentity(ctx context.Context, providerID, email string) (model.Identity, error) {
	base := usernameBase(email)

	for suffix := 0; ; suffix++ {
		candidate := base
		if suffix > 0 {
			candidate = base + strconv.Itoa(suffix)
		}

		taken, err := a.identities.UsernameTaken(ctx, candidate)
		if err != nil {
			return model.Identity{}, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			continue
		}

		now := time.Now()
		created, err := a.identities.Create(ctx, model.Identity{
			ID:          uuid.New(),
			Username:    candidate,
			Email:       email,
			AuthType:    model.AuthTypeFederated,
			FederatedID: &providerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			var flowErr *model.Error
			if errors.As(err, &flowErr) && flowErr.Kind == model.KindConflict && flowErr.Field == "username" {
				continue
			}
			if model.KindOf(err) == model.KindConflict {
				return model.Identity{}, err
			}
			return model.Identity{}, fmt.Errorf("failed to create federated identity: %w", err)
		}

		return created, nil
	}
}

func (a *Auth) issueFederatedSession(identity model.Identity) (model.Identity, string, error) {
	tokenString, err := a.tokens.GenerateSessionToken(identity)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return identity, tokenString, nil
}

// usernameBase extracts the email local part stripped to alphanumerics.
func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")

	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
