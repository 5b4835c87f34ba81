package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qivlabs/qiv-auth/internal/logger"
	"github.com/qivlabs/qiv-auth/internal/model"
)

// Auth orchestrates the local, federated and password-reset flows over
// the identity store.
type Auth struct {
	identities model.IdentityStore
	hasher     model.PasswordHasher
	tokens     model.TokenManager
	otp        model.OTPGenerator
	notifier   model.OTPNotifier
	logger     *logger.Logger
}

func NewAuth(
	identities model.IdentityStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	otp model.OTPGenerator,
	notifier model.OTPNotifier,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		otp:        otp,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterParams carries local registration input.
type RegisterParams struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates a local identity and issues a session token. Input
// is validated field by field, first violation wins. The email conflict
// is checked before the username one; the store's unique indexes remain
// the authoritative conflict signal either way.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (model.Identity, string, error) {
	a.logger.Debug("Auth service: starting registration",
		"username", params.Username,
		"email", params.Email)

	if err := validateRegistration(params); err != nil {
		return model.Identity{}, "", err
	}

	email := normalizeEmail(params.Email)

	_, err := a.identities.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: email already registered", "email", email)
		return model.Identity{}, "", model.NewConflictError("user with this email already exists")
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, "", fmt.Errorf("failed to get identity by email: %w", err)
	}

	taken, err := a.identities.UsernameTaken(ctx, params.Username)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		a.logger.Info("Auth service: username already taken", "username", params.Username)
		return model.Identity{}, "", model.NewConflictError("username is already taken")
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	identity, err := a.identities.Create(ctx, model.Identity{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        email,
		AuthType:     model.AuthTypeLocal,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if model.KindOf(err) == model.KindConflict {
			return model.Identity{}, "", err
		}
		a.logger.Error("Auth service: failed to create identity",
			"email", email,
			"error", err.Error())
		return model.Identity{}, "", fmt.Errorf("failed to create identity: %w", err)
	}

	tokenString, err := a.tokens.GenerateSessionToken(identity)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	a.logger.Info("Auth service: registration completed",
		"username", identity.Username,
		"user_id", identity.ID)

	return identity, tokenString, nil
}

// Login verifies local credentials and issues a session token. Unknown
// email and wrong password are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string) (model.Identity, string, error) {
	a.logger.Debug("Auth service: starting login", "email", email)

	identity, err := a.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Identity{}, "", model.NewAuthError("invalid email or password")
		}
		return model.Identity{}, "", fmt.Errorf("failed to get identity by email: %w", err)
	}

	// A federated identity has no hash; the comparison fails the same
	// way a wrong password does.
	if err := a.hasher.Compare(identity.PasswordHash, password); err != nil {
		a.logger.Info("Auth service: login rejected", "email", email)
		return model.Identity{}, "", model.NewAuthError("invalid email or password")
	}

	tokenString, err := a.tokens.GenerateSessionToken(identity)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	a.logger.Info("Auth service: login completed",
		"username", identity.Username,
		"user_id", identity.ID)

	return identity, tokenString, nil
}
