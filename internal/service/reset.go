package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qivlabs/qiv-auth/internal/model"
)

// RequestReset generates a reset code for a local identity, persists it
// with its expiry and dispatches it through the notifier. A fresh
// request overwrites any pending code; one outstanding reset per
// identity.
func (a *Auth) RequestReset(ctx context.Context, email string) (string, error) {
	a.logger.Debug("Auth service: starting password reset request", "email", email)

	identity, err := a.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.NewNotFoundError("user not found with this email address")
		}
		return "", fmt.Errorf("failed to get identity by email: %w", err)
	}

	if identity.AuthType == model.AuthTypeFederated {
		a.logger.Info("Auth service: reset requested for federated identity",
			"user_id", identity.ID)
		return "", model.NewUnsupportedError("this account uses federated sign-in and has no password to reset")
	}

	code, err := a.otp.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	expiry := time.Now().Add(model.OTPValidity)
	if err := a.identities.SetResetOTP(ctx, identity.ID, code, expiry); err != nil {
		return "", fmt.Errorf("failed to persist otp: %w", err)
	}

	// The code stays persisted on dispatch failure; it is unusable
	// until the caller requests a new one that overwrites it.
	if err := a.notifier.SendOTP(ctx, identity.Email, code); err != nil {
		a.logger.Error("Auth service: otp dispatch failed",
			"user_id", identity.ID,
			"error", err.Error())
		return "", model.NewDispatchError("failed to send OTP email")
	}

	a.logger.Info("Auth service: otp dispatched", "user_id", identity.ID)

	return "OTP sent to your email address", nil
}

// ConfirmReset exchanges a valid code for a new password and a session
// token. The code is consumed in the same conditional update that
// installs the new hash; wrong and expired codes are indistinguishable
// to the caller.
func (a *Auth) ConfirmReset(ctx context.Context, email, code, newPassword string) (model.Identity, string, error) {
	a.logger.Debug("Auth service: confirming password reset", "email", email)

	if err := validateEmail(email); err != nil {
		return model.Identity{}, "", err
	}
	if code == "" {
		return model.Identity{}, "", model.NewValidationError("otp", "OTP is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return model.Identity{}, "", err
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	identity, err := a.identities.ConsumeResetOTP(ctx, normalizeEmail(email), code, time.Now(), hash)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Identity{}, "", model.NewAuthError("invalid or expired OTP")
		}
		return model.Identity{}, "", fmt.Errorf("failed to consume otp: %w", err)
	}

	tokenString, err := a.tokens.GenerateSessionToken(identity)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	a.logger.Info("Auth service: password reset completed", "user_id", identity.ID)

	return identity, tokenString, nil
}
