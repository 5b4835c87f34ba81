package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthType distinguishes how an identity authenticates.
type AuthType string

const (
	AuthTypeLocal     AuthType = "local"
	AuthTypeFederated AuthType = "federated"
)

// IdentityStore defines persistence operations for identities.
// Username, email and federated id uniqueness is enforced by the store
// itself; Create surfaces violations as conflict errors.
type IdentityStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Identity, error)
	GetByEmail(ctx context.Context, email string) (Identity, error)
	GetByFederatedID(ctx context.Context, federatedID string) (Identity, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, identity Identity) (Identity, error)
	LinkFederated(ctx context.Context, id uuid.UUID, federatedID string) (Identity, error)
	SetResetOTP(ctx context.Context, id uuid.UUID, code string, expiry time.Time) error
	ConsumeResetOTP(ctx context.Context, email, code string, now time.Time, newPasswordHash string) (Identity, error)
}

// Identity represents a stored user record unifying local and federated
// credentials. PasswordHash is set only for local identities,
// FederatedID only for federated ones. OTPCode and OTPExpiry are both
// nil except while a password reset is in flight.
type Identity struct {
	ID           uuid.UUID
	Username     string
	Email        string
	AuthType     AuthType
	PasswordHash string
	FederatedID  *string
	OTPCode      *string
	OTPExpiry    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicIdentity is the caller-facing projection of an identity. It
// never carries credential material.
type PublicIdentity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Public returns the projection safe to hand to callers.
func (i Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:       i.ID,
		Username: i.Username,
		Email:    i.Email,
	}
}

// FederatedProfile is the normalized profile delivered by an external
// identity provider after a completed redirect handshake.
type FederatedProfile struct {
	ProviderID  string
	Email       string
	DisplayName string
}
